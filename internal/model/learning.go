package model

import "time"

// LearningProfile is the cumulative learning-platform state of one person.
// A profile row means the person has consumed their license.
type LearningProfile struct {
	Email             string     `json:"email"`
	Name              string     `json:"nombre,omitempty"`
	Route             string     `json:"ruta,omitempty"`
	RouteProgress     float64    `json:"progreso_ruta"` // 0–1
	CoursesInProgress int        `json:"cursos_en_progreso"`
	CoursesCertified  int        `json:"cursos_certificados"`
	TimeSpentSeconds  float64    `json:"tiempo_total"`
	ActivatedAt       *time.Time `json:"fecha_activacion,omitempty"`
	LicenseStartAt    *time.Time `json:"fecha_inicio_licencia,omitempty"`
	LicenseExpiresAt  *time.Time `json:"fecha_expiracion,omitempty"`
}

// ReferenceDate returns the activation date, falling back to the license start.
func (p LearningProfile) ReferenceDate() *time.Time {
	if p.ActivatedAt != nil {
		return p.ActivatedAt
	}
	return p.LicenseStartAt
}

// LearningActivity is one person's state in one course.
type LearningActivity struct {
	Email               string     `json:"email"`
	Route               string     `json:"ruta,omitempty"`
	Course              string     `json:"curso"`
	Progress            float64    `json:"progreso"` // 0–1
	TimeInvestedSeconds float64    `json:"tiempo_invertido"`
	Status              string     `json:"estado_curso,omitempty"`
	CertifiedAt         *time.Time `json:"fecha_certificacion,omitempty"`
}
