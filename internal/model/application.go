package model

import "time"

// ApplicationStatus is the approval state of a license application.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pendiente"
	StatusApproved ApplicationStatus = "Aprobada"
	StatusRejected ApplicationStatus = "Rechazada"
)

// Application is a person's request for a learning license ("solicitud").
type Application struct {
	ID                    string            `json:"id"`
	FullName              string            `json:"nombres_apellidos"`
	Email                 string            `json:"email"`
	DocumentNumber        string            `json:"numero_documento"`
	Phone                 string            `json:"celular"`
	Status                ApplicationStatus `json:"estado"`
	CompanyNIT            string            `json:"nit_empresa,omitempty"`
	IsCollaborator        bool              `json:"es_colaborador"`
	CollaboratorChamberID string            `json:"camara_colaborador_id,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
}

// StatusLabel returns the display status, defaulting to pending when unset.
func (a Application) StatusLabel() string {
	if a.Status == "" {
		return string(StatusPending)
	}
	return string(a.Status)
}

// IsApproved reports whether the application was approved.
func (a Application) IsApproved() bool {
	return a.Status == StatusApproved
}
