package model

import "time"

// Company is a registered business entity whose employees apply for licenses.
// Optional survey answers are pointers; nil means the company never answered.
type Company struct {
	ID              string    `json:"id"`
	Name            string    `json:"razon_social"`
	NIT             string    `json:"nit"`
	Sector          string    `json:"sector,omitempty"`
	MarketReach     string    `json:"alcance_mercado,omitempty"`
	ChamberID       string    `json:"camara_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	Employees       *int      `json:"num_empleados,omitempty"`
	FemaleEmployees *int      `json:"num_mujeres,omitempty"`

	// Sales and Profit are stored as scaled integers (value × 100).
	Sales  *float64 `json:"ventas_ano_anterior,omitempty"`
	Profit *float64 `json:"utilidad_ano_anterior,omitempty"`

	DecidedAIAdoption *bool    `json:"decidio_adoptar_ia,omitempty"`
	InvestedAI2024    *bool    `json:"invirtio_ia_2024,omitempty"`
	AIInvestment2024  *float64 `json:"monto_inversion_ia_2024,omitempty"`

	AdoptionProbability12m   *float64 `json:"probabilidad_adopcion_12m,omitempty"`
	InvestmentProbability12m *float64 `json:"probabilidad_inversion_12m,omitempty"`
	ProjectedInvestment12m   *float64 `json:"monto_proyectado_12m,omitempty"`
}

// Chamber is a chamber of commerce with a fixed license quota.
type Chamber struct {
	ID           string `json:"id"`
	Name         string `json:"nombre"`
	NIT          string `json:"nit"`
	LicenseQuota int    `json:"licencias_disponibles"`
}
