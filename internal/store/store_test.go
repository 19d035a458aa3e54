package store

import (
	"time"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

func ptr[T any](v T) *T { return &v }

var seedTime = time.Date(2024, 2, 10, 15, 30, 0, 0, time.UTC)

func seedDataset() *model.Dataset {
	return &model.Dataset{
		Chambers: []model.Chamber{
			{ID: "c1", Name: "Cámara Norte", NIT: "800-1", LicenseQuota: 100},
			{ID: "c2", Name: "Cámara Sur", NIT: "800-2", LicenseQuota: 50},
		},
		Companies: []model.Company{
			{
				ID: "e1", Name: "Acme SAS", NIT: "900-1", Sector: "Tecnología", MarketReach: "Nacional",
				ChamberID: "c1", CreatedAt: seedTime, Employees: ptr(10), FemaleEmployees: ptr(4),
				Sales: ptr(150000.0), DecidedAIAdoption: ptr(true), InvestedAI2024: ptr(false),
				AdoptionProbability12m: ptr(0.8),
			},
			{ID: "e2", Name: "Beta Ltda", NIT: "900-2", ChamberID: "c2", CreatedAt: seedTime.Add(time.Hour)},
		},
		Applications: []model.Application{
			{
				ID: "a1", FullName: "Ana Gómez", Email: "ana@acme.co", DocumentNumber: "1", Phone: "300",
				Status: model.StatusApproved, CompanyNIT: "900-1", CreatedAt: seedTime,
			},
			{
				ID: "a2", FullName: "Luis Pérez", Email: "luis@sur.co", DocumentNumber: "2",
				IsCollaborator: true, CollaboratorChamberID: "c2", CreatedAt: seedTime.Add(time.Minute),
			},
		},
		Profiles: []model.LearningProfile{
			{
				Email: "ana@acme.co", Name: "Ana", Route: "Nivel 1 Adopción IA Usuario Explorador Herramientas IA",
				RouteProgress: 0.5, CoursesInProgress: 2, CoursesCertified: 1, TimeSpentSeconds: 7200,
				ActivatedAt: ptr(seedTime),
			},
		},
		Activities: []model.LearningActivity{
			{Email: "ana@acme.co", Course: "ChatGPT", Route: "Nivel 1", Progress: 1, TimeInvestedSeconds: 3600, Status: "Certificado", CertifiedAt: ptr(seedTime)},
			{Email: "ana@acme.co", Course: "Prompting", Progress: 0.25, TimeInvestedSeconds: 600},
		},
	}
}
