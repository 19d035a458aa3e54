package metrics

import (
	"time"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return fixedNow }))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(v int) *int              { return &v }
func floatPtr(v float64) *float64    { return &v }
func boolPtr(v bool) *bool           { return &v }

func sumValues(slices []Slice) float64 {
	var s float64
	for _, sl := range slices {
		s += sl.Value
	}
	return s
}

// sampleDataset is a small two-chamber program with a mix of collaborators,
// company applicants, routes and survey answers.
func sampleDataset() *model.Dataset {
	return &model.Dataset{
		Chambers: []model.Chamber{
			{ID: "ch1", Name: "Cámara Norte", LicenseQuota: 100},
			{ID: "ch2", Name: "Cámara Sur", LicenseQuota: 50},
		},
		Companies: []model.Company{
			{
				ID: "co1", Name: "Alfa SAS", NIT: "900", ChamberID: "ch1", CreatedAt: day(2024, 2, 10),
				Employees: intPtr(10), FemaleEmployees: intPtr(4),
				Sales: floatPtr(100000), Profit: floatPtr(20000),
				DecidedAIAdoption: boolPtr(true), InvestedAI2024: boolPtr(true), AIInvestment2024: floatPtr(5000),
				AdoptionProbability12m: floatPtr(80), InvestmentProbability12m: floatPtr(60), ProjectedInvestment12m: floatPtr(1000),
			},
			{
				ID: "co2", Name: "Beta Ltda", NIT: "901", ChamberID: "ch1", CreatedAt: day(2024, 3, 2),
				Employees: intPtr(30), FemaleEmployees: intPtr(6),
				DecidedAIAdoption: boolPtr(false), InvestedAI2024: boolPtr(true),
				AdoptionProbability12m: floatPtr(40), ProjectedInvestment12m: floatPtr(0),
			},
			{
				ID: "co3", Name: "Gama SA", NIT: "902", ChamberID: "ch2", CreatedAt: day(2024, 3, 5),
				Sales: floatPtr(50000),
			},
			{ID: "co4", Name: "Sin Solicitud", NIT: "903", ChamberID: "ch2", CreatedAt: day(2024, 1, 5)},
		},
		Applications: []model.Application{
			{ID: "a1", Email: "ana@alfa.co", CompanyNIT: "900", Status: model.StatusApproved, CreatedAt: day(2024, 2, 12)},
			{ID: "a2", Email: "bo@alfa.co", CompanyNIT: "900", Status: model.StatusApproved, CreatedAt: day(2024, 3, 4)},
			{ID: "a3", Email: "cy@beta.co", CompanyNIT: "901", Status: model.StatusRejected, CreatedAt: day(2024, 3, 5)},
			{ID: "a4", Email: "di@gama.co", CompanyNIT: "902", CreatedAt: day(2024, 3, 11)},
			{ID: "a5", Email: "col@norte.co", IsCollaborator: true, CollaboratorChamberID: "ch1", Status: model.StatusApproved, CreatedAt: day(2024, 3, 12)},
		},
		Profiles: []model.LearningProfile{
			{Email: "ana@alfa.co", Route: AIRoutes[2], RouteProgress: 0.8, CoursesCertified: 5, ActivatedAt: timePtr(day(2024, 2, 20))},
			{Email: "bo@alfa.co", Route: "nivel 1 algo", RouteProgress: 0.2, CoursesCertified: 4, ActivatedAt: timePtr(day(2024, 3, 6))},
			{Email: "col@norte.co", Route: "", RouteProgress: 0, CoursesCertified: 0, LicenseStartAt: timePtr(day(2024, 3, 6))},
			{Email: "di@gama.co", Route: "Marketing", RouteProgress: 0.5, CoursesCertified: 1},
		},
		Activities: []model.LearningActivity{
			{Email: "ana@alfa.co", Route: AIRoutes[2], Course: "Prompting", TimeInvestedSeconds: 3600},
			{Email: "ana@alfa.co", Route: "Nivel 3 Adopción IA  Usuario Competente Herramientas IA", Course: "Prompting", TimeInvestedSeconds: 1800},
			{Email: "ana@alfa.co", Route: "Not title", Course: "Excel", TimeInvestedSeconds: 600},
			{Email: "bo@alfa.co", Route: AIRoutes[0], Course: "ChatGPT", TimeInvestedSeconds: 1200},
			{Email: "bo@alfa.co", Route: "Marketing", Course: "SEO", TimeInvestedSeconds: 0},
			{Email: "di@gama.co", Route: "Marketing", Course: "SEO", TimeInvestedSeconds: 7200},
			{Email: "col@norte.co", Route: "", Course: "Excel", TimeInvestedSeconds: 600},
		},
	}
}
