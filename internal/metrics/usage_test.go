package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

func TestUsage_EmptyDataset(t *testing.T) {
	got := newTestEngine().Usage(&model.Dataset{}, UsageParams{})

	assert.Equal(t, 0, got.LicensesConsumed)
	assert.Equal(t, 0.0, got.AverageProgress)
	assert.Equal(t, 0.0, got.AverageTimeInvested)
	assert.Equal(t, "0h 0m", got.AverageTimeInvestedLabel)
	assert.Empty(t, got.LevelDistribution)
	assert.Empty(t, got.CourseDistributionByRoute)
	assert.Empty(t, got.Scatter)
	assert.Empty(t, got.TopAIRouteCourses)
	assert.Empty(t, got.TopCompaniesByLicensedUsers)
	assert.Empty(t, got.ChamberConsumption)
	for _, s := range got.RouteAdherence {
		assert.Equal(t, 0.0, s.Value)
	}
}

func TestUsage_LevelDistribution(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{})

	assert.Equal(t, []LevelSlice{
		{Level: "Nivel 1", Count: 1, Percentage: 25},
		{Level: "Nivel 3", Count: 1, Percentage: 25},
		{Level: "Sin Nivel", Count: 2, Percentage: 50},
	}, got.LevelDistribution)
}

func TestUsage_ProgressAndTimeline(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{})

	assert.InDelta(t, 37.5, got.AverageProgress, 0.0001)
	assert.Equal(t, []ProgressPoint{
		{Date: "2024-02-20", Label: "20 feb", Progress: 80, Users: 1},
		{Date: "2024-03-06", Label: "6 mar", Progress: 10, Users: 2},
	}, got.ProgressTimeline)
}

func TestUsage_AverageTimeFromActivities(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{})

	// 6000 + 1200 + 7200 + 600 seconds over four learners.
	assert.InDelta(t, 3750.0, got.AverageTimeInvested, 0.0001)
	assert.Equal(t, "1h 2m", got.AverageTimeInvestedLabel)
	assert.Equal(t, 4, got.ActiveLearners)
}

func TestUsage_RouteAdherence(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{})

	require.Len(t, got.RouteAdherence, 2)
	assert.Equal(t, "En ruta asignada", got.RouteAdherence[0].Name)
	assert.Equal(t, 5, got.RouteAdherence[0].Count)
	assert.Equal(t, 71.43, got.RouteAdherence[0].Value)
	assert.Equal(t, "Exploración libre", got.RouteAdherence[1].Name)
	assert.Equal(t, 2, got.RouteAdherence[1].Count)
	assert.InDelta(t, 100.0, sumValues(got.RouteAdherence), 0.05)
}

func TestUsage_NotTitleIsFreeExploration(t *testing.T) {
	ds := &model.Dataset{Activities: []model.LearningActivity{
		{Email: "a@x.co", Route: "Not title", Course: "Excel"},
		{Email: "b@x.co", Route: "NOT TITLE", Course: "Excel"},
	}}
	got := newTestEngine().Usage(ds, UsageParams{})

	assert.Equal(t, 0, got.RouteAdherence[0].Count)
	assert.Equal(t, 2, got.RouteAdherence[1].Count)
	require.Len(t, got.CourseDistributionByRoute, 1)
	assert.Equal(t, NoRouteLabel, got.CourseDistributionByRoute[0].Name)
	assert.Equal(t, []RankedItem{{Name: "Excel", Count: 2}}, got.TopFreeCourses)
	assert.Empty(t, got.TopOtherRouteCourses)
}

func TestUsage_CourseDistributionByRoute(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{})

	names := make([]string, len(got.CourseDistributionByRoute))
	for i, s := range got.CourseDistributionByRoute {
		names[i] = s.Name
	}
	variant := "Nivel 3 Adopción IA  Usuario Competente Herramientas IA"
	assert.Equal(t, []string{"Marketing", NoRouteLabel, AIRoutes[0], variant, AIRoutes[2]}, names)
	assert.Equal(t, DefaultPalette[3], got.CourseDistributionByRoute[3].Color)
	assert.InDelta(t, 100.0, sumValues(got.CourseDistributionByRoute), 0.05)
}

func TestUsage_CourseDistributionKeepsLiteralRouteText(t *testing.T) {
	ds := &model.Dataset{Activities: []model.LearningActivity{
		{Email: "a@x.co", Route: AIRoutes[0]},
		{Email: "b@x.co", Route: "  " + AIRoutes[0] + " "},
		{Email: "c@x.co", Route: strings.ToUpper(AIRoutes[0])},
		{Email: "d@x.co", Route: ""},
	}}
	got := newTestEngine().Usage(ds, UsageParams{})

	counts := make(map[string]int)
	for _, s := range got.CourseDistributionByRoute {
		counts[s.Name] = s.Count
	}
	assert.Equal(t, map[string]int{
		AIRoutes[0]:                  2,
		strings.ToUpper(AIRoutes[0]): 1,
		NoRouteLabel:                 1,
	}, counts)
	// Adherence still classifies every AI spelling as in-route.
	assert.Equal(t, 3, got.RouteAdherence[0].Count)
}

func TestUsage_Scatter(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{})

	require.Len(t, got.Scatter, 3)
	byEmail := make(map[string]ScatterPoint)
	for _, p := range got.Scatter {
		byEmail[p.Email] = p
	}
	assert.Equal(t, QuadrantEvangelist, byEmail["ana@alfa.co"].Quadrant)
	assert.Equal(t, QuadrantExplorer, byEmail["bo@alfa.co"].Quadrant)
	assert.Equal(t, QuadrantDeveloping, byEmail["di@gama.co"].Quadrant)
	assert.NotContains(t, byEmail, "col@norte.co")
}

func TestClassifyQuadrant(t *testing.T) {
	assert.Equal(t, QuadrantEvangelist, ClassifyQuadrant(51, 4))
	assert.Equal(t, QuadrantExplorer, ClassifyQuadrant(50, 4))
	assert.Equal(t, QuadrantExplorer, ClassifyQuadrant(10, 9))
	assert.Equal(t, QuadrantDeveloping, ClassifyQuadrant(90, 3))
}

func TestUsage_CourseLeaderboards(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{})

	assert.Equal(t, []RankedItem{{Name: "Prompting", Count: 2}, {Name: "ChatGPT", Count: 1}}, got.TopAIRouteCourses)
	assert.Equal(t, []RankedItem{{Name: "SEO", Count: 2}}, got.TopOtherRouteCourses)
	assert.Equal(t, []RankedItem{{Name: "Excel", Count: 2}}, got.TopFreeCourses)
}

func TestUsage_LeaderboardsAreMonotonicAndCapped(t *testing.T) {
	ds := &model.Dataset{}
	for i := 0; i < 9; i++ {
		course := string(rune('A' + i))
		for j := 0; j <= i%4; j++ {
			ds.Activities = append(ds.Activities, model.LearningActivity{
				Email: "x@y.co", Route: AIRoutes[0], Course: course,
			})
		}
	}
	got := newTestEngine().Usage(ds, UsageParams{})

	require.Len(t, got.TopAIRouteCourses, 5)
	for i := 1; i < len(got.TopAIRouteCourses); i++ {
		assert.GreaterOrEqual(t, got.TopAIRouteCourses[i-1].Count, got.TopAIRouteCourses[i].Count)
	}
	// Ties resolve alphabetically: D and H both have four rows.
	assert.Equal(t, "D", got.TopAIRouteCourses[0].Name)
	assert.Equal(t, "H", got.TopAIRouteCourses[1].Name)
}

func TestUsage_TopCompaniesByLicensedUsers(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{})

	assert.Equal(t, []CompanyRank{{CompanyName: "Alfa SAS", NIT: "900", Count: 2}}, got.TopCompaniesByLicensedUsers)
}

func TestUsage_TopCompaniesByRoutePartition(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{})

	require.Len(t, got.TopCompaniesByAIRoute, 1)
	ai := got.TopCompaniesByAIRoute[0]
	assert.Equal(t, "Alfa SAS", ai.CompanyName)
	assert.Equal(t, 3, ai.Total)
	assert.Equal(t, AIRoutes[2], ai.TopRoute)
	assert.Equal(t, 2, ai.TopRouteCount)
	assert.Equal(t, "Prompting", ai.TopCourse)

	require.Len(t, got.TopCompaniesByOtherRoute, 2)
	assert.Equal(t, "Alfa SAS", got.TopCompaniesByOtherRoute[0].CompanyName)
	assert.Equal(t, "Gama SA", got.TopCompaniesByOtherRoute[1].CompanyName)
	assert.Equal(t, "Marketing", got.TopCompaniesByOtherRoute[1].TopRoute)
	assert.Equal(t, "SEO", got.TopCompaniesByOtherRoute[1].TopCourse)
}

func TestUsage_ChamberConsumption(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{})

	require.Len(t, got.ChamberConsumption, 2)
	north := got.ChamberConsumption[0]
	assert.Equal(t, "ch1", north.ChamberID)
	assert.Equal(t, 6, north.Total)
	assert.Equal(t, []RankedItem{
		{Name: "Excel", Count: 2}, {Name: "Prompting", Count: 2}, {Name: "ChatGPT", Count: 1},
	}, north.TopCourses)
	assert.Equal(t, []RankedItem{
		{Name: AIRoutes[2], Count: 2}, {Name: NoRouteLabel, Count: 2}, {Name: "Marketing", Count: 1},
	}, north.TopRoutes)

	south := got.ChamberConsumption[1]
	assert.Equal(t, "ch2", south.ChamberID)
	assert.Equal(t, 1, south.Total)
}

func TestUsage_UserTypeFilter(t *testing.T) {
	e := newTestEngine()

	collab := e.Usage(sampleDataset(), UsageParams{UserType: UserTypeCollaborator})
	assert.Equal(t, 1, collab.LicensesConsumed)
	assert.Equal(t, 1, collab.RouteAdherence[1].Count)
	assert.Equal(t, 0, collab.RouteAdherence[0].Count)

	employees := e.Usage(sampleDataset(), UsageParams{UserType: UserTypeEmployee})
	assert.Equal(t, 3, employees.LicensesConsumed)
	assert.Equal(t, 6, employees.RouteAdherence[0].Count+employees.RouteAdherence[1].Count)
}

func TestUsage_ChamberFilter(t *testing.T) {
	got := newTestEngine().Usage(sampleDataset(), UsageParams{ChamberID: "ch2"})

	assert.Equal(t, 1, got.LicensesConsumed)
	require.Len(t, got.ChamberConsumption, 1)
	assert.Equal(t, "ch2", got.ChamberConsumption[0].ChamberID)
}

func TestUsage_DateRangeKeepsUndatedProfiles(t *testing.T) {
	params := UsageParams{DateRange: &DateRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
	}}
	got := newTestEngine().Usage(sampleDataset(), params)

	// ana activated in February and is dropped along with her activity.
	assert.Equal(t, 3, got.LicensesConsumed)
	assert.Equal(t, 3, got.ActiveLearners)
	assert.Equal(t, []RankedItem{{Name: "ChatGPT", Count: 1}}, got.TopAIRouteCourses)
}

func TestParseUserType(t *testing.T) {
	ut, ok := ParseUserType("Colaborador")
	assert.True(t, ok)
	assert.Equal(t, UserTypeCollaborator, ut)

	ut, ok = ParseUserType("")
	assert.True(t, ok)
	assert.Equal(t, UserTypeAll, ut)

	_, ok = ParseUserType("otro")
	assert.False(t, ok)
}
