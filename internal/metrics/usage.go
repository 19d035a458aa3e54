package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

// UserType narrows the usage pipeline to one kind of applicant.
type UserType string

const (
	UserTypeAll          UserType = ""
	UserTypeCollaborator UserType = "colaborador"
	UserTypeEmployee     UserType = "empresa"
)

// ParseUserType validates a user-type filter value.
func ParseUserType(s string) (UserType, bool) {
	switch UserType(strings.ToLower(strings.TrimSpace(s))) {
	case UserTypeAll, "all", "todos":
		return UserTypeAll, true
	case UserTypeCollaborator, "collaborator", "colaboradores":
		return UserTypeCollaborator, true
	case UserTypeEmployee, "employee", "empresas", "empleado":
		return UserTypeEmployee, true
	}
	return "", false
}

// Scatter quadrant thresholds.
const (
	evangelistProgress   = 50.0
	certifiedCoursesHigh = 3
	leaderboardSize      = 5
	chamberTopSize       = 3
)

const (
	labelInRoute         = "En ruta asignada"
	labelFreeExploration = "Exploración libre"
)

// Quadrant classifies a learner on the progress/certification plane.
type Quadrant string

const (
	QuadrantEvangelist Quadrant = "evangelist"
	QuadrantExplorer   Quadrant = "explorer"
	QuadrantDeveloping Quadrant = "developing"
)

// ClassifyQuadrant places a learner: more than 50% route progress and more
// than 3 certified courses is an evangelist; more than 3 certified courses
// alone is an explorer; anything else is developing.
func ClassifyQuadrant(progressInRoute float64, certifiedCourses int) Quadrant {
	switch {
	case progressInRoute > evangelistProgress && certifiedCourses > certifiedCoursesHigh:
		return QuadrantEvangelist
	case certifiedCourses > certifiedCoursesHigh:
		return QuadrantExplorer
	default:
		return QuadrantDeveloping
	}
}

// UsageParams filters the usage pipeline.
type UsageParams struct {
	// DateRange restricts profiles by activation date (license start as a
	// fallback). Profiles with neither date are always included.
	DateRange *DateRange `json:"date_range,omitempty"`
	UserType  UserType   `json:"user_type,omitempty"`
	ChamberID string     `json:"chamber_id,omitempty"`
	// Now anchors timeline labels. Zero means the engine clock.
	Now time.Time `json:"now,omitempty"`
}

// LevelSlice is the share of profiles at one route level.
type LevelSlice struct {
	Level      string  `json:"level"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ProgressPoint is the mean route progress of profiles activated on one day.
type ProgressPoint struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	Progress float64 `json:"progress"`
	Users    int     `json:"users"`
}

// ScatterPoint is one learner on the evangelist/explorer chart.
type ScatterPoint struct {
	Email            string   `json:"email"`
	Name             string   `json:"name,omitempty"`
	ProgressInRoute  float64  `json:"progress_in_route"`
	CertifiedCourses int      `json:"certified_courses"`
	Quadrant         Quadrant `json:"quadrant"`
}

// CompanyRank counts licensed users per company.
type CompanyRank struct {
	CompanyName string `json:"company_name"`
	NIT         string `json:"nit"`
	Count       int    `json:"count"`
}

// CompanyConsumption summarizes a company's course activity in one route
// partition.
type CompanyConsumption struct {
	CompanyName    string `json:"company_name"`
	NIT            string `json:"nit"`
	Total          int    `json:"total"`
	TopRoute       string `json:"top_route"`
	TopRouteCount  int    `json:"top_route_count"`
	TopCourse      string `json:"top_course"`
	TopCourseCount int    `json:"top_course_count"`
}

// ChamberConsumption summarizes course activity of a chamber's applicants.
type ChamberConsumption struct {
	ChamberID   string       `json:"chamber_id"`
	ChamberName string       `json:"chamber_name"`
	Total       int          `json:"total"`
	TopCourses  []RankedItem `json:"top_courses"`
	TopRoutes   []RankedItem `json:"top_routes"`
}

// Usage is the learning-platform consumption bundle.
type Usage struct {
	LicensesConsumed int `json:"licenses_consumed"`
	ActiveLearners   int `json:"active_learners"`

	LevelDistribution []LevelSlice    `json:"level_distribution"`
	AverageProgress   float64         `json:"average_progress"`
	ProgressTimeline  []ProgressPoint `json:"progress_timeline"`

	AverageTimeInvested      float64 `json:"average_time_invested"` // seconds
	AverageTimeInvestedLabel string  `json:"average_time_invested_label"`

	RouteAdherence            []Slice        `json:"route_adherence"`
	CourseDistributionByRoute []Slice        `json:"course_distribution_by_route"`
	Scatter                   []ScatterPoint `json:"scatter"`

	TopAIRouteCourses    []RankedItem `json:"top_ai_route_courses"`
	TopOtherRouteCourses []RankedItem `json:"top_other_route_courses"`
	TopFreeCourses       []RankedItem `json:"top_free_courses"`

	TopCompaniesByLicensedUsers []CompanyRank        `json:"top_companies_by_licensed_users"`
	TopCompaniesByAIRoute       []CompanyConsumption `json:"top_companies_by_ai_route"`
	TopCompaniesByOtherRoute    []CompanyConsumption `json:"top_companies_by_other_route"`

	ChamberConsumption []ChamberConsumption `json:"chamber_consumption"`
}

// Usage computes learning progress, route adherence and leaderboards.
func (e *Engine) Usage(ds *model.Dataset, p UsageParams) *Usage {
	now := e.reference(p.Now)
	view := e.usageView(ds, p)
	ix := model.NewIndex(view)

	out := &Usage{
		LicensesConsumed: len(view.Profiles),
		ActiveLearners:   len(ix.ActivitiesByEmail),
	}

	out.LevelDistribution = levelDistribution(view.Profiles)
	out.AverageProgress, out.ProgressTimeline = e.progress(view.Profiles, now)
	out.AverageTimeInvested = averageTimePerLearner(ix)
	out.AverageTimeInvestedLabel = formatDuration(out.AverageTimeInvested)
	out.RouteAdherence = e.routeAdherence(view.Activities)
	out.CourseDistributionByRoute = e.courseDistributionByRoute(view.Activities)
	out.Scatter = scatter(view.Profiles)

	byKind := map[RouteKind]map[string]int{
		AIRoute:    {},
		OtherRoute: {},
		NoRoute:    {},
	}
	for _, a := range view.Activities {
		course := strings.TrimSpace(a.Course)
		if course == "" {
			continue
		}
		byKind[ClassifyRoute(a.Route).Kind][course]++
	}
	out.TopAIRouteCourses = rank(byKind[AIRoute], leaderboardSize)
	out.TopOtherRouteCourses = rank(byKind[OtherRoute], leaderboardSize)
	out.TopFreeCourses = rank(byKind[NoRoute], leaderboardSize)

	out.TopCompaniesByLicensedUsers = topCompaniesByLicensedUsers(view, ix)
	out.TopCompaniesByAIRoute = topCompaniesByPartition(view, ix, AIRoute)
	out.TopCompaniesByOtherRoute = topCompaniesByPartition(view, ix, OtherRoute)
	out.ChamberConsumption = chamberConsumption(view, ix)

	return out
}

// usageView applies the user-type, chamber and date filters to the learning
// collections. Applications, companies and chambers pass through untouched
// so joins still resolve.
func (e *Engine) usageView(ds *model.Dataset, p UsageParams) *model.Dataset {
	view := &model.Dataset{
		Applications: ds.Applications,
		Companies:    ds.Companies,
		Chambers:     ds.Chambers,
	}

	var allowed model.EmailSet
	if p.UserType != UserTypeAll || p.ChamberID != "" {
		ix := model.NewIndex(ds)
		allowed = make(model.EmailSet)
		for i := range ds.Applications {
			a := &ds.Applications[i]
			if p.UserType == UserTypeCollaborator && !a.IsCollaborator {
				continue
			}
			if p.UserType == UserTypeEmployee && a.IsCollaborator {
				continue
			}
			if p.ChamberID != "" && ix.ChamberIDForApplication(a) != p.ChamberID {
				continue
			}
			allowed.Add(a.Email)
		}
	}

	dropped := make(model.EmailSet)
	for _, prof := range ds.Profiles {
		if allowed != nil && !allowed.Has(prof.Email) {
			continue
		}
		if ref := prof.ReferenceDate(); ref != nil && !p.DateRange.Contains(*ref) {
			dropped.Add(prof.Email)
			continue
		}
		view.Profiles = append(view.Profiles, prof)
	}

	for _, a := range ds.Activities {
		if allowed != nil && !allowed.Has(a.Email) {
			continue
		}
		if dropped.Has(a.Email) {
			continue
		}
		view.Activities = append(view.Activities, a)
	}
	return view
}

func levelDistribution(profiles []model.LearningProfile) []LevelSlice {
	counts := make(map[string]int)
	for _, p := range profiles {
		counts[LevelLabel(p.Route)]++
	}
	out := make([]LevelSlice, 0, len(counts))
	for level, c := range counts {
		out = append(out, LevelSlice{
			Level:      level,
			Count:      c,
			Percentage: round2(percentage(c, len(profiles))),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

func (e *Engine) progress(profiles []model.LearningProfile, now time.Time) (float64, []ProgressPoint) {
	var sum float64
	type dayAcc struct {
		sum   float64
		users int
	}
	days := make(map[string]*dayAcc)
	dayTimes := make(map[string]time.Time)

	for _, p := range profiles {
		sum += p.RouteProgress
		ref := p.ReferenceDate()
		if ref == nil {
			continue
		}
		day := startOfDay(ref.In(e.loc))
		key := day.Format("2006-01-02")
		acc, ok := days[key]
		if !ok {
			acc = &dayAcc{}
			days[key] = acc
			dayTimes[key] = day
		}
		acc.sum += p.RouteProgress
		acc.users++
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	timeline := make([]ProgressPoint, 0, len(keys))
	for _, k := range keys {
		acc := days[k]
		timeline = append(timeline, ProgressPoint{
			Date:     k,
			Label:    dayLabel(dayTimes[k], now),
			Progress: round2(ratio(acc.sum, acc.users) * 100),
			Users:    acc.users,
		})
	}
	return ratio(sum, len(profiles)) * 100, timeline
}

// averageTimePerLearner sums activity time per learner and averages those
// totals over learners with at least one activity row.
func averageTimePerLearner(ix *model.Index) float64 {
	var total float64
	for _, rows := range ix.ActivitiesByEmail {
		for _, a := range rows {
			total += a.TimeInvestedSeconds
		}
	}
	return ratio(total, len(ix.ActivitiesByEmail))
}

func (e *Engine) routeAdherence(activities []model.LearningActivity) []Slice {
	counts := map[string]int{labelInRoute: 0, labelFreeExploration: 0}
	for _, a := range activities {
		if HasRoute(a.Route) {
			counts[labelInRoute]++
		} else {
			counts[labelFreeExploration]++
		}
	}
	return e.slicesFromOrdered([]string{labelInRoute, labelFreeExploration}, counts, len(activities))
}

// courseDistributionByRoute groups rows by their trimmed route text, so
// spelling variants of an AI route stay separate buckets. Only rows without
// a route share one bucket.
func (e *Engine) courseDistributionByRoute(activities []model.LearningActivity) []Slice {
	counts := make(map[string]int)
	for _, a := range activities {
		name := NoRouteLabel
		if HasRoute(a.Route) {
			name = strings.TrimSpace(a.Route)
		}
		counts[name]++
	}
	ranked := rank(counts, 0)
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
	}
	return e.slicesFromOrdered(names, counts, len(activities))
}

func scatter(profiles []model.LearningProfile) []ScatterPoint {
	out := make([]ScatterPoint, 0, len(profiles))
	for _, p := range profiles {
		progress := p.RouteProgress * 100
		if progress == 0 && p.CoursesCertified == 0 {
			continue
		}
		out = append(out, ScatterPoint{
			Email:            p.Email,
			Name:             p.Name,
			ProgressInRoute:  round2(progress),
			CertifiedCourses: p.CoursesCertified,
			Quadrant:         ClassifyQuadrant(progress, p.CoursesCertified),
		})
	}
	return out
}

func topCompaniesByLicensedUsers(view *model.Dataset, ix *model.Index) []CompanyRank {
	out := make([]CompanyRank, 0)
	for _, c := range view.Companies {
		n := 0
		for email := range ix.EmailsForCompany(c.NIT, true) {
			if _, ok := ix.ProfilesByEmail[email]; ok {
				n++
			}
		}
		if n > 0 {
			out = append(out, CompanyRank{CompanyName: c.Name, NIT: c.NIT, Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CompanyName < out[j].CompanyName
	})
	if len(out) > leaderboardSize {
		out = out[:leaderboardSize]
	}
	return out
}

func topCompaniesByPartition(view *model.Dataset, ix *model.Index, kind RouteKind) []CompanyConsumption {
	out := make([]CompanyConsumption, 0)
	for _, c := range view.Companies {
		routes := make(map[string]int)
		courses := make(map[string]int)
		total := 0
		for email := range ix.EmailsForCompany(c.NIT, false) {
			for _, a := range ix.ActivitiesByEmail[email] {
				cat := ClassifyRoute(a.Route)
				if cat.Kind != kind {
					continue
				}
				total++
				routes[cat.Name]++
				if course := strings.TrimSpace(a.Course); course != "" {
					courses[course]++
				}
			}
		}
		if total == 0 {
			continue
		}
		topRoute, topCourse := top(routes), top(courses)
		out = append(out, CompanyConsumption{
			CompanyName:    c.Name,
			NIT:            c.NIT,
			Total:          total,
			TopRoute:       topRoute.Name,
			TopRouteCount:  topRoute.Count,
			TopCourse:      topCourse.Name,
			TopCourseCount: topCourse.Count,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].CompanyName < out[j].CompanyName
	})
	if len(out) > leaderboardSize {
		out = out[:leaderboardSize]
	}
	return out
}

func chamberConsumption(view *model.Dataset, ix *model.Index) []ChamberConsumption {
	out := make([]ChamberConsumption, 0)
	for _, ch := range view.Chambers {
		courses := make(map[string]int)
		routes := make(map[string]int)
		total := 0
		for email := range ix.EmailsForChamber(ch.ID) {
			for _, a := range ix.ActivitiesByEmail[email] {
				total++
				routes[ClassifyRoute(a.Route).Name]++
				if course := strings.TrimSpace(a.Course); course != "" {
					courses[course]++
				}
			}
		}
		if total == 0 {
			continue
		}
		out = append(out, ChamberConsumption{
			ChamberID:   ch.ID,
			ChamberName: ch.Name,
			Total:       total,
			TopCourses:  rank(courses, chamberTopSize),
			TopRoutes:   rank(routes, chamberTopSize),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].ChamberName < out[j].ChamberName
	})
	return out
}
