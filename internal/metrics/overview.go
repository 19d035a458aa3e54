package metrics

import (
	"sort"
	"time"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

const (
	labelCollaborators = "Colaboradores"
	labelCompanies     = "Empresas"
)

// OverviewParams filters the overview pipeline.
type OverviewParams struct {
	// DateRange restricts applications by submission time.
	DateRange *DateRange `json:"date_range,omitempty"`
	// Now anchors month-over-month variances and timeline labels. Zero
	// means the engine clock.
	Now time.Time `json:"now,omitempty"`
}

// TimelinePoint is the application count of one week.
type TimelinePoint struct {
	Week  string `json:"week"` // Monday, YYYY-MM-DD
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Overview is the license and application summary.
type Overview struct {
	LicensesUsed       int     `json:"licenses_used"`
	TotalLicenses      int     `json:"total_licenses"`
	LicensesPercentage float64 `json:"licenses_percentage"`

	TotalRequests         int     `json:"total_requests"`
	TotalCompanies        int     `json:"total_companies"`
	AvgRequestsPerCompany float64 `json:"avg_requests_per_company"`

	// Variances are nil when the previous month has no records.
	RequestsVariance  *float64 `json:"requests_variance"`
	CompaniesVariance *float64 `json:"companies_variance"`

	RequestsStatusData   []Slice         `json:"requests_status_data"`
	RequestsTypeData     []Slice         `json:"requests_type_data"`
	RequestsTimelineData []TimelinePoint `json:"requests_timeline_data"`
}

// Overview computes license utilization, application counts and breakdowns.
func (e *Engine) Overview(ds *model.Dataset, p OverviewParams) *Overview {
	now := e.reference(p.Now)
	out := &Overview{
		LicensesUsed: len(ds.Profiles),
	}

	for _, c := range ds.Chambers {
		out.TotalLicenses += c.LicenseQuota
	}
	out.LicensesPercentage = percentage(out.LicensesUsed, out.TotalLicenses)

	apps := make([]model.Application, 0, len(ds.Applications))
	for _, a := range ds.Applications {
		if p.DateRange.Contains(a.CreatedAt) {
			apps = append(apps, a)
		}
	}
	out.TotalRequests = len(apps)

	companyNITs := make(map[string]struct{}, len(ds.Companies))
	for _, c := range ds.Companies {
		if nit := model.NormalizeNIT(c.NIT); nit != "" {
			companyNITs[nit] = struct{}{}
		}
	}
	realCompanies := make(map[string]struct{})
	for _, a := range apps {
		nit := model.NormalizeNIT(a.CompanyNIT)
		if _, ok := companyNITs[nit]; ok {
			realCompanies[nit] = struct{}{}
		}
	}
	out.TotalCompanies = len(realCompanies)
	out.AvgRequestsPerCompany = ratio(float64(out.TotalRequests), out.TotalCompanies)

	appTimes := make([]time.Time, len(ds.Applications))
	for i, a := range ds.Applications {
		appTimes[i] = a.CreatedAt
	}
	out.RequestsVariance = e.monthOverMonth(appTimes, now)

	companyTimes := make([]time.Time, len(ds.Companies))
	for i, c := range ds.Companies {
		companyTimes[i] = c.CreatedAt
	}
	out.CompaniesVariance = e.monthOverMonth(companyTimes, now)

	out.RequestsStatusData = e.statusBreakdown(apps)
	out.RequestsTypeData = e.typeBreakdown(apps)
	out.RequestsTimelineData = e.weeklyTimeline(apps, now)

	return out
}

// monthOverMonth compares the current calendar month up to now against the
// whole previous calendar month.
func (e *Engine) monthOverMonth(times []time.Time, now time.Time) *float64 {
	curStart := startOfMonth(now)
	prevStart := curStart.AddDate(0, -1, 0)

	var cur, prev int
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		t = t.In(e.loc)
		switch {
		case !t.Before(curStart) && !t.After(now):
			cur++
		case !t.Before(prevStart) && t.Before(curStart):
			prev++
		}
	}
	return percentChange(cur, prev)
}

func (e *Engine) statusBreakdown(apps []model.Application) []Slice {
	counts := make(map[string]int)
	var order []string
	for _, a := range apps {
		label := a.StatusLabel()
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}
	return e.slicesFromOrdered(order, counts, len(apps))
}

func (e *Engine) typeBreakdown(apps []model.Application) []Slice {
	counts := map[string]int{labelCollaborators: 0, labelCompanies: 0}
	for _, a := range apps {
		if a.IsCollaborator {
			counts[labelCollaborators]++
		} else {
			counts[labelCompanies]++
		}
	}
	return e.slicesFromOrdered([]string{labelCollaborators, labelCompanies}, counts, len(apps))
}

func (e *Engine) weeklyTimeline(apps []model.Application, now time.Time) []TimelinePoint {
	buckets := make(map[time.Time]int)
	for _, a := range apps {
		if a.CreatedAt.IsZero() {
			continue
		}
		buckets[startOfWeek(a.CreatedAt.In(e.loc))]++
	}

	weeks := make([]time.Time, 0, len(buckets))
	for w := range buckets {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	out := make([]TimelinePoint, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, TimelinePoint{
			Week:  w.Format("2006-01-02"),
			Label: dayLabel(w, now),
			Count: buckets[w],
		})
	}
	return out
}
