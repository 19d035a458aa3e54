package metrics

import (
	"sort"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

// ChamberRank is one row of the chamber adoption ranking.
type ChamberRank struct {
	ChamberID       string  `json:"chamber_id"`
	ChamberName     string  `json:"chamber_name"`
	Companies       int     `json:"companies"`
	Learners        int     `json:"learners"`
	AverageProgress float64 `json:"average_progress"` // 0–100, learners with progress > 0
}

// Business is the business-environment bundle built from company surveys.
type Business struct {
	ChamberRanking []ChamberRank `json:"chamber_ranking"`
	TotalCompanies int           `json:"total_companies"`

	AverageEmployees         float64 `json:"average_employees"`
	FemaleEmployeePercentage float64 `json:"female_employee_percentage"`
	AverageProfit            float64 `json:"average_profit"`
	AverageSales             float64 `json:"average_sales"`

	AIAdoptionRate          float64 `json:"ai_adoption_rate"`
	AIInvestors             int     `json:"ai_investors"`
	AIInvestment2024Total   float64 `json:"ai_investment_2024_total"`
	AIInvestment2024Average float64 `json:"ai_investment_2024_average"`

	AverageAdoptionProbability   float64 `json:"average_adoption_probability"`
	AverageInvestmentProbability float64 `json:"average_investment_probability"`
	ProjectedInvestors           int     `json:"projected_investors"`
	ProjectedInvestmentTotal     float64 `json:"projected_investment_total"`
	ProjectedInvestmentAverage   float64 `json:"projected_investment_average"`
}

// scaledMoney converts the stored scaled-integer amounts to currency units.
const scaledMoney = 100

// meanAcc averages only the values it is given, so missing answers never
// inflate the denominator.
type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v float64) {
	m.sum += v
	m.n++
}

func (m *meanAcc) addPtr(v *float64) {
	if v != nil {
		m.add(*v)
	}
}

func (m meanAcc) mean() float64 {
	return ratio(m.sum, m.n)
}

// Business computes the chamber ranking and company survey aggregates.
func (e *Engine) Business(ds *model.Dataset) *Business {
	ix := model.NewIndex(ds)
	out := &Business{
		TotalCompanies: len(ds.Companies),
		ChamberRanking: chamberRanking(ds, ix),
	}

	var employees, profit, sales, adoptionProb, investmentProb, investment, projected meanAcc
	var femaleSum, staffSum, adopters int

	for _, c := range ds.Companies {
		if c.Employees != nil {
			employees.add(float64(*c.Employees))
			if c.FemaleEmployees != nil {
				femaleSum += *c.FemaleEmployees
				staffSum += *c.Employees
			}
		}
		if c.Profit != nil {
			profit.add(*c.Profit / scaledMoney)
		}
		if c.Sales != nil {
			sales.add(*c.Sales / scaledMoney)
		}
		if model.IsYes(c.DecidedAIAdoption) {
			adopters++
		}
		if model.IsYes(c.InvestedAI2024) && c.AIInvestment2024 != nil {
			investment.add(*c.AIInvestment2024)
		}
		adoptionProb.addPtr(c.AdoptionProbability12m)
		investmentProb.addPtr(c.InvestmentProbability12m)
		if c.ProjectedInvestment12m != nil && *c.ProjectedInvestment12m > 0 {
			projected.add(*c.ProjectedInvestment12m)
		}
	}

	out.AverageEmployees = employees.mean()
	out.FemaleEmployeePercentage = percentage(femaleSum, staffSum)
	out.AverageProfit = profit.mean()
	out.AverageSales = sales.mean()
	out.AIAdoptionRate = percentage(adopters, len(ds.Companies))

	out.AIInvestors = investment.n
	out.AIInvestment2024Total = investment.sum
	out.AIInvestment2024Average = investment.mean()

	out.AverageAdoptionProbability = adoptionProb.mean()
	out.AverageInvestmentProbability = investmentProb.mean()
	out.ProjectedInvestors = projected.n
	out.ProjectedInvestmentTotal = projected.sum
	out.ProjectedInvestmentAverage = projected.mean()

	return out
}

func chamberRanking(ds *model.Dataset, ix *model.Index) []ChamberRank {
	companiesByChamber := make(map[string][]model.Company)
	for _, c := range ds.Companies {
		if c.ChamberID != "" {
			companiesByChamber[c.ChamberID] = append(companiesByChamber[c.ChamberID], c)
		}
	}

	out := make([]ChamberRank, 0)
	for _, ch := range ds.Chambers {
		companies := companiesByChamber[ch.ID]
		if len(companies) == 0 {
			continue
		}
		emails := make(model.EmailSet)
		for _, c := range companies {
			for email := range ix.EmailsForCompany(c.NIT, false) {
				emails[email] = struct{}{}
			}
		}
		var progress meanAcc
		learners := 0
		for email := range emails {
			p, ok := ix.ProfilesByEmail[email]
			if !ok {
				continue
			}
			learners++
			if p.RouteProgress > 0 {
				progress.add(p.RouteProgress)
			}
		}
		out = append(out, ChamberRank{
			ChamberID:       ch.ID,
			ChamberName:     ch.Name,
			Companies:       len(companies),
			Learners:        learners,
			AverageProgress: round2(progress.mean() * 100),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Companies != out[j].Companies {
			return out[i].Companies > out[j].Companies
		}
		return out[i].ChamberName < out[j].ChamberName
	})
	return out
}
