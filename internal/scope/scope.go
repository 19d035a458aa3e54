// Package scope narrows a dataset to the rows an actor's role may see.
package scope

import (
	"strings"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

// Apply returns the subset of d visible to actor. Unrestricted roles get a
// copy of the full dataset. Chamber-scoped actors get only their chamber, its
// companies, the applications tied to those companies or filed directly as
// chamber collaborators, and the learning rows of those applicants. An
// unknown chamber yields an empty dataset.
func Apply(d *model.Dataset, actor model.Actor) *model.Dataset {
	if d == nil {
		return &model.Dataset{}
	}
	if actor.Role.Unrestricted() {
		return d.Clone()
	}

	chamber, ok := findChamber(d.Chambers, actor.ChamberName)
	if !ok || actor.Role != model.RoleChamber {
		return &model.Dataset{}
	}

	out := &model.Dataset{Chambers: []model.Chamber{chamber}}

	nits := make(map[string]struct{})
	for _, c := range d.Companies {
		if c.ChamberID != chamber.ID {
			continue
		}
		out.Companies = append(out.Companies, c)
		if nit := model.NormalizeNIT(c.NIT); nit != "" {
			nits[nit] = struct{}{}
		}
	}

	emails := make(model.EmailSet)
	for _, a := range d.Applications {
		_, companyMatch := nits[model.NormalizeNIT(a.CompanyNIT)]
		collaboratorMatch := a.IsCollaborator && a.CollaboratorChamberID == chamber.ID
		if !companyMatch && !collaboratorMatch {
			continue
		}
		out.Applications = append(out.Applications, a)
		emails.Add(a.Email)
	}

	for _, p := range d.Profiles {
		if emails.Has(p.Email) {
			out.Profiles = append(out.Profiles, p)
		}
	}
	for _, a := range d.Activities {
		if emails.Has(a.Email) {
			out.Activities = append(out.Activities, a)
		}
	}

	return out
}

func findChamber(chambers []model.Chamber, name string) (model.Chamber, bool) {
	want := strings.TrimSpace(name)
	if want == "" {
		return model.Chamber{}, false
	}
	for _, c := range chambers {
		if strings.EqualFold(strings.TrimSpace(c.Name), want) {
			return c, true
		}
	}
	return model.Chamber{}, false
}
