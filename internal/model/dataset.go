package model

import "strings"

// Dataset is an immutable snapshot of every collection the dashboard reads.
// Consumers must not mutate the records; derived views are built as copies.
type Dataset struct {
	Applications []Application      `json:"applications"`
	Companies    []Company          `json:"companies"`
	Chambers     []Chamber          `json:"chambers"`
	Profiles     []LearningProfile  `json:"profiles"`
	Activities   []LearningActivity `json:"activities"`
}

// Clone returns a copy of the dataset with freshly allocated slices.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return &Dataset{}
	}
	return &Dataset{
		Applications: append([]Application(nil), d.Applications...),
		Companies:    append([]Company(nil), d.Companies...),
		Chambers:     append([]Chamber(nil), d.Chambers...),
		Profiles:     append([]LearningProfile(nil), d.Profiles...),
		Activities:   append([]LearningActivity(nil), d.Activities...),
	}
}

// NormalizeEmail lowercases and trims an email for use as a join key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeNIT trims a tax ID for use as a join key.
func NormalizeNIT(nit string) string {
	return strings.TrimSpace(nit)
}

// EmailSet is a set of normalized emails.
type EmailSet map[string]struct{}

// Add inserts an email after normalizing it. Empty emails are ignored.
func (s EmailSet) Add(email string) {
	if e := NormalizeEmail(email); e != "" {
		s[e] = struct{}{}
	}
}

// Has reports whether the normalized email is in the set.
func (s EmailSet) Has(email string) bool {
	_, ok := s[NormalizeEmail(email)]
	return ok
}

// Index holds lookup maps over a dataset so joins are map reads instead of
// repeated scans. Values point into the indexed dataset's slices.
type Index struct {
	CompaniesByNIT    map[string]*Company
	ChambersByID      map[string]*Chamber
	ApplicationsByNIT map[string][]*Application
	ProfilesByEmail   map[string]*LearningProfile
	ActivitiesByEmail map[string][]*LearningActivity
	emailsByChamber   map[string]EmailSet
}

// NewIndex builds the lookup maps for d.
func NewIndex(d *Dataset) *Index {
	ix := &Index{
		CompaniesByNIT:    make(map[string]*Company, len(d.Companies)),
		ChambersByID:      make(map[string]*Chamber, len(d.Chambers)),
		ApplicationsByNIT: make(map[string][]*Application),
		ProfilesByEmail:   make(map[string]*LearningProfile, len(d.Profiles)),
		ActivitiesByEmail: make(map[string][]*LearningActivity),
	}
	for i := range d.Companies {
		c := &d.Companies[i]
		if nit := NormalizeNIT(c.NIT); nit != "" {
			if _, dup := ix.CompaniesByNIT[nit]; !dup {
				ix.CompaniesByNIT[nit] = c
			}
		}
	}
	for i := range d.Chambers {
		ix.ChambersByID[d.Chambers[i].ID] = &d.Chambers[i]
	}
	for i := range d.Applications {
		a := &d.Applications[i]
		if nit := NormalizeNIT(a.CompanyNIT); nit != "" {
			ix.ApplicationsByNIT[nit] = append(ix.ApplicationsByNIT[nit], a)
		}
	}
	for i := range d.Profiles {
		p := &d.Profiles[i]
		if e := NormalizeEmail(p.Email); e != "" {
			if _, dup := ix.ProfilesByEmail[e]; !dup {
				ix.ProfilesByEmail[e] = p
			}
		}
	}
	for i := range d.Activities {
		a := &d.Activities[i]
		if e := NormalizeEmail(a.Email); e != "" {
			ix.ActivitiesByEmail[e] = append(ix.ActivitiesByEmail[e], a)
		}
	}
	ix.buildChamberEmails(d)
	return ix
}

// ChamberIDForApplication resolves the chamber an application belongs to:
// the collaborator chamber for collaborators, otherwise the chamber of the
// applicant's company. Returns "" when unresolved.
func (ix *Index) ChamberIDForApplication(a *Application) string {
	if a.IsCollaborator && a.CollaboratorChamberID != "" {
		return a.CollaboratorChamberID
	}
	if c, ok := ix.CompaniesByNIT[NormalizeNIT(a.CompanyNIT)]; ok {
		return c.ChamberID
	}
	return ""
}

// EmailsForChamber returns the emails of every application affiliated with
// the chamber. The returned set is shared and must not be modified.
func (ix *Index) EmailsForChamber(chamberID string) EmailSet {
	if set, ok := ix.emailsByChamber[chamberID]; ok {
		return set
	}
	return EmailSet{}
}

// EmailsForCompany returns the emails of the applications filed under nit.
// When approvedOnly is set, only approved applications count.
func (ix *Index) EmailsForCompany(nit string, approvedOnly bool) EmailSet {
	out := make(EmailSet)
	for _, a := range ix.ApplicationsByNIT[NormalizeNIT(nit)] {
		if approvedOnly && !a.IsApproved() {
			continue
		}
		out.Add(a.Email)
	}
	return out
}

func (ix *Index) buildChamberEmails(d *Dataset) {
	ix.emailsByChamber = make(map[string]EmailSet)
	for i := range d.Applications {
		a := &d.Applications[i]
		id := ix.ChamberIDForApplication(a)
		if id == "" {
			continue
		}
		set, ok := ix.emailsByChamber[id]
		if !ok {
			set = make(EmailSet)
			ix.emailsByChamber[id] = set
		}
		set.Add(a.Email)
	}
}
