package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

// Table names as created by Migrate.
const (
	TableChambers     = "camaras"
	TableCompanies    = "empresas"
	TableApplications = "solicitudes"
	TableProfiles     = "platzi_general"
	TableActivities   = "platzi_seguimiento"
)

// table describes one source table: its write columns, primary key and the
// read query whose column order matches the scan function.
type table struct {
	name    string
	columns []string
	keys    []string
	query   string
}

var (
	chamberTable = table{
		name:    TableChambers,
		columns: []string{"id", "nombre", "nit", "licencias_disponibles"},
		keys:    []string{"id"},
		query: `SELECT id, nombre, COALESCE(nit, ''), COALESCE(licencias_disponibles, 0)
FROM camaras ORDER BY nombre, id`,
	}

	companyTable = table{
		name: TableCompanies,
		columns: []string{
			"id", "razon_social", "nit", "sector", "alcance_mercado", "camara_id", "created_at",
			"num_empleados", "num_mujeres", "ventas_ano_anterior", "utilidad_ano_anterior",
			"decidio_adoptar_ia", "invirtio_ia_2024", "monto_inversion_ia_2024",
			"probabilidad_adopcion_12m", "probabilidad_inversion_12m", "monto_proyectado_12m",
		},
		keys: []string{"id"},
		query: `SELECT id, razon_social, COALESCE(nit, ''), COALESCE(sector, ''), COALESCE(alcance_mercado, ''),
	COALESCE(camara_id, ''), created_at, num_empleados, num_mujeres, ventas_ano_anterior, utilidad_ano_anterior,
	COALESCE(decidio_adoptar_ia, ''), COALESCE(invirtio_ia_2024, ''), monto_inversion_ia_2024,
	probabilidad_adopcion_12m, probabilidad_inversion_12m, monto_proyectado_12m
FROM empresas ORDER BY created_at, id`,
	}

	applicationTable = table{
		name: TableApplications,
		columns: []string{
			"id", "nombres_apellidos", "email", "numero_documento", "celular", "estado",
			"nit_empresa", "es_colaborador", "camara_colaborador_id", "created_at",
		},
		keys: []string{"id"},
		query: `SELECT id, COALESCE(nombres_apellidos, ''), COALESCE(email, ''), COALESCE(numero_documento, ''),
	COALESCE(celular, ''), COALESCE(estado, ''), COALESCE(nit_empresa, ''), COALESCE(es_colaborador, false),
	COALESCE(camara_colaborador_id, ''), created_at
FROM solicitudes ORDER BY created_at, id`,
	}

	profileTable = table{
		name: TableProfiles,
		columns: []string{
			"email", "nombre", "ruta", "progreso_ruta", "cursos_en_progreso", "cursos_certificados",
			"tiempo_total", "fecha_activacion", "fecha_inicio_licencia", "fecha_expiracion",
		},
		keys: []string{"email"},
		query: `SELECT email, COALESCE(nombre, ''), COALESCE(ruta, ''), COALESCE(progreso_ruta, 0),
	COALESCE(cursos_en_progreso, 0), COALESCE(cursos_certificados, 0), COALESCE(tiempo_total, 0),
	fecha_activacion, fecha_inicio_licencia, fecha_expiracion
FROM platzi_general ORDER BY email`,
	}

	activityTable = table{
		name: TableActivities,
		columns: []string{
			"email", "curso", "ruta", "progreso", "tiempo_invertido", "estado_curso", "fecha_certificacion",
		},
		keys: []string{"email", "curso"},
		query: `SELECT email, curso, COALESCE(ruta, ''), COALESCE(progreso, 0), COALESCE(tiempo_invertido, 0),
	COALESCE(estado_curso, ''), fecha_certificacion
FROM platzi_seguimiento ORDER BY email, curso`,
	}
)

// rowScanner is satisfied by pgx.Rows and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// forEachRow runs query and calls fn once per result row.
type forEachRow func(ctx context.Context, query string, fn func(rowScanner) error) error

// loadDataset reads the five tables concurrently through each.
func loadDataset(ctx context.Context, each forEachRow) (*model.Dataset, error) {
	var ds model.Dataset
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return each(gctx, chamberTable.query, func(r rowScanner) error {
			c, err := scanChamber(r)
			if err != nil {
				return err
			}
			ds.Chambers = append(ds.Chambers, c)
			return nil
		})
	})
	g.Go(func() error {
		return each(gctx, companyTable.query, func(r rowScanner) error {
			c, err := scanCompany(r)
			if err != nil {
				return err
			}
			ds.Companies = append(ds.Companies, c)
			return nil
		})
	})
	g.Go(func() error {
		return each(gctx, applicationTable.query, func(r rowScanner) error {
			a, err := scanApplication(r)
			if err != nil {
				return err
			}
			ds.Applications = append(ds.Applications, a)
			return nil
		})
	})
	g.Go(func() error {
		return each(gctx, profileTable.query, func(r rowScanner) error {
			p, err := scanProfile(r)
			if err != nil {
				return err
			}
			ds.Profiles = append(ds.Profiles, p)
			return nil
		})
	})
	g.Go(func() error {
		return each(gctx, activityTable.query, func(r rowScanner) error {
			a, err := scanActivity(r)
			if err != nil {
				return err
			}
			ds.Activities = append(ds.Activities, a)
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ds, nil
}

func scanChamber(r rowScanner) (model.Chamber, error) {
	var c model.Chamber
	err := r.Scan(&c.ID, &c.Name, &c.NIT, &c.LicenseQuota)
	return c, eris.Wrap(err, "scan chamber")
}

func scanCompany(r rowScanner) (model.Company, error) {
	var c model.Company
	var decided, invested string
	err := r.Scan(&c.ID, &c.Name, &c.NIT, &c.Sector, &c.MarketReach, &c.ChamberID, &c.CreatedAt,
		&c.Employees, &c.FemaleEmployees, &c.Sales, &c.Profit,
		&decided, &invested, &c.AIInvestment2024,
		&c.AdoptionProbability12m, &c.InvestmentProbability12m, &c.ProjectedInvestment12m)
	if err != nil {
		return c, eris.Wrap(err, "scan company")
	}
	c.DecidedAIAdoption = model.ParseYesNo(decided)
	c.InvestedAI2024 = model.ParseYesNo(invested)
	return c, nil
}

func scanApplication(r rowScanner) (model.Application, error) {
	var a model.Application
	var status string
	err := r.Scan(&a.ID, &a.FullName, &a.Email, &a.DocumentNumber, &a.Phone, &status,
		&a.CompanyNIT, &a.IsCollaborator, &a.CollaboratorChamberID, &a.CreatedAt)
	a.Status = model.ApplicationStatus(strings.TrimSpace(status))
	return a, eris.Wrap(err, "scan application")
}

func scanProfile(r rowScanner) (model.LearningProfile, error) {
	var p model.LearningProfile
	err := r.Scan(&p.Email, &p.Name, &p.Route, &p.RouteProgress, &p.CoursesInProgress,
		&p.CoursesCertified, &p.TimeSpentSeconds, &p.ActivatedAt, &p.LicenseStartAt, &p.LicenseExpiresAt)
	return p, eris.Wrap(err, "scan learning profile")
}

func scanActivity(r rowScanner) (model.LearningActivity, error) {
	var a model.LearningActivity
	err := r.Scan(&a.Email, &a.Course, &a.Route, &a.Progress, &a.TimeInvestedSeconds, &a.Status, &a.CertifiedAt)
	return a, eris.Wrap(err, "scan learning activity")
}

// yesNoText is the inverse of model.ParseYesNo for persistence.
func yesNoText(b *bool) *string {
	if b == nil {
		return nil
	}
	s := "No"
	if *b {
		s = "Sí"
	}
	return &s
}

type tableData struct {
	table table
	rows  [][]any
}

// tableRows renders ds as write rows in the column order of each table.
// Tables are returned parents first so foreign references resolve.
func tableRows(ds *model.Dataset) []tableData {
	chambers := make([][]any, 0, len(ds.Chambers))
	for _, c := range ds.Chambers {
		chambers = append(chambers, []any{c.ID, c.Name, c.NIT, c.LicenseQuota})
	}
	companies := make([][]any, 0, len(ds.Companies))
	for _, c := range ds.Companies {
		companies = append(companies, []any{
			c.ID, c.Name, c.NIT, c.Sector, c.MarketReach, nullIfEmpty(c.ChamberID), c.CreatedAt.UTC(),
			c.Employees, c.FemaleEmployees, c.Sales, c.Profit,
			yesNoText(c.DecidedAIAdoption), yesNoText(c.InvestedAI2024), c.AIInvestment2024,
			c.AdoptionProbability12m, c.InvestmentProbability12m, c.ProjectedInvestment12m,
		})
	}
	apps := make([][]any, 0, len(ds.Applications))
	for _, a := range ds.Applications {
		apps = append(apps, []any{
			a.ID, a.FullName, a.Email, a.DocumentNumber, a.Phone, a.StatusLabel(),
			a.CompanyNIT, a.IsCollaborator, nullIfEmpty(a.CollaboratorChamberID), a.CreatedAt.UTC(),
		})
	}
	profiles := make([][]any, 0, len(ds.Profiles))
	for _, p := range ds.Profiles {
		profiles = append(profiles, []any{
			p.Email, p.Name, p.Route, p.RouteProgress, p.CoursesInProgress, p.CoursesCertified,
			p.TimeSpentSeconds, utcPtr(p.ActivatedAt), utcPtr(p.LicenseStartAt), utcPtr(p.LicenseExpiresAt),
		})
	}
	activities := make([][]any, 0, len(ds.Activities))
	for _, a := range ds.Activities {
		activities = append(activities, []any{
			a.Email, a.Course, a.Route, a.Progress, a.TimeInvestedSeconds, a.Status, utcPtr(a.CertifiedAt),
		})
	}

	out := []tableData{
		{chamberTable, chambers},
		{companyTable, companies},
		{applicationTable, apps},
		{profileTable, profiles},
		{activityTable, activities},
	}
	for i := range out {
		out[i].rows = dedupeByKey(out[i].table, out[i].rows)
	}
	return out
}

// dedupeByKey keeps one row per primary key, the last one given, at the
// position of the key's first occurrence. A batch upsert cannot touch the
// same key twice.
func dedupeByKey(t table, rows [][]any) [][]any {
	idx := make([]int, len(t.keys))
	for i, k := range t.keys {
		idx[i] = slices.Index(t.columns, k)
	}

	seen := make(map[string]int, len(rows))
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, len(idx))
		for i, col := range idx {
			parts[i] = fmt.Sprint(row[col])
		}
		key := strings.Join(parts, "\x00")
		if pos, ok := seen[key]; ok {
			out[pos] = row
			continue
		}
		seen[key] = len(out)
		out = append(out, row)
	}
	return out
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
