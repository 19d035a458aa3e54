package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Every connection to :memory: is a separate database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS camaras (
	id                    TEXT PRIMARY KEY,
	nombre                TEXT NOT NULL,
	nit                   TEXT,
	licencias_disponibles INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS empresas (
	id                         TEXT PRIMARY KEY,
	razon_social               TEXT NOT NULL,
	nit                        TEXT,
	sector                     TEXT,
	alcance_mercado            TEXT,
	camara_id                  TEXT,
	created_at                 DATETIME NOT NULL DEFAULT (datetime('now')),
	num_empleados              INTEGER,
	num_mujeres                INTEGER,
	ventas_ano_anterior        REAL,
	utilidad_ano_anterior      REAL,
	decidio_adoptar_ia         TEXT,
	invirtio_ia_2024           TEXT,
	monto_inversion_ia_2024    REAL,
	probabilidad_adopcion_12m  REAL,
	probabilidad_inversion_12m REAL,
	monto_proyectado_12m       REAL
);

CREATE TABLE IF NOT EXISTS solicitudes (
	id                    TEXT PRIMARY KEY,
	nombres_apellidos     TEXT,
	email                 TEXT,
	numero_documento      TEXT,
	celular               TEXT,
	estado                TEXT NOT NULL DEFAULT 'Pendiente',
	nit_empresa           TEXT,
	es_colaborador        INTEGER NOT NULL DEFAULT 0,
	camara_colaborador_id TEXT,
	created_at            DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS platzi_general (
	email                 TEXT PRIMARY KEY,
	nombre                TEXT,
	ruta                  TEXT,
	progreso_ruta         REAL,
	cursos_en_progreso    INTEGER,
	cursos_certificados   INTEGER,
	tiempo_total          REAL,
	fecha_activacion      DATETIME,
	fecha_inicio_licencia DATETIME,
	fecha_expiracion      DATETIME
);

CREATE TABLE IF NOT EXISTS platzi_seguimiento (
	email               TEXT NOT NULL,
	curso               TEXT NOT NULL,
	ruta                TEXT,
	progreso            REAL,
	tiempo_invertido    REAL,
	estado_curso        TEXT,
	fecha_certificacion DATETIME,
	PRIMARY KEY (email, curso)
);

CREATE INDEX IF NOT EXISTS idx_empresas_nit ON empresas(nit);
CREATE INDEX IF NOT EXISTS idx_empresas_camara_id ON empresas(camara_id);
CREATE INDEX IF NOT EXISTS idx_solicitudes_nit_empresa ON solicitudes(nit_empresa);
CREATE INDEX IF NOT EXISTS idx_platzi_seguimiento_ruta ON platzi_seguimiento(ruta);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadDataset reads all five tables concurrently.
func (s *SQLiteStore) LoadDataset(ctx context.Context) (*model.Dataset, error) {
	ds, err := loadDataset(ctx, s.each)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load dataset")
	}
	return ds, nil
}

func (s *SQLiteStore) each(ctx context.Context, query string, fn func(rowScanner) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return eris.Wrap(err, "query")
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return eris.Wrap(rows.Err(), "iterate rows")
}

// SaveDataset replaces rows by primary key in a single transaction.
func (s *SQLiteStore) SaveDataset(ctx context.Context, ds *model.Dataset) error {
	if ds == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, td := range tableRows(ds) {
		if len(td.rows) == 0 {
			continue
		}
		if err := insertRows(ctx, tx, td); err != nil {
			return eris.Wrapf(err, "sqlite: save %s", td.table.name)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit tx")
}

func insertRows(ctx context.Context, tx *sql.Tx, td tableData) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(td.table.columns)), ", ")
	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		td.table.name, strings.Join(td.table.columns, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return eris.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, row := range td.rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return eris.Wrap(err, "insert row")
		}
	}
	return nil
}
