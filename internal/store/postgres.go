package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/camaras-ia/licencias-cli/internal/db"
	"github.com/camaras-ia/licencias-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS camaras (
	id                    TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	nombre                TEXT NOT NULL,
	nit                   TEXT,
	licencias_disponibles INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS empresas (
	id                         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	razon_social               TEXT NOT NULL,
	nit                        TEXT,
	sector                     TEXT,
	alcance_mercado            TEXT,
	camara_id                  TEXT,
	created_at                 TIMESTAMPTZ NOT NULL DEFAULT now(),
	num_empleados              INTEGER,
	num_mujeres                INTEGER,
	ventas_ano_anterior        DOUBLE PRECISION,
	utilidad_ano_anterior      DOUBLE PRECISION,
	decidio_adoptar_ia         TEXT,
	invirtio_ia_2024           TEXT,
	monto_inversion_ia_2024    DOUBLE PRECISION,
	probabilidad_adopcion_12m  DOUBLE PRECISION,
	probabilidad_inversion_12m DOUBLE PRECISION,
	monto_proyectado_12m       DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS solicitudes (
	id                    TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	nombres_apellidos     TEXT,
	email                 TEXT,
	numero_documento      TEXT,
	celular               TEXT,
	estado                TEXT NOT NULL DEFAULT 'Pendiente',
	nit_empresa           TEXT,
	es_colaborador        BOOLEAN NOT NULL DEFAULT false,
	camara_colaborador_id TEXT,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS platzi_general (
	email                 TEXT PRIMARY KEY,
	nombre                TEXT,
	ruta                  TEXT,
	progreso_ruta         DOUBLE PRECISION,
	cursos_en_progreso    INTEGER,
	cursos_certificados   INTEGER,
	tiempo_total          DOUBLE PRECISION,
	fecha_activacion      TIMESTAMPTZ,
	fecha_inicio_licencia TIMESTAMPTZ,
	fecha_expiracion      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS platzi_seguimiento (
	email               TEXT NOT NULL,
	curso               TEXT NOT NULL,
	ruta                TEXT,
	progreso            DOUBLE PRECISION,
	tiempo_invertido    DOUBLE PRECISION,
	estado_curso        TEXT,
	fecha_certificacion TIMESTAMPTZ,
	PRIMARY KEY (email, curso)
);

CREATE INDEX IF NOT EXISTS idx_empresas_nit ON empresas(nit);
CREATE INDEX IF NOT EXISTS idx_empresas_camara_id ON empresas(camara_id);
CREATE INDEX IF NOT EXISTS idx_solicitudes_nit_empresa ON solicitudes(nit_empresa);
CREATE INDEX IF NOT EXISTS idx_solicitudes_email ON solicitudes(lower(email));
CREATE INDEX IF NOT EXISTS idx_platzi_seguimiento_ruta ON platzi_seguimiento(ruta);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// LoadDataset reads all five tables concurrently on separate pool connections.
func (s *PostgresStore) LoadDataset(ctx context.Context) (*model.Dataset, error) {
	start := time.Now()
	ds, err := loadDataset(ctx, s.each)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load dataset")
	}
	zap.L().Debug("postgres: dataset loaded",
		zap.Int("applications", len(ds.Applications)),
		zap.Int("companies", len(ds.Companies)),
		zap.Int("profiles", len(ds.Profiles)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

func (s *PostgresStore) each(ctx context.Context, query string, fn func(rowScanner) error) error {
	rows, err := s.pool.Query(ctx, query)
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

// SaveDataset upserts ds in a single transaction.
func (s *PostgresStore) SaveDataset(ctx context.Context, ds *model.Dataset) error {
	if ds == nil {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, td := range tableRows(ds) {
		u := db.Upsert{Table: td.table.name, Columns: td.table.columns, Keys: td.table.keys}
		n, err := db.UpsertRows(ctx, tx, u, td.rows)
		if err != nil {
			return eris.Wrap(err, "postgres: save dataset")
		}
		zap.L().Debug("postgres: table saved", zap.String("table", td.table.name), zap.Int64("rows", n))
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit tx")
}
