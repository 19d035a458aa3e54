package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Copier is implemented by both Pool and pgx.Tx.
type Copier interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// CopyRows bulk-inserts rows into table with the COPY protocol.
func CopyRows(ctx context.Context, c Copier, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := c.CopyFrom(ctx, identifier(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: copy into %s", table)
	}
	return n, nil
}

// Upsert describes a keyed bulk write.
type Upsert struct {
	Table   string
	Columns []string
	Keys    []string // conflict target; must be a subset of Columns
}

// Validate checks that the upsert is well formed.
func (u Upsert) Validate() error {
	if len(u.Columns) == 0 {
		return eris.Errorf("db: upsert %s: no columns", u.Table)
	}
	if len(u.Keys) == 0 {
		return eris.Errorf("db: upsert %s: no conflict keys", u.Table)
	}
	cols := make(map[string]bool, len(u.Columns))
	for _, c := range u.Columns {
		cols[c] = true
	}
	for _, k := range u.Keys {
		if !cols[k] {
			return eris.Errorf("db: upsert %s: key %q is not a column", u.Table, k)
		}
	}
	return nil
}

// stagingTable is the per-transaction temp table rows are copied into.
func (u Upsert) stagingTable() string {
	return "_stage_" + strings.ReplaceAll(u.Table, ".", "_")
}

// mergeSQL renders the INSERT ... ON CONFLICT statement that moves staged
// rows into the target. Non-key columns are overwritten on conflict.
func (u Upsert) mergeSQL() string {
	keys := make(map[string]bool, len(u.Keys))
	for _, k := range u.Keys {
		keys[k] = true
	}
	var sets []string
	for _, c := range u.Columns {
		if keys[c] {
			continue
		}
		q := pgx.Identifier{c}.Sanitize()
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", q, q))
	}
	action := "DO NOTHING"
	if len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}
	cols := quoteList(u.Columns)
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) %s",
		identifier(u.Table).Sanitize(), cols, cols,
		pgx.Identifier{u.stagingTable()}.Sanitize(), quoteList(u.Keys), action)
}

// UpsertRows writes rows through a staging table inside tx so a re-run
// replaces existing records instead of failing on duplicate keys.
func UpsertRows(ctx context.Context, tx pgx.Tx, u Upsert, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := u.Validate(); err != nil {
		return 0, err
	}

	stage := pgx.Identifier{u.stagingTable()}.Sanitize()
	create := fmt.Sprintf("CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		stage, identifier(u.Table).Sanitize())
	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, eris.Wrapf(err, "db: upsert %s: create staging table", u.Table)
	}
	if _, err := CopyRows(ctx, tx, u.stagingTable(), u.Columns, rows); err != nil {
		return 0, eris.Wrapf(err, "db: upsert %s", u.Table)
	}
	tag, err := tx.Exec(ctx, u.mergeSQL())
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert %s: merge", u.Table)
	}
	return tag.RowsAffected(), nil
}

// identifier splits an optionally schema-qualified table name.
func identifier(table string) pgx.Identifier {
	return pgx.Identifier(strings.SplitN(table, ".", 2))
}

func quoteList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
