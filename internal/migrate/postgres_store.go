package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the server-side target. Encoded columns are jsonb and
// booleans are native, so rows are written as decoded.
type PostgresStore struct {
	pool   *pgxpool.Pool
	tables []Table
}

// OpenPostgres builds a pool without connecting; the runner's preflight is
// the connectivity check.
func OpenPostgres(ctx context.Context, url string, tables []Table) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return &PostgresStore{pool: pool, tables: tables}, nil
}

// ApplySchema runs the golang-migrate files under path against url.
func ApplySchema(path, url string) error {
	m, err := migrate.New("file://"+path, url)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) FindMany(ctx context.Context, table string) ([]Row, error) {
	if _, err := checkTable(s.tables, table); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT * FROM `+ident(table)+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, table string, row Row) error {
	t, err := checkTable(s.tables, table)
	if err != nil {
		return err
	}
	cols, err := columns(row, "")
	if err != nil {
		return err
	}
	args, err := pgArgs(t, row, cols)
	if err != nil {
		return err
	}
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = ident(c)
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		ident(table), strings.Join(names, ", "), strings.Join(marks, ", "))
	_, err = s.pool.Exec(ctx, q, args...)
	return err
}

func (s *PostgresStore) Update(ctx context.Context, table, id string, row Row) error {
	t, err := checkTable(s.tables, table)
	if err != nil {
		return err
	}
	cols, err := columns(row, "id")
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}
	args, err := pgArgs(t, row, cols)
	if err != nil {
		return err
	}
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", ident(c), i+1)
	}
	args = append(args, id)
	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, ident(table), strings.Join(sets, ", "), len(args))
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, table string) (int64, error) {
	if _, err := checkTable(s.tables, table); err != nil {
		return 0, err
	}
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+ident(table)).Scan(&n)
	return n, err
}

func ident(name string) string { return pgx.Identifier{name}.Sanitize() }

// pgArgs binds row values for cols. Values of JSON fields are marshalled to
// bytes first: pgx writes a Go string to jsonb verbatim, so a decoded JSON
// string document would otherwise reach the server unquoted.
func pgArgs(t Table, row Row, cols []string) ([]any, error) {
	args := make([]any, len(cols))
	for i, c := range cols {
		v := row[c]
		if f, ok := t.field(c); ok && f.Codec == JSONText && v != nil {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name, c, err)
			}
			v = b
		}
		args[i] = v
	}
	return args, nil
}
