package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore reads and writes the legacy embedded database. Structured
// values are written back as JSON text and booleans as integers.
type SQLiteStore struct {
	db     *sqlx.DB
	tables []Table
}

func NewSQLiteStore(db *sqlx.DB, tables []Table) *SQLiteStore {
	return &SQLiteStore{db: db, tables: tables}
}

func OpenSQLite(dsn string, tables []Table) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return NewSQLiteStore(db, tables), nil
}

func (s *SQLiteStore) DB() *sqlx.DB { return s.db }
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) FindMany(ctx context.Context, table string) ([]Row, error) {
	if _, err := checkTable(s.tables, table); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryxContext(ctx, `SELECT * FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			return nil, err
		}
		out = append(out, Row(m))
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Create(ctx context.Context, table string, row Row) error {
	t, err := checkTable(s.tables, table)
	if err != nil {
		return err
	}
	cols, err := columns(row, "")
	if err != nil {
		return err
	}
	args, err := encodeArgs(t, row, cols)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %s(%s) VALUES(%s)`,
		table, strings.Join(cols, ","), strings.TrimSuffix(strings.Repeat("?,", len(cols)), ","))
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *SQLiteStore) Update(ctx context.Context, table, id string, row Row) error {
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
	args, err := encodeArgs(t, row, cols)
	if err != nil {
		return err
	}
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + "=?"
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET `+strings.Join(sets, ",")+` WHERE id=?`, append(args, id)...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context, table string) (int64, error) {
	if _, err := checkTable(s.tables, table); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table)
	return n, err
}

func encodeArgs(t Table, row Row, cols []string) ([]any, error) {
	codecs := make(map[string]Codec, len(t.Fields))
	for _, f := range t.Fields {
		codecs[f.Name] = f.Codec
	}
	args := make([]any, len(cols))
	for i, c := range cols {
		v := row[c]
		if codec, ok := codecs[c]; ok {
			enc, err := codec.Encode(v)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", c, err)
			}
			v = enc
		}
		args[i] = v
	}
	return args, nil
}
