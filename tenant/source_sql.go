package tenant

import (
	"context"
	"database/sql"
	"fmt"
)

// sqlSource loads tenant documents stored as a JSON column in a SQL table.
// PostgresSource and MySQLSource both wrap this with their respective
// database/sql drivers; the query logic is identical once a *sql.DB is in
// hand.
type sqlSource struct {
	DB        *sql.DB
	Table     string
	IDColumn  string
	DocColumn string
}

func (s *sqlSource) Load(ctx context.Context, id string) ([]byte, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", s.DocColumn, s.Table, s.IDColumn)
	var doc []byte
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&doc); err != nil {
		return nil, fmt.Errorf("tenant sql source: load %s: %w", id, err)
	}
	return doc, nil
}

func (s *sqlSource) ListIDs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", s.IDColumn, s.Table)
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("tenant sql source: list ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("tenant sql source: scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PostgresSource loads tenant documents from a PostgreSQL table via lib/pq.
type PostgresSource struct{ *sqlSource }

// NewPostgresSource constructs a PostgresSource. db must already be opened
// with the "postgres" (lib/pq) driver.
func NewPostgresSource(db *sql.DB, table, idColumn, docColumn string) *PostgresSource {
	return &PostgresSource{&sqlSource{DB: db, Table: table, IDColumn: idColumn, DocColumn: docColumn}}
}

// MySQLSource loads tenant documents from a MySQL table via go-sql-driver.
type MySQLSource struct{ *sqlSource }

// NewMySQLSource constructs a MySQLSource. db must already be opened with
// the "mysql" driver. MySQL uses "?" placeholders rather than "$1"; the
// query is rebuilt accordingly.
func NewMySQLSource(db *sql.DB, table, idColumn, docColumn string) *MySQLSource {
	return &MySQLSource{&sqlSource{DB: db, Table: table, IDColumn: idColumn, DocColumn: docColumn}}
}

func (s *MySQLSource) Load(ctx context.Context, id string) ([]byte, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", s.DocColumn, s.Table, s.IDColumn)
	var doc []byte
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&doc); err != nil {
		return nil, fmt.Errorf("tenant mysql source: load %s: %w", id, err)
	}
	return doc, nil
}
