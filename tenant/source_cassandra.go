package tenant

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"
)

// CassandraSource loads tenant documents from a Cassandra table holding
// one JSON-blob column per tenant row.
type CassandraSource struct {
	Session   *gocql.Session
	Table     string
	IDColumn  string
	DocColumn string
}

// NewCassandraSource constructs a CassandraSource backed by session.
func NewCassandraSource(session *gocql.Session, table, idColumn, docColumn string) *CassandraSource {
	return &CassandraSource{Session: session, Table: table, IDColumn: idColumn, DocColumn: docColumn}
}

func (c *CassandraSource) Load(ctx context.Context, id string) ([]byte, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", c.DocColumn, c.Table, c.IDColumn)
	var doc []byte
	if err := c.Session.Query(query, id).WithContext(ctx).Scan(&doc); err != nil {
		return nil, fmt.Errorf("tenant cassandra source: load %s: %w", id, err)
	}
	return doc, nil
}

func (c *CassandraSource) ListIDs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", c.IDColumn, c.Table)
	iter := c.Session.Query(query).WithContext(ctx).Iter()

	var ids []string
	var id string
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("tenant cassandra source: list ids: %w", err)
	}
	return ids, nil
}
