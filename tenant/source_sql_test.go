package tenant

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPostgresSourceLoadAndListIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	src := NewPostgresSource(db, "tenants", "id", "document")

	mock.ExpectQuery("SELECT document FROM tenants WHERE id = \\$1").
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow([]byte(`{"name":"Acme"}`)))

	doc, err := src.Load(context.Background(), "acme")
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Acme"}`, string(doc))

	mock.ExpectQuery("SELECT id FROM tenants").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("acme").AddRow("globex"))

	ids, err := src.ListIDs(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"acme", "globex"}, ids)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSourceLoadUsesQuestionMarkPlaceholder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	src := NewMySQLSource(db, "tenants", "id", "document")

	mock.ExpectQuery("SELECT document FROM tenants WHERE id = \\?").
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow([]byte(`{"name":"Acme"}`)))

	doc, err := src.Load(context.Background(), "acme")
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Acme"}`, string(doc))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSourceLoadMissingTenant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	src := NewPostgresSource(db, "tenants", "id", "document")
	mock.ExpectQuery("SELECT document FROM tenants WHERE id = \\$1").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err = src.Load(context.Background(), "nope")
	require.Error(t, err)
}
