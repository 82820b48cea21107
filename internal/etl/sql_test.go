package etl

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/BartekS5/salesflow/internal/config"
	"github.com/BartekS5/salesflow/pkg/logger"
	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mysqlConfig() config.Database {
	return config.Database{
		Driver: "mysql",
		Host:   "localhost",
		Port:   3306,
		Name:   "openlineage_demo",
		Table:  "sales_data",
	}
}

// mockOpener hands out a fresh sqlmock connection per call and records the
// mocks so expectations can be set and checked.
type mockOpener struct {
	t     *testing.T
	mocks []sqlmock.Sqlmock
	setup func(sqlmock.Sqlmock)
}

func (m *mockOpener) open(context.Context) (*sql.DB, error) {
	db, mock, err := sqlmock.New()
	require.NoError(m.t, err)
	m.mocks = append(m.mocks, mock)
	if m.setup != nil {
		m.setup(mock)
	}
	return db, nil
}

func (m *mockOpener) verify() {
	for _, mock := range m.mocks {
		assert.NoError(m.t, mock.ExpectationsWereMet())
	}
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestSchemaInitializer_Idempotent(t *testing.T) {
	d, _ := DialectFor("mysql")
	opener := &mockOpener{t: t, setup: func(mock sqlmock.Sqlmock) {
		mock.ExpectExec(q(d.CreateTableSQL("sales_data"))).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectClose()
	}}

	init, err := NewSQLSchemaInitializer(mysqlConfig(), opener.open)
	require.NoError(t, err)

	require.NoError(t, init.Init(context.Background()))
	require.NoError(t, init.Init(context.Background()))
	assert.Len(t, opener.mocks, 2)
	opener.verify()

	_, outputs := init.Datasets()
	require.Len(t, outputs, 1)
	assert.Equal(t, "mysql://localhost:3306", outputs[0].Namespace)
	assert.Equal(t, "openlineage_demo.sales_data", outputs[0].Name)
}

func TestSchemaInitializer_Errors(t *testing.T) {
	opener := &mockOpener{t: t, setup: func(mock sqlmock.Sqlmock) {
		mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("access denied"))
		mock.ExpectClose()
	}}
	init, err := NewSQLSchemaInitializer(mysqlConfig(), opener.open)
	require.NoError(t, err)

	err = init.Init(context.Background())
	assert.ErrorIs(t, err, ErrDatabase)
	assert.Contains(t, err.Error(), "access denied")
	opener.verify()

	failing := func(context.Context) (*sql.DB, error) { return nil, errors.New("dial tcp: refused") }
	init, err = NewSQLSchemaInitializer(mysqlConfig(), failing)
	require.NoError(t, err)
	assert.ErrorIs(t, init.Init(context.Background()), ErrDatabase)

	cfg := mysqlConfig()
	cfg.Table = "sales; DROP TABLE users"
	_, err = NewSQLSchemaInitializer(cfg, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func rows(n int) []models.Row {
	out := make([]models.Row, n)
	for i := range out {
		out[i] = sampleRow("TRX-" + string(rune('A'+i%26)) + "00000")
	}
	return out
}

func TestSQLLoader_Load(t *testing.T) {
	d, _ := DialectFor("mysql")
	batch := rows(3)

	opener := &mockOpener{t: t, setup: func(mock sqlmock.Sqlmock) {
		mock.ExpectBegin()
		mock.ExpectExec(q("DELETE FROM sales_data")).WillReturnResult(sqlmock.NewResult(0, 1000))
		for range batch {
			mock.ExpectExec(q(d.InsertSQL("sales_data"))).
				WithArgs(sqlmock.AnyArg(), "Customer-001", "PRD-001", int64(3), sqlmock.AnyArg(),
					sqlmock.AnyArg(), "CASH", "JAKARTA", "FOOD", sqlmock.AnyArg(), "LOW_VALUE").
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()
		mock.ExpectClose()
	}}

	loader, err := NewSQLLoader(mysqlConfig(), opener.open)
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background(), batch))
	opener.verify()
}

func TestSQLLoader_Idempotent(t *testing.T) {
	opener := &mockOpener{t: t, setup: func(mock sqlmock.Sqlmock) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM sales_data").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO sales_data").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO sales_data").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectClose()
	}}
	loader, err := NewSQLLoader(mysqlConfig(), opener.open)
	require.NoError(t, err)

	batch := rows(2)
	require.NoError(t, loader.Load(context.Background(), batch))
	require.NoError(t, loader.Load(context.Background(), batch))
	opener.verify()
}

func TestSQLLoader_RollsBackOnInsertFailure(t *testing.T) {
	opener := &mockOpener{t: t, setup: func(mock sqlmock.Sqlmock) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM sales_data").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO sales_data").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO sales_data").WillReturnError(errors.New("Duplicate entry 'TRX-A00000'"))
		mock.ExpectRollback()
		mock.ExpectClose()
	}}
	loader, err := NewSQLLoader(mysqlConfig(), opener.open)
	require.NoError(t, err)

	err = loader.Load(context.Background(), rows(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatabase)
	assert.Contains(t, err.Error(), "Duplicate entry")
	opener.verify()
}

func TestSQLLoader_CommitFailure(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.SetOutput(buf, "info")
	t.Cleanup(logger.Init)

	opener := &mockOpener{t: t, setup: func(mock sqlmock.Sqlmock) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM sales_data").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO sales_data").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(errors.New("lost connection"))
		mock.ExpectClose()
	}}
	loader, err := NewSQLLoader(mysqlConfig(), opener.open)
	require.NoError(t, err)

	err = loader.Load(context.Background(), rows(1))
	assert.ErrorIs(t, err, ErrDatabase)
	assert.Contains(t, err.Error(), "lost connection")
	opener.verify()

	// The failed commit ends the transaction, so no rollback is attempted.
	assert.NotContains(t, buf.String(), "Rollback of")
	assert.NotContains(t, buf.String(), "already been committed")
}

func TestSQLLoader_RejectsBadInputWithoutDatabase(t *testing.T) {
	calls := 0
	open := func(context.Context) (*sql.DB, error) {
		calls++
		return nil, errors.New("should not be called")
	}
	loader, err := NewSQLLoader(mysqlConfig(), open)
	require.NoError(t, err)

	assert.ErrorIs(t, loader.Load(context.Background(), nil), ErrValidation)
	assert.ErrorIs(t, loader.Load(context.Background(), []models.Row{}), ErrValidation)

	bad := sampleRow("TRX-000001")
	delete(bad, models.ColTotalAmount)
	assert.ErrorIs(t, loader.Load(context.Background(), []models.Row{bad}), ErrValidation)

	assert.Zero(t, calls)
}

func TestSQLLoader_SQLServer(t *testing.T) {
	cfg := mysqlConfig()
	cfg.Driver = "sqlserver"
	cfg.Port = 1433

	opener := &mockOpener{t: t, setup: func(mock sqlmock.Sqlmock) {
		mock.ExpectBegin()
		mock.ExpectExec(q("TRUNCATE TABLE sales_data")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(q("VALUES (@p1, @p2")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectClose()
	}}
	loader, err := NewSQLLoader(cfg, opener.open)
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background(), rows(1)))
	opener.verify()

	src := models.Dataset{Namespace: "s3://localhost:9000", Name: "testlineage/sales_data.parquet"}
	loader.Source = &src
	inputs, outputs := loader.Datasets()
	assert.Equal(t, []models.Dataset{src}, inputs)
	assert.Equal(t, "sqlserver://localhost:1433", outputs[0].Namespace)
}
