package etl

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/BartekS5/salesflow/internal/config"
	"github.com/BartekS5/salesflow/internal/generator"
	"github.com/BartekS5/salesflow/internal/storage"
	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEndToEnd_InMemory runs generate, upload, init, extract and load against
// the in-memory store and a mocked MySQL connection.
func TestEndToEnd_InMemory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	ref := time.Date(2024, 12, 11, 9, 0, 0, 0, time.UTC)

	txs := generator.New(config.Generator{Seed: 42, Rows: 1000}, ref).Generate()
	_, err := generator.NewPublisher(store, storageConfig(), nil).Publish(ctx, txs)
	require.NoError(t, err)

	d, _ := DialectFor("mysql")
	var inserted [][]interface{}
	opener := &mockOpener{t: t}
	opener.setup = func(mock sqlmock.Sqlmock) {
		if len(opener.mocks) == 1 {
			mock.ExpectExec(q(d.CreateTableSQL("sales_data"))).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectClose()
			return
		}
		mock.ExpectBegin()
		mock.ExpectExec(q("DELETE FROM sales_data")).WillReturnResult(sqlmock.NewResult(0, 0))
		for range txs {
			mock.ExpectExec(q(d.InsertSQL("sales_data"))).
				WithArgs(capture(&inserted, len(models.SalesFields))...).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()
		mock.ExpectClose()
	}

	init, err := NewSQLSchemaInitializer(mysqlConfig(), opener.open)
	require.NoError(t, err)
	loader, err := NewSQLLoader(mysqlConfig(), opener.open)
	require.NoError(t, err)
	ext := NewObjectExtractor(store, storageConfig())
	src := ext.Source()
	loader.Source = &src

	report, err := NewPipeline("minio_to_mysql_pipeline", init, ext, loader, RetryPolicy{}, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000, report.Rows)
	opener.verify()

	require.Len(t, inserted, 1000)
	for _, i := range []int{0, 123, 999} {
		args := inserted[i]
		tx := txs[i]
		assert.Equal(t, tx.TransactionID, args[0])
		assert.Equal(t, tx.Quantity, args[3])
		price, err := decimal.NewFromString(args[4].(string))
		require.NoError(t, err)
		assert.True(t, tx.UnitPrice.Equal(price))
		assert.True(t, tx.TransactionDate.Equal(args[5].(time.Time)))
		total, err := decimal.NewFromString(args[9].(string))
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(tx.Quantity).Mul(tx.UnitPrice).Round(2)))
		assert.Equal(t, string(models.StatusFor(total)), args[10])
	}
}

// capturingArg accepts any value and appends it to the current row.
type capturingArg struct {
	rows *[][]interface{}
	col  int
}

func (c capturingArg) Match(v driver.Value) bool {
	if c.col == 0 {
		*c.rows = append(*c.rows, nil)
	}
	last := len(*c.rows) - 1
	(*c.rows)[last] = append((*c.rows)[last], v)
	return true
}

func capture(rows *[][]interface{}, n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = capturingArg{rows: rows, col: i}
	}
	return args
}
