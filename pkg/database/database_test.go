package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnParams_DSN(t *testing.T) {
	t.Run("mysql", func(t *testing.T) {
		dsn, err := ConnParams{
			Driver: DriverMySQL, Host: "localhost", Port: 3306,
			User: "root", Password: "root", Name: "openlineage_demo",
		}.DSN()
		require.NoError(t, err)
		assert.Contains(t, dsn, "root:root@tcp(localhost:3306)/openlineage_demo")
		assert.Contains(t, dsn, "parseTime=true")
	})

	t.Run("sqlserver", func(t *testing.T) {
		dsn, err := ConnParams{
			Driver: DriverSQLServer, Host: "db", Port: 1433,
			User: "sa", Password: "p@ss", Name: "sales",
		}.DSN()
		require.NoError(t, err)
		assert.Equal(t, "sqlserver://sa:p%40ss@db:1433?database=sales", dsn)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := ConnParams{Driver: "oracle"}.DSN()
		assert.Error(t, err)
	})
}
