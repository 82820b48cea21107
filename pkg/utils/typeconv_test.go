package utils

import (
	"testing"
	"time"

	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToSQLType(t *testing.T) {
	priceField := models.FieldConfig{Name: "unit_price", Type: models.TypeDecimal, Scale: 2}
	qtyField := models.FieldConfig{Name: "quantity", Type: models.TypeInt}
	dateField := models.FieldConfig{Name: "transaction_date", Type: models.TypeDatetime}
	nameField := models.FieldConfig{Name: "customer_name", Type: models.TypeString}

	t.Run("float price is rounded to scale", func(t *testing.T) {
		got, err := ConvertToSQLType(12.345000001, priceField)
		require.NoError(t, err)
		assert.Equal(t, "12.35", got.(decimal.Decimal).StringFixed(2))
	})

	t.Run("int32 quantity widens", func(t *testing.T) {
		got, err := ConvertToSQLType(int32(7), qtyField)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got)
	})

	t.Run("string datetime parses as UTC", func(t *testing.T) {
		got, err := ConvertToSQLType("2024-12-11 10:00:00", dateField)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 12, 11, 10, 0, 0, 0, time.UTC), got)
	})

	t.Run("bytes become string", func(t *testing.T) {
		got, err := ConvertToSQLType([]byte("Customer-001"), nameField)
		require.NoError(t, err)
		assert.Equal(t, "Customer-001", got)
	})

	t.Run("nil passes through", func(t *testing.T) {
		got, err := ConvertToSQLType(nil, priceField)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("bad datetime", func(t *testing.T) {
		_, err := ConvertToSQLType("yesterday", dateField)
		assert.Error(t, err)
	})

	t.Run("unsupported int source", func(t *testing.T) {
		_, err := ConvertToSQLType(true, qtyField)
		assert.Error(t, err)
	})
}
