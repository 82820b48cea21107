package generator

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/BartekS5/salesflow/internal/columnar"
	"github.com/BartekS5/salesflow/internal/config"
	"github.com/BartekS5/salesflow/internal/lineage"
	"github.com/BartekS5/salesflow/internal/storage"
	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = time.Date(2024, 12, 11, 15, 30, 45, 123456789, time.UTC)

func testConfig() config.Generator {
	return config.Generator{Seed: 42, Rows: 1000}
}

func TestGenerate_Shape(t *testing.T) {
	txs := New(testConfig(), reference).Generate()
	require.Len(t, txs, 1000)

	assert.Equal(t, "TRX-000000", txs[0].TransactionID)
	assert.Equal(t, "TRX-000999", txs[999].TransactionID)

	customerRe := regexp.MustCompile(`^Customer-(0\d\d|100)$`)
	productRe := regexp.MustCompile(`^PRD-0[0-5]\d$`)
	refSecond := reference.Truncate(time.Second)
	low := decimal.NewFromInt(10)
	high := decimal.NewFromInt(1000)

	seen := map[string]bool{}
	for _, tx := range txs {
		assert.False(t, seen[tx.TransactionID], "duplicate id %s", tx.TransactionID)
		seen[tx.TransactionID] = true

		assert.Regexp(t, customerRe, tx.CustomerName)
		assert.NotEqual(t, "Customer-000", tx.CustomerName)
		assert.Regexp(t, productRe, tx.ProductID)
		assert.NotEqual(t, "PRD-000", tx.ProductID)
		assert.GreaterOrEqual(t, tx.Quantity, int64(1))
		assert.LessOrEqual(t, tx.Quantity, int64(99))

		assert.True(t, tx.UnitPrice.GreaterThanOrEqual(low), tx.UnitPrice.String())
		assert.True(t, tx.UnitPrice.LessThanOrEqual(high), tx.UnitPrice.String())
		assert.True(t, tx.UnitPrice.Equal(tx.UnitPrice.Round(2)))

		assert.Equal(t, time.UTC, tx.TransactionDate.Location())
		age := refSecond.Sub(tx.TransactionDate)
		assert.Zero(t, age%(24*time.Hour))
		assert.GreaterOrEqual(t, age, time.Duration(0))
		assert.Less(t, age, 30*24*time.Hour)

		assert.Contains(t, models.PaymentMethods, tx.PaymentMethod)
		assert.Contains(t, models.StoreLocations, tx.StoreLocation)
		assert.Contains(t, models.Categories, tx.Category)

		assert.True(t, tx.TotalAmount().Equal(decimal.NewFromInt(tx.Quantity).Mul(tx.UnitPrice).Round(2)))
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := New(testConfig(), reference).Generate()
	b := New(testConfig(), reference).Generate()
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].ToRow()[models.ColCustomerName], b[i].ToRow()[models.ColCustomerName])
		assert.True(t, a[i].UnitPrice.Equal(b[i].UnitPrice))
		assert.True(t, a[i].TransactionDate.Equal(b[i].TransactionDate))
		assert.Equal(t, a[i].Category, b[i].Category)
	}

	other := New(config.Generator{Seed: 7, Rows: 1000}, reference).Generate()
	differs := false
	for i := range a {
		if !a[i].UnitPrice.Equal(other[i].UnitPrice) {
			differs = true
			break
		}
	}
	assert.True(t, differs, "different seeds should produce different data")
}

func TestGenerate_StatusMix(t *testing.T) {
	counts := map[models.Status]int{}
	for _, tx := range New(testConfig(), reference).Generate() {
		counts[tx.Status()]++
	}
	assert.Positive(t, counts[models.StatusHighValue])
	assert.Positive(t, counts[models.StatusMediumValue])
	assert.Positive(t, counts[models.StatusLowValue])
}

type recordingTransport struct {
	events []lineage.RunEvent
}

func (r *recordingTransport) Send(_ context.Context, ev lineage.RunEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingTransport) Close() error { return nil }

func storageConfig() config.Storage {
	return config.Storage{Bucket: "testlineage", Object: "sales_data.parquet"}
}

func TestPublish_CreatesBucketAndUploads(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	rt := &recordingTransport{}
	p := NewPublisher(store, storageConfig(), lineage.NewEmitter(rt, "minio_to_mysql_pipeline"))

	txs := New(config.Generator{Seed: 42, Rows: 25}, reference).Generate()
	size, err := p.Publish(ctx, txs)
	require.NoError(t, err)

	info, err := store.StatObject(ctx, "testlineage", "sales_data.parquet")
	require.NoError(t, err)
	assert.Equal(t, int64(size), info.Size)
	assert.Equal(t, storage.ContentTypeOctetStream, info.ContentType)

	data, err := store.GetObject(ctx, "testlineage", "sales_data.parquet")
	require.NoError(t, err)
	rows, err := columnar.Decode(ctx, data)
	require.NoError(t, err)
	assert.Len(t, rows, 25)

	require.Len(t, rt.events, 2)
	assert.Equal(t, lineage.EventStart, rt.events[0].EventType)
	assert.Equal(t, lineage.EventComplete, rt.events[1].EventType)
	require.Len(t, rt.events[1].Outputs, 1)
	assert.Equal(t, "testlineage/sales_data.parquet", rt.events[1].Outputs[0].Name)

	// Second publish reuses the bucket and overwrites the object.
	_, err = p.Publish(ctx, txs[:5])
	require.NoError(t, err)
	data, err = store.GetObject(ctx, "testlineage", "sales_data.parquet")
	require.NoError(t, err)
	rows, err = columnar.Decode(ctx, data)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestPublish_UploadFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	store.PutErr = errors.New("connection refused")
	rt := &recordingTransport{}
	p := NewPublisher(store, storageConfig(), lineage.NewEmitter(rt, "ns"))

	_, err := p.Publish(context.Background(), New(config.Generator{Seed: 1, Rows: 3}, reference).Generate())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.PutErr)

	require.Len(t, rt.events, 2)
	assert.Equal(t, lineage.EventFail, rt.events[1].EventType)
	assert.Contains(t, rt.events[1].Error, "connection refused")
}

func TestPublish_NilEmitter(t *testing.T) {
	p := NewPublisher(storage.NewMemoryStore(), storageConfig(), nil)
	_, err := p.Publish(context.Background(), New(config.Generator{Seed: 1, Rows: 3}, reference).Generate())
	assert.NoError(t, err)
}
