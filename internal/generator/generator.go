// Package generator produces the synthetic sales dataset and publishes it to
// object storage as a parquet file.
package generator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/BartekS5/salesflow/internal/config"
	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/shopspring/decimal"
)

const (
	maxCustomer = 100
	maxProduct  = 50
	maxQuantity = 99
	maxDaysBack = 30

	minUnitPrice = 10.0
	maxUnitPrice = 1000.0
)

type Generator struct {
	seed      uint64
	rows      int
	reference time.Time
}

// New returns a generator for cfg.Rows records dated relative to reference.
// A zero reference means the current time.
func New(cfg config.Generator, reference time.Time) *Generator {
	if reference.IsZero() {
		reference = time.Now()
	}
	return &Generator{
		seed:      cfg.Seed,
		rows:      cfg.Rows,
		reference: reference.UTC().Truncate(time.Second),
	}
}

// Generate builds the records. The same seed and reference time always
// yield the same records.
func (g *Generator) Generate() []models.Transaction {
	r := rand.New(rand.NewPCG(g.seed, g.seed))
	txs := make([]models.Transaction, g.rows)
	for i := range txs {
		price := minUnitPrice + r.Float64()*(maxUnitPrice-minUnitPrice)
		daysBack := r.IntN(maxDaysBack)
		txs[i] = models.Transaction{
			TransactionID:   fmt.Sprintf("TRX-%06d", i),
			CustomerName:    fmt.Sprintf("Customer-%03d", 1+r.IntN(maxCustomer)),
			ProductID:       fmt.Sprintf("PRD-%03d", 1+r.IntN(maxProduct)),
			Quantity:        int64(1 + r.IntN(maxQuantity)),
			UnitPrice:       decimal.NewFromFloat(price).Round(2),
			TransactionDate: g.reference.AddDate(0, 0, -daysBack),
			PaymentMethod:   pick(r, models.PaymentMethods),
			StoreLocation:   pick(r, models.StoreLocations),
			Category:        pick(r, models.Categories),
		}
	}
	return txs
}

func pick(r *rand.Rand, values []string) string {
	return values[r.IntN(len(values))]
}
