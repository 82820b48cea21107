package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status buckets a transaction by its total amount.
type Status string

const (
	StatusHighValue   Status = "HIGH_VALUE"
	StatusMediumValue Status = "MEDIUM_VALUE"
	StatusLowValue    Status = "LOW_VALUE"
)

var (
	highValueThreshold   = decimal.NewFromInt(5000)
	mediumValueThreshold = decimal.NewFromInt(1000)
)

// Enumerations sampled by the generator.
var (
	PaymentMethods = []string{"CASH", "CREDIT", "DEBIT", "E-WALLET"}
	StoreLocations = []string{"JAKARTA", "BANDUNG", "SURABAYA", "MEDAN", "MAKASSAR"}
	Categories     = []string{"ELECTRONICS", "FASHION", "FOOD", "BOOKS", "SPORTS"}
)

// Row is a single record keyed by column name, the shape that travels
// between extractor and loader.
type Row map[string]interface{}

// Transaction is one synthetic sales transaction. TotalAmount and Status
// are derived and have no backing fields.
type Transaction struct {
	TransactionID   string          `json:"transaction_id"`
	CustomerName    string          `json:"customer_name"`
	ProductID       string          `json:"product_id"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TransactionDate time.Time       `json:"transaction_date"`
	PaymentMethod   string          `json:"payment_method"`
	StoreLocation   string          `json:"store_location"`
	Category        string          `json:"category"`
}

// TotalAmount is quantity × unit_price rounded to two places.
func (t Transaction) TotalAmount() decimal.Decimal {
	return decimal.NewFromInt(t.Quantity).Mul(t.UnitPrice).Round(2)
}

// Status classifies the transaction by TotalAmount.
func (t Transaction) Status() Status {
	return StatusFor(t.TotalAmount())
}

// StatusFor applies the value thresholds to a total amount.
func StatusFor(total decimal.Decimal) Status {
	switch {
	case total.GreaterThan(highValueThreshold):
		return StatusHighValue
	case total.GreaterThan(mediumValueThreshold):
		return StatusMediumValue
	default:
		return StatusLowValue
	}
}

// ToRow flattens the transaction into a Row including derived columns.
func (t Transaction) ToRow() Row {
	return Row{
		ColTransactionID:   t.TransactionID,
		ColCustomerName:    t.CustomerName,
		ColProductID:       t.ProductID,
		ColQuantity:        t.Quantity,
		ColUnitPrice:       t.UnitPrice,
		ColTransactionDate: t.TransactionDate,
		ColPaymentMethod:   t.PaymentMethod,
		ColStoreLocation:   t.StoreLocation,
		ColCategory:        t.Category,
		ColTotalAmount:     t.TotalAmount(),
		ColStatus:          string(t.Status()),
	}
}
