package models

// Column names of the sales table and parquet file.
const (
	ColTransactionID   = "transaction_id"
	ColCustomerName    = "customer_name"
	ColProductID       = "product_id"
	ColQuantity        = "quantity"
	ColUnitPrice       = "unit_price"
	ColTransactionDate = "transaction_date"
	ColPaymentMethod   = "payment_method"
	ColStoreLocation   = "store_location"
	ColCategory        = "category"
	ColTotalAmount     = "total_amount"
	ColStatus          = "status"
)

// Logical field types understood by the type converters.
const (
	TypeString   = "string"
	TypeInt      = "int"
	TypeDecimal  = "decimal"
	TypeDatetime = "datetime"
)

// FieldConfig describes one column: its logical type and the SQL type used
// in the destination DDL.
type FieldConfig struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	SQLType    string `json:"sqlType" yaml:"sqlType"`
	Precision  int32  `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale      int32  `json:"scale,omitempty" yaml:"scale,omitempty"`
	PrimaryKey bool   `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
}

// SalesFields is the ordered column list of the sales dataset. Every
// component that needs a column order (DDL, INSERT, parquet schema) reads it
// from here.
var SalesFields = []FieldConfig{
	{Name: ColTransactionID, Type: TypeString, SQLType: "VARCHAR(10)", PrimaryKey: true},
	{Name: ColCustomerName, Type: TypeString, SQLType: "VARCHAR(50)"},
	{Name: ColProductID, Type: TypeString, SQLType: "VARCHAR(10)"},
	{Name: ColQuantity, Type: TypeInt, SQLType: "INT"},
	{Name: ColUnitPrice, Type: TypeDecimal, SQLType: "DECIMAL(10,2)", Precision: 10, Scale: 2},
	{Name: ColTransactionDate, Type: TypeDatetime, SQLType: "DATETIME"},
	{Name: ColPaymentMethod, Type: TypeString, SQLType: "VARCHAR(20)"},
	{Name: ColStoreLocation, Type: TypeString, SQLType: "VARCHAR(50)"},
	{Name: ColCategory, Type: TypeString, SQLType: "VARCHAR(20)"},
	{Name: ColTotalAmount, Type: TypeDecimal, SQLType: "DECIMAL(12,2)", Precision: 12, Scale: 2},
	{Name: ColStatus, Type: TypeString, SQLType: "VARCHAR(20)"},
}

// ColumnNames returns the names of SalesFields in order.
func ColumnNames() []string {
	names := make([]string, len(SalesFields))
	for i, f := range SalesFields {
		names[i] = f.Name
	}
	return names
}
