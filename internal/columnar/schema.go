// Package columnar encodes sales transactions as parquet and decodes parquet
// files back into rows.
package columnar

import (
	"fmt"

	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Pool is the allocator shared by encoder and decoder.
var Pool = memory.NewGoAllocator()

// Schema is the arrow schema of the sales file, derived from
// models.SalesFields so column order matches the destination table.
var Schema = buildSchema(models.SalesFields)

func buildSchema(fields []models.FieldConfig) *arrow.Schema {
	out := make([]arrow.Field, len(fields))
	for i, f := range fields {
		out[i] = arrow.Field{Name: f.Name, Type: arrowType(f), Nullable: !f.PrimaryKey}
	}
	return arrow.NewSchema(out, nil)
}

func arrowType(f models.FieldConfig) arrow.DataType {
	switch f.Type {
	case models.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case models.TypeDecimal:
		return &arrow.Decimal128Type{Precision: f.Precision, Scale: f.Scale}
	case models.TypeDatetime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	case models.TypeString:
		return arrow.BinaryTypes.String
	default:
		panic(fmt.Sprintf("columnar: no arrow type for field %s (%s)", f.Name, f.Type))
	}
}
