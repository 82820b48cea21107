package etl

import (
	"fmt"

	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/BartekS5/salesflow/pkg/utils"
)

// Transformer turns decoded rows into INSERT arguments in column order.
type Transformer struct {
	Fields []models.FieldConfig
}

func NewTransformer() *Transformer {
	return &Transformer{Fields: models.SalesFields}
}

func (t *Transformer) RowToArgs(row models.Row) ([]interface{}, error) {
	args := make([]interface{}, len(t.Fields))
	for i, f := range t.Fields {
		converted, err := utils.ConvertToSQLType(row[f.Name], f)
		if err != nil {
			return nil, validationErrorf("column %s: %v", f.Name, err)
		}
		args[i] = converted
	}
	return args, nil
}

// RowsToArgs converts a whole batch, failing on the first bad row.
func (t *Transformer) RowsToArgs(rows []models.Row) ([][]interface{}, error) {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		args, err := t.RowToArgs(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = args
	}
	return out, nil
}
