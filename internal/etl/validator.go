package etl

import (
	"github.com/BartekS5/salesflow/pkg/models"
)

type Validator struct {
	Fields []models.FieldConfig
}

func NewValidator() *Validator {
	return &Validator{Fields: models.SalesFields}
}

// ValidateRows rejects an empty batch and any row that is missing a column.
func (v *Validator) ValidateRows(rows []models.Row) error {
	if len(rows) == 0 {
		return validationErrorf("no rows to load")
	}
	for i, row := range rows {
		if err := v.ValidateRow(i, row); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) ValidateRow(i int, row models.Row) error {
	if row == nil {
		return validationErrorf("row %d is nil", i)
	}
	for _, f := range v.Fields {
		val, ok := row[f.Name]
		if !ok {
			return validationErrorf("row %d: missing column %s", i, f.Name)
		}
		if f.PrimaryKey && val == nil {
			return validationErrorf("row %d: primary key %s is null", i, f.Name)
		}
	}
	return nil
}
