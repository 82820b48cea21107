package etl

import (
	"context"

	"github.com/BartekS5/salesflow/pkg/models"
)

type Extractor interface {
	Extract(ctx context.Context) ([]models.Row, error)
}

type Loader interface {
	Load(ctx context.Context, rows []models.Row) error
}

type SchemaInitializer interface {
	Init(ctx context.Context) error
}

// DatasetDescriber is implemented by stages that can describe what they read
// and write for lineage consumers.
type DatasetDescriber interface {
	Datasets() (inputs, outputs []models.Dataset)
}
