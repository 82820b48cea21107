package etl

import (
	"context"
	"fmt"

	"github.com/BartekS5/salesflow/internal/columnar"
	"github.com/BartekS5/salesflow/internal/config"
	"github.com/BartekS5/salesflow/internal/storage"
	"github.com/BartekS5/salesflow/pkg/logger"
	"github.com/BartekS5/salesflow/pkg/models"
)

// ObjectDataset describes the parquet object for lineage.
func ObjectDataset(store storage.Store, cfg config.Storage) models.Dataset {
	return models.Dataset{Namespace: store.Namespace(), Name: cfg.Bucket + "/" + cfg.Object}
}

// ObjectExtractor downloads the parquet object and decodes it into rows.
type ObjectExtractor struct {
	store  storage.Store
	bucket string
	object string
	source models.Dataset
}

func NewObjectExtractor(store storage.Store, cfg config.Storage) *ObjectExtractor {
	return &ObjectExtractor{
		store:  store,
		bucket: cfg.Bucket,
		object: cfg.Object,
		source: ObjectDataset(store, cfg),
	}
}

func (e *ObjectExtractor) Extract(ctx context.Context) ([]models.Row, error) {
	data, err := e.store.GetObject(ctx, e.bucket, e.object)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch %s/%s: %w", ErrStorage, e.bucket, e.object, err)
	}

	rows, err := columnar.Decode(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s/%s: %w", ErrStorage, e.bucket, e.object, err)
	}

	logger.Infof("Extracted %d rows from %s/%s", len(rows), e.bucket, e.object)
	return rows, nil
}

func (e *ObjectExtractor) Datasets() (inputs, outputs []models.Dataset) {
	return []models.Dataset{e.source}, nil
}

// Source returns the dataset this extractor reads.
func (e *ObjectExtractor) Source() models.Dataset {
	return e.source
}
