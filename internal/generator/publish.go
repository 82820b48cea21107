package generator

import (
	"context"
	"fmt"

	"github.com/BartekS5/salesflow/internal/columnar"
	"github.com/BartekS5/salesflow/internal/config"
	"github.com/BartekS5/salesflow/internal/lineage"
	"github.com/BartekS5/salesflow/internal/storage"
	"github.com/BartekS5/salesflow/pkg/logger"
	"github.com/BartekS5/salesflow/pkg/models"
)

const jobName = "generate_sales_data"

// Publisher uploads generated records as a single parquet object.
type Publisher struct {
	store   storage.Store
	bucket  string
	object  string
	emitter *lineage.Emitter
}

func NewPublisher(store storage.Store, cfg config.Storage, emitter *lineage.Emitter) *Publisher {
	return &Publisher{store: store, bucket: cfg.Bucket, object: cfg.Object, emitter: emitter}
}

// Dataset is the lineage descriptor of the uploaded object.
func (p *Publisher) Dataset() models.Dataset {
	return models.Dataset{Namespace: p.store.Namespace(), Name: p.bucket + "/" + p.object}
}

// Publish encodes txs, makes sure the bucket exists and uploads the object.
// It returns the number of bytes written. Failures are not retried.
func (p *Publisher) Publish(ctx context.Context, txs []models.Transaction) (size int, err error) {
	runID := lineage.NewRunID()
	outputs := []models.Dataset{p.Dataset()}
	p.emitter.Start(ctx, runID, jobName, nil, outputs)
	defer func() {
		if err != nil {
			p.emitter.Fail(ctx, runID, jobName, nil, outputs, err)
			return
		}
		p.emitter.Complete(ctx, runID, jobName, nil, outputs)
	}()

	if err := p.ensureBucket(ctx); err != nil {
		return 0, err
	}

	logger.Info("Converting data to parquet format...")
	data, err := columnar.Encode(txs)
	if err != nil {
		return 0, fmt.Errorf("failed to encode records: %w", err)
	}

	logger.Infof("Uploading data (%d bytes)...", len(data))
	if err := p.store.PutObject(ctx, p.bucket, p.object, data, storage.ContentTypeOctetStream); err != nil {
		return 0, fmt.Errorf("failed to upload %s/%s: %w", p.bucket, p.object, err)
	}
	logger.Infof("Successfully uploaded %s to bucket: %s", p.object, p.bucket)

	info, err := p.store.StatObject(ctx, p.bucket, p.object)
	if err != nil {
		logger.Warnf("Could not verify upload: %v", err)
	} else {
		logger.Infof("Verified upload - File size: %d bytes", info.Size)
	}
	return len(data), nil
}

func (p *Publisher) ensureBucket(ctx context.Context) error {
	exists, err := p.store.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", p.bucket, err)
	}
	if exists {
		logger.Infof("Using existing bucket: %s", p.bucket)
		return nil
	}
	if err := p.store.MakeBucket(ctx, p.bucket); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
	}
	logger.Infof("Created bucket: %s", p.bucket)
	return nil
}
