package etl

import (
	"context"
	"errors"
	"time"

	"github.com/BartekS5/salesflow/internal/lineage"
	"github.com/BartekS5/salesflow/pkg/logger"
	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/cenkalti/backoff/v4"
)

const (
	StageCreateTable = "create_table"
	StageExtract     = "extract_from_minio"
	StageLoad        = "load_to_mysql"
)

type StageState string

const (
	StatePending   StageState = "pending"
	StateSucceeded StageState = "succeeded"
	StateFailed    StageState = "failed"
)

type StageResult struct {
	Name     string
	State    StageState
	Attempts int
	Duration time.Duration
	Err      error
}

// RunReport is the outcome of one pipeline run, one entry per stage in
// execution order.
type RunReport struct {
	Pipeline string
	Started  time.Time
	Rows     int
	Stages   []StageResult
}

func (r *RunReport) Stage(name string) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Name == name {
			return &r.Stages[i]
		}
	}
	return nil
}

func (r *RunReport) Succeeded() bool {
	for _, s := range r.Stages {
		if s.State != StateSucceeded {
			return false
		}
	}
	return true
}

// RetryPolicy is applied to every stage. Validation errors are never retried.
type RetryPolicy struct {
	Retries int
	Delay   time.Duration
}

type Pipeline struct {
	Name      string
	Init      SchemaInitializer
	Extractor Extractor
	Loader    Loader
	Retry     RetryPolicy
	Emitter   *lineage.Emitter
}

func NewPipeline(name string, init SchemaInitializer, ext Extractor, loader Loader, retry RetryPolicy, emitter *lineage.Emitter) *Pipeline {
	return &Pipeline{
		Name:      name,
		Init:      init,
		Extractor: ext,
		Loader:    loader,
		Retry:     retry,
		Emitter:   emitter,
	}
}

// Run executes create_table, extract_from_minio and load_to_mysql in order.
// The first stage to fail stops the run; later stages stay pending. The
// returned error is a *StageError.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		Pipeline: p.Name,
		Started:  time.Now().UTC(),
		Stages: []StageResult{
			{Name: StageCreateTable, State: StatePending},
			{Name: StageExtract, State: StatePending},
			{Name: StageLoad, State: StatePending},
		},
	}
	logger.Infof("Starting pipeline %s", p.Name)

	var rows []models.Row
	stages := []struct {
		component interface{}
		fn        func(ctx context.Context) error
	}{
		{p.Init, p.Init.Init},
		{p.Extractor, func(ctx context.Context) error {
			var err error
			rows, err = p.Extractor.Extract(ctx)
			return err
		}},
		{p.Loader, func(ctx context.Context) error {
			return p.Loader.Load(ctx, rows)
		}},
	}

	for i, st := range stages {
		result := &report.Stages[i]
		if err := p.runStage(ctx, result, st.component, st.fn); err != nil {
			logger.Errorf("Pipeline %s stopped at %s: %v", p.Name, result.Name, err)
			return report, err
		}
	}

	report.Rows = len(rows)
	logger.Infof("Pipeline %s finished successfully (%d rows).", p.Name, report.Rows)
	return report, nil
}

func (p *Pipeline) runStage(ctx context.Context, result *StageResult, component interface{}, fn func(context.Context) error) error {
	var inputs, outputs []models.Dataset
	if d, ok := component.(DatasetDescriber); ok {
		inputs, outputs = d.Datasets()
	}

	op := func() error {
		result.Attempts++
		runID := lineage.NewRunID()
		p.Emitter.Start(ctx, runID, result.Name, inputs, outputs)

		err := fn(ctx)
		if err != nil {
			p.Emitter.Fail(ctx, runID, result.Name, inputs, outputs, err)
			if errors.Is(err, ErrValidation) {
				return backoff.Permanent(err)
			}
			return err
		}
		p.Emitter.Complete(ctx, runID, result.Name, inputs, outputs)
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warnf("Stage %s failed on attempt %d, retrying in %s: %v", result.Name, result.Attempts, wait, err)
	}

	retries := p.Retry.Retries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Retry.Delay), uint64(retries)),
		ctx,
	)

	start := time.Now()
	err := backoff.RetryNotify(op, b, notify)
	result.Duration = time.Since(start)

	if err != nil {
		result.State = StateFailed
		result.Err = &StageError{Stage: result.Name, Kind: kindOf(err), Err: err}
		return result.Err
	}
	result.State = StateSucceeded
	logger.L().Info().
		Str("stage", result.Name).
		Int("attempts", result.Attempts).
		Dur("took", result.Duration).
		Msg("Stage succeeded")
	return nil
}
