package lineage

import (
	"context"
	"time"

	"github.com/BartekS5/salesflow/pkg/logger"
	"github.com/BartekS5/salesflow/pkg/models"
	"github.com/google/uuid"
)

// Transport delivers a run event to a lineage backend.
type Transport interface {
	Send(ctx context.Context, ev RunEvent) error
	Close() error
}

// Emitter stamps and sends run events. Delivery is fire-and-forget: a
// transport error is logged and dropped. A nil *Emitter emits nothing.
type Emitter struct {
	transport Transport
	namespace string
	now       func() time.Time
}

func NewEmitter(t Transport, namespace string) *Emitter {
	return &Emitter{transport: t, namespace: namespace, now: time.Now}
}

// NewRunID returns a fresh identifier for one stage execution.
func NewRunID() string {
	return uuid.NewString()
}

func (e *Emitter) Start(ctx context.Context, runID, job string, inputs, outputs []models.Dataset) {
	e.emit(ctx, EventStart, runID, job, inputs, outputs, nil)
}

func (e *Emitter) Complete(ctx context.Context, runID, job string, inputs, outputs []models.Dataset) {
	e.emit(ctx, EventComplete, runID, job, inputs, outputs, nil)
}

func (e *Emitter) Fail(ctx context.Context, runID, job string, inputs, outputs []models.Dataset, cause error) {
	e.emit(ctx, EventFail, runID, job, inputs, outputs, cause)
}

func (e *Emitter) emit(ctx context.Context, typ EventType, runID, job string, inputs, outputs []models.Dataset, cause error) {
	if e == nil || e.transport == nil {
		return
	}
	ev := RunEvent{
		EventType: typ,
		EventTime: e.now().UTC(),
		Run:       Run{RunID: runID},
		Job:       Job{Namespace: e.namespace, Name: job},
		Inputs:    toWire(inputs),
		Outputs:   toWire(outputs),
		Producer:  Producer,
		SchemaURL: SchemaURL,
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	if err := e.transport.Send(ctx, ev); err != nil {
		logger.L().Warn().Err(err).
			Str("job", job).
			Str("event", string(typ)).
			Msg("lineage event dropped")
	}
}

func (e *Emitter) Close() error {
	if e == nil || e.transport == nil {
		return nil
	}
	return e.transport.Close()
}
