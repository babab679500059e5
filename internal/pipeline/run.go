package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/logger"
	"github.com/jonathan/resume-verifier/internal/observability"
)

const tracerName = "github.com/jonathan/resume-verifier/internal/pipeline"

// StageStatus is the outcome of one stage in a run
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// StageRecord is the execution record of one stage
type StageRecord struct {
	Name     string        `json:"name"`
	Status   StageStatus   `json:"status"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// StageError reports the stage that aborted a run
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Pipeline string        `json:"pipeline"`
	Step     string        `json:"step"`
	Status   StageStatus   `json:"status"`
	Message  string        `json:"message"`
	RunID    string        `json:"run_id,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Run is the outcome of one Invoke
type Run[S any] struct {
	ID     string
	State  S
	Stages []StageRecord
}

// Durations returns stage durations in milliseconds keyed by stage name
func (r *Run[S]) Durations() map[string]int64 {
	out := make(map[string]int64, len(r.Stages))
	for _, s := range r.Stages {
		out[s.Name] = s.Duration.Milliseconds()
	}
	return out
}

// Failed returns the records of stages that failed
func (r *Run[S]) Failed() []StageRecord {
	var out []StageRecord
	for _, s := range r.Stages {
		if s.Status == StageFailed {
			out = append(out, s)
		}
	}
	return out
}

type invokeOptions struct {
	runID      string
	logger     *zap.Logger
	metrics    *observability.Metrics
	onProgress ProgressCallback
}

// InvokeOption configures one run
type InvokeOption func(*invokeOptions)

// WithRunID uses id instead of a fresh uuid
func WithRunID(id string) InvokeOption {
	return func(o *invokeOptions) { o.runID = id }
}

// WithLogger logs stage outcomes to l
func WithLogger(l *zap.Logger) InvokeOption {
	return func(o *invokeOptions) { o.logger = logger.OrNop(l) }
}

// WithMetrics records stage and run metrics to m
func WithMetrics(m *observability.Metrics) InvokeOption {
	return func(o *invokeOptions) { o.metrics = m }
}

// WithProgress sends a ProgressEvent to cb as each stage finishes
func WithProgress(cb ProgressCallback) InvokeOption {
	return func(o *invokeOptions) { o.onProgress = cb }
}

type runIDKey struct{}

// ContextWithRunID returns a copy of ctx carrying id
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the id of the run ctx belongs to, or "" outside a run
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Invoke executes the graph once over initial.
//
// Layers run in order and cancellation is checked before each one. A failed required stage
// aborts the run with a run_fatal error wrapping *StageError. A failed optional stage is
// recorded and its update discarded. The returned Run is populated even when err is non-nil.
func (g *Graph[S]) Invoke(ctx context.Context, initial S, opts ...InvokeOption) (*Run[S], error) {
	o := invokeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	ctx = ContextWithRunID(ctx, o.runID)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline."+g.name, trace.WithAttributes(
		attribute.String("pipeline.name", g.name),
		attribute.String("pipeline.run_id", o.runID),
	))
	defer span.End()

	log := o.logger.With(zap.String(logger.FieldPipeline, g.name), zap.String(logger.FieldRunID, o.runID))
	run := &Run[S]{ID: o.runID, State: initial}

	start := time.Now()
	log.Info("pipeline started", zap.Int("stages", len(g.stages)))

	for li, layer := range g.layers {
		if err := ctx.Err(); err != nil {
			g.skipFrom(run, li)
			return run, g.abort(span, log, o, apperr.Wrap(apperr.KindCanceled, "pipeline."+g.name, "run canceled", err), start)
		}

		err := g.runLayer(ctx, run, layer, log, o)
		if err != nil {
			g.skipFrom(run, li+1)
			kind := apperr.KindRunFatal
			if ctx.Err() != nil {
				kind = apperr.KindCanceled
			}
			return run, g.abort(span, log, o, apperr.Wrap(kind, "pipeline."+g.name, "run aborted", err), start)
		}
	}

	o.metrics.RunDone(g.name, "completed")
	span.SetStatus(otelcodes.Ok, "")
	log.Info("pipeline completed", zap.Duration("elapsed", time.Since(start)))
	return run, nil
}

// runLayer runs the stages of one layer concurrently over a snapshot of the state and then
// applies their updates in declaration order
func (g *Graph[S]) runLayer(ctx context.Context, run *Run[S], layer []int, log *zap.Logger, o invokeOptions) error {
	snapshot := run.State
	updates := make([]Update[S], len(layer))
	records := make([]StageRecord, len(layer))

	eg, egCtx := errgroup.WithContext(ctx)
	for slot, idx := range layer {
		stage := g.stages[idx]
		eg.Go(func() error {
			stageCtx, span := otel.Tracer(tracerName).Start(egCtx, "stage."+stage.Name,
				trace.WithAttributes(attribute.Bool("stage.optional", stage.Optional)))
			defer span.End()

			began := time.Now()
			update, err := stage.Run(stageCtx, snapshot)
			records[slot] = StageRecord{Name: stage.Name, Status: StageCompleted, Duration: time.Since(began)}
			if err != nil {
				records[slot].Status = StageFailed
				records[slot].Err = err
				span.RecordError(err)
				span.SetStatus(otelcodes.Error, err.Error())
				if stage.Optional {
					return nil
				}
				return &StageError{Stage: stage.Name, Err: err}
			}
			updates[slot] = update
			return nil
		})
	}
	waitErr := eg.Wait()

	for slot, rec := range records {
		run.Stages = append(run.Stages, rec)
		g.report(log, o, rec)
		if rec.Status == StageCompleted && updates[slot] != nil {
			updates[slot](&run.State)
		}
	}
	return waitErr
}

func (g *Graph[S]) report(log *zap.Logger, o invokeOptions, rec StageRecord) {
	o.metrics.StageDone(g.name, rec.Name, string(rec.Status), rec.Duration)

	fields := []zap.Field{zap.String(logger.FieldStage, rec.Name), zap.Duration("elapsed", rec.Duration)}
	message := fmt.Sprintf("%s %s", rec.Name, rec.Status)
	switch {
	case rec.Err != nil && g.optional(rec.Name):
		log.Warn("optional stage failed", append(fields, apperr.Field(rec.Err))...)
		message = fmt.Sprintf("%s failed (optional): %v", rec.Name, rec.Err)
	case rec.Err != nil:
		log.Error("stage failed", append(fields, apperr.Field(rec.Err))...)
		message = fmt.Sprintf("%s failed: %v", rec.Name, rec.Err)
	default:
		log.Debug("stage completed", fields...)
	}

	if o.onProgress != nil {
		o.onProgress(ProgressEvent{
			Pipeline: g.name,
			Step:     rec.Name,
			Status:   rec.Status,
			Message:  message,
			RunID:    o.runID,
			Duration: rec.Duration,
		})
	}
}

// skipFrom records every stage from layer li onwards as skipped
func (g *Graph[S]) skipFrom(run *Run[S], li int) {
	for _, layer := range g.layers[min(li, len(g.layers)):] {
		for _, idx := range layer {
			run.Stages = append(run.Stages, StageRecord{Name: g.stages[idx].Name, Status: StageSkipped})
		}
	}
}

func (g *Graph[S]) abort(span trace.Span, log *zap.Logger, o invokeOptions, err *apperr.Error, start time.Time) error {
	status := "failed"
	if err.Kind == apperr.KindCanceled {
		status = "canceled"
	}
	o.metrics.RunDone(g.name, status)
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		log.Error("pipeline aborted", zap.String(logger.FieldStage, stageErr.Stage),
			zap.Duration("elapsed", time.Since(start)), apperr.Field(err))
	} else {
		log.Warn("pipeline canceled", zap.Duration("elapsed", time.Since(start)))
	}
	return err
}

func (g *Graph[S]) optional(name string) bool {
	for _, s := range g.stages {
		if s.Name == name {
			return s.Optional
		}
	}
	return false
}
