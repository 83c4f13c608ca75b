package queue

import (
	"context"
	"fmt"
	"time"
	"treesync/internal/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

type Result struct {
	TaskID      uuid.UUID
	Kind        string
	Description string
	Priority    int
	Err         error
	StartedAt   time.Time
	Duration    time.Duration
}

type Recorder interface {
	Record(result Result)
}

type RecorderFunc func(result Result)

func (f RecorderFunc) Record(result Result) {
	f(result)
}

type Scheduler struct {
	queue     *Queue
	workers   int
	recorders []Recorder
	tracer    trace.Tracer
}

type Option func(*Scheduler)

func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.recorders = append(s.recorders, r)
		}
	}
}

func NewScheduler(q *Queue, workers int, opts ...Option) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	s := &Scheduler{
		queue:   q,
		workers: workers,
		tracer:  otel.Tracer("treesync/queue"),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run drains the queue with the configured number of workers and returns
// once it is empty and no task is running. A failing task is logged and
// abandoned; it never stops the other workers. Cancelling ctx stops workers
// from taking new tasks.
func (s *Scheduler) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.queue.stop)
	defer stop()

	var g errgroup.Group
	for i := range s.workers {
		g.Go(func() error {
			s.work(ctx, i)
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err()
}

func (s *Scheduler) work(ctx context.Context, worker int) {
	for ctx.Err() == nil {
		e, ok := s.queue.take()
		if !ok {
			return
		}

		result := s.execute(ctx, worker, e)
		for _, r := range s.recorders {
			r.Record(result)
		}

		s.queue.finish(result.Err)
	}
}

func (s *Scheduler) execute(ctx context.Context, worker int, e *entry) Result {
	kind := kindOf(e.task)
	desc := e.task.String()

	ctx, span := s.tracer.Start(ctx, "task.run", trace.WithAttributes(
		attribute.String("task.id", e.id.String()),
		attribute.String("task.kind", kind),
		attribute.Int("task.priority", e.priority),
		attribute.Int("worker", worker),
	))
	defer span.End()

	start := time.Now()
	err := runTask(ctx, e.task)
	result := Result{
		TaskID:      e.id,
		Kind:        kind,
		Description: desc,
		Priority:    e.priority,
		Err:         err,
		StartedAt:   start,
		Duration:    time.Since(start),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Log.Error("task failed",
			zap.String("task", desc),
			zap.Int("worker", worker),
			zap.Error(err))
	} else {
		logger.Log.Debug("task done",
			zap.String("task", desc),
			zap.Int("worker", worker),
			zap.Duration("took", result.Duration))
	}

	return result
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	return t.Run(ctx)
}
