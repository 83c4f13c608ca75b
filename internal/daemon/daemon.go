// Package daemon keeps a local tree reconciled with its remote mirror:
// passes run at startup, on every watch interval and whenever the local
// tree settles after a change. Passes never overlap.
package daemon

import (
	"context"
	"time"
	"treesync/internal/logger"
	"treesync/internal/model"
	"treesync/internal/queue"
	"treesync/internal/syncer"

	"go.uber.org/zap"
)

// Syncer runs one reconciliation pass. *syncer.Runner implements it.
type Syncer interface {
	Run(ctx context.Context) (syncer.Summary, error)
	Current() (queue.Stats, bool)
}

type Status struct {
	Snapshot
	Current *queue.Stats `json:"current,omitempty"`
}

type Daemon struct {
	syncer    Syncer
	interval  time.Duration
	triggerCh chan string
	state     *PassState
}

func New(s Syncer, interval time.Duration) *Daemon {
	return &Daemon{
		syncer:    s,
		interval:  interval,
		triggerCh: make(chan string, 1),
		state:     NewPassState(),
	}
}

// Trigger asks for a pass. Requests made while one is already waiting are
// folded into it; the return value reports whether a new one was queued.
func (d *Daemon) Trigger(reason string) bool {
	select {
	case d.triggerCh <- reason:
		return true
	default:
		return false
	}
}

// Follow triggers a pass for every event until events is closed.
func (d *Daemon) Follow(events <-chan model.FileEvent) {
	for event := range events {
		if d.Trigger("change") {
			logger.Log.Debug("pass requested",
				zap.String("path", event.Path),
				zap.String("event", string(event.Type)))
		}
	}
}

// Run performs an initial pass and then serves triggers and interval ticks
// until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.pass(ctx, "startup")

	var tick <-chan time.Time
	if d.interval > 0 {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			d.pass(ctx, "interval")
		case reason := <-d.triggerCh:
			d.pass(ctx, reason)
		}
	}
}

func (d *Daemon) pass(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}

	d.state.Begin(reason)
	logger.Log.Info("pass started",
		zap.String("reason", reason))

	summary, err := d.syncer.Run(ctx)
	d.state.Finish(summary, err)

	if err != nil {
		logger.Log.Error("pass failed",
			zap.String("reason", reason),
			zap.Error(err))
	}
}

func (d *Daemon) Status() Status {
	status := Status{Snapshot: d.state.Snapshot()}
	if stats, ok := d.syncer.Current(); ok {
		status.Current = &stats
	}

	return status
}
