package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Task runs ingest sweeps in the background: once at startup when
// configured, then on a fixed interval when one is set.
type Task struct {
	svc        *Service
	sources    []string
	runOnStart bool
	interval   time.Duration
	logger     *zap.Logger
}

// NewTask creates a background ingest task. interval <= 0 disables the
// periodic sweep.
func NewTask(svc *Service, sources []string, runOnStart bool, interval time.Duration, logger *zap.Logger) *Task {
	return &Task{
		svc:        svc,
		sources:    sources,
		runOnStart: runOnStart,
		interval:   interval,
		logger:     logger,
	}
}

// Start launches the sweep loop. Reports are delivered on the returned
// channel and dropped when nobody is reading; the channel closes when
// ctx is cancelled.
func (t *Task) Start(ctx context.Context) <-chan Report {
	reports := make(chan Report, 1)

	go func() {
		defer close(reports)

		if len(t.sources) == 0 {
			t.logger.Info("no ingest sources configured, task idle")
			<-ctx.Done()
			return
		}

		if t.runOnStart {
			t.deliver(reports, t.svc.Sweep(ctx, t.sources))
		}

		if t.interval <= 0 {
			<-ctx.Done()
			return
		}

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.deliver(reports, t.svc.Sweep(ctx, t.sources))
			}
		}
	}()

	return reports
}

func (t *Task) deliver(reports chan Report, r Report) {
	select {
	case reports <- r:
	default:
	}
}
