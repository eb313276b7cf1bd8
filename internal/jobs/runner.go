package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
	log *zap.Logger
}

func New(ctx context.Context, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{ctx: ctx, log: log}
}

// Every runs fn on each tick until the runner's context is done. With immediate set the
// first run happens right away instead of after one interval.
func (r *Runner) Every(interval time.Duration, name string, immediate bool, fn Job) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		if immediate {
			r.run(name, fn)
		}
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.run(name, fn)
			}
		}
	}()
}

func (r *Runner) run(name string, fn Job) {
	start := time.Now()
	err := fn(r.ctx)
	jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err == nil {
		jobRuns.WithLabelValues(name, "ok").Inc()
		jobLastSuccess.WithLabelValues(name).SetToCurrentTime()
		return
	}
	jobRuns.WithLabelValues(name, "error").Inc()
	if r.ctx.Err() == nil {
		r.log.Error("job failed", zap.String("job", name), zap.Error(err))
		observability.CaptureErr(err)
	}
}
