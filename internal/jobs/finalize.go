package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/service"
	"github.com/Spok95/school-discipline/internal/week"
)

type Finalizer interface {
	FinalizeDue(ctx context.Context, grace time.Duration) ([]*service.Board, error)
}

// Announcer gets the boards a run locked. *notify.Telegram satisfies it, nil included.
type Announcer interface {
	Finalized(ctx context.Context, boards []*service.Board)
	SchoolYearStarted(ctx context.Context, startYear int)
}

// FinalizeWeeks locks every week that ended more than grace ago and announces the result.
// Boards locked before an error are still announced.
func FinalizeWeeks(f Finalizer, grace time.Duration, ann Announcer, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		boards, err := f.FinalizeDue(ctx, grace)
		if len(boards) > 0 {
			log.Info("weeks finalized", zap.Int("boards", len(boards)))
			if ann != nil {
				ann.Finalized(ctx, boards)
			}
		}
		return err
	}
}

// SchoolYearWatch announces the start of a new academic year once per process, on the
// first run at or after the term start.
func SchoolYearWatch(weeks *week.Resolver, ann Announcer, now func() time.Time) Job {
	notified := -1
	return func(ctx context.Context) error {
		t := now()
		sy := weeks.SchoolYear(t)
		if notified == -1 {
			// при старте процесса текущий год считаем уже объявленным
			notified = sy
			return nil
		}
		if sy != notified {
			notified = sy
			if ann != nil {
				ann.SchoolYearStarted(ctx, sy)
			}
		}
		return nil
	}
}
