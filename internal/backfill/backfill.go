// Package backfill assigns academic weeks to records stored before records carried one.
package backfill

import (
	"context"

	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/db"
	"github.com/Spok95/school-discipline/internal/models"
	"github.com/Spok95/school-discipline/internal/week"
)

type Store interface {
	RecordsMissingWeek(ctx context.Context) ([]models.Record, error)
	SetRecordWeeks(ctx context.Context, updates []db.WeekUpdate) (int, error)
}

// Skipped is a record whose event date falls outside the academic weeks.
type Skipped struct {
	ID        string
	EventDate string
	Week      int
}

type Report struct {
	Found   int
	Planned []db.WeekUpdate
	Skipped []Skipped
	Updated int
}

// Plan computes the week of every record; out-of-range records are skipped, not guessed.
func Plan(recs []models.Record, r *week.Resolver) ([]db.WeekUpdate, []Skipped) {
	var ups []db.WeekUpdate
	var skipped []Skipped
	for _, rec := range recs {
		w, err := r.WeekOf(rec.EventDate)
		if err != nil {
			skipped = append(skipped, Skipped{ID: rec.ID, EventDate: rec.EventDate.In(r.Location()).Format("2006-01-02"), Week: w})
			continue
		}
		ups = append(ups, db.WeekUpdate{ID: rec.ID, SchoolYear: r.SchoolYear(rec.EventDate), Week: w})
	}
	return ups, skipped
}

// Run plans and, unless dryRun, writes all updates in one transaction.
func Run(ctx context.Context, s Store, r *week.Resolver, dryRun bool, log *zap.Logger) (*Report, error) {
	recs, err := s.RecordsMissingWeek(ctx)
	if err != nil {
		return nil, err
	}
	rep := &Report{Found: len(recs)}
	rep.Planned, rep.Skipped = Plan(recs, r)

	for _, sk := range rep.Skipped {
		log.Warn("record outside academic weeks, skipped",
			zap.String("id", sk.ID), zap.String("event_date", sk.EventDate), zap.Int("week", sk.Week))
	}
	if dryRun || len(rep.Planned) == 0 {
		return rep, nil
	}
	rep.Updated, err = s.SetRecordWeeks(ctx, rep.Planned)
	if err != nil {
		return rep, err
	}
	return rep, nil
}
