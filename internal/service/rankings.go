package service

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/cache"
	"github.com/Spok95/school-discipline/internal/export"
	"github.com/Spok95/school-discipline/internal/metrics"
	"github.com/Spok95/school-discipline/internal/models"
	"github.com/Spok95/school-discipline/internal/ranking"
	"github.com/Spok95/school-discipline/internal/week"
)

// Board is one grade's ranking for one week, either live or locked.
type Board struct {
	WeekKey   string             `json:"weekKey"`
	Grade     int                `json:"grade"`
	Locked    bool               `json:"locked"`
	LockedAt  *time.Time         `json:"lockedAt,omitempty"`
	Standings []ranking.Standing `json:"standings"`
	Totals    ranking.Totals     `json:"totals"`
}

type Rankings struct {
	store Store
	weeks *week.Resolver
	cache cache.Rankings
	log   *zap.Logger
	now   clock

	schoolName string
}

func NewRankings(store Store, weeks *week.Resolver, c cache.Rankings, log *zap.Logger) *Rankings {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Rankings{store: store, weeks: weeks, cache: c, log: log, now: timeNow}
}

func checkBoardArgs(weekKey string, grade int) error {
	if _, _, err := week.ParseKey(weekKey); err != nil {
		return apperr.Invalid("week", err.Error())
	}
	if grade < 1 || grade > 12 {
		return apperr.Invalid("grade", "grade must be between 1 and 12")
	}
	return nil
}

// WeeklyRanking returns the locked snapshot when the week is finalized for the grade and
// the live aggregation otherwise.
func (s *Rankings) WeeklyRanking(ctx context.Context, sess *auth.Session, weekKey string, grade int) (*Board, error) {
	if err := sess.Require(auth.PermRankingView); err != nil {
		return nil, err
	}
	if err := checkBoardArgs(weekKey, grade); err != nil {
		return nil, err
	}
	return s.board(ctx, weekKey, grade)
}

func (s *Rankings) board(ctx context.Context, weekKey string, grade int) (*Board, error) {
	locked, err := s.store.LockedRanking(ctx, weekKey, grade)
	if err != nil {
		return nil, err
	}
	if len(locked) > 0 {
		return lockedBoard(weekKey, grade, locked), nil
	}

	if st, ok := s.cache.Get(ctx, weekKey, grade); ok {
		return liveBoard(weekKey, grade, st), nil
	}
	st, err := s.compute(ctx, weekKey, grade)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, weekKey, grade, st)
	return liveBoard(weekKey, grade, st), nil
}

func (s *Rankings) compute(ctx context.Context, weekKey string, grade int) ([]ranking.Standing, error) {
	roster, err := s.store.ListClasses(ctx, grade)
	if err != nil {
		return nil, err
	}
	classIDs := make([]string, 0, len(roster))
	for _, c := range roster {
		classIDs = append(classIDs, c.ID)
	}
	records, err := s.store.ListRecords(ctx, models.RecordFilter{WeekKey: weekKey, ClassIDs: classIDs})
	if err != nil {
		return nil, err
	}
	return ranking.Compute(roster, records), nil
}

func liveBoard(weekKey string, grade int, st []ranking.Standing) *Board {
	if st == nil {
		st = []ranking.Standing{}
	}
	return &Board{WeekKey: weekKey, Grade: grade, Standings: st, Totals: ranking.Sum(st)}
}

func lockedBoard(weekKey string, grade int, rows []models.WeeklyRanking) *Board {
	st := ranking.FromSnapshot(rows)
	at := rows[0].LockedAt
	return &Board{WeekKey: weekKey, Grade: grade, Locked: true, LockedAt: &at, Standings: st, Totals: ranking.Sum(st)}
}

// Finalize locks the week for the grade. Finalizing an already locked week changes
// nothing and returns the existing snapshot.
func (s *Rankings) Finalize(ctx context.Context, sess *auth.Session, weekKey string, grade int) (*Board, error) {
	if err := sess.Require(auth.PermRankingFinalize); err != nil {
		return nil, err
	}
	if err := checkBoardArgs(weekKey, grade); err != nil {
		return nil, err
	}
	_, to, err := s.weeks.Bounds(weekKey)
	if err != nil {
		return nil, apperr.Invalid("week", err.Error())
	}
	if s.now().Before(to) {
		return nil, apperr.Invalid("week", "week "+weekKey+" has not ended yet")
	}
	b, _, err := s.finalize(ctx, weekKey, grade)
	return b, err
}

// finalize reports whether this call wrote the snapshot.
func (s *Rankings) finalize(ctx context.Context, weekKey string, grade int) (*Board, bool, error) {
	if locked, err := s.store.LockedRanking(ctx, weekKey, grade); err != nil {
		return nil, false, err
	} else if len(locked) > 0 {
		return lockedBoard(weekKey, grade, locked), false, nil
	}

	now := s.now()
	var st []ranking.Standing
	rows, err := s.store.SaveLockedRanking(ctx, weekKey, grade, func(roster []models.Class, records []models.Record) []models.WeeklyRanking {
		st = ranking.Compute(roster, records)
		out := make([]models.WeeklyRanking, 0, len(st))
		for _, x := range st {
			out = append(out, models.WeeklyRanking{
				WeekKey: weekKey, Grade: grade,
				ClassID: x.ClassID, ClassName: x.ClassName,
				Merit: x.Merit, Demerit: x.Demerit, Total: x.Total, Rank: x.Rank,
				LockedAt: now,
			})
		}
		return out
	})
	if errors.Is(err, apperr.ErrWeekLocked) {
		// параллельная финализация успела раньше
		b, err := s.board(ctx, weekKey, grade)
		return b, false, err
	}
	if err != nil {
		return nil, false, err
	}

	s.cache.Invalidate(ctx, weekKey, grade)
	metrics.RankingsFinalized.Inc()
	s.log.Info("week finalized", zap.String("week", weekKey), zap.Int("grade", grade), zap.Int("classes", len(rows)))
	if len(rows) == 0 {
		return liveBoard(weekKey, grade, st), true, nil
	}
	return lockedBoard(weekKey, grade, rows), true, nil
}

// FinalizeDue locks every grade of every week of the current academic year that ended
// more than grace ago and is not locked yet. It returns the boards it locked.
func (s *Rankings) FinalizeDue(ctx context.Context, grace time.Duration) ([]*Board, error) {
	cutoff := s.now().Add(-grace)
	sy := s.weeks.SchoolYear(cutoff)
	current, err := s.weeks.WeekOf(cutoff)
	if err != nil {
		if current < 1 {
			return nil, nil
		}
		current = week.MaxWeek + 1
	}

	grades, err := s.store.ListGrades(ctx)
	if err != nil {
		return nil, err
	}
	var done []*Board
	for w := 1; w < current; w++ {
		key := week.FormatKey(sy, w)
		locked, err := s.store.LockedGrades(ctx, key)
		if err != nil {
			return done, err
		}
		for _, g := range grades {
			if slices.Contains(locked, g) {
				continue
			}
			b, wrote, err := s.finalize(ctx, key, g)
			if err != nil {
				return done, err
			}
			if wrote {
				done = append(done, b)
			}
		}
	}
	return done, nil
}

// Grades lists grades that have at least one class.
func (s *Rankings) Grades(ctx context.Context, sess *auth.Session) ([]int, error) {
	if err := sess.Require(auth.PermRankingView); err != nil {
		return nil, err
	}
	return s.store.ListGrades(ctx)
}

// Boards returns one board per grade for the export.
func (s *Rankings) Boards(ctx context.Context, sess *auth.Session, weekKey string) ([]*Board, error) {
	if err := sess.Require(auth.PermRankingExport); err != nil {
		return nil, err
	}
	if _, _, err := week.ParseKey(weekKey); err != nil {
		return nil, apperr.Invalid("week", err.Error())
	}
	grades, err := s.store.ListGrades(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Board, 0, len(grades))
	for _, g := range grades {
		b, err := s.board(ctx, weekKey, g)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Export renders the week as an xlsx workbook; grade 0 exports every grade.
func (s *Rankings) Export(ctx context.Context, sess *auth.Session, weekKey string, grade int) ([]byte, string, error) {
	boards, err := s.Boards(ctx, sess, weekKey)
	if err != nil {
		return nil, "", err
	}
	from, to, err := s.weeks.Bounds(weekKey)
	if err != nil {
		return nil, "", apperr.Invalid("week", err.Error())
	}
	period := from.Format("02.01.2006") + "–" + to.AddDate(0, 0, -1).Format("02.01.2006")

	sheets := make([]export.GradeSheet, 0, len(boards))
	for _, b := range boards {
		if grade > 0 && b.Grade != grade {
			continue
		}
		sheets = append(sheets, export.GradeSheet{Grade: b.Grade, Locked: b.Locked, Standings: b.Standings})
	}
	if grade > 0 && len(sheets) == 0 {
		return nil, "", apperr.NotFound("grade", strconv.Itoa(grade))
	}
	f, err := export.RankingWorkbook(weekKey, period, sheets)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = f.Close() }()
	raw, err := export.Bytes(f)
	if err != nil {
		return nil, "", err
	}
	return raw, export.BuildRankingFilename(s.schoolName, weekKey, grade), nil
}

// WithSchoolName sets the name used in export file names.
func (s *Rankings) WithSchoolName(name string) *Rankings {
	s.schoolName = name
	return s
}

// CurrentWeek is the week key for now, or an error outside the academic range.
func (s *Rankings) CurrentWeek() (string, error) {
	return s.weeks.Key(s.now())
}
