package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/models"
)

func classWeekLocked(ctx context.Context, q Queryer, weekKey, classID string) (bool, error) {
	var locked bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM weekly_rankings WHERE week_key = $1 AND class_id = $2)`,
		weekKey, classID).Scan(&locked)
	return locked, err
}

// LockedRanking returns the finalized rows for (week, grade), best rank first.
// An empty result means the week is not finalized for that grade.
func (s *Store) LockedRanking(ctx context.Context, weekKey string, grade int) ([]models.WeeklyRanking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT week_key, grade, class_id, class_name, merit, demerit, total, rank, locked_at
		FROM weekly_rankings
		WHERE week_key = $1 AND grade = $2
		ORDER BY rank, class_name`, weekKey, grade)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.WeeklyRanking
	for rows.Next() {
		var r models.WeeklyRanking
		if err := rows.Scan(&r.WeekKey, &r.Grade, &r.ClassID, &r.ClassName, &r.Merit, &r.Demerit, &r.Total, &r.Rank, &r.LockedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// rankingLock is the advisory lock key of one (week, grade). Finalize holds it
// exclusively while it reads the week's records; record inserts hold it shared.
func rankingLock(ctx context.Context, tx *sql.Tx, weekKey string, grade int, shared bool) error {
	fn := "pg_advisory_xact_lock"
	if shared {
		fn = "pg_advisory_xact_lock_shared"
	}
	_, err := tx.ExecContext(ctx, `SELECT `+fn+`(hashtext($1))`, fmt.Sprintf("%s/%d", weekKey, grade))
	if err != nil {
		return fmt.Errorf("ranking lock %s/%d: %w", weekKey, grade, err)
	}
	return nil
}

// SaveLockedRanking finalizes one (week, grade): under the ranking lock it reads the
// grade roster and the week's records, lets build turn them into snapshot rows and
// writes them. A record committed before the lock is counted; one arriving after it
// sees the snapshot and gets apperr.ErrWeekLocked. If the grade already has a snapshot
// nothing is written and apperr.ErrWeekLocked is returned.
func (s *Store) SaveLockedRanking(ctx context.Context, weekKey string, grade int,
	build func(roster []models.Class, records []models.Record) []models.WeeklyRanking,
) ([]models.WeeklyRanking, error) {
	var rows []models.WeeklyRanking
	err := WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := rankingLock(ctx, tx, weekKey, grade, false); err != nil {
			return err
		}
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM weekly_rankings WHERE week_key = $1 AND grade = $2)`,
			weekKey, grade).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%s grade %d: %w", weekKey, grade, apperr.ErrWeekLocked)
		}

		roster, err := listClasses(ctx, tx, grade)
		if err != nil {
			return err
		}
		classIDs := make([]string, 0, len(roster))
		for _, c := range roster {
			classIDs = append(classIDs, c.ID)
		}
		records, err := listRecords(ctx, tx, models.RecordFilter{WeekKey: weekKey, ClassIDs: classIDs})
		if err != nil {
			return err
		}
		rows = build(roster, records)

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO weekly_rankings (week_key, grade, class_id, class_name, merit, demerit, total, rank, locked_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, weekKey, grade, r.ClassID, r.ClassName,
				r.Merit, r.Demerit, r.Total, r.Rank, r.LockedAt); err != nil {
				return fmt.Errorf("insert ranking %s: %w", r.ClassID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LockedGrades: параллели, для которых неделя уже зафиксирована.
func (s *Store) LockedGrades(ctx context.Context, weekKey string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT grade FROM weekly_rankings WHERE week_key = $1 ORDER BY grade`, weekKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []int
	for rows.Next() {
		var g int
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
