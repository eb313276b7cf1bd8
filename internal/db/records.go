package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/models"
	"github.com/Spok95/school-discipline/internal/week"
)

const recordCols = `id, rule_code, rule_type, points, quantity, student_id, class_id, event_date,
	created_by, created_at, school_year, week, note, corrects_id`

func scanRecord(row interface{ Scan(...any) error }) (models.Record, error) {
	var r models.Record
	err := row.Scan(&r.ID, &r.RuleCode, &r.RuleType, &r.Points, &r.Quantity, &r.StudentID, &r.ClassID,
		&r.EventDate, &r.CreatedBy, &r.CreatedAt, &r.SchoolYear, &r.Week, &r.Note, &r.CorrectsID)
	return r, err
}

// CounterDelta: на сколько запись меняет денормализованные счётчики merit/demerit.
// Demerit points are negative, so the demerit counter grows by -points.
func CounterDelta(r models.Record) (merit, demerit int) {
	if r.RuleType == models.Merit {
		return r.Points, 0
	}
	return 0, -r.Points
}

// CreateRecord inserts rec and bumps the student and class counters in one transaction.
// rec.ClassID is overwritten with the student's class as of this transaction.
func (s *Store) CreateRecord(ctx context.Context, rec *models.Record) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var classID string
		err := tx.QueryRowContext(ctx, `SELECT class_id FROM students WHERE id = $1 FOR UPDATE`, rec.StudentID).Scan(&classID)
		if err != nil {
			return mapErr(err, "student", rec.StudentID)
		}
		rec.ClassID = classID
		return insertRecord(ctx, tx, rec)
	})
}

// CreateCorrection loads the original under lock, lets build derive the offsetting record
// and stores it the same way as CreateRecord.
func (s *Store) CreateCorrection(ctx context.Context, originalID string, build func(orig models.Record) (models.Record, error)) (*models.Record, error) {
	var out models.Record
	err := WithTx(ctx, s.db, func(tx *sql.Tx) error {
		orig, err := scanRecord(tx.QueryRowContext(ctx, `SELECT `+recordCols+` FROM records WHERE id = $1 FOR UPDATE`, originalID))
		if err != nil {
			return mapErr(err, "record", originalID)
		}
		var already bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM records WHERE corrects_id = $1)`, originalID).Scan(&already); err != nil {
			return err
		}
		if already {
			return fmt.Errorf("record %s already corrected: %w", originalID, apperr.ErrConflict)
		}
		out, err = build(orig)
		if err != nil {
			return err
		}
		return insertRecord(ctx, tx, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, rec *models.Record) error {
	if rec.Week != nil {
		key := week.FormatKey(rec.SchoolYear, *rec.Week)
		var grade int
		if err := tx.QueryRowContext(ctx, `SELECT grade FROM classes WHERE id = $1`, rec.ClassID).Scan(&grade); err != nil {
			return mapErr(err, "class", rec.ClassID)
		}
		// финализация этой недели ждёт, пока запись закоммитится, и наоборот
		if err := rankingLock(ctx, tx, key, grade, true); err != nil {
			return err
		}
		locked, err := classWeekLocked(ctx, tx, key, rec.ClassID)
		if err != nil {
			return err
		}
		if locked {
			return fmt.Errorf("%s: %w", key, apperr.ErrWeekLocked)
		}
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO records (id, rule_code, rule_type, points, quantity, student_id, class_id, event_date,
		                     created_by, created_at, school_year, week, note, corrects_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), $10, $11, $12, $13)
		RETURNING created_at`,
		rec.ID, rec.RuleCode, string(rec.RuleType), rec.Points, rec.Quantity, rec.StudentID, rec.ClassID,
		rec.EventDate, rec.CreatedBy, rec.SchoolYear, rec.Week, rec.Note, rec.CorrectsID,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return mapErr(err, "record", rec.ID)
	}

	dm, dd := CounterDelta(*rec)
	// ученик мог быть удалён: тогда обновится 0 строк, это нормально
	if _, err := tx.ExecContext(ctx,
		`UPDATE students SET merit = merit + $2, demerit = demerit + $3 WHERE id = $1`,
		rec.StudentID, dm, dd); err != nil {
		return fmt.Errorf("student counters: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE classes SET merit = merit + $2, demerit = demerit + $3 WHERE id = $1`,
		rec.ClassID, dm, dd); err != nil {
		return fmt.Errorf("class counters: %w", err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, `SELECT `+recordCols+` FROM records WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "record", id)
	}
	return &r, nil
}

// ListRecords: newest first. A nil ClassIDs means "any class"; an empty non-nil slice
// matches nothing.
func (s *Store) ListRecords(ctx context.Context, f models.RecordFilter) ([]models.Record, error) {
	return listRecords(ctx, s.db, f)
}

func listRecords(ctx context.Context, ex Queryer, f models.RecordFilter) ([]models.Record, error) {
	if f.ClassIDs != nil && len(f.ClassIDs) == 0 {
		return nil, nil
	}
	q := `SELECT ` + recordCols + ` FROM records WHERE TRUE`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.WeekKey != "" {
		sy, w, err := week.ParseKey(f.WeekKey)
		if err != nil {
			return nil, err
		}
		q += ` AND school_year = ` + arg(sy) + ` AND week = ` + arg(w)
	}
	if f.ClassIDs != nil {
		q += ` AND class_id::text = ANY(` + arg(pq.Array(f.ClassIDs)) + `)`
	}
	if f.StudentID != "" {
		q += ` AND student_id = ` + arg(f.StudentID)
	}
	q += ` ORDER BY id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ` + arg(f.Limit)
	}

	rows, err := ex.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordsMissingWeek: записи без номера недели (до появления поля week).
func (s *Store) RecordsMissingWeek(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordCols+` FROM records WHERE week IS NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// WeekUpdate is one backfilled record.
type WeekUpdate struct {
	ID         string
	SchoolYear int
	Week       int
}

// SetRecordWeeks writes all updates in one transaction; only rows still missing a week
// are touched. Returns the number of rows changed.
func (s *Store) SetRecordWeeks(ctx context.Context, updates []WeekUpdate) (int, error) {
	changed := 0
	err := WithTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`UPDATE records SET school_year = $2, week = $3 WHERE id = $1 AND week IS NULL`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, u := range updates {
			res, err := stmt.ExecContext(ctx, u.ID, u.SchoolYear, u.Week)
			if err != nil {
				return fmt.Errorf("record %s: %w", u.ID, err)
			}
			n, _ := res.RowsAffected()
			changed += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}
