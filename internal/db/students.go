package db

import (
	"context"

	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/models"
)

const studentCols = `id, school_id, full_name, class_id, merit, demerit, created_at`

func scanStudent(row interface{ Scan(...any) error }) (models.Student, error) {
	var st models.Student
	err := row.Scan(&st.ID, &st.SchoolID, &st.FullName, &st.ClassID, &st.Merit, &st.Demerit, &st.CreatedAt)
	return st, err
}

func (s *Store) CreateStudent(ctx context.Context, in models.NewStudent) (*models.Student, error) {
	if _, err := s.GetClass(ctx, in.ClassID); err != nil {
		return nil, err
	}
	st, err := scanStudent(s.db.QueryRowContext(ctx, `
		INSERT INTO students (id, school_id, full_name, class_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+studentCols, ids.New(), in.SchoolID, in.FullName, in.ClassID))
	if err != nil {
		return nil, mapErr(err, "student", in.SchoolID)
	}
	return &st, nil
}

func (s *Store) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	return getStudent(ctx, s.db, id)
}

func getStudent(ctx context.Context, q Queryer, id string) (*models.Student, error) {
	st, err := scanStudent(q.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "student", id)
	}
	return &st, nil
}

func (s *Store) ListStudentsByClass(ctx context.Context, classID string) ([]models.Student, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+studentCols+`
		FROM students
		WHERE class_id = $1
		ORDER BY full_name`, classID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
