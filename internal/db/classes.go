package db

import (
	"context"

	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/models"
)

const classCols = `id, grade, name, merit, demerit, created_at`

func scanClass(row interface{ Scan(...any) error }) (models.Class, error) {
	var c models.Class
	err := row.Scan(&c.ID, &c.Grade, &c.Name, &c.Merit, &c.Demerit, &c.CreatedAt)
	return c, err
}

func (s *Store) CreateClass(ctx context.Context, in models.NewClass) (*models.Class, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO classes (id, grade, name)
		VALUES ($1, $2, $3)
		RETURNING `+classCols, ids.New(), in.Grade, in.Name)
	c, err := scanClass(row)
	if err != nil {
		return nil, mapErr(err, "class", in.Name)
	}
	return &c, nil
}

func (s *Store) GetClass(ctx context.Context, id string) (*models.Class, error) {
	c, err := scanClass(s.db.QueryRowContext(ctx, `SELECT `+classCols+` FROM classes WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "class", id)
	}
	return &c, nil
}

// ListClasses: все классы; grade > 0 ограничивает одной параллелью.
func (s *Store) ListClasses(ctx context.Context, grade int) ([]models.Class, error) {
	return listClasses(ctx, s.db, grade)
}

func listClasses(ctx context.Context, ex Queryer, grade int) ([]models.Class, error) {
	q := `SELECT ` + classCols + ` FROM classes`
	var args []any
	if grade > 0 {
		q += ` WHERE grade = $1`
		args = append(args, grade)
	}
	q += ` ORDER BY grade, name`

	rows, err := ex.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ListGrades(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT grade FROM classes ORDER BY grade`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
