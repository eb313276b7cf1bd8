package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/school-discipline/internal/models"
)

func (s *Store) ListRules(ctx context.Context) ([]models.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, category, description, type, points
		FROM rules
		ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Rule
	for rows.Next() {
		var r models.Rule
		if err := rows.Scan(&r.Code, &r.Category, &r.Description, &r.Type, &r.Points); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetRule(ctx context.Context, code string) (*models.Rule, error) {
	return getRule(ctx, s.db, code)
}

func getRule(ctx context.Context, q Queryer, code string) (*models.Rule, error) {
	var r models.Rule
	err := q.QueryRowContext(ctx,
		`SELECT code, category, description, type, points FROM rules WHERE code = $1`, code,
	).Scan(&r.Code, &r.Category, &r.Description, &r.Type, &r.Points)
	if err != nil {
		return nil, mapErr(err, "rule", code)
	}
	return &r, nil
}

// ReplaceRules is a destructive replace-all: delete every rule and insert the given set in
// one transaction. Records keep their copied rule code/type, so nothing dangles.
func (s *Store) ReplaceRules(ctx context.Context, rules []models.Rule) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
			return fmt.Errorf("delete rules: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO rules (code, category, description, type, points)
			VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range rules {
			if _, err := stmt.ExecContext(ctx, r.Code, r.Category, r.Description, string(r.Type), r.Points); err != nil {
				return fmt.Errorf("insert rule %s: %w", r.Code, err)
			}
		}
		return nil
	})
}

func (s *Store) CountRules(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rules`).Scan(&n)
	return n, err
}
