package db

import (
	"context"
	"fmt"

	"github.com/Spok95/school-discipline/internal/models"
)

// SeedRulesIfEmpty заполняет справочник правил при первом запуске.
func (s *Store) SeedRulesIfEmpty(ctx context.Context, catalog []models.Rule) (bool, error) {
	n, err := s.CountRules(ctx)
	if err != nil {
		return false, fmt.Errorf("count rules: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := s.ReplaceRules(ctx, catalog); err != nil {
		return false, err
	}
	return true, nil
}

// SeedClasses добавляет классы вида "10A1".."10A<perGrade>" для параллелей, если таблица пустая.
// Used by local setups and the container tests.
func (s *Store) SeedClasses(ctx context.Context, grades []int, perGrade int) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classes`).Scan(&count); err != nil {
		return fmt.Errorf("count classes: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, g := range grades {
		for i := 1; i <= perGrade; i++ {
			name := fmt.Sprintf("%dA%d", g, i)
			if _, err := s.CreateClass(ctx, models.NewClass{Grade: g, Name: name}); err != nil {
				return fmt.Errorf("insert class %s: %w", name, err)
			}
		}
	}
	return nil
}
