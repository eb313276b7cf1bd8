package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/cache"
	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/models"
)

// Roster manages classes and students. Counters are never writable here.
type Roster struct {
	store Store
	cache cache.Rankings
	log   *zap.Logger
}

func NewRoster(store Store, c cache.Rankings, log *zap.Logger) *Roster {
	if log == nil {
		log = zap.NewNop()
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &Roster{store: store, cache: c, log: log}
}

func (s *Roster) CreateClass(ctx context.Context, sess *auth.Session, in models.NewClass) (*models.Class, error) {
	if err := sess.Require(auth.PermRosterManage); err != nil {
		return nil, err
	}
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	c, err := s.store.CreateClass(ctx, in)
	if errors.Is(err, apperr.ErrConflict) {
		return nil, apperr.Invalid("name", "class already exists in this grade")
	}
	if err != nil {
		return nil, err
	}
	// новый класс без записей тоже должен попасть в живые рейтинги параллели
	s.cache.InvalidateGrade(ctx, c.Grade)
	s.log.Info("class created", zap.String("id", c.ID), zap.Int("grade", c.Grade), zap.String("name", c.Name))
	return c, nil
}

func (s *Roster) ListClasses(ctx context.Context, sess *auth.Session, grade int) ([]models.Class, error) {
	if err := sess.Require(auth.PermRosterView); err != nil {
		return nil, err
	}
	return s.store.ListClasses(ctx, grade)
}

func (s *Roster) CreateStudent(ctx context.Context, sess *auth.Session, in models.NewStudent) (*models.Student, error) {
	if err := sess.Require(auth.PermRosterManage); err != nil {
		return nil, err
	}
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	st, err := s.store.CreateStudent(ctx, in)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return nil, apperr.Invalid("classId", "unknown class")
	case errors.Is(err, apperr.ErrConflict):
		return nil, apperr.Invalid("schoolId", "student with this school id already exists")
	case err != nil:
		return nil, err
	}
	return st, nil
}

func (s *Roster) ListStudents(ctx context.Context, sess *auth.Session, classID string) ([]models.Student, error) {
	if err := sess.Require(auth.PermRosterView); err != nil {
		return nil, err
	}
	if !ids.Valid(classID) {
		return nil, apperr.NotFound("class", classID)
	}
	if _, err := s.store.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	return s.store.ListStudentsByClass(ctx, classID)
}
