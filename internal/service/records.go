package service

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/cache"
	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/metrics"
	"github.com/Spok95/school-discipline/internal/models"
	"github.com/Spok95/school-discipline/internal/week"
)

type Records struct {
	store Store
	weeks *week.Resolver
	cache cache.Rankings
	log   *zap.Logger
	now   clock
}

func NewRecords(store Store, weeks *week.Resolver, c cache.Rankings, log *zap.Logger) *Records {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Records{store: store, weeks: weeks, cache: c, log: log, now: timeNow}
}

// CreateRecord validates in, snapshots the student's class, computes points and week and
// stores the record together with the counter updates.
func (s *Records) CreateRecord(ctx context.Context, sess *auth.Session, in models.NewRecord) (*models.Record, error) {
	if err := sess.Require(auth.PermRecordCreate); err != nil {
		return nil, err
	}
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	rule, err := s.store.GetRule(ctx, in.RuleCode)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Invalid("ruleCode", "unknown rule "+in.RuleCode)
	}
	if err != nil {
		return nil, err
	}
	st, err := s.store.GetStudent(ctx, in.StudentID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Invalid("studentId", "unknown student")
	}
	if err != nil {
		return nil, err
	}

	at := in.EventDate.In(s.weeks.Location())
	if at.After(s.now().Add(maxClockSkew)) {
		return nil, apperr.Invalid("eventDate", "eventDate is in the future")
	}
	w, err := s.weeks.WeekOf(at)
	if err != nil {
		return nil, apperr.Invalid("eventDate", err.Error())
	}

	rec := &models.Record{
		ID:         ids.New(),
		RuleCode:   rule.Code,
		RuleType:   rule.Type,
		Points:     in.Quantity * rule.Points,
		Quantity:   in.Quantity,
		StudentID:  st.ID,
		ClassID:    st.ClassID,
		EventDate:  at,
		CreatedBy:  sess.Subject,
		SchoolYear: s.weeks.SchoolYear(at),
		Week:       &w,
		Note:       in.Note,
	}
	if err := s.store.CreateRecord(ctx, rec); err != nil {
		return nil, err
	}

	metrics.RecordsCreated.WithLabelValues(string(rec.RuleType)).Inc()
	s.invalidate(ctx, rec)
	s.log.Info("record created",
		zap.String("id", rec.ID),
		zap.String("rule", rec.RuleCode),
		zap.Int("points", rec.Points),
		zap.String("class", rec.ClassID),
		zap.String("week", week.FormatKey(rec.SchoolYear, w)),
		zap.String("by", sess.Subject),
	)
	return rec, nil
}

// CreateCorrection offsets a record with a new one carrying negated points. The original
// stays untouched; a record can be corrected once and corrections are not correctable.
func (s *Records) CreateCorrection(ctx context.Context, sess *auth.Session, recordID string, in models.NewCorrection) (*models.Record, error) {
	if err := sess.Require(auth.PermRecordCorrect); err != nil {
		return nil, err
	}
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	if !ids.Valid(recordID) {
		return nil, apperr.NotFound("record", recordID)
	}

	rec, err := s.store.CreateCorrection(ctx, recordID, func(orig models.Record) (models.Record, error) {
		if orig.CorrectsID != nil {
			return models.Record{}, apperr.Invalid("id", "a correction cannot be corrected")
		}
		origID := orig.ID
		return models.Record{
			ID:         ids.New(),
			RuleCode:   orig.RuleCode,
			RuleType:   orig.RuleType,
			Points:     -orig.Points,
			Quantity:   orig.Quantity,
			StudentID:  orig.StudentID,
			ClassID:    orig.ClassID,
			EventDate:  orig.EventDate,
			CreatedBy:  sess.Subject,
			SchoolYear: orig.SchoolYear,
			Week:       orig.Week,
			Note:       in.Note,
			CorrectsID: &origID,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, rec)
	s.log.Info("record corrected", zap.String("id", rec.ID), zap.String("corrects", recordID), zap.String("by", sess.Subject))
	return rec, nil
}

func (s *Records) GetRecord(ctx context.Context, sess *auth.Session, id string) (*models.Record, error) {
	if !sess.Can(auth.PermRecordViewAll) && !sess.Can(auth.PermRecordViewAssigned) {
		return nil, apperr.ErrPermission
	}
	if !ids.Valid(id) {
		return nil, apperr.NotFound("record", id)
	}
	rec, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	// чужой класс для классного руководителя выглядит как отсутствующая запись
	if !sess.CanSeeClass(rec.ClassID) {
		return nil, apperr.NotFound("record", id)
	}
	return rec, nil
}

// ListRecords filters by week/class/student. Homeroom teachers only ever see their
// assigned classes, whatever the filter asks for.
func (s *Records) ListRecords(ctx context.Context, sess *auth.Session, f models.RecordFilter) ([]models.Record, error) {
	switch {
	case sess.Can(auth.PermRecordViewAll):
	case sess.Can(auth.PermRecordViewAssigned):
		f.ClassIDs = scopeClasses(f.ClassIDs, sess.AssignedClasses)
	default:
		return nil, apperr.ErrPermission
	}
	if f.WeekKey != "" {
		if _, _, err := week.ParseKey(f.WeekKey); err != nil {
			return nil, apperr.Invalid("week", err.Error())
		}
	}
	if f.Limit <= 0 || f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	return s.store.ListRecords(ctx, f)
}

// scopeClasses intersects the requested classes with the assigned ones. The result is
// never nil, so an empty intersection matches nothing.
func scopeClasses(requested, assigned []string) []string {
	out := make([]string, 0, len(assigned))
	for _, id := range assigned {
		if requested == nil || slices.Contains(requested, id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Records) invalidate(ctx context.Context, rec *models.Record) {
	if rec.Week == nil {
		return
	}
	cls, err := s.store.GetClass(ctx, rec.ClassID)
	if err != nil {
		s.log.Warn("cache invalidate: class lookup", zap.String("class", rec.ClassID), zap.Error(err))
		return
	}
	s.cache.Invalidate(ctx, week.FormatKey(rec.SchoolYear, *rec.Week), cls.Grade)
}
