package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/metrics"
	"github.com/Spok95/school-discipline/internal/models"
	"github.com/Spok95/school-discipline/internal/rules"
)

type Rules struct {
	store Store
	log   *zap.Logger
}

func NewRules(store Store, log *zap.Logger) *Rules {
	if log == nil {
		log = zap.NewNop()
	}
	return &Rules{store: store, log: log}
}

// Sync replaces the whole rule table with the built-in catalog. Running it twice leaves
// the same set.
func (s *Rules) Sync(ctx context.Context, sess *auth.Session) (int, error) {
	if err := sess.Require(auth.PermRulesSync); err != nil {
		return 0, err
	}
	catalog := rules.Catalog()
	if err := s.store.ReplaceRules(ctx, catalog); err != nil {
		return 0, err
	}
	metrics.RuleSyncs.Inc()
	s.log.Info("rules synced", zap.Int("count", len(catalog)), zap.String("by", sess.Subject))
	return len(catalog), nil
}

// List is open to any signed-in user.
func (s *Rules) List(ctx context.Context) ([]models.Rule, error) {
	return s.store.ListRules(ctx)
}
