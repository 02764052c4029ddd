package ingest

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cleared-dev/transakce/internal/logger"
	"github.com/cleared-dev/transakce/internal/model"
	"github.com/cleared-dev/transakce/internal/store"
)

// LoadRules stores rule definitions. A rule without an ID replaces the
// stored rule of the same name, or is created when none exists.
func (s *Service) LoadRules(ctx context.Context, defs []model.CategoryRule, user string) (created, updated int, err error) {
	if user == "" {
		user = DefaultUser
	}
	log := logger.FromContext(ctx)
	err = s.store.RunInTx(ctx, func(ctx context.Context, q *store.Queries) error {
		for i := range defs {
			r := defs[i]
			if r.Targets.IsEmpty() {
				log.Warn().Str("rule", r.Name).Msg("rule sets no fields")
			}
			now := s.now()
			r.CreatedBy, r.CreatedAt, r.UpdatedAt = user, now, now

			existing, err := s.findRule(ctx, q, r)
			switch {
			case err == nil:
				r.ID = existing.ID
				r.CreatedBy, r.CreatedAt = existing.CreatedBy, existing.CreatedAt
				updated++
			case errors.Is(err, store.ErrNotFound):
				if r.ID == "" {
					r.ID = uuid.NewString()
				}
				created++
			default:
				return err
			}
			if err := q.SaveRule(ctx, &r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	log.Info().Int("created", created).Int("updated", updated).Msg("rules loaded")
	return created, updated, nil
}

func (s *Service) findRule(ctx context.Context, q *store.Queries, r model.CategoryRule) (*model.CategoryRule, error) {
	if r.ID != "" {
		return q.GetRule(ctx, r.ID)
	}
	return q.RuleByName(ctx, r.Name)
}
