package store

import (
	"context"
	"fmt"

	"github.com/cleared-dev/transakce/internal/model"
)

// ActiveRules returns all active rules ordered by dimension, priority and name.
func (q *Queries) ActiveRules(ctx context.Context) ([]model.CategoryRule, error) {
	var rules []model.CategoryRule
	err := q.db.NewSelect().
		Model(&rules).
		Where("r.is_active = ?", true).
		Order("r.match_type ASC", "r.priority ASC", "r.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrap("loading active rules", err)
	}
	return rules, nil
}

// ListRules returns every rule, active or not.
func (q *Queries) ListRules(ctx context.Context) ([]model.CategoryRule, error) {
	var rules []model.CategoryRule
	err := q.db.NewSelect().
		Model(&rules).
		Order("r.match_type ASC", "r.priority ASC", "r.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrap("listing rules", err)
	}
	return rules, nil
}

// GetRule loads one rule by ID.
func (q *Queries) GetRule(ctx context.Context, id string) (*model.CategoryRule, error) {
	r := new(model.CategoryRule)
	if err := q.db.NewSelect().Model(r).Where("r.id = ?", id).Scan(ctx); err != nil {
		return nil, wrap("loading rule "+id, err)
	}
	return r, nil
}

// RuleByName loads one rule by name.
func (q *Queries) RuleByName(ctx context.Context, name string) (*model.CategoryRule, error) {
	r := new(model.CategoryRule)
	err := q.db.NewSelect().Model(r).Where("r.name = ?", name).Order("r.created_at ASC").Limit(1).Scan(ctx)
	if err != nil {
		return nil, wrap("loading rule "+name, err)
	}
	return r, nil
}

// SaveRule inserts r, or replaces the stored rule with the same ID.
func (q *Queries) SaveRule(ctx context.Context, r *model.CategoryRule) error {
	_, err := q.db.NewInsert().
		Model(r).
		On("CONFLICT (id) DO UPDATE").
		Exec(ctx)
	return wrap("saving rule "+r.Name, err)
}

// SetRuleActive enables or disables a rule.
func (q *Queries) SetRuleActive(ctx context.Context, id string, active bool) error {
	res, err := q.db.NewUpdate().
		Model((*model.CategoryRule)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrap("updating rule "+id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating rule %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteRule removes a rule permanently.
func (q *Queries) DeleteRule(ctx context.Context, id string) error {
	res, err := q.db.NewDelete().
		Model((*model.CategoryRule)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrap("deleting rule "+id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting rule %s: %w", id, ErrNotFound)
	}
	return nil
}
