package store

import (
	"context"

	"github.com/cleared-dev/transakce/internal/lookups"
	"github.com/cleared-dev/transakce/internal/model"
)

// Lookups loads the active lookup catalog.
func (q *Queries) Lookups(ctx context.Context) (lookups.Catalog, error) {
	var c lookups.Catalog
	if err := q.db.NewSelect().Model(&c.Projects).Where("p.is_active = ?", true).Order("p.id ASC").Scan(ctx); err != nil {
		return c, wrap("loading projects", err)
	}
	if err := q.db.NewSelect().Model(&c.Products).Where("pr.is_active = ?", true).Order("pr.id ASC").Scan(ctx); err != nil {
		return c, wrap("loading products", err)
	}
	if err := q.db.NewSelect().Model(&c.Subgroups).Where("sg.is_active = ?", true).Order("sg.id ASC").Scan(ctx); err != nil {
		return c, wrap("loading subgroups", err)
	}
	return c, nil
}

// SaveLookups inserts or updates every entry of c. Products are written
// before the subgroups that reference them.
func (q *Queries) SaveLookups(ctx context.Context, c lookups.Catalog) error {
	if len(c.Projects) > 0 {
		if _, err := q.db.NewInsert().Model(&c.Projects).On("CONFLICT (id) DO UPDATE").Exec(ctx); err != nil {
			return wrap("saving projects", err)
		}
	}
	if len(c.Products) > 0 {
		if _, err := q.db.NewInsert().Model(&c.Products).On("CONFLICT (id) DO UPDATE").Exec(ctx); err != nil {
			return wrap("saving products", err)
		}
	}
	if len(c.Subgroups) > 0 {
		if _, err := q.db.NewInsert().Model(&c.Subgroups).On("CONFLICT (id) DO UPDATE").Exec(ctx); err != nil {
			return wrap("saving subgroups", err)
		}
	}
	return nil
}

// CountLookups returns how many projects, products and subgroups are stored.
func (q *Queries) CountLookups(ctx context.Context) (projects, products, subgroups int, err error) {
	if projects, err = q.db.NewSelect().Model((*model.Project)(nil)).Count(ctx); err != nil {
		return 0, 0, 0, wrap("counting projects", err)
	}
	if products, err = q.db.NewSelect().Model((*model.Product)(nil)).Count(ctx); err != nil {
		return 0, 0, 0, wrap("counting products", err)
	}
	if subgroups, err = q.db.NewSelect().Model((*model.Subgroup)(nil)).Count(ctx); err != nil {
		return 0, 0, 0, wrap("counting subgroups", err)
	}
	return projects, products, subgroups, nil
}
