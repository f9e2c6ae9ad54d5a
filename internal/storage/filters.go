package storage

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"staysee-store/internal/stories/filters"
)

func (s *storageImpl) filters() collection[filters.Filter] {
	return newCollection(s.kv, filtersKey, func(f filters.Filter) string { return f.ID })
}

func (s *storageImpl) ListFilters(ctx context.Context) ([]filters.Filter, error) {
	return s.filters().all(ctx), nil
}

func (s *storageImpl) SaveFilter(ctx context.Context, f filters.Filter) error {
	return s.filters().save(ctx, f)
}

func (s *storageImpl) SaveFilters(ctx context.Context, list []filters.Filter) error {
	return s.filters().replace(ctx, list)
}

// DeleteFilter removes the filter, then drops its id from the filterIds of
// every product in a single write of the product collection.
func (s *storageImpl) DeleteFilter(ctx context.Context, id string) error {
	if err := s.filters().delete(ctx, id); err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}

	list := s.products().all(ctx)
	changed := false
	for i := range list {
		if !lo.Contains(list[i].FilterIDs, id) {
			continue
		}
		list[i].FilterIDs = lo.Without(list[i].FilterIDs, id)
		changed = true
	}
	if !changed {
		return nil
	}

	if err := s.products().replace(ctx, list); err != nil {
		return fmt.Errorf("unlink filter from products: %w", err)
	}
	return nil
}
