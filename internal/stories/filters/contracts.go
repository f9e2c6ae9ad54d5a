package filters

import "context"

type (
	Storage interface {
		ListFilters(ctx context.Context) ([]Filter, error)
		SaveFilter(ctx context.Context, f Filter) error
		SaveFilters(ctx context.Context, list []Filter) error
		// DeleteFilter removes the filter and unlinks it from every product.
		DeleteFilter(ctx context.Context, id string) error
	}

	Localizer interface {
		List(lang, key string) []string
	}
)
