package filters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

var (
	ErrNotFound     = errors.New("filter not found")
	ErrInvalidInput = errors.New("invalid filter data")
)

type Service struct {
	storage   Storage
	localizer Localizer
	lang      string
	logger    *slog.Logger
	newID     func() string
}

func NewService(storage Storage, localizer Localizer, lang string, logger *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		localizer: localizer,
		lang:      lang,
		logger:    logger,
		newID:     newFilterID,
	}
}

func newFilterID() string {
	return "filter-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + strconv.Itoa(rand.IntN(1000))
}

// List returns all filters. An empty catalog is seeded with the default
// garment categories first.
func (s *Service) List(ctx context.Context) ([]Filter, error) {
	list, err := s.storage.ListFilters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	if len(list) > 0 {
		return list, nil
	}

	taken := map[string]struct{}{}
	seeded := lo.Map(s.localizer.List(s.lang, "filter.defaults"), func(name string, _ int) Filter {
		slug := UniqueSlug(Slugify(name), taken)
		taken[slug] = struct{}{}
		return Filter{ID: "filter-" + slug, Name: name, Slug: slug}
	})
	if len(seeded) == 0 {
		return list, nil
	}

	if err := s.storage.SaveFilters(ctx, seeded); err != nil {
		return nil, fmt.Errorf("seed filters: %w", err)
	}
	s.logger.Info("Seeded default filters", "count", len(seeded))
	return seeded, nil
}

func (s *Service) Create(ctx context.Context, name string) (*Filter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	list, err := s.storage.ListFilters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}

	f := Filter{
		ID:   s.newID(),
		Name: name,
		Slug: UniqueSlug(Slugify(name), slugSet(list, "")),
	}
	if err := s.storage.SaveFilter(ctx, f); err != nil {
		return nil, fmt.Errorf("save filter: %w", err)
	}
	return &f, nil
}

// Rename changes the name and recomputes the slug, ignoring the filter's own
// current slug when checking uniqueness.
func (s *Service) Rename(ctx context.Context, id, name string) (*Filter, error) {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, ErrInvalidInput
	}

	list, err := s.storage.ListFilters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	f, ok := lo.Find(list, func(f Filter) bool { return f.ID == id })
	if !ok {
		return nil, ErrNotFound
	}

	f.Name = name
	f.Slug = UniqueSlug(Slugify(name), slugSet(list, id))
	if err := s.storage.SaveFilter(ctx, f); err != nil {
		return nil, fmt.Errorf("save filter: %w", err)
	}
	return &f, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.storage.DeleteFilter(ctx, id); err != nil {
		return fmt.Errorf("delete filter %s: %w", id, err)
	}
	return nil
}

func slugSet(list []Filter, exceptID string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, f := range list {
		if f.ID != exceptID {
			set[f.Slug] = struct{}{}
		}
	}
	return set
}
