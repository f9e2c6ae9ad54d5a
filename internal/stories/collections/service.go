package collections

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

var (
	ErrNotFound     = errors.New("collection not found")
	ErrInvalidInput = errors.New("missing required fields")
)

type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

func (s *Service) List(ctx context.Context) ([]Collection, error) {
	list, err := s.storage.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return list, nil
}

// Create stores c under the next numeric id.
func (s *Service) Create(ctx context.Context, c Collection) (*Collection, error) {
	if c.Title == "" || c.Description == "" || c.Slug == "" {
		return nil, ErrInvalidInput
	}

	list, err := s.storage.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	c.ID = NextNumericID(lo.Map(list, func(c Collection, _ int) string { return c.ID }))
	if c.Sections == nil {
		c.Sections = []Section{}
	}

	if err := s.storage.SaveCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("save collection: %w", err)
	}
	return &c, nil
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*Collection, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	list, err := s.storage.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	c, ok := lo.Find(list, func(c Collection) bool { return c.ID == id })
	if !ok {
		return nil, ErrNotFound
	}

	c.Title = lo.CoalesceOrEmpty(p.Title, c.Title)
	c.Description = lo.CoalesceOrEmpty(p.Description, c.Description)
	c.Slug = lo.CoalesceOrEmpty(p.Slug, c.Slug)
	c.Image = lo.CoalesceOrEmpty(p.Image, c.Image)
	if p.Sections != nil {
		c.Sections = p.Sections
	}

	if err := s.storage.SaveCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("save collection: %w", err)
	}
	return &c, nil
}

// Reorder replaces the whole collection list with the given order.
func (s *Service) Reorder(ctx context.Context, list []Collection) error {
	if err := s.storage.SaveCollections(ctx, list); err != nil {
		return fmt.Errorf("save collections: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.storage.DeleteCollection(ctx, id); err != nil {
		return fmt.Errorf("delete collection %s: %w", id, err)
	}
	return nil
}

// NextNumericID returns max+1 over the ids that parse as integers, "1" when
// there are none.
func NextNumericID(ids []string) string {
	maxID := 0
	for _, id := range ids {
		if n, err := strconv.Atoi(id); err == nil && n > maxID {
			maxID = n
		}
	}
	return strconv.Itoa(maxID + 1)
}
