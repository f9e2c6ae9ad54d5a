package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"staysee-store/internal/stories/collections"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrInvalidInput = errors.New("missing required fields")
)

type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

func (s *Service) List(ctx context.Context) ([]Project, error) {
	list, err := s.storage.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return list, nil
}

// Create stores p under the next numeric id. Without an explicit order the
// project goes last.
func (s *Service) Create(ctx context.Context, p Project, order *int) (*Project, error) {
	if p.Type == "" {
		return nil, ErrInvalidInput
	}

	list, err := s.storage.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	p.ID = collections.NextNumericID(lo.Map(list, func(p Project, _ int) string { return p.ID }))
	if order != nil {
		p.Order = *order
	} else {
		p.Order = lo.Reduce(list, func(acc int, p Project, _ int) int { return max(acc, p.Order) }, -1) + 1
	}

	if err := s.storage.SaveProject(ctx, p); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	return &p, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Project, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	list, err := s.storage.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	p, ok := lo.Find(list, func(p Project) bool { return p.ID == id })
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Type != "" {
		p.Type = patch.Type
	}
	if patch.Title != nil {
		p.Title = patch.Title
	}
	if patch.Image != nil {
		p.Image = patch.Image
	}
	if patch.Text != nil {
		p.Text = patch.Text
	}
	if patch.Order != nil {
		p.Order = *patch.Order
	}

	if err := s.storage.SaveProject(ctx, p); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	return &p, nil
}

func (s *Service) Reorder(ctx context.Context, list []Project) error {
	if err := s.storage.SaveProjects(ctx, list); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.storage.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}
