package products

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	legacyImagePrefix = "/images/products/"
	placeholderImage  = "/images/catalog-product.jpg"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrInvalidInput = errors.New("invalid product data")
)

type Service struct {
	storage Storage
	newID   func() string
}

func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
		newID:   newProductID,
	}
}

// newProductID is the creation time in milliseconds with a random suffix.
func newProductID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + strconv.Itoa(rand.IntN(1000))
}

// Normalize makes a stored product safe to render: images fall back to the
// single image field, legacy image paths point to the placeholder, and
// list fields are never null.
func Normalize(p Product) Product {
	images := lo.Compact(p.Images)
	if len(images) == 0 && p.Image != "" {
		images = []string{p.Image}
	}
	p.Images = lo.Map(images, func(img string, _ int) string {
		if strings.HasPrefix(img, legacyImagePrefix) {
			return placeholderImage
		}
		return img
	})

	p.FilterIDs = lo.Compact(p.FilterIDs)
	p.Tags = orEmpty(p.Tags)
	p.Sizes = orEmpty(p.Sizes)
	p.Colors = orEmpty(p.Colors)
	p.Variants = orEmpty(p.Variants)
	return p
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	list, err := s.storage.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return lo.Map(list, func(p Product, _ int) Product { return Normalize(p) }), nil
}

// Create stores a new product. A caller-provided id is kept.
func (s *Service) Create(ctx context.Context, p Product) (*Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, ErrInvalidInput
	}
	if p.ID == "" {
		p.ID = s.newID()
	}

	p = Normalize(p)
	if err := s.storage.SaveProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return &p, nil
}

// Update applies patch to the stored product with the given id.
func (s *Service) Update(ctx context.Context, id string, patch func(*Product) error) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidInput
	}

	list, err := s.storage.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	existing, ok := lo.Find(list, func(p Product) bool { return p.ID == id })
	if !ok {
		return nil, ErrNotFound
	}

	if err := patch(&existing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	existing.ID = id
	existing.Name = strings.TrimSpace(existing.Name)
	if existing.Name == "" {
		return nil, ErrInvalidInput
	}

	updated := Normalize(existing)
	if err := s.storage.SaveProduct(ctx, updated); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.storage.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}
