package products

import "context"

type Storage interface {
	ListProducts(ctx context.Context) ([]Product, error)
	SaveProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id string) error
}
