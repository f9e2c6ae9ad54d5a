package collections

import "context"

type Storage interface {
	ListCollections(ctx context.Context) ([]Collection, error)
	SaveCollection(ctx context.Context, c Collection) error
	SaveCollections(ctx context.Context, list []Collection) error
	DeleteCollection(ctx context.Context, id string) error
}
