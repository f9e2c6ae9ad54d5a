package projects

import "context"

type Storage interface {
	ListProjects(ctx context.Context) ([]Project, error)
	// SaveProject upserts p and keeps the list sorted by Order.
	SaveProject(ctx context.Context, p Project) error
	SaveProjects(ctx context.Context, list []Project) error
	DeleteProject(ctx context.Context, id string) error
}
