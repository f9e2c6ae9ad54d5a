package storage

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"staysee-store/internal/stories/projects"
)

func (s *storageImpl) projects() collection[projects.Project] {
	return newCollection(s.kv, projectsKey, func(p projects.Project) string { return p.ID })
}

func (s *storageImpl) ListProjects(ctx context.Context) ([]projects.Project, error) {
	return s.projects().all(ctx), nil
}

func (s *storageImpl) SaveProject(ctx context.Context, p projects.Project) error {
	list := s.projects().all(ctx)
	_, idx, found := lo.FindIndexOf(list, func(x projects.Project) bool { return x.ID == p.ID })
	if found {
		list[idx] = p
	} else {
		list = append(list, p)
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
	return s.projects().replace(ctx, list)
}

func (s *storageImpl) SaveProjects(ctx context.Context, list []projects.Project) error {
	return s.projects().replace(ctx, list)
}

func (s *storageImpl) DeleteProject(ctx context.Context, id string) error {
	return s.projects().delete(ctx, id)
}
