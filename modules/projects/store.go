package projects

import (
	"context"
	"errors"
	"sort"

	"stylelab-server/modules/common/model"
)

// ErrNotFound is returned by every store for unknown project ids.
var ErrNotFound = errors.New("project not found")

// Store persists whole project documents.
type Store interface {
	Get(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
	Save(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id string) error
}

// sortByUpdated - 최근 수정 순 정렬
func sortByUpdated(list []*model.Project) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
}
