package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/idgen"
	"stylelab-server/modules/common/metrics"
	"stylelab-server/modules/common/model"
)

const DefaultProjectName = "Untitled Project"

// Notifier receives project changes after they are stored.
type Notifier interface {
	ProjectUpdated(p *model.Project)
	ProjectDeleted(id string)
}

type nopNotifier struct{}

func (nopNotifier) ProjectUpdated(*model.Project) {}
func (nopNotifier) ProjectDeleted(string)         {}

type Service struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

func NewService(store Store, notifier Notifier) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{store: store, notifier: notifier, now: time.Now}
}

// Get - 프로젝트 단건 조회
func (s *Service) Get(ctx context.Context, id string) (*model.Project, error) {
	return s.store.Get(ctx, id)
}

// List returns every project, most recently updated first.
func (s *Service) List(ctx context.Context) ([]*model.Project, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sortByUpdated(list)
	return list, nil
}

// Create - 빈 프로젝트 생성
func (s *Service) Create(ctx context.Context, name string) (*model.Project, error) {
	p := s.newProject(idgen.ProjectID(), name)
	if err := s.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	metrics.RecordProjectMutation("create")
	log.Info().Msgf("📁 [Projects] Created %s (%s)", p.ID, p.Name)
	s.notifier.ProjectUpdated(p)
	return p, nil
}

// AddItem appends item to projectID, creating the project (with that id, or a fresh one) when it does not exist.
func (s *Service) AddItem(ctx context.Context, projectID, name string, item model.GeneratedImage) (*model.Project, error) {
	var p *model.Project
	if projectID != "" {
		existing, err := s.store.Get(ctx, projectID)
		switch {
		case err == nil:
			p = existing
		case errors.Is(err, ErrNotFound):
		default:
			return nil, err
		}
	} else {
		projectID = idgen.ProjectID()
	}

	now := s.now()
	if p == nil {
		p = s.newProject(projectID, name)
	} else {
		p.Touch(now)
	}

	if item.ID == "" {
		item.ID = idgen.ImageID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	p.Items = append(p.Items, item)

	if err := s.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("add item to %s: %w", p.ID, err)
	}

	metrics.RecordProjectMutation("add_item")
	log.Info().Msgf("🖼️ [Projects] Added %s to %s (%d items)", item.ID, p.ID, len(p.Items))
	s.notifier.ProjectUpdated(p)
	return p, nil
}

// RemoveItem - 아이템 삭제 (없는 itemId도 updatedAt은 갱신)
func (s *Service) RemoveItem(ctx context.Context, projectID, itemID string) (*model.Project, error) {
	p, err := s.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	kept := make([]model.GeneratedImage, 0, len(p.Items))
	for _, it := range p.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	p.Items = kept
	p.Touch(s.now())

	if err := s.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("remove item from %s: %w", p.ID, err)
	}

	metrics.RecordProjectMutation("remove_item")
	log.Info().Msgf("🗑️ [Projects] Removed %s from %s", itemID, p.ID)
	s.notifier.ProjectUpdated(p)
	return p, nil
}

// Delete - 프로젝트 삭제
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	metrics.RecordProjectMutation("delete")
	log.Info().Msgf("🗑️ [Projects] Deleted %s", id)
	s.notifier.ProjectDeleted(id)
	return nil
}

func (s *Service) newProject(id, name string) *model.Project {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultProjectName
	}
	now := s.now()
	return &model.Project{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     []model.GeneratedImage{},
	}
}
