package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/model"
	"stylelab-server/modules/common/storage"
)

const (
	blobPrefix   = "projects/"
	blobIndexKey = "projects/index.json"
)

// BlobStore keeps each project as projects/<id>.json plus an id index document.
type BlobStore struct {
	blob storage.Blob
	// serializes index read-modify-write within this process
	indexMu sync.Mutex
}

func NewBlobStore(blob storage.Blob) *BlobStore {
	return &BlobStore{blob: blob}
}

func projectKey(id string) string {
	return blobPrefix + id + ".json"
}

func (s *BlobStore) Get(ctx context.Context, id string) (*model.Project, error) {
	data, err := s.blob.Get(ctx, projectKey(id))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", id, err)
	}

	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	return &p, nil
}

func (s *BlobStore) List(ctx context.Context) ([]*model.Project, error) {
	ids, err := s.readIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			log.Warn().Msgf("⚠️ [Projects] Index lists missing project %s", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *BlobStore) Save(ctx context.Context, p *model.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", p.ID, err)
	}
	if _, err := s.blob.Put(ctx, projectKey(p.ID), data, "application/json"); err != nil {
		return fmt.Errorf("store project %s: %w", p.ID, err)
	}

	return s.updateIndex(ctx, func(ids map[string]bool) bool {
		if ids[p.ID] {
			return false
		}
		ids[p.ID] = true
		return true
	})
}

func (s *BlobStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.blob.Delete(ctx, projectKey(id)); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}

	return s.updateIndex(ctx, func(ids map[string]bool) bool {
		if !ids[id] {
			return false
		}
		delete(ids, id)
		return true
	})
}

func (s *BlobStore) readIndex(ctx context.Context) ([]string, error) {
	data, err := s.blob.Get(ctx, blobIndexKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load project index: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode project index: %w", err)
	}
	return ids, nil
}

// updateIndex applies mutate to the id set and writes it back when it reports a change.
func (s *BlobStore) updateIndex(ctx context.Context, mutate func(ids map[string]bool) bool) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	current, err := s.readIndex(ctx)
	if err != nil {
		return err
	}
	set := make(map[string]bool, len(current))
	for _, id := range current {
		set[id] = true
	}
	if !mutate(set) {
		return nil
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode project index: %w", err)
	}
	if _, err := s.blob.Put(ctx, blobIndexKey, data, "application/json"); err != nil {
		return fmt.Errorf("store project index: %w", err)
	}
	return nil
}
