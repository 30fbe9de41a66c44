package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"

	"stylelab-server/modules/common/model"
)

// projectRow - projects 테이블 레코드 (items는 jsonb)
type projectRow struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Items     []model.GeneratedImage `json:"items"`
}

func toRow(p *model.Project) projectRow {
	items := p.Items
	if items == nil {
		items = []model.GeneratedImage{}
	}
	return projectRow{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt, Items: items}
}

func (r projectRow) toProject() *model.Project {
	items := r.Items
	if items == nil {
		items = []model.GeneratedImage{}
	}
	return &model.Project{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Items: items}
}

// SupabaseStore keeps projects in a PostgREST table.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

func NewSupabaseStore(client *supabase.Client, table string) *SupabaseStore {
	return &SupabaseStore{client: client, table: table}
}

func (s *SupabaseStore) Get(_ context.Context, id string) (*model.Project, error) {
	data, _, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to query project %s: %w", id, err)
	}

	var rows []projectRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toProject(), nil
}

func (s *SupabaseStore) List(_ context.Context) ([]*model.Project, error) {
	data, _, err := s.client.From(s.table).
		Select("*", "", false).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var rows []projectRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse projects: %w", err)
	}
	out := make([]*model.Project, len(rows))
	for i, r := range rows {
		out[i] = r.toProject()
	}
	return out, nil
}

func (s *SupabaseStore) Save(_ context.Context, p *model.Project) error {
	_, _, err := s.client.From(s.table).
		Insert(toRow(p), true, "id", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to upsert project %s: %w", p.ID, err)
	}
	return nil
}

func (s *SupabaseStore) Delete(_ context.Context, id string) error {
	data, _, err := s.client.From(s.table).
		Delete("representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}

	var rows []projectRow
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}
