package projects

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/supabase-go"
)

// fakePostgREST serves a single table keyed by id.
type fakePostgREST struct {
	mu   sync.Mutex
	rows map[string]json.RawMessage
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if !strings.HasSuffix(r.URL.Path, "/rest/v1/projects") {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"unknown table"}`))
		return
	}
	id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")

	switch r.Method {
	case http.MethodGet:
		out := []json.RawMessage{}
		for key, row := range f.rows {
			if id == "" || key == id {
				out = append(out, row)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var row struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &row)
		f.rows[row.ID] = body
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("[]"))
	case http.MethodDelete:
		row, ok := f.rows[id]
		delete(f.rows, id)
		if !ok {
			_, _ = w.Write([]byte("[]"))
			return
		}
		_, _ = w.Write([]byte("[" + string(row) + "]"))
	}
}

func TestSupabaseStore(t *testing.T) {
	fake := &fakePostgREST{rows: map[string]json.RawMessage{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := supabase.NewClient(srv.URL, "service-key", &supabase.ClientOptions{})
	require.NoError(t, err)
	s := NewSupabaseStore(client, "projects")
	ctx := context.Background()

	_, err = s.Get(ctx, "proj-a")
	assert.ErrorIs(t, err, ErrNotFound)

	p := sampleProject("proj-a", time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, p))

	fake.mu.Lock()
	stored := string(fake.rows["proj-a"])
	fake.mu.Unlock()
	assert.Contains(t, stored, `"updated_at"`)
	assert.Contains(t, stored, `"items"`)

	got, err := s.Get(ctx, "proj-a")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	require.Len(t, got.Items, 1)
	assert.True(t, got.UpdatedAt.Equal(p.UpdatedAt))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, "proj-a"))
	assert.ErrorIs(t, s.Delete(ctx, "proj-a"), ErrNotFound)
}
