package projects

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylelab-server/modules/common/model"
	"stylelab-server/modules/common/storage"
)

// memBlob is an in-memory storage.Blob.
type memBlob struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemBlob() *memBlob {
	return &memBlob{objects: map[string][]byte{}}
}

func (b *memBlob) Enabled() bool { return true }

func (b *memBlob) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = append([]byte(nil), data...)
	return "https://blob.example.com/" + key, nil
}

func (b *memBlob) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (b *memBlob) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func sampleProject(id string, updated time.Time) *model.Project {
	return &model.Project{
		ID:        id,
		Name:      "Project " + id,
		CreatedAt: updated.Add(-time.Hour),
		UpdatedAt: updated,
		Items: []model.GeneratedImage{
			{ID: "img-1", ImageURL: "https://cdn.example.com/1.png", Prompt: "a cat", Model: "openai", CreatedAt: updated},
		},
	}
}

// exerciseStore runs the shared Store contract.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Get(ctx, "proj-missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "proj-missing"), ErrNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	a := sampleProject("proj-a", base)
	b := sampleProject("proj-b", base.Add(time.Minute))
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))

	got, err := s.Get(ctx, "proj-a")
	require.NoError(t, err)
	assert.Equal(t, "Project proj-a", got.Name)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "a cat", got.Items[0].Prompt)
	assert.True(t, got.UpdatedAt.Equal(base))

	a.Name = "Renamed"
	a.Items = append(a.Items, model.GeneratedImage{ID: "img-2", ImageURL: "https://cdn.example.com/2.png"})
	require.NoError(t, s.Save(ctx, a))
	got, err = s.Get(ctx, "proj-a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, got.Items, 2)

	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.Delete(ctx, "proj-a"))
	_, err = s.Get(ctx, "proj-a")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "proj-b", list[0].ID)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p := sampleProject("proj-a", time.Now())
	require.NoError(t, s.Save(ctx, p))

	p.Items[0].Prompt = "changed after save"
	got, err := s.Get(ctx, "proj-a")
	require.NoError(t, err)
	assert.Equal(t, "a cat", got.Items[0].Prompt)

	got.Items = append(got.Items, model.GeneratedImage{ID: "extra"})
	again, _ := s.Get(ctx, "proj-a")
	assert.Len(t, again.Items, 1)
}

func TestBlobStore(t *testing.T) {
	blob := newMemBlob()
	exerciseStore(t, NewBlobStore(blob))

	_, ok := blob.objects["projects/proj-b.json"]
	assert.True(t, ok)
	assert.JSONEq(t, `["proj-b"]`, string(blob.objects[blobIndexKey]))
}

func TestBlobStore_SkipsDanglingIndexEntries(t *testing.T) {
	blob := newMemBlob()
	s := NewBlobStore(blob)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleProject("proj-a", time.Now())))

	blob.objects[blobIndexKey] = []byte(`["proj-a","proj-ghost"]`)
	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "proj-a", list[0].ID)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	exerciseStore(t, NewRedisStore(rdb))

	assert.True(t, mr.Exists("projects:proj-b"))
	members, err := mr.Members(redisIndexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"proj-b"}, members)
}

func TestRedisStore_IgnoresIndexWithoutDocument(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewRedisStore(rdb)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleProject("proj-a", time.Now())))
	_, err := mr.SAdd(redisIndexKey, "proj-ghost")
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "proj-a", list[0].ID)
}
