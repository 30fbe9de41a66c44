package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylelab-server/modules/common/config"
)

// fakeSupabase is a tiny in-memory Storage REST server.
type fakeSupabase struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	auth    []string
}

func newFakeSupabase() *fakeSupabase {
	return &fakeSupabase{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeSupabase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.auth = append(f.auth, r.Header.Get("Authorization"))
	key := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/")

	switch r.Method {
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		f.types[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Key":"` + key + `"}`))
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"statusCode":"404","error":"not_found","message":"Object not found"}`))
			return
		}
		_, _ = w.Write(data)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusOK)
	}
}

func newTestSupabaseStorage(t *testing.T, fake http.Handler) *SupabaseStorage {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		SupabaseURL:           srv.URL,
		SupabaseStorageBucket: "stylelab",
		BlobReadWriteToken:    "secret-token",
	}
	return NewSupabaseStorage(cfg, srv.Client())
}

func TestSupabaseStorage_PutGetDelete(t *testing.T) {
	fake := newFakeSupabase()
	s := newTestSupabaseStorage(t, fake)
	ctx := context.Background()

	url, err := s.Put(ctx, "generations/1-abc.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "/storage/v1/object/public/stylelab/generations/1-abc.png"), url)
	fake.mu.Lock()
	assert.Equal(t, "image/png", fake.types["stylelab/generations/1-abc.png"])
	assert.Equal(t, "Bearer secret-token", fake.auth[0])
	fake.mu.Unlock()

	data, err := s.Get(ctx, "generations/1-abc.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	require.NoError(t, s.Delete(ctx, "generations/1-abc.png"))

	_, err = s.Get(ctx, "generations/1-abc.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestSupabaseStorage_PutFailure(t *testing.T) {
	s := newTestSupabaseStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"quota exceeded"}`))
	}))

	_, err := s.Put(context.Background(), "k.png", []byte("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSupabaseStorage_PublicBaseOverride(t *testing.T) {
	cfg := &config.Config{
		SupabaseURL:            "https://proj.supabase.co",
		SupabaseStorageBucket:  "b",
		SupabaseStorageBaseURL: "https://cdn.example.com/media",
	}
	s := NewSupabaseStorage(cfg, nil)
	assert.Equal(t, "https://cdn.example.com/media/x/y.png", s.PublicURL("/x/y.png"))
}

func TestDisabled(t *testing.T) {
	var b Blob = Disabled{}
	assert.False(t, b.Enabled())
	_, err := b.Put(context.Background(), "k", nil, "")
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = b.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestNew_SelectsBackend(t *testing.T) {
	b, err := New(context.Background(), &config.Config{BlobBackend: config.BlobBackendSupabase})
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, b)

	b, err = New(context.Background(), &config.Config{
		BlobBackend:        config.BlobBackendSupabase,
		BlobReadWriteToken: "t",
		SupabaseURL:        "https://x.supabase.co",
	})
	require.NoError(t, err)
	assert.IsType(t, &SupabaseStorage{}, b)
}

func TestS3PublicBase(t *testing.T) {
	assert.Equal(t, "https://bkt.s3.us-east-1.amazonaws.com/",
		s3PublicBase(&config.Config{S3Bucket: "bkt", S3Region: "us-east-1"}))
	assert.Equal(t, "http://minio:9000/bkt/",
		s3PublicBase(&config.Config{S3Bucket: "bkt", S3Endpoint: "http://minio:9000/"}))
	assert.Equal(t, "https://cdn.example.com/bkt/",
		s3PublicBase(&config.Config{S3Bucket: "bkt", S3Endpoint: "http://minio:9000", S3PublicEndpoint: "https://cdn.example.com"}))
}
