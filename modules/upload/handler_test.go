package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylelab-server/modules/common/storage"
)

type memBlob struct {
	mu      sync.Mutex
	fail    bool
	objects map[string][]byte
	types   map[string]string
}

func newMemBlob() *memBlob {
	return &memBlob{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *memBlob) Enabled() bool { return true }

func (b *memBlob) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if b.fail {
		return "", errors.New("upload refused")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (b *memBlob) Get(context.Context, string) ([]byte, error) { return nil, storage.ErrObjectNotFound }
func (b *memBlob) Delete(context.Context, string) error        { return nil }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func doUpload(t *testing.T, h *Handler, field, filename string, data []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("note", "hello"))
	require.NoError(t, mw.Close())

	r := mux.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestUpload_StoresToBlob(t *testing.T) {
	blob := newMemBlob()
	data := pngBytes(t)

	rec, out := doUpload(t, NewHandler(blob, 10<<20), "file", "Cat.PNG", data)
	require.Equal(t, http.StatusOK, rec.Code)

	filename := out["filename"].(string)
	assert.True(t, strings.HasPrefix(filename, "uploads/"), filename)
	assert.True(t, strings.HasSuffix(filename, ".png"), filename)
	assert.Equal(t, "https://cdn.example.com/"+filename, out["url"])
	assert.EqualValues(t, len(data), out["size"])
	assert.Equal(t, "image/png", out["type"])
	assert.Equal(t, data, blob.objects[filename])
	assert.Equal(t, "image/png", blob.types[filename])
}

func TestUpload_ExtensionFollowsContent(t *testing.T) {
	blob := newMemBlob()

	rec, out := doUpload(t, NewHandler(blob, 10<<20), "file", "x.html", pngBytes(t))
	require.Equal(t, http.StatusOK, rec.Code)

	filename := out["filename"].(string)
	assert.True(t, strings.HasSuffix(filename, ".png"), filename)
	assert.NotContains(t, filename, ".html")
	assert.Equal(t, "image/png", blob.types[filename])
}

func TestUpload_LocalMode(t *testing.T) {
	data := pngBytes(t)

	rec, out := doUpload(t, NewHandler(storage.Disabled{}, 10<<20), "file", "cat.png", data)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, true, out["isLocal"])
	assert.Equal(t, localMessage, out["message"])
	assert.True(t, strings.HasPrefix(out["url"].(string), "data:image/png;base64,"))
}

func TestUpload_Rejections(t *testing.T) {
	h := NewHandler(newMemBlob(), 1024)

	rec, out := doUpload(t, h, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file provided", out["error"])

	rec, out = doUpload(t, h, "file", "notes.png", []byte("just some text pretending to be a png"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "Invalid file type")

	big := append(pngBytes(t), make([]byte, 2048)...)
	rec, out = doUpload(t, h, "file", "big.png", big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "File too large")
}

func TestUpload_StorageFailure(t *testing.T) {
	blob := newMemBlob()
	blob.fail = true

	rec, out := doUpload(t, NewHandler(blob, 10<<20), "file", "cat.png", pngBytes(t))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to upload file", out["error"])
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpeg", extension("photo.JPEG", "image/jpeg"))
	assert.Equal(t, "jpg", extension("photo.jpg", "image/jpeg"))
	assert.Equal(t, "png", extension("x.html", "image/png"))
	assert.Equal(t, "png", extension("cat.gif", "image/png"))
	assert.Equal(t, "webp", extension("noext", "image/webp"))
	assert.Equal(t, "png", extension("", "application/x-unknown"))
}
