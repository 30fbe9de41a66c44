package projects

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylelab-server/modules/common/model"
)

func newTestRouter() *mux.Router {
	r := mux.NewRouter()
	NewHandler(NewService(NewMemoryStore(), nil)).RegisterRoutes(r)
	return r
}

func call(t *testing.T, r http.Handler, method, target, body string, out interface{}) int {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestHandler_Flow(t *testing.T) {
	r := newTestRouter()

	var created model.Project
	require.Equal(t, http.StatusOK, call(t, r, http.MethodPost, "/api/projects", `{"name":"Trip"}`, &created))
	assert.Equal(t, "Trip", created.Name)

	var updated model.Project
	body := `{"projectId":"` + created.ID + `","item":{"id":"img-1","imageUrl":"https://cdn.example.com/1.png","prompt":"beach","model":"openai","createdAt":"2025-01-02T03:04:05Z"}}`
	require.Equal(t, http.StatusOK, call(t, r, http.MethodPost, "/projects", body, &updated))
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "beach", updated.Items[0].Prompt)

	var fetched model.Project
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/projects?id="+created.ID, "", &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	var list ListResponse
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/api/projects", "", &list))
	assert.Equal(t, 1, list.Total)

	var removed DeleteResponse
	require.Equal(t, http.StatusOK, call(t, r, http.MethodDelete, "/projects?id="+created.ID+"&itemId=img-1", "", &removed))
	assert.True(t, removed.Success)
	require.NotNil(t, removed.Project)
	assert.Empty(t, removed.Project.Items)

	var deleted map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, r, http.MethodDelete, "/projects?id="+created.ID, "", &deleted))
	assert.Equal(t, map[string]interface{}{"success": true}, deleted)

	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/api/projects", "", &list))
	assert.Equal(t, 0, list.Total)
	assert.NotNil(t, list.Projects)
}

func TestHandler_Errors(t *testing.T) {
	r := newTestRouter()
	var out map[string]string

	assert.Equal(t, http.StatusBadRequest, call(t, r, http.MethodPost, "/projects", `{}`, &out))
	assert.Equal(t, "Either project name or item is required", out["error"])

	assert.Equal(t, http.StatusBadRequest, call(t, r, http.MethodPost, "/projects", `not json`, &out))

	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodGet, "/projects?id=proj-x", "", &out))
	assert.Equal(t, "Project not found", out["error"])

	assert.Equal(t, http.StatusBadRequest, call(t, r, http.MethodDelete, "/projects", "", &out))
	assert.Equal(t, "Project ID is required", out["error"])

	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodDelete, "/projects?id=proj-x", "", &out))
	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodDelete, "/projects?id=proj-x&itemId=img-1", "", &out))
}
