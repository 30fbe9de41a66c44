package projects

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/model"
)

type Handler struct {
	service *Service
}

// ListResponse - GET /projects 목록 응답
type ListResponse struct {
	Projects []*model.Project `json:"projects"`
	Total    int              `json:"total"`
}

// SaveRequest - POST /projects 바디
type SaveRequest struct {
	Name      string                `json:"name,omitempty"`
	Item      *model.GeneratedImage `json:"item,omitempty"`
	ProjectID string                `json:"projectId,omitempty"`
}

// DeleteResponse - DELETE /projects 응답 (itemId 삭제 시 project 포함)
type DeleteResponse struct {
	Success bool           `json:"success"`
	Project *model.Project `json:"project,omitempty"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/projects", h.HandleGet).Methods("GET")
	r.HandleFunc("/api/projects", h.HandleGet).Methods("GET")
	r.HandleFunc("/projects", h.HandleSave).Methods("POST")
	r.HandleFunc("/api/projects", h.HandleSave).Methods("POST")
	r.HandleFunc("/projects", h.HandleDelete).Methods("DELETE")
	r.HandleFunc("/api/projects", h.HandleDelete).Methods("DELETE")
	r.HandleFunc("/projects", preflight).Methods("OPTIONS")
	r.HandleFunc("/api/projects", preflight).Methods("OPTIONS")
}

// HandleGet - GET /projects[?id]
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if id := r.URL.Query().Get("id"); id != "" {
		p, err := h.service.Get(r.Context(), id)
		if err != nil {
			h.writeStoreError(w, err, "Failed to fetch projects")
			return
		}
		writeJSON(w, http.StatusOK, p)
		return
	}

	list, err := h.service.List(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "Failed to fetch projects")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Projects: list, Total: len(list)})
}

// HandleSave - POST /projects {name?, item?, projectId?}
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" && req.Item == nil {
		writeError(w, http.StatusBadRequest, "Either project name or item is required")
		return
	}

	var (
		p   *model.Project
		err error
	)
	if req.Item == nil {
		p, err = h.service.Create(r.Context(), req.Name)
	} else {
		p, err = h.service.AddItem(r.Context(), req.ProjectID, req.Name, *req.Item)
	}
	if err != nil {
		h.writeStoreError(w, err, "Failed to create/update project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete - DELETE /projects?id[&itemId]
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	query := r.URL.Query()

	id := query.Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Project ID is required")
		return
	}

	if itemID := query.Get("itemId"); itemID != "" {
		p, err := h.service.RemoveItem(r.Context(), id, itemID)
		if err != nil {
			h.writeStoreError(w, err, "Failed to delete project")
			return
		}
		writeJSON(w, http.StatusOK, DeleteResponse{Success: true, Project: p})
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "Failed to delete project")
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, fallbackMsg string) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	log.Error().Err(err).Msg("❌ [Projects] Store error")
	writeError(w, http.StatusInternalServerError, fallbackMsg)
}

func preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
