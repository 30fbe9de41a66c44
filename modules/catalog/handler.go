package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/fallback"
	"stylelab-server/modules/common/model"
)

const defaultLimit = 100

type Handler struct {
	catalog *Catalog
}

// ListResponse - GET /styles 목록 응답
type ListResponse struct {
	Styles []model.Style `json:"styles"`
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

func NewHandler(c *Catalog) *Handler {
	return &Handler{catalog: c}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/styles", h.HandleStyles).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/styles", h.HandleStyles).Methods("GET", "OPTIONS")
	r.HandleFunc("/models", h.HandleModels).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/models", h.HandleModels).Methods("GET", "OPTIONS")
}

// HandleStyles - GET /styles?id|category|q|limit|offset
func (h *Handler) HandleStyles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	query := r.URL.Query()

	if id := query.Get("id"); id != "" {
		style, ok := h.catalog.GetByID(id)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Style not found"})
			return
		}
		json.NewEncoder(w).Encode(style)
		return
	}

	result := h.catalog.Search(query.Get("q"))
	result = FilterCategory(result, query.Get("category"))

	offset := fallback.SafeInt(query.Get("offset"), 0)
	limit := fallback.SafeInt(query.Get("limit"), defaultLimit)

	log.Debug().Msgf("🔍 [Catalog] q=%q category=%q -> %d styles", query.Get("q"), query.Get("category"), len(result))

	json.NewEncoder(w).Encode(ListResponse{
		Styles: Paginate(result, offset, limit),
		Total:  len(result),
		Offset: offset,
		Limit:  limit,
	})
}

// HandleModels - GET /models (모델, 비율, 카테고리 목록)
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"models":       model.Models,
		"aspectRatios": model.AspectRatios,
		"categories":   model.Categories,
	})
}
