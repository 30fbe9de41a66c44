package generate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/model"
)

const maxRequestBytes = 32 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/generate", h.HandleGenerate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/generate", h.HandleGenerate).Methods("POST", "OPTIONS")
}

// HandleGenerate - POST /generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req model.GenerationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("⚠️ [Generate] Invalid request body")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: MsgInvalidBody})
		return
	}

	resp, err := h.service.Generate(r.Context(), &req)
	if err != nil {
		var genErr *Error
		if errors.As(err, &genErr) && genErr.Kind == KindValidation {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: genErr.Message})
			return
		}

		if demo, ok := h.service.Fallback(req.StyleID); ok {
			log.Info().Msgf("🎭 [Generate] Returning demo image for style %s", req.StyleID)
			writeJSON(w, http.StatusOK, demo)
			return
		}

		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   MsgGenerationFailed,
			Details: Details(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
