package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/idgen"
	"stylelab-server/modules/common/imageref"
	"stylelab-server/modules/common/metrics"
	"stylelab-server/modules/common/storage"
)

const (
	uploadsPrefix = "uploads"
	// multipart envelope overhead allowed on top of the file limit
	formOverhead = 1 << 20
	localMessage = "BLOB_READ_WRITE_TOKEN not configured. Using base64 encoding."
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Response - 스토리지 업로드 결과
type Response struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	Type     string `json:"type"`
}

// LocalResponse - 스토리지 미설정 시 data URL 응답
type LocalResponse struct {
	URL     string `json:"url"`
	IsLocal bool   `json:"isLocal"`
	Message string `json:"message"`
}

type Handler struct {
	blob     storage.Blob
	maxBytes int64
}

func NewHandler(blob storage.Blob, maxBytes int64) *Handler {
	if blob == nil {
		blob = storage.Disabled{}
	}
	return &Handler{blob: blob, maxBytes: maxBytes}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/upload", h.HandleUpload).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/upload", h.HandleUpload).Methods("POST", "OPTIONS")
}

// HandleUpload - POST /upload (multipart "file")
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	tooLarge := fmt.Sprintf("File too large. Maximum size is %dMB", h.maxBytes>>20)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+formOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusBadRequest, tooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		log.Error().Err(err).Msg("❌ [Upload] Failed to read file")
		writeError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	if int64(len(data)) > h.maxBytes {
		metrics.RecordUpload("unknown", "too_large")
		writeError(w, http.StatusBadRequest, tooLarge)
		return
	}

	contentType := mimetype.Detect(data).String()
	if !allowedTypes[contentType] {
		metrics.RecordUpload(contentType, "rejected")
		log.Warn().Msgf("⚠️ [Upload] Rejected %s (%s)", header.Filename, contentType)
		writeError(w, http.StatusBadRequest, "Invalid file type. Please upload an image (JPEG, PNG, GIF, or WebP)")
		return
	}

	if !h.blob.Enabled() {
		metrics.RecordUpload(contentType, "local")
		writeJSON(w, http.StatusOK, LocalResponse{
			URL:     imageref.Inline(contentType, data).String(),
			IsLocal: true,
			Message: localMessage,
		})
		return
	}

	key := idgen.BlobPath(uploadsPrefix, extension(header.Filename, contentType))
	url, err := h.blob.Put(r.Context(), key, data, contentType)
	if err != nil {
		metrics.RecordUpload(contentType, "failed")
		log.Error().Err(err).Msgf("❌ [Upload] Failed to store %s", key)
		writeError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	metrics.RecordUpload(contentType, "success")
	log.Info().Msgf("📤 [Upload] %s → %s (%d bytes)", header.Filename, key, len(data))
	writeJSON(w, http.StatusOK, Response{
		URL:      url,
		Filename: key,
		Size:     len(data),
		Type:     contentType,
	})
}

// extension - 감지된 타입 기준, 파일명 확장자는 같은 타입일 때만 유지 (jpeg/jpg)
func extension(filename, contentType string) string {
	mt := mimetype.Lookup(contentType)
	if mt == nil || mt.Extension() == "" {
		return "png"
	}
	detected := strings.TrimPrefix(mt.Extension(), ".")
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == detected || (detected == "jpg" && ext == "jpeg") {
		return ext
	}
	return detected
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
