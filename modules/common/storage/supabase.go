package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/config"
)

// SupabaseStorage talks to the Supabase Storage REST API with the blob read/write token.
type SupabaseStorage struct {
	baseURL       string
	bucket        string
	token         string
	publicBaseURL string
	httpClient    *http.Client
}

// NewSupabaseStorage - Supabase Storage 클라이언트 생성 (httpClient nil이면 기본값)
func NewSupabaseStorage(cfg *config.Config, httpClient *http.Client) *SupabaseStorage {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	publicBase := strings.TrimSpace(cfg.SupabaseStorageBaseURL)
	if publicBase == "" {
		publicBase = fmt.Sprintf("%s/storage/v1/object/public/%s/", cfg.SupabaseURL, cfg.SupabaseStorageBucket)
	}
	if !strings.HasSuffix(publicBase, "/") {
		publicBase += "/"
	}

	return &SupabaseStorage{
		baseURL:       cfg.SupabaseURL,
		bucket:        cfg.SupabaseStorageBucket,
		token:         cfg.BlobReadWriteToken,
		publicBaseURL: publicBase,
		httpClient:    httpClient,
	}
}

func (s *SupabaseStorage) Enabled() bool { return true }

func (s *SupabaseStorage) objectURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, strings.TrimPrefix(key, "/"))
}

// PublicURL - 공개 다운로드 URL
func (s *SupabaseStorage) PublicURL(key string) string {
	return s.publicBaseURL + strings.TrimPrefix(key, "/")
}

// Put - Supabase Storage에 업로드 (x-upsert로 덮어쓰기)
func (s *SupabaseStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	log.Debug().Msgf("📤 [Storage] Uploading to supabase: %s (%d bytes)", key, len(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(key), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	log.Info().Msgf("✅ [Storage] Uploaded %s (%d bytes)", key, len(data))
	return s.PublicURL(key), nil
}

// Get - 인증된 다운로드
func (s *SupabaseStorage) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isSupabaseNotFound(resp.StatusCode, body) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("download failed with status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Delete - 객체 삭제 (없는 객체는 성공 처리)
func (s *SupabaseStorage) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(key), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	if isSupabaseNotFound(resp.StatusCode, body) {
		return nil
	}
	return fmt.Errorf("delete failed with status %d: %s", resp.StatusCode, string(body))
}

// Supabase는 없는 객체에 400 + {"statusCode":"404"}를 돌려주기도 함
func isSupabaseNotFound(status int, body []byte) bool {
	if status == http.StatusNotFound {
		return true
	}
	if status != http.StatusBadRequest {
		return false
	}
	text := strings.ToLower(string(body))
	return strings.Contains(text, "not_found") || strings.Contains(text, "not found") || strings.Contains(text, `"statuscode":"404"`)
}
