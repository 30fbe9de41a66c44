package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/config"
)

var (
	// ErrStorageDisabled is returned by every operation when no blob credential is configured.
	ErrStorageDisabled = errors.New("blob storage is not configured; set BLOB_READ_WRITE_TOKEN or S3_* to enable persistence")
	// ErrObjectNotFound is returned by Get for missing keys.
	ErrObjectNotFound = errors.New("blob object not found")
)

// Blob - 생성 이미지, 업로드, 프로젝트 문서를 저장하는 blob 스토리지
type Blob interface {
	// Enabled reports whether a storage credential is configured.
	Enabled() bool
	// Put stores data under key (overwriting) and returns its public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Disabled is the degrade-to-ephemeral backend.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Put(context.Context, string, []byte, string) (string, error) {
	return "", ErrStorageDisabled
}

func (Disabled) Get(context.Context, string) ([]byte, error) {
	return nil, ErrStorageDisabled
}

func (Disabled) Delete(context.Context, string) error {
	return ErrStorageDisabled
}

// New - 설정에 따라 blob 백엔드 생성 (자격 증명 없으면 Disabled)
func New(ctx context.Context, cfg *config.Config) (Blob, error) {
	if !cfg.BlobEnabled() {
		log.Warn().Msg("⚠️  [Storage] No blob credential configured - generated images stay ephemeral")
		return Disabled{}, nil
	}

	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		return NewS3Storage(ctx, cfg)
	case config.BlobBackendSupabase:
		return NewSupabaseStorage(cfg, nil), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}
