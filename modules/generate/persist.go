package generate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/idgen"
	"stylelab-server/modules/common/imageref"
	"stylelab-server/modules/common/metrics"
	"stylelab-server/modules/common/storage"
	"stylelab-server/modules/common/utils"
)

const (
	generationsPrefix = "generations"
	webpQuality       = 90
)

// Persister copies generated images into blob storage.
type Persister struct {
	blob        storage.Blob
	convertWebP bool
	httpClient  *http.Client
}

func NewPersister(blob storage.Blob, convertWebP bool, fetchTimeout time.Duration) *Persister {
	if blob == nil {
		blob = storage.Disabled{}
	}
	return &Persister{
		blob:        blob,
		convertWebP: convertWebP,
		httpClient:  &http.Client{Timeout: fetchTimeout},
	}
}

// Persist returns the stored URL, or ref unchanged when storage is disabled or the copy fails.
func (p *Persister) Persist(ctx context.Context, ref imageref.Ref) imageref.Ref {
	if !p.blob.Enabled() {
		metrics.RecordPersistence("skipped")
		return ref
	}

	url, err := p.store(ctx, ref)
	if err != nil {
		metrics.RecordPersistence("failed")
		log.Error().Err(err).Msg("❌ [Generate] Error saving to blob, returning original reference")
		return ref
	}

	metrics.RecordPersistence("success")
	return imageref.Remote(url)
}

func (p *Persister) store(ctx context.Context, ref imageref.Ref) (string, error) {
	data := ref.Data()
	if !ref.IsInline() {
		fetched, err := p.download(ctx, ref.URL())
		if err != nil {
			return "", &Error{Kind: KindPersistence, Message: "failed to fetch generated image", Err: err}
		}
		data = fetched
	}

	contentType := mimetype.Detect(data).String()
	ext := "png"
	if p.convertWebP {
		converted, err := utils.ConvertToWebP(data, webpQuality)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ [Generate] WebP conversion failed, storing original bytes")
		} else {
			data, contentType, ext = converted, "image/webp", "webp"
		}
	}

	key := idgen.BlobPath(generationsPrefix, ext)
	url, err := p.blob.Put(ctx, key, data, contentType)
	if err != nil {
		return "", &Error{Kind: KindPersistence, Message: "failed to upload generated image", Err: err}
	}
	log.Info().Msgf("💾 [Generate] Persisted %s (%d bytes)", key, len(data))
	return url, nil
}

func (p *Persister) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
