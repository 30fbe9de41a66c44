package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/config"
	"stylelab-server/modules/common/fallback"
	"stylelab-server/modules/common/imageref"
	"stylelab-server/modules/common/metrics"
	"stylelab-server/modules/common/utils"
)

const styleReferenceType = "REFERENCE_TYPE_STYLE"

// GeminiInput - Imagen 호출 입력
type GeminiInput struct {
	Prompt            string
	Pro               bool
	ReferenceImageURL string
	AspectRatio       string
}

// Imagen predict wire types
type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt          string           `json:"prompt"`
	ReferenceImages []referenceImage `json:"referenceImages,omitempty"`
}

type referenceImage struct {
	ReferenceType  string         `json:"referenceType"`
	ReferenceID    int            `json:"referenceId"`
	ReferenceImage referenceBytes `json:"referenceImage"`
}

type referenceBytes struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type predictParameters struct {
	SampleCount      int    `json:"sampleCount"`
	AspectRatio      string `json:"aspectRatio"`
	PersonGeneration string `json:"personGeneration"`
	SafetySetting    string `json:"safetySetting"`
}

type predictResponse struct {
	Predictions []prediction `json:"predictions"`
}

type prediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	B64                string `json:"b64"`
	MimeType           string `json:"mimeType"`
	Image              *struct {
		ImageBytes string `json:"imageBytes"`
		MimeType   string `json:"mimeType"`
	} `json:"image"`
	URL string `json:"url"`
}

// GeminiStrategy calls the Imagen predict endpoint.
type GeminiStrategy struct {
	apiKey     string
	baseURL    string
	fastModel  string
	proModel   string
	httpClient *http.Client
	refClient  *http.Client
}

func NewGeminiStrategy(cfg *config.Config) *GeminiStrategy {
	return &GeminiStrategy{
		apiKey:     cfg.GeminiAPIKey,
		baseURL:    strings.TrimRight(cfg.GeminiBaseURL, "/"),
		fastModel:  cfg.ImagenFastModel,
		proModel:   cfg.ImagenProModel,
		httpClient: &http.Client{Timeout: cfg.ProviderTimeout},
		refClient:  &http.Client{Timeout: cfg.ReferenceFetchTimeout},
	}
}

func (g *GeminiStrategy) modelName(pro bool) string {
	if pro {
		return g.proModel
	}
	return g.fastModel
}

// Generate - Imagen으로 이미지 1장 생성
func (g *GeminiStrategy) Generate(ctx context.Context, in GeminiInput) (imageref.Ref, error) {
	if g.apiKey == "" {
		return imageref.Ref{}, newError(KindConfiguration, "NANO_BANANA_API_KEY (Gemini Key) is not configured")
	}

	modelName := g.modelName(in.Pro)
	aspectRatio := fallback.SafeAspectRatio(in.AspectRatio)

	log.Info().Msgf("🎨 [Imagen] Generating - model: %s, aspectRatio: %s, prompt: %s",
		modelName, aspectRatio, utils.TruncateString(in.Prompt, 50))

	instance := predictInstance{Prompt: in.Prompt}
	if in.ReferenceImageURL != "" {
		ref, err := g.loadReference(ctx, in.ReferenceImageURL)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ [Imagen] Reference image unavailable, continuing without it")
		} else {
			instance.ReferenceImages = []referenceImage{{
				ReferenceType: styleReferenceType,
				ReferenceID:   1,
				ReferenceImage: referenceBytes{
					BytesBase64Encoded: ref.Base64(),
					MimeType:           ref.MimeType(),
				},
			}}
			log.Debug().Msgf("📷 [Imagen] Attached style reference (%s, %d bytes)", ref.MimeType(), len(ref.Data()))
		}
	}

	body, err := json.Marshal(predictRequest{
		Instances: []predictInstance{instance},
		Parameters: predictParameters{
			SampleCount:      1,
			AspectRatio:      aspectRatio,
			PersonGeneration: "allow_adult",
			SafetySetting:    "block_low_and_above",
		},
	})
	if err != nil {
		return imageref.Ref{}, &Error{Kind: KindProvider, Message: "failed to marshal request", Err: err}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:predict", g.baseURL, modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return imageref.Ref{}, &Error{Kind: KindProvider, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		metrics.RecordProviderCall("imagen", "error", time.Since(start).Seconds())
		log.Error().Err(err).Msg("❌ [Imagen] Request failed")
		return imageref.Ref{}, &Error{Kind: KindProvider, Message: "Gemini/Imagen API request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	metrics.RecordProviderCall("imagen", fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return imageref.Ref{}, &Error{Kind: KindProvider, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := providerMessage(resp.Status, respBody)
		log.Error().Msgf("❌ [Imagen] API error: status=%d, message=%s", resp.StatusCode, utils.TruncateString(msg, 300))
		return imageref.Ref{}, newError(KindProvider, "Gemini/Imagen API error: %s", msg)
	}

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return imageref.Ref{}, &Error{Kind: KindUnexpected, Message: "Unexpected response format from Gemini API", Err: err}
	}
	if len(parsed.Predictions) == 0 {
		return imageref.Ref{}, newError(KindEmptyResponse, "No predictions returned from Gemini API")
	}

	ref, err := extractPrediction(parsed.Predictions[0])
	if err != nil {
		return imageref.Ref{}, err
	}
	log.Info().Msgf("✅ [Imagen] Image generated (inline: %v)", ref.IsInline())
	return ref, nil
}

// extractPrediction - bytesBase64Encoded(b64) → image.imageBytes → url 순서로 탐색
func extractPrediction(p prediction) (imageref.Ref, error) {
	payload := p.BytesBase64Encoded
	if payload == "" {
		payload = p.B64
	}
	mimeType := p.MimeType
	if payload == "" && p.Image != nil && p.Image.ImageBytes != "" {
		payload = p.Image.ImageBytes
		if mimeType == "" {
			mimeType = p.Image.MimeType
		}
	}

	if payload != "" {
		ref, err := imageref.InlineBase64(mimeType, payload)
		if err != nil {
			return imageref.Ref{}, &Error{Kind: KindUnexpected, Message: "Unexpected response format from Gemini API", Err: err}
		}
		return ref, nil
	}
	if p.URL != "" {
		return imageref.Remote(p.URL), nil
	}
	return imageref.Ref{}, newError(KindUnexpected, "Unexpected response format from Gemini API")
}

// loadReference - data URL은 직접 디코드, 그 외는 GET으로 받아 inline 변환
func (g *GeminiStrategy) loadReference(ctx context.Context, raw string) (imageref.Ref, error) {
	parsed, err := imageref.Parse(raw)
	if err != nil || parsed.IsInline() {
		return parsed, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.URL(), nil)
	if err != nil {
		return imageref.Ref{}, fmt.Errorf("create reference request: %w", err)
	}
	resp, err := g.refClient.Do(req)
	if err != nil {
		return imageref.Ref{}, fmt.Errorf("fetch reference image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return imageref.Ref{}, fmt.Errorf("fetch reference image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return imageref.Ref{}, fmt.Errorf("read reference image: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return imageref.Inline(mimeType, data), nil
}
