package generate

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"stylelab-server/modules/common/config"
	"stylelab-server/modules/common/imageref"
	"stylelab-server/modules/common/metrics"
	"stylelab-server/modules/common/utils"
)

// OpenAIInput - OpenAI 이미지 호출 입력 (참조 이미지는 사용하지 않음)
type OpenAIInput struct {
	Prompt      string
	AspectRatio string
}

var openAISizes = map[string]string{
	"1:1":  openai.CreateImageSize1024x1024,
	"16:9": openai.CreateImageSize1792x1024,
	"9:16": openai.CreateImageSize1024x1792,
	"4:3":  openai.CreateImageSize1024x1024,
	"3:4":  openai.CreateImageSize1024x1792,
}

// OpenAISize maps an aspect ratio onto the sizes dall-e-3 accepts.
func OpenAISize(aspectRatio string) string {
	if size, ok := openAISizes[aspectRatio]; ok {
		return size
	}
	return openai.CreateImageSize1024x1024
}

type OpenAIStrategy struct {
	client *openai.Client
	model  string
}

func NewOpenAIStrategy(cfg *config.Config) *OpenAIStrategy {
	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("⚠️ [OpenAI] OPENAI_API_KEY not configured")
		return &OpenAIStrategy{model: cfg.OpenAIImageModel}
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.ProviderTimeout}

	return &OpenAIStrategy{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.OpenAIImageModel,
	}
}

// Generate - dall-e-3 이미지 생성 (URL 응답)
func (o *OpenAIStrategy) Generate(ctx context.Context, in OpenAIInput) (imageref.Ref, error) {
	if o.client == nil {
		return imageref.Ref{}, newError(KindConfiguration, "OPENAI_API_KEY is not configured")
	}

	size := OpenAISize(in.AspectRatio)
	log.Info().Msgf("🎨 [OpenAI] Generating - model: %s, size: %s, prompt: %s",
		o.model, size, utils.TruncateString(in.Prompt, 50))

	start := time.Now()
	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         in.Prompt,
		Model:          o.model,
		N:              1,
		Size:           size,
		Quality:        openai.CreateImageQualityHD,
		Style:          openai.CreateImageStyleVivid,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		metrics.RecordProviderCall("openai", "error", time.Since(start).Seconds())
		log.Error().Err(err).Msg("❌ [OpenAI] Image request failed")
		return imageref.Ref{}, &Error{Kind: KindProvider, Message: "OpenAI API error: " + openAIMessage(err), Err: err}
	}
	metrics.RecordProviderCall("openai", "200", time.Since(start).Seconds())

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return imageref.Ref{}, newError(KindEmptyResponse, "No image URL in OpenAI response")
	}

	log.Info().Msg("✅ [OpenAI] Image generated")
	return imageref.Remote(resp.Data[0].URL), nil
}

func openAIMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
