package generate

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/config"
	"stylelab-server/modules/common/fallback"
	"stylelab-server/modules/common/idgen"
	"stylelab-server/modules/common/imageref"
	"stylelab-server/modules/common/metrics"
	"stylelab-server/modules/common/model"
	"stylelab-server/modules/common/storage"
	"stylelab-server/modules/common/utils"
)

// StyleLookup resolves catalog styles for envelopes and demo fallback.
type StyleLookup interface {
	GetByID(id string) (*model.Style, bool)
}

// Response - 생성 성공 응답
type Response struct {
	ImageURL     string `json:"imageUrl"`
	GenerationID string `json:"generationId"`
	Model        string `json:"model"`
	StyleID      string `json:"styleId,omitempty"`
	StyleName    string `json:"styleName,omitempty"`
	Prompt       string `json:"prompt"`
	CreatedAt    string `json:"createdAt"`
}

// DemoResponse - provider 실패 시 스타일 예시 이미지 응답
type DemoResponse struct {
	ImageURL     string `json:"imageUrl"`
	IsDemo       bool   `json:"isDemo"`
	Message      string `json:"message"`
	GenerationID string `json:"generationId"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type Service struct {
	gemini    *GeminiStrategy
	openai    *OpenAIStrategy
	persister *Persister
	styles    StyleLookup
	validate  *validator.Validate
	now       func() time.Time
}

func NewService(cfg *config.Config, blob storage.Blob, styles StyleLookup) *Service {
	return &Service{
		gemini:    NewGeminiStrategy(cfg),
		openai:    NewOpenAIStrategy(cfg),
		persister: NewPersister(blob, cfg.BlobConvertWebP, cfg.ReferenceFetchTimeout),
		styles:    styles,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// Validate checks the request before any outbound call and resolves its strategy.
func (s *Service) Validate(req *model.GenerationRequest) (Model, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Prompt" {
					return nil, &Error{Kind: KindValidation, Message: MsgPromptRequired}
				}
			}
		}
		return nil, &Error{Kind: KindValidation, Message: MsgInvalidModel}
	}
	return ParseModel(req.Model)
}

// Generate - 검증 → provider 호출 → (선택) 저장 → 응답 구성
func (s *Service) Generate(ctx context.Context, req *model.GenerationRequest) (*Response, error) {
	m, err := s.Validate(req)
	if err != nil {
		metrics.RecordGeneration("invalid", "invalid")
		return nil, err
	}

	log.Info().Msgf("🚀 [Generate] model=%s style=%q aspectRatio=%q prompt=%s",
		m.Tag(), req.StyleID, req.AspectRatio, utils.TruncateString(req.Prompt, 50))
	if req.AspectRatio != "" && !fallback.IsSupportedAspectRatio(req.AspectRatio) {
		log.Warn().Msgf("⚠️ [Generate] Unsupported aspect ratio %q, using %s", req.AspectRatio, model.DefaultAspectRatio)
	}

	ref, err := s.dispatch(ctx, m, req)
	if err != nil {
		metrics.RecordGeneration(m.Tag(), "failed")
		log.Error().Err(err).Msgf("❌ [Generate] %s generation failed", m.Tag())
		return nil, err
	}

	saved := s.persister.Persist(ctx, ref)

	resp := &Response{
		ImageURL:     saved.String(),
		GenerationID: idgen.GenerationID(),
		Model:        m.Tag(),
		StyleID:      req.StyleID,
		Prompt:       req.Prompt,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if style := s.lookupStyle(req.StyleID); style != nil {
		resp.StyleName = style.Name
	}

	metrics.RecordGeneration(m.Tag(), "success")
	log.Info().Msgf("✅ [Generate] %s done: %s", resp.GenerationID, utils.TruncateString(resp.ImageURL, 80))
	return resp, nil
}

func (s *Service) dispatch(ctx context.Context, m Model, req *model.GenerationRequest) (imageref.Ref, error) {
	switch m.(type) {
	case GeminiFast:
		return s.gemini.Generate(ctx, GeminiInput{
			Prompt:            req.Prompt,
			ReferenceImageURL: req.ReferenceImageURL,
			AspectRatio:       req.AspectRatio,
		})
	case GeminiPro:
		return s.gemini.Generate(ctx, GeminiInput{
			Prompt:            req.Prompt,
			Pro:               true,
			ReferenceImageURL: req.ReferenceImageURL,
			AspectRatio:       req.AspectRatio,
		})
	case OpenAI:
		return s.openai.Generate(ctx, OpenAIInput{
			Prompt:      req.Prompt,
			AspectRatio: req.AspectRatio,
		})
	default:
		return imageref.Ref{}, &Error{Kind: KindValidation, Message: MsgInvalidModel}
	}
}

// Fallback returns the demo envelope when the style has an example image.
func (s *Service) Fallback(styleID string) (*DemoResponse, bool) {
	style := s.lookupStyle(styleID)
	if style == nil || len(style.ExampleImages) == 0 {
		return nil, false
	}
	metrics.RecordGeneration(style.RecommendedModel, "demo")
	return &DemoResponse{
		ImageURL:     style.ExampleImages[0],
		IsDemo:       true,
		Message:      MsgDemo,
		GenerationID: idgen.DemoID(),
	}, true
}

func (s *Service) lookupStyle(id string) *model.Style {
	if id == "" || s.styles == nil {
		return nil
	}
	style, ok := s.styles.GetByID(id)
	if !ok {
		return nil
	}
	return style
}

// Details - 500 응답의 details 필드
func Details(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
