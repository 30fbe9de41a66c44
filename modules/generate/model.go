package generate

import (
	"stylelab-server/modules/common/model"
)

// Model is the closed set of provider strategies a request can select.
type Model interface {
	// Tag returns the request-facing model identifier.
	Tag() string
	sealed()
}

// GeminiFast - Imagen fast 모델
type GeminiFast struct{}

// GeminiPro - Imagen full 모델
type GeminiPro struct{}

// OpenAI - dall-e 계열 이미지 모델
type OpenAI struct{}

func (GeminiFast) Tag() string { return model.ModelNanoBanana }
func (GeminiPro) Tag() string  { return model.ModelNanoBananaPro }
func (OpenAI) Tag() string     { return model.ModelOpenAI }

func (GeminiFast) sealed() {}
func (GeminiPro) sealed()  {}
func (OpenAI) sealed()     {}

// ParseModel maps a request tag to its strategy. Unknown tags are validation errors.
func ParseModel(tag string) (Model, error) {
	switch tag {
	case model.ModelNanoBanana:
		return GeminiFast{}, nil
	case model.ModelNanoBananaPro:
		return GeminiPro{}, nil
	case model.ModelOpenAI:
		return OpenAI{}, nil
	default:
		return nil, &Error{Kind: KindValidation, Message: MsgInvalidModel}
	}
}
