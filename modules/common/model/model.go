package model

import "time"

// Model identifiers accepted by /generate
const (
	ModelNanoBanana    = "nano-banana"
	ModelNanoBananaPro = "nano-banana-pro"
	ModelOpenAI        = "openai"
)

// DefaultAspectRatio is used when a request omits or mangles its aspect ratio.
const DefaultAspectRatio = "1:1"

// Categories - 스타일 카탈로그 카테고리 ("All"은 필터 없음)
var Categories = []string{
	"All",
	"Characters & Avatars",
	"Art Styles",
	"Photography",
	"3D & CGI",
	"Concept Art",
	"Product",
	"Architecture",
	"Illustration",
	"Experimental",
}

// GenerationRequest - POST /generate 요청 바디
type GenerationRequest struct {
	Prompt            string   `json:"prompt" validate:"required"`
	Model             string   `json:"model" validate:"required,oneof=nano-banana nano-banana-pro openai"`
	StyleID           string   `json:"styleId,omitempty"`
	ReferenceImageURL string   `json:"referenceImageUrl,omitempty"`
	AspectRatio       string   `json:"aspectRatio,omitempty"`
	Resolution        string   `json:"resolution,omitempty"`
	Seed              *float64 `json:"seed,omitempty"`
}

// Style - 카탈로그 항목 (read-only)
type Style struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Category         string   `json:"category" yaml:"category"`
	PromptTemplate   string   `json:"promptTemplate" yaml:"promptTemplate"`
	ExampleImages    []string `json:"exampleImages" yaml:"exampleImages"`
	Tags             []string `json:"tags" yaml:"tags"`
	RecommendedModel string   `json:"recommendedModel" yaml:"recommendedModel"`
	Author           string   `json:"author,omitempty" yaml:"author,omitempty"`
	AuthorLink       string   `json:"authorLink,omitempty" yaml:"authorLink,omitempty"`
}

// GeneratedImage - 생성 결과 (프로젝트 아이템)
type GeneratedImage struct {
	ID          string    `json:"id"`
	ImageURL    string    `json:"imageUrl"`
	Prompt      string    `json:"prompt"`
	Model       string    `json:"model"`
	StyleID     string    `json:"styleId,omitempty"`
	StyleName   string    `json:"styleName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	AspectRatio string    `json:"aspectRatio,omitempty"`
	Resolution  string    `json:"resolution,omitempty"`
}

// Project - 갤러리 프로젝트
type Project struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Items     []GeneratedImage `json:"items"`
}

// Clone returns a deep copy so stores never share item slices with callers.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Items = make([]GeneratedImage, len(p.Items))
	copy(out.Items, p.Items)
	return &out
}

// Touch advances UpdatedAt to now, or 1ms past the previous value when the clock has not moved.
func (p *Project) Touch(now time.Time) {
	if !now.After(p.UpdatedAt) {
		now = p.UpdatedAt.Add(time.Millisecond)
	}
	p.UpdatedAt = now
}

// ModelInfo - 모델 선택 목록 항목
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Badge       string `json:"badge,omitempty"`
}

// AspectRatioInfo - 비율별 미리보기 크기
type AspectRatioInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

var Models = []ModelInfo{
	{ID: ModelNanoBanana, Name: "Nano Banana", Description: "Fast & efficient"},
	{ID: ModelNanoBananaPro, Name: "Nano Banana Pro", Description: "Best 4K quality", Badge: "PRO"},
	{ID: ModelOpenAI, Name: "OpenAI Image", Description: "Reasoning-heavy prompts", Badge: "NEW"},
}

var AspectRatios = []AspectRatioInfo{
	{ID: "1:1", Name: "Square", Width: 1024, Height: 1024},
	{ID: "16:9", Name: "Landscape", Width: 1024, Height: 576},
	{ID: "9:16", Name: "Portrait", Width: 576, Height: 1024},
	{ID: "4:3", Name: "Standard", Width: 1024, Height: 768},
	{ID: "3:4", Name: "Tall", Width: 768, Height: 1024},
}
