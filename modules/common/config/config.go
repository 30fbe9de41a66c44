package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Blob storage backends
const (
	BlobBackendSupabase = "supabase"
	BlobBackendS3       = "s3"
)

// Project store modes
const (
	ProjectStoreMemory   = "memory"
	ProjectStoreBlob     = "blob"
	ProjectStoreRedis    = "redis"
	ProjectStoreSupabase = "supabase"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Server
	Port            string `env:"PORT" envDefault:"8080"`
	Environment     string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string `env:"LOG_FORMAT" envDefault:"console"`
	WSAllowedOrigin string `env:"WS_ALLOWED_ORIGIN" envDefault:"*"`

	// OpenAI
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIImageModel string `env:"OPENAI_IMAGE_MODEL" envDefault:"dall-e-3"`

	// Gemini / Imagen
	GeminiAPIKey    string `env:"NANO_BANANA_API_KEY"`
	GeminiAPIKeyAlt string `env:"GEMINI_API_KEY"`
	GeminiBaseURL   string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	ImagenFastModel string `env:"IMAGEN_FAST_MODEL" envDefault:"imagen-4.0-fast-generate-001"`
	ImagenProModel  string `env:"IMAGEN_PRO_MODEL" envDefault:"imagen-4.0-generate-001"`

	ProviderTimeout       time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"180s"`
	ReferenceFetchTimeout time.Duration `env:"REFERENCE_FETCH_TIMEOUT" envDefault:"30s"`

	// Blob storage
	BlobReadWriteToken string `env:"BLOB_READ_WRITE_TOKEN"`
	BlobBackend        string `env:"BLOB_BACKEND" envDefault:"supabase"`
	BlobConvertWebP    bool   `env:"BLOB_CONVERT_WEBP" envDefault:"false"`

	// Supabase
	SupabaseURL            string `env:"SUPABASE_URL"`
	SupabaseServiceKey     string `env:"SUPABASE_SERVICE_KEY"`
	SupabaseStorageBucket  string `env:"SUPABASE_STORAGE_BUCKET" envDefault:"stylelab"`
	SupabaseStorageBaseURL string `env:"SUPABASE_STORAGE_BASE_URL"`
	SupabaseProjectsTable  string `env:"SUPABASE_PROJECTS_TABLE" envDefault:"projects"`

	// S3
	S3Endpoint       string `env:"S3_ENDPOINT"`
	S3PublicEndpoint string `env:"S3_PUBLIC_ENDPOINT"`
	S3Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket         string `env:"S3_BUCKET"`
	S3AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle   bool   `env:"S3_USE_PATH_STYLE" envDefault:"true"`

	// Projects
	ProjectStore string `env:"PROJECT_STORE"`

	// Redis
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisUsername string `env:"REDIS_USERNAME"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisUseTLS   bool   `env:"REDIS_USE_TLS" envDefault:"false"`

	// Upload
	UploadMaxBytes int64 `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
}

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️  .env file not found, using environment variables")
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	log.Info().Msg("✅ Configuration loaded successfully")
	log.Info().Msgf("   OpenAI: %s (key set: %v)", cfg.OpenAIImageModel, cfg.OpenAIAPIKey != "")
	log.Info().Msgf("   Imagen: fast=%s pro=%s (key set: %v)", cfg.ImagenFastModel, cfg.ImagenProModel, cfg.GeminiAPIKey != "")
	log.Info().Msgf("   Blob: %s (persistence: %v)", cfg.BlobBackend, cfg.BlobEnabled())
	log.Info().Msgf("   Projects: %s", cfg.ResolvedProjectStore())

	return cfg, nil
}

// Parse reads the process environment into a Config without touching .env.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKey)
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKeyAlt)
	}
	c.BlobReadWriteToken = strings.TrimSpace(c.BlobReadWriteToken)
	c.BlobBackend = strings.ToLower(strings.TrimSpace(c.BlobBackend))
	c.ProjectStore = strings.ToLower(strings.TrimSpace(c.ProjectStore))
	c.SupabaseURL = strings.TrimRight(strings.TrimSpace(c.SupabaseURL), "/")
	c.S3Bucket = strings.TrimSpace(c.S3Bucket)
	c.S3AccessKeyID = strings.TrimSpace(c.S3AccessKeyID)
	c.S3SecretKey = strings.TrimSpace(c.S3SecretKey)
	if c.UploadMaxBytes <= 0 {
		c.UploadMaxBytes = 10 * 1024 * 1024
	}
}

// validate - 설정 조합 검증 (provider 키는 호출 시점에 검사)
func (c *Config) validate() error {
	switch c.BlobBackend {
	case BlobBackendSupabase, BlobBackendS3:
	default:
		return fmt.Errorf("BLOB_BACKEND must be %q or %q, got %q", BlobBackendSupabase, BlobBackendS3, c.BlobBackend)
	}

	if c.BlobBackend == BlobBackendSupabase && c.BlobReadWriteToken != "" && c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required when BLOB_READ_WRITE_TOKEN is set")
	}

	switch c.ProjectStore {
	case "", ProjectStoreMemory, ProjectStoreBlob:
	case ProjectStoreRedis:
		if c.RedisHost == "" {
			return fmt.Errorf("REDIS_HOST is required for PROJECT_STORE=redis")
		}
	case ProjectStoreSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for PROJECT_STORE=supabase")
		}
	default:
		return fmt.Errorf("unknown PROJECT_STORE %q", c.ProjectStore)
	}

	if c.ProjectStore == ProjectStoreBlob && !c.BlobEnabled() {
		return fmt.Errorf("PROJECT_STORE=blob needs a configured blob backend")
	}
	return nil
}

// BlobEnabled reports whether a storage credential is configured for the selected backend.
func (c *Config) BlobEnabled() bool {
	switch c.BlobBackend {
	case BlobBackendS3:
		return c.S3Bucket != "" && c.S3AccessKeyID != "" && c.S3SecretKey != ""
	default:
		return c.BlobReadWriteToken != ""
	}
}

// ResolvedProjectStore - PROJECT_STORE 미지정 시 blob 사용 가능하면 blob, 아니면 memory
func (c *Config) ResolvedProjectStore() string {
	if c.ProjectStore != "" {
		return c.ProjectStore
	}
	if c.BlobEnabled() {
		return ProjectStoreBlob
	}
	return ProjectStoreMemory
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
