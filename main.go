package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"stylelab-server/modules/catalog"
	"stylelab-server/modules/common/config"
	"stylelab-server/modules/common/database"
	"stylelab-server/modules/common/logger"
	"stylelab-server/modules/common/metrics"
	"stylelab-server/modules/common/redis"
	"stylelab-server/modules/common/storage"
	"stylelab-server/modules/generate"
	"stylelab-server/modules/projects"
	"stylelab-server/modules/realtime"
	"stylelab-server/modules/upload"
)

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "stylelab-server",
	})
}

// newProjectStore - PROJECT_STORE 설정에 맞는 프로젝트 저장소 생성
func newProjectStore(ctx context.Context, cfg *config.Config, blob storage.Blob) (projects.Store, error) {
	switch mode := cfg.ResolvedProjectStore(); mode {
	case config.ProjectStoreMemory:
		log.Warn().Msg("⚠️  [Projects] In-memory store: projects are lost on restart")
		return projects.NewMemoryStore(), nil
	case config.ProjectStoreBlob:
		return projects.NewBlobStore(blob), nil
	case config.ProjectStoreRedis:
		rdb, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return projects.NewRedisStore(rdb), nil
	case config.ProjectStoreSupabase:
		client, err := database.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return projects.NewSupabaseStore(client, cfg.SupabaseProjectsTable), nil
	default:
		return nil, fmt.Errorf("unknown project store %q", mode)
	}
}

func main() {
	if err := logger.Init("info", "console"); err != nil {
		log.Warn().Err(err).Msg("⚠️  Failed to initialize bootstrap logger")
	}

	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Warn().Err(err).Msg("⚠️  Invalid log settings, keeping defaults")
	}

	ctx := context.Background()

	blob, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize blob storage")
	}

	styles, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load style catalog")
	}
	log.Info().Msgf("🎨 Style catalog loaded: %d styles", len(styles.All()))

	store, err := newProjectStore(ctx, cfg, blob)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize project store")
	}

	// 실시간 허브 + 정리 루틴
	hub := realtime.NewHub(cfg.WSAllowedOrigin)
	hub.StartCleanup(ctx, 5*time.Minute)

	// 라우터 설정
	r := mux.NewRouter()

	// CORS 미들웨어 적용
	r.Use(enableCORS)

	// 라우트 설정
	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	catalog.NewHandler(styles).RegisterRoutes(r)
	generate.NewHandler(generate.NewService(cfg, blob, styles)).RegisterRoutes(r)
	upload.NewHandler(blob, cfg.UploadMaxBytes).RegisterRoutes(r)
	projects.NewHandler(projects.NewService(store, hub)).RegisterRoutes(r)
	hub.RegisterRoutes(r)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Msgf("🚀 Stylelab server starting on port %s (%s)", cfg.Port, cfg.Environment)
	log.Info().Msgf("📡 WebSocket endpoint: ws://localhost:%s/ws", cfg.Port)
	log.Info().Msgf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Info().Msgf("📊 Metrics: http://localhost:%s/metrics", cfg.Port)

	// 서버 시작
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
