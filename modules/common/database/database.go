package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/supabase-community/supabase-go"

	"stylelab-server/modules/common/config"
)

// NewClient - Supabase(PostgREST) 클라이언트 생성
func NewClient(cfg *config.Config) (*supabase.Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	log.Info().Msgf("✅ Supabase client initialized: %s", cfg.SupabaseURL)
	return client, nil
}
