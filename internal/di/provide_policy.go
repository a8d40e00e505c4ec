package di

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/config"
	"github.com/savaki/asset-deployer/internal/policy"
)

// ProvidePolicy prepares the asset policy. Returns nil unless the policy is enabled.
// A relative policy file is resolved against the configuration directory.
func ProvidePolicy(ctx context.Context, cfg *config.Config) (*policy.Validator, error) {
	if !cfg.Policy.Enabled {
		zerolog.Ctx(ctx).Debug().Msg("Asset policy not enabled")
		return nil, nil
	}

	settings := policy.Settings{
		Stage:                cfg.Stage,
		AllowPublic:          cfg.Policy.AllowPublic,
		AllowAbsoluteSources: cfg.Policy.AllowAbsoluteSources,
		ProtectedStages:      cfg.Policy.ProtectedStages,
	}

	if file := cfg.Policy.File; file != "" {
		if !filepath.IsAbs(file) {
			file = filepath.Join(cfg.BaseDir, file)
		}
		return policy.NewValidatorFromFile(ctx, file, settings)
	}
	return policy.NewValidator(ctx, settings)
}
