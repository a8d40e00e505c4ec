package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/assets"
	"github.com/savaki/asset-deployer/internal/config"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/savaki/asset-deployer/internal/orchestrator"
	"github.com/savaki/asset-deployer/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
)

type Database struct {
	Name string
}

func TestNew_RegistersValues(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")
	cfg := &config.Config{Service: "svc", Stage: "dev"}

	container, err := New("dev",
		WithContext(ctx),
		WithEndpointURL("http://localhost:4566"),
		WithBucketFilter("web-bucket"),
		WithConcurrency(5),
		WithAssetConfig(cfg),
	)
	require.NoError(t, err)

	err = container.Invoke(func(env string, got context.Context, endpoint EndpointURL, bucket BucketFilter, concurrency Concurrency, c *config.Config) {
		assert.Equal(t, "dev", env)
		assert.Equal(t, "value", got.Value(key{}))
		assert.Equal(t, EndpointURL("http://localhost:4566"), endpoint)
		assert.Equal(t, BucketFilter("web-bucket"), bucket)
		assert.Equal(t, Concurrency(5), concurrency)
		assert.Same(t, cfg, c)
	})
	assert.NoError(t, err)
}

func TestNew_DefaultAssetConfig(t *testing.T) {
	container, err := New("dev")
	require.NoError(t, err)

	cfg := MustGet[*config.Config](container)
	assert.True(t, cfg.ResolveReferences)
	assert.Empty(t, cfg.Targets)
}

func TestNew_DuplicateProvider(t *testing.T) {
	_, err := New("dev",
		WithProviders(
			func() *Database { return &Database{Name: "db1"} },
			func() *Database { return &Database{Name: "db2"} },
		),
	)
	assert.Error(t, err)
}

func TestMustGet(t *testing.T) {
	container, err := New("dev", WithProviders(func() *Database {
		return &Database{Name: "test-db"}
	}))
	require.NoError(t, err)

	assert.Equal(t, "test-db", MustGet[*Database](container).Name)

	type missing struct{}
	assert.Panics(t, func() { _ = MustGet[*missing](container) })
}

func TestContainer_Interface(t *testing.T) {
	var _ Container = (*dig.Container)(nil)
}

func TestProvideOrchestrator(t *testing.T) {
	cfg := &config.Config{
		Service:           "svc",
		Stage:             "dev",
		Auto:              true,
		ResolveReferences: true,
		Targets:           []models.AssetTarget{{Bucket: models.Literal("web-bucket")}},
	}

	container, err := New("dev",
		WithContext(zerolog.Nop().WithContext(context.Background())),
		WithEndpointURL("http://localhost:4566"),
		WithAssetConfig(cfg),
	)
	require.NoError(t, err)

	assert.NotNil(t, MustGet[*assets.Engine](container))
	assert.NotNil(t, MustGet[*orchestrator.Orchestrator](container))

	inventory := MustGet[*services.InventoryService](container)
	assert.Equal(t, "svc-dev", inventory.StackName())
}

func TestProvideInventoryService(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		enabled bool
	}{
		{
			name:    "derived stack",
			cfg:     config.Config{Service: "svc", Stage: "dev", ResolveReferences: true},
			enabled: true,
		},
		{
			name:    "resolution disabled",
			cfg:     config.Config{Service: "svc", Stage: "dev"},
			enabled: false,
		},
		{
			name:    "no stack and literal buckets only",
			cfg:     config.Config{ResolveReferences: true, Targets: []models.AssetTarget{{Bucket: models.Literal("b")}}},
			enabled: false,
		},
		{
			name:    "no stack but references",
			cfg:     config.Config{ResolveReferences: true, Targets: []models.AssetTarget{{Bucket: models.Reference("B")}}},
			enabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inventory := ProvideInventoryService(nil, &tt.cfg)
			assert.Equal(t, tt.enabled, inventory.Enabled())
		})
	}
}

func TestProvidePolicy(t *testing.T) {
	ctx := zerolog.Nop().WithContext(context.Background())

	t.Run("off by default", func(t *testing.T) {
		cfg := config.Default()
		validator, err := ProvidePolicy(ctx, &cfg)
		require.NoError(t, err)
		assert.Nil(t, validator)
	})

	t.Run("built-in", func(t *testing.T) {
		cfg := config.Default()
		cfg.Stage = "prod"
		cfg.Policy.Enabled = true

		validator, err := ProvidePolicy(ctx, &cfg)
		require.NoError(t, err)

		result, err := validator.Validate(ctx, []models.AssetTarget{{Bucket: models.Literal("web"), ACL: "private", Empty: true}})
		require.NoError(t, err)
		assert.False(t, result.Allowed)
	})

	t.Run("relative file", func(t *testing.T) {
		dir := t.TempDir()
		module := "package assets\n\nimport rego.v1\n\ndefault allow := true\n\nviolations := set()\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.rego"), []byte(module), 0o644))

		cfg := config.Config{BaseDir: dir, Policy: config.Policy{Enabled: true, File: "custom.rego"}}
		validator, err := ProvidePolicy(ctx, &cfg)
		require.NoError(t, err)

		result, err := validator.Validate(ctx, []models.AssetTarget{{Bucket: models.Literal("web"), ACL: "public-read"}})
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := config.Config{BaseDir: t.TempDir(), Policy: config.Policy{Enabled: true, File: "missing.rego"}}
		_, err := ProvidePolicy(ctx, &cfg)
		assert.Error(t, err)
	})
}

type uploads struct {
	tasks []models.UploadTask
}

func (u *uploads) Put(_ context.Context, task models.UploadTask) error {
	u.tasks = append(u.tasks, task)
	return nil
}

func (u *uploads) Empty(context.Context, string, string) error {
	return nil
}

func TestProvideOrchestrator_DefaultPolicyAllowsPublicRead(t *testing.T) {
	ctx := zerolog.Nop().WithContext(context.Background())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html/>"), 0o644))

	cfg := config.Default()
	cfg.Stage = "prod"
	cfg.Targets = []models.AssetTarget{{
		Bucket: models.Literal("web-bucket"),
		ACL:    "public-read",
		Empty:  true,
		Files:  []models.FileGroup{{Source: dir, Globs: models.Globs{"*"}}},
	}}

	validator, err := ProvidePolicy(ctx, &cfg)
	require.NoError(t, err)

	store := &uploads{}
	o := ProvideOrchestrator(
		services.NewInventoryService(nil, "", false),
		assets.New(store, store),
		nil,
		validator,
		&cfg,
	)

	summary, err := o.Deploy(ctx, cfg.Targets)
	require.NoError(t, err)
	require.Len(t, summary.Targets, 1)
	assert.Equal(t, 1, summary.Targets[0].Uploaded)
	require.Len(t, store.tasks, 1)
	assert.Equal(t, "public-read", store.tasks[0].ACL)
}

func TestProvideLogger(t *testing.T) {
	t.Setenv("SLS_DEBUG", "")
	assert.Equal(t, zerolog.InfoLevel, ProvideLogger(false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, ProvideLogger(true).GetLevel())

	t.Setenv("SLS_DEBUG", "*")
	assert.Equal(t, zerolog.DebugLevel, ProvideLogger(false).GetLevel())
}
