package config

import (
	"os"
	"path/filepath"
	"testing"

	deployerrors "github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
service: chat
stage: dev
auto: true
analyzeDataLambda: chat-dev-analyzeData
transcribeAudioLambda: chat-dev-analyzeAudio
targets:
  - bucket: literal-bucket
    files:
      - source: ./a
        globs: "*.txt"
  - bucket: {Ref: LogicalBucket}
    prefix: site/
    acl: public-read
    empty: true
    files:
      - source: ./b
        globs: ["**/*", "!**/*.map"]
        defaultContentType: text/plain
        headers:
          CacheControl: max-age=300
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.True(t, cfg.Auto)
	assert.False(t, cfg.Verbose)
	assert.True(t, cfg.ResolveReferences, "resolveReferences defaults to true")
	assert.Equal(t, "chat-dev", cfg.ResolvedStackName())
	assert.Equal(t, "chat-dev-analyzeData", cfg.AnalyzeDataLambda)
	assert.True(t, cfg.HasReferences())

	require.Len(t, cfg.Targets, 2)

	first := cfg.Targets[0]
	assert.Equal(t, models.Literal("literal-bucket"), first.Bucket)
	assert.Equal(t, "private", first.ACL)
	assert.Equal(t, "", first.Prefix)
	assert.False(t, first.Empty)
	assert.Equal(t, models.Globs{"*.txt"}, first.Files[0].Globs)

	second := cfg.Targets[1]
	assert.Equal(t, models.Reference("LogicalBucket"), second.Bucket)
	assert.Equal(t, "site/", second.Prefix)
	assert.Equal(t, "public-read", second.ACL)
	assert.True(t, second.Empty)
	assert.Equal(t, "text/plain", second.Files[0].DefaultContentType)
	assert.Equal(t, "max-age=300", second.Files[0].Headers["CacheControl"])
}

func TestParseBareList(t *testing.T) {
	cfg, err := Parse([]byte(`
- bucket: one
  files:
    - globs: "*"
`))
	require.NoError(t, err)
	require.Len(t, cfg.Targets, 1)
	assert.Equal(t, "one", cfg.Targets[0].Bucket.Name)
	assert.Equal(t, ".", cfg.Targets[0].Files[0].Source)
	assert.True(t, cfg.ResolveReferences)
	assert.False(t, cfg.Auto)
}

func TestParseResolveReferencesDisabled(t *testing.T) {
	cfg, err := Parse([]byte("resolveReferences: false\n"))
	require.NoError(t, err)
	assert.False(t, cfg.ResolveReferences)
	assert.Empty(t, cfg.Targets)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "numeric bucket",
			input:   "targets: [{bucket: 12, files: [{globs: '*'}]}]",
			wantErr: deployerrors.ErrInvalidBucketName,
		},
		{
			name:    "missing bucket",
			input:   "targets: [{prefix: x, files: [{globs: '*'}]}]",
			wantErr: deployerrors.ErrInvalidBucketName,
		},
		{
			name:    "group without globs",
			input:   "targets: [{bucket: b, files: [{source: x}]}]",
			wantErr: deployerrors.ErrInvalidConfig,
		},
		{
			name:    "bad glob",
			input:   "targets: [{bucket: b, files: [{globs: '[a-'}]}]",
			wantErr: deployerrors.ErrInvalidGlobPattern,
		},
		{
			name:    "malformed yaml",
			input:   "targets: [",
			wantErr: deployerrors.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assets.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Targets, 2)
	assert.Equal(t, dir, cfg.BaseDir)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, deployerrors.ErrConfigNotFound)
}

func TestResolvedStackName(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "explicit", cfg: Config{StackName: "custom", Service: "svc", Stage: "dev"}, want: "custom"},
		{name: "derived", cfg: Config{Service: "svc", Stage: "prd"}, want: "svc-prd"},
		{name: "missing stage", cfg: Config{Service: "svc"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ResolvedStackName())
		})
	}
}

func TestParsePolicy(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Parse([]byte(`targets: []`))
		require.NoError(t, err)
		assert.False(t, cfg.Policy.Enabled)
		assert.Equal(t, []string{"prod", "prd"}, cfg.Policy.ProtectedStages)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := Parse([]byte(`
policy:
  enabled: true
  file: guardrails.rego
  allowPublic: true
  protectedStages: [live]
`))
		require.NoError(t, err)
		assert.True(t, cfg.Policy.Enabled)
		assert.Equal(t, "guardrails.rego", cfg.Policy.File)
		assert.True(t, cfg.Policy.AllowPublic)
		assert.Equal(t, []string{"live"}, cfg.Policy.ProtectedStages)
	})
}
