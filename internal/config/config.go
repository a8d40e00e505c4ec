// Package config loads the asset deployment configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/savaki/asset-deployer/internal/constants"
	deployerrors "github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/models"
	"gopkg.in/yaml.v3"
)

// Config is the asset deployment configuration
type Config struct {
	Service           string               `yaml:"service"`
	Stage             string               `yaml:"stage"`
	StackName         string               `yaml:"stackName"`
	Auto              bool                 `yaml:"auto"`
	Verbose           bool                 `yaml:"verbose"`
	ResolveReferences bool                 `yaml:"resolveReferences"`
	Targets           []models.AssetTarget `yaml:"targets"`

	// Post-sync jobs
	AnalyzeDataLambda     string `yaml:"analyzeDataLambda"`
	TranscribeAudioLambda string `yaml:"transcribeAudioLambda"`
	StateMachineArn       string `yaml:"stateMachineArn"`

	Policy Policy `yaml:"policy"`

	// BaseDir is the directory relative sources are resolved against; Load
	// sets it to the directory holding the configuration file.
	BaseDir string `yaml:"-"`
}

// Policy configures the optional guardrails evaluated before any object is touched
type Policy struct {
	Enabled              bool     `yaml:"enabled"`
	File                 string   `yaml:"file"` // custom rego module replacing the built-in one
	AllowPublic          bool     `yaml:"allowPublic"`
	AllowAbsoluteSources bool     `yaml:"allowAbsoluteSources"`
	ProtectedStages      []string `yaml:"protectedStages"`
}

// Default returns a configuration with every default applied and no targets
func Default() Config {
	return Config{
		ResolveReferences: true,
		Policy: Policy{
			ProtectedStages: []string{"prod", "prd"},
		},
	}
}

// Load reads and parses the configuration file at path
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", deployerrors.ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes configuration from YAML. The document may either be a mapping
// or a bare list of targets.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("%w: %w", deployerrors.ErrInvalidConfig, err)
	}

	if len(doc.Content) > 0 {
		root := doc.Content[0]
		var err error
		if root.Kind == yaml.SequenceNode {
			err = root.Decode(&cfg.Targets)
		} else {
			err = root.Decode(&cfg)
		}
		if err != nil {
			return Config{}, fmt.Errorf("%w: %w", deployerrors.ErrInvalidConfig, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Targets {
		target := &c.Targets[i]
		if target.ACL == "" {
			target.ACL = constants.DefaultACL
		}
		for j := range target.Files {
			if target.Files[j].Source == "" {
				target.Files[j].Source = "."
			}
		}
	}
}

// Validate checks every target for an acceptable bucket value and usable globs
func (c Config) Validate() error {
	for i, target := range c.Targets {
		if !target.Bucket.Valid() {
			return fmt.Errorf("%w %s (target %d)", deployerrors.ErrInvalidBucketName, target.Bucket, i)
		}

		for j, group := range target.Files {
			if len(group.Globs) == 0 {
				return fmt.Errorf("%w: target %d file group %d has no globs", deployerrors.ErrInvalidConfig, i, j)
			}
			for _, pattern := range group.Globs {
				if !doublestar.ValidatePattern(strings.TrimPrefix(pattern, "!")) {
					return fmt.Errorf("%w: %q (target %d file group %d)", deployerrors.ErrInvalidGlobPattern, pattern, i, j)
				}
			}
		}
	}
	return nil
}

// ResolvedStackName returns the CloudFormation stack that owns the referenced
// resources: stackName when set, otherwise {service}-{stage}.
func (c Config) ResolvedStackName() string {
	if c.StackName != "" {
		return c.StackName
	}
	if c.Service != "" && c.Stage != "" {
		return fmt.Sprintf("%s-%s", c.Service, c.Stage)
	}
	return ""
}

// HasReferences reports whether any target names its bucket by reference
func (c Config) HasReferences() bool {
	for _, target := range c.Targets {
		if target.Bucket.IsReference() {
			return true
		}
	}
	return false
}
