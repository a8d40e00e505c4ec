package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/config"
	"github.com/savaki/asset-deployer/internal/constants"
	"github.com/savaki/asset-deployer/internal/di"
	deployerrors "github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/services"
	"github.com/urfave/cli/v2"
)

// commonFlags are accepted by every command
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the asset configuration file",
			Value:   constants.DefaultConfigFile,
			EnvVars: []string{"ASSETS_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "stage",
			Aliases: []string{"s"},
			Usage:   "Deployment stage, used to derive the stack name",
			EnvVars: []string{"STAGE"},
		},
		&cli.StringFlag{
			Name:  "stack",
			Usage: "CloudFormation stack owning the referenced buckets (default {service}-{stage})",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
		&cli.StringFlag{
			Name:    "endpoint-url",
			Usage:   "Override the AWS endpoint (e.g., http://localhost:4566 for LocalStack)",
			EnvVars: []string{"AWS_ENDPOINT_URL"},
		},
	}
}

// session is the state shared by a single command invocation
type session struct {
	ctx       context.Context
	logger    zerolog.Logger
	config    config.Config
	container di.Container
}

// loadConfig reads the configuration file and applies command line overrides.
// A missing default file is only an error when required is set.
func loadConfig(c *cli.Context, required bool) (config.Config, error) {
	path := c.String("config")

	cfg, err := config.Load(path)
	if err != nil {
		if required || c.IsSet("config") || !errors.Is(err, deployerrors.ErrConfigNotFound) {
			return config.Config{}, err
		}
		cfg = config.Default()
	}

	applyOverrides(c, &cfg)
	return cfg, nil
}

func applyOverrides(c *cli.Context, cfg *config.Config) {
	if v := c.String("stage"); v != "" {
		cfg.Stage = v
	}
	if v := c.String("stack"); v != "" {
		cfg.StackName = v
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}
	if c.IsSet("auto") {
		cfg.Auto = c.Bool("auto")
	}
}

// newSession loads configuration and builds the dependency container. opts are
// appended to the options derived from the command line.
func newSession(c *cli.Context, logger *zerolog.Logger, required bool, opts ...di.Option) (*session, error) {
	cfg, err := loadConfig(c, required)
	if err != nil {
		return nil, err
	}

	l := *logger
	if cfg.Verbose {
		l = l.Level(zerolog.DebugLevel)
	}
	ctx := l.WithContext(c.Context)

	options := []di.Option{
		di.WithContext(ctx),
		di.WithAssetConfig(&cfg),
		di.WithEndpointURL(c.String("endpoint-url")),
	}
	options = append(options, opts...)

	container, err := di.New(env(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create DI container: %w", err)
	}

	return &session{
		ctx:       ctx,
		logger:    l,
		config:    cfg,
		container: container,
	}, nil
}

// env selects the parameter store namespace of the downstream jobs
func env() string {
	if v := os.Getenv("ENV"); v != "" {
		return v
	}
	return "dev"
}

// logIdentity records the account the command operates on. Failures only warn
// since every later call reports its own credential errors.
func (s *session) logIdentity() services.Identity {
	identity, err := services.WhoAmI(s.ctx, di.MustGet[*sts.Client](s.container))
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to determine AWS account")
		return identity
	}

	s.logger.Info().
		Str("account", identity.Account).
		Str("arn", identity.Arn).
		Msg("Using AWS identity")
	return identity
}
