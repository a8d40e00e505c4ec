package main

import (
	"context"
	"os"

	"github.com/savaki/asset-deployer/cmd/asset-deployer/commands"
	"github.com/savaki/asset-deployer/internal/di"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := di.ProvideLogger(false)
	ctx := logger.WithContext(context.Background())

	app := &cli.App{
		Name:  "asset-deployer",
		Usage: "Sync local assets into S3 buckets after a stack deployment",
		Description: `Uploads local files into S3 buckets named directly or by CloudFormation
logical id, optionally emptying each bucket first.

This tool provides commands for:
  - Running the full post-deployment asset sync
  - Emptying a single bucket or prefix
  - Listing the resources of the deployed stack
  - Starting the post-sync analysis jobs`,
		Commands: []*cli.Command{
			commands.DeployCommand(&logger),
			commands.EmptyCommand(&logger),
			commands.ResourcesCommand(&logger),
			commands.TriggerCommand(&logger),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
