package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/constants"
	"github.com/savaki/asset-deployer/internal/di"
	"github.com/savaki/asset-deployer/internal/orchestrator"
	"github.com/urfave/cli/v2"
)

// DeployCommand returns the command running the full asset sync
func DeployCommand(logger *zerolog.Logger) *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{
			Name:  "bucket",
			Usage: "Only sync the target whose resolved bucket has this name",
		},
		&cli.BoolFlag{
			Name:  "auto",
			Usage: "Start the post-sync analysis jobs after uploading",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Max targets synced at once",
			Value: constants.MaxConcurrentTargets,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the run summary as JSON",
		},
	)

	return &cli.Command{
		Name:  "deploy",
		Usage: "Upload every configured target",
		Description: `Resolves bucket references against the deployed stack, empties targets
marked empty: true and uploads the matching local files.

Examples:
  # Sync every target
  asset-deployer deploy --stage dev

  # Sync one bucket and start the analysis jobs
  asset-deployer deploy --stage dev --bucket my-app-dev-web --auto

  # Against LocalStack
  asset-deployer deploy --config assets.yml --endpoint-url http://localhost:4566`,
		Flags: flags,
		Action: func(c *cli.Context) error {
			return deployAction(c, logger)
		},
	}
}

func deployAction(c *cli.Context, logger *zerolog.Logger) error {
	s, err := newSession(c, logger, true,
		di.WithBucketFilter(c.String("bucket")),
		di.WithConcurrency(c.Int("concurrency")),
	)
	if err != nil {
		return err
	}

	s.logIdentity()

	o := di.MustGet[*orchestrator.Orchestrator](s.container)
	summary, err := o.Deploy(s.ctx, s.config.Targets)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}

	displaySummary(summary)
	return nil
}

func displaySummary(summary *orchestrator.Summary) {
	fmt.Printf("Run %s", summary.RunID)
	if summary.StackName != "" {
		fmt.Printf(" (stack %s)", summary.StackName)
	}
	fmt.Println()

	for _, result := range summary.Targets {
		location := result.Bucket
		if result.Prefix != "" {
			location += "/" + result.Prefix
		}

		switch {
		case result.Skipped && result.Bucket == "":
			fmt.Println("  - skipped unresolved target")
		case result.Skipped:
			fmt.Printf("  - skipped %s\n", location)
		case result.Emptied:
			fmt.Printf("  ✓ emptied %s, uploaded %d file(s)\n", location, result.Uploaded)
		default:
			fmt.Printf("  ✓ uploaded %d file(s) to %s\n", result.Uploaded, location)
		}
	}

	if report := summary.Trigger; report != nil {
		displayJob("sentiment", report.Sentiment.Function, report.Sentiment.Skipped, report.Sentiment.OK)
		displayJob("transcription", report.Transcription.Function, report.Transcription.Skipped, report.Transcription.OK)
		if report.ExecutionArn != "" {
			fmt.Printf("  ✓ started execution %s\n", report.ExecutionArn)
		}
	}
}

func displayJob(name, function string, skipped, ok bool) {
	switch {
	case skipped:
		fmt.Printf("  - %s job not configured\n", name)
	case ok:
		fmt.Printf("  ✓ %s job %s\n", name, function)
	default:
		fmt.Printf("  ✗ %s job %s failed, check CloudWatch\n", name, function)
	}
}
