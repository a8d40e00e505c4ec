package commands

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/di"
	"github.com/savaki/asset-deployer/internal/orchestrator"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

// TriggerCommand returns the command starting only the post-sync jobs
func TriggerCommand(logger *zerolog.Logger) *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{
			Name:  "run-id",
			Usage: "Run id passed to the state machine (default: new ksuid)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the trigger report as JSON",
		},
	)

	return &cli.Command{
		Name:  "trigger",
		Usage: "Start the sentiment and transcription jobs without syncing",
		Description: `Invokes the configured analyzeDataLambda and transcribeAudioLambda
functions, then starts stateMachineArn when set.

Examples:
  asset-deployer trigger --stage dev`,
		Flags: flags,
		Action: func(c *cli.Context) error {
			return triggerAction(c, logger)
		},
	}
}

func triggerAction(c *cli.Context, logger *zerolog.Logger) error {
	s, err := newSession(c, logger, false)
	if err != nil {
		return err
	}

	runID := c.String("run-id")
	if runID == "" {
		runID = ksuid.New().String()
	}

	o := di.MustGet[*orchestrator.Orchestrator](s.container)
	report := o.Trigger(s.ctx, runID, nil)

	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	displaySummary(&orchestrator.Summary{RunID: runID, Trigger: &report})
	return nil
}
