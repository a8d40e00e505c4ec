package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/di"
	deployerrors "github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/services"
	"github.com/urfave/cli/v2"
)

// ResourcesCommand returns the command listing the resources of the deployed stack
func ResourcesCommand(logger *zerolog.Logger) *cli.Command {
	flags := append(commonFlags(),
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output as JSON",
		},
	)

	return &cli.Command{
		Name:  "resources",
		Usage: "List the logical and physical ids bucket references resolve against",
		Description: `Examples:
  # Resources of {service}-{stage} from assets.yml
  asset-deployer resources --stage dev

  # Resources of an explicit stack
  asset-deployer resources --stack my-app-dev --json`,
		Flags: flags,
		Action: func(c *cli.Context) error {
			return resourcesAction(c, logger)
		},
	}
}

func resourcesAction(c *cli.Context, logger *zerolog.Logger) error {
	s, err := newSession(c, logger, false)
	if err != nil {
		return err
	}

	stackName := s.config.ResolvedStackName()
	if stackName == "" {
		return fmt.Errorf("%w: use --stack or set service and stage", deployerrors.ErrStackNameRequired)
	}

	inventory := services.NewInventoryService(di.MustGet[*cloudformation.Client](s.container), stackName, true)
	resources, err := inventory.ListAll(s.ctx)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resources)
	}

	if len(resources) == 0 {
		fmt.Printf("No resources found in stack %s\n", stackName)
		return nil
	}

	fmt.Printf("Resources of stack %s", stackName)
	if identity := s.logIdentity(); identity.Account != "" {
		fmt.Printf(" (account %s)", identity.Account)
	}
	fmt.Println()
	fmt.Println()
	for _, resource := range resources {
		fmt.Printf("  %-40s %s\n", resource.LogicalID, resource.PhysicalID)
	}
	fmt.Println()
	fmt.Printf("Total resources: %d\n", len(resources))
	return nil
}
