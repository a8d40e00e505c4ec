package commands

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/di"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/savaki/asset-deployer/internal/services"
	"github.com/urfave/cli/v2"
)

// EmptyCommand returns the command deleting every object below a prefix
func EmptyCommand(logger *zerolog.Logger) *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{
			Name:     "bucket",
			Aliases:  []string{"b"},
			Usage:    "Bucket name, or stack logical id when --ref is set",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "ref",
			Usage: "Treat --bucket as a CloudFormation logical id",
		},
		&cli.StringFlag{
			Name:    "prefix",
			Aliases: []string{"p"},
			Usage:   "Only delete objects below this prefix",
		},
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "Skip confirmation prompt",
		},
	)

	return &cli.Command{
		Name:  "empty",
		Usage: "Delete every object in a bucket or below a prefix",
		Description: `Examples:
  # Empty a bucket by name
  asset-deployer empty --bucket my-app-dev-web

  # Empty a prefix of the bucket created as WebBucket
  asset-deployer empty --stage dev --bucket WebBucket --ref --prefix site/`,
		Flags: flags,
		Action: func(c *cli.Context) error {
			return emptyAction(c, logger)
		},
	}
}

func emptyAction(c *cli.Context, logger *zerolog.Logger) error {
	s, err := newSession(c, logger, false)
	if err != nil {
		return err
	}

	ref := models.Literal(c.String("bucket"))
	if c.Bool("ref") {
		ref = models.Reference(c.String("bucket"))
	}

	inventory := services.NewInventoryService(
		di.MustGet[*cloudformation.Client](s.container),
		s.config.ResolvedStackName(),
		ref.IsReference(),
	)
	resources, err := inventory.ListAll(s.ctx)
	if err != nil {
		return err
	}

	bucket, err := services.ResolveBucket(s.ctx, resources, ref)
	if err != nil {
		return err
	}
	if bucket == "" {
		return fmt.Errorf("no resource %s in stack %s", ref, inventory.StackName())
	}

	prefix := c.String("prefix")
	location := bucket
	if prefix != "" {
		location += "/" + prefix
	}

	if !c.Bool("force") {
		fmt.Printf("About to delete every object in s3://%s\n", location)
		fmt.Print("Are you sure? (yes/no): ")
		var response string
		fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "yes" && response != "y" {
			fmt.Println("Empty cancelled")
			return nil
		}
	}

	bucketService := di.MustGet[*services.BucketService](s.container)
	if err := bucketService.Empty(s.ctx, bucket, prefix); err != nil {
		return err
	}

	fmt.Printf("✓ Emptied s3://%s\n", location)
	return nil
}
