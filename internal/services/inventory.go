package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	deployerrors "github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/models"
)

// StackResourceLister abstracts CloudFormation ListStackResources for testing
type StackResourceLister interface {
	ListStackResources(ctx context.Context, params *cloudformation.ListStackResourcesInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStackResourcesOutput, error)
}

// InventoryService reads the provisioned resources of a deployment stack
type InventoryService struct {
	client    StackResourceLister
	stackName string
	enabled   bool
}

// NewInventoryService creates an InventoryService. When enabled is false,
// ListAll returns an empty inventory without calling CloudFormation.
func NewInventoryService(client StackResourceLister, stackName string, enabled bool) *InventoryService {
	return &InventoryService{
		client:    client,
		stackName: stackName,
		enabled:   enabled,
	}
}

// StackName returns the stack whose inventory is listed
func (s *InventoryService) StackName() string {
	return s.stackName
}

// Enabled reports whether ListAll calls CloudFormation
func (s *InventoryService) Enabled() bool {
	return s.enabled
}

// ListAll follows NextToken until CloudFormation reports no further pages and
// returns every resource summary of the stack. The first page error aborts the
// listing.
func (s *InventoryService) ListAll(ctx context.Context) (resources []models.ResourceSummary, err error) {
	if !s.enabled {
		return []models.ResourceSummary{}, nil
	}
	if s.stackName == "" {
		return nil, deployerrors.ErrStackNameRequired
	}

	logger := zerolog.Ctx(ctx)

	defer func(begin time.Time) {
		logger.Debug().
			Str("stack_name", s.stackName).
			Int("count", len(resources)).
			Dur("duration", time.Since(begin)).
			Err(err).
			Msg("Listed stack resources")
	}(time.Now())

	var nextToken *string
	for {
		output, err := s.client.ListStackResources(ctx, &cloudformation.ListStackResourcesInput{
			StackName: aws.String(s.stackName),
			NextToken: nextToken,
		})
		if err != nil {
			if isStackMissing(err) {
				return nil, fmt.Errorf("%w: %s", deployerrors.ErrStackNotFound, s.stackName)
			}
			return nil, fmt.Errorf("failed to list resources of stack %s: %w", s.stackName, err)
		}

		for _, summary := range output.StackResourceSummaries {
			resources = append(resources, models.ResourceSummary{
				LogicalID:  aws.ToString(summary.LogicalResourceId),
				PhysicalID: aws.ToString(summary.PhysicalResourceId),
			})
		}

		if aws.ToString(output.NextToken) == "" {
			break
		}
		nextToken = output.NextToken
	}

	if resources == nil {
		resources = []models.ResourceSummary{}
	}
	return resources, nil
}

func isStackMissing(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ValidationError" && strings.Contains(apiErr.ErrorMessage(), "does not exist")
	}
	return false
}
