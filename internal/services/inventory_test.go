package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	deployerrors "github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summary(logicalID, physicalID string) types.StackResourceSummary {
	return types.StackResourceSummary{
		LogicalResourceId:  aws.String(logicalID),
		PhysicalResourceId: aws.String(physicalID),
	}
}

func TestInventoryService_ListAll(t *testing.T) {
	t.Run("two pages", func(t *testing.T) {
		var tokens []string
		client := &mockStackResourceLister{
			listStackResourcesFunc: func(ctx context.Context, params *cloudformation.ListStackResourcesInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStackResourcesOutput, error) {
				assert.Equal(t, "my-app-dev", aws.ToString(params.StackName))
				tokens = append(tokens, aws.ToString(params.NextToken))

				if params.NextToken == nil {
					return &cloudformation.ListStackResourcesOutput{
						StackResourceSummaries: []types.StackResourceSummary{
							summary("WebBucket", "web-bucket-123"),
							summary("Table", "table-456"),
						},
						NextToken: aws.String("page-2"),
					}, nil
				}
				return &cloudformation.ListStackResourcesOutput{
					StackResourceSummaries: []types.StackResourceSummary{
						summary("LogicalBucket", "resolved-bucket-123"),
					},
				}, nil
			},
		}

		inventory := NewInventoryService(client, "my-app-dev", true)
		resources, err := inventory.ListAll(testContext())
		require.NoError(t, err)

		assert.Equal(t, []string{"", "page-2"}, tokens)
		assert.Equal(t, []models.ResourceSummary{
			{LogicalID: "WebBucket", PhysicalID: "web-bucket-123"},
			{LogicalID: "Table", PhysicalID: "table-456"},
			{LogicalID: "LogicalBucket", PhysicalID: "resolved-bucket-123"},
		}, resources)
	})

	t.Run("disabled makes no calls", func(t *testing.T) {
		client := &mockStackResourceLister{}

		resources, err := NewInventoryService(client, "my-app-dev", false).ListAll(testContext())
		require.NoError(t, err)
		assert.NotNil(t, resources)
		assert.Empty(t, resources)
	})

	t.Run("empty stack", func(t *testing.T) {
		client := &mockStackResourceLister{
			listStackResourcesFunc: func(ctx context.Context, params *cloudformation.ListStackResourcesInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStackResourcesOutput, error) {
				return &cloudformation.ListStackResourcesOutput{}, nil
			},
		}

		resources, err := NewInventoryService(client, "my-app-dev", true).ListAll(testContext())
		require.NoError(t, err)
		assert.NotNil(t, resources)
		assert.Empty(t, resources)
	})

	t.Run("missing stack name", func(t *testing.T) {
		_, err := NewInventoryService(&mockStackResourceLister{}, "", true).ListAll(testContext())
		assert.ErrorIs(t, err, deployerrors.ErrStackNameRequired)
	})

	t.Run("second page fails", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		client := &mockStackResourceLister{
			listStackResourcesFunc: func(ctx context.Context, params *cloudformation.ListStackResourcesInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStackResourcesOutput, error) {
				calls++
				if calls == 1 {
					return &cloudformation.ListStackResourcesOutput{
						StackResourceSummaries: []types.StackResourceSummary{summary("A", "a")},
						NextToken:              aws.String("next"),
					}, nil
				}
				return nil, boom
			},
		}

		resources, err := NewInventoryService(client, "my-app-dev", true).ListAll(testContext())
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, resources)
		assert.Equal(t, 2, calls)
	})

	t.Run("stack does not exist", func(t *testing.T) {
		client := &mockStackResourceLister{
			listStackResourcesFunc: func(ctx context.Context, params *cloudformation.ListStackResourcesInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStackResourcesOutput, error) {
				return nil, &smithy.GenericAPIError{Code: "ValidationError", Message: "Stack with id my-app-dev does not exist"}
			},
		}

		_, err := NewInventoryService(client, "my-app-dev", true).ListAll(testContext())
		assert.ErrorIs(t, err, deployerrors.ErrStackNotFound)
	})
}
