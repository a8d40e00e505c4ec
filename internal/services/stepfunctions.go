package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
)

// ExecutionStarter defines the Step Functions operation used after a sync
type ExecutionStarter interface {
	StartExecution(ctx context.Context, params *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
}

var _ ExecutionStarter = (*sfn.Client)(nil)

// ExecutionInput is the payload passed to the post-sync state machine
type ExecutionInput struct {
	RunID     string   `json:"run_id"`
	StackName string   `json:"stack_name,omitempty"`
	Stage     string   `json:"stage,omitempty"`
	Buckets   []string `json:"buckets"`
}

// StateMachineService starts post-sync state machine executions
type StateMachineService struct {
	client          ExecutionStarter
	stateMachineArn string
}

// NewStateMachineService creates a StateMachineService for stateMachineArn
func NewStateMachineService(client ExecutionStarter, stateMachineArn string) *StateMachineService {
	return &StateMachineService{
		client:          client,
		stateMachineArn: stateMachineArn,
	}
}

// StartExecution starts one execution named after the run id and returns its ARN
func (s *StateMachineService) StartExecution(ctx context.Context, input ExecutionInput) (string, error) {
	if input.RunID == "" {
		input.RunID = ksuid.New().String()
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to marshal step function input: %w", err)
	}

	executionName := fmt.Sprintf("assets-%s", input.RunID)
	if input.Stage != "" {
		executionName = fmt.Sprintf("assets-%s-%s", input.Stage, input.RunID)
	}

	result, err := s.client.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(s.stateMachineArn),
		Name:            aws.String(executionName),
		Input:           aws.String(string(inputJSON)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to start step function execution: %w", err)
	}

	executionArn := aws.ToString(result.ExecutionArn)
	zerolog.Ctx(ctx).Info().
		Str("execution_arn", executionArn).
		Str("execution_name", executionName).
		Msg("Started post-sync execution")

	return executionArn, nil
}
