package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog"
)

// LambdaInvoker defines the Lambda operation used to start downstream jobs
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

var _ LambdaInvoker = (*awslambda.Client)(nil)

// Invocation is the outcome of one synchronous function invocation
type Invocation struct {
	StatusCode    int
	Payload       []byte
	FunctionError string
}

// OK reports whether the invocation returned 200 without a function error
func (i Invocation) OK() bool {
	return i.StatusCode == 200 && i.FunctionError == ""
}

// InvokerService invokes downstream functions synchronously
type InvokerService struct {
	client LambdaInvoker
}

// NewInvokerService creates an InvokerService backed by client
func NewInvokerService(client LambdaInvoker) *InvokerService {
	return &InvokerService{client: client}
}

// Invoke calls functionName with an optional payload and waits for the reply
func (s *InvokerService) Invoke(ctx context.Context, functionName string, payload []byte) (Invocation, error) {
	logger := zerolog.Ctx(ctx)

	defer func(begin time.Time) {
		logger.Debug().
			Str("function", functionName).
			Dur("duration", time.Since(begin)).
			Msg("Invoked function")
	}(time.Now())

	output, err := s.client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return Invocation{}, fmt.Errorf("failed to invoke function %s: %w", functionName, err)
	}

	return Invocation{
		StatusCode:    int(output.StatusCode),
		Payload:       output.Payload,
		FunctionError: aws.ToString(output.FunctionError),
	}, nil
}
