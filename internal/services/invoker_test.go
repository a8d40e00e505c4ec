package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokerService_Invoke(t *testing.T) {
	tests := []struct {
		name    string
		output  *awslambda.InvokeOutput
		err     error
		want    Invocation
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "ok",
			output: &awslambda.InvokeOutput{StatusCode: 200, Payload: []byte(`{"ok":true}`)},
			want:   Invocation{StatusCode: 200, Payload: []byte(`{"ok":true}`)},
			wantOK: true,
		},
		{
			name:   "function error",
			output: &awslambda.InvokeOutput{StatusCode: 200, FunctionError: aws.String("Unhandled"), Payload: []byte(`{}`)},
			want:   Invocation{StatusCode: 200, FunctionError: "Unhandled", Payload: []byte(`{}`)},
		},
		{
			name:   "server error",
			output: &awslambda.InvokeOutput{StatusCode: 500},
			want:   Invocation{StatusCode: 500},
		},
		{
			name:    "invoke fails",
			err:     errors.New("boom"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockLambdaInvoker{
				invokeFunc: func(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error) {
					assert.Equal(t, "analyze-data", aws.ToString(params.FunctionName))
					assert.Equal(t, types.InvocationTypeRequestResponse, params.InvocationType)
					return tt.output, tt.err
				},
			}

			got, err := NewInvokerService(client).Invoke(testContext(), "analyze-data", nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, got.OK())
		})
	}
}
