package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
)

// ProvideAWSConfig loads the default AWS configuration. When an endpoint URL
// is set every client talks to it with static test credentials.
func ProvideAWSConfig(ctx context.Context, endpointURL EndpointURL) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if endpointURL != "" {
		opts = append(opts,
			awsconfig.WithBaseEndpoint(string(endpointURL)),
			awsconfig.WithDefaultRegion("us-east-1"),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("test", "test", ""),
			),
		)
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func ProvideCloudFormation(config aws.Config) *cloudformation.Client {
	return cloudformation.NewFromConfig(config)
}

// ProvideS3Client uses path style addressing against custom endpoints
func ProvideS3Client(config aws.Config, endpointURL EndpointURL) *s3.Client {
	return s3.NewFromConfig(config, func(o *s3.Options) {
		o.UsePathStyle = endpointURL != ""
	})
}

func ProvideLambdaClient(config aws.Config) *awslambda.Client {
	return awslambda.NewFromConfig(config)
}

func ProvideStepFunctions(config aws.Config) *sfn.Client {
	return sfn.NewFromConfig(config)
}

func ProvideDynamoDB(config aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(config)
}

func ProvideComprehend(config aws.Config) *comprehend.Client {
	return comprehend.NewFromConfig(config)
}

func ProvideTranscribe(config aws.Config) *transcribe.Client {
	return transcribe.NewFromConfig(config)
}

func ProvideSTS(config aws.Config) *sts.Client {
	return sts.NewFromConfig(config)
}
