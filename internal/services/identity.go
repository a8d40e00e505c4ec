package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// CallerIdentifier abstracts STS GetCallerIdentity for testing
type CallerIdentifier interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Identity is the account and principal the deployer runs as
type Identity struct {
	Account string `json:"account"`
	Arn     string `json:"arn"`
}

// WhoAmI returns the caller identity of client's credentials
func WhoAmI(ctx context.Context, client CallerIdentifier) (Identity, error) {
	output, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to get caller identity: %w", err)
	}
	return Identity{
		Account: aws.ToString(output.Account),
		Arn:     aws.ToString(output.Arn),
	}, nil
}
