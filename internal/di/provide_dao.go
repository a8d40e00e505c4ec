package di

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/savaki/asset-deployer/internal/dao/sentimentdao"
	"github.com/savaki/asset-deployer/internal/dao/transcriptiondao"
	deployerrors "github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/services"
)

func ProvideSentimentDAO(client *dynamodb.Client, config *services.Config) (*sentimentdao.DAO, error) {
	if config.SentimentTable == "" {
		return nil, fmt.Errorf("%w: sentiment table", deployerrors.ErrMissingParameter)
	}
	return sentimentdao.New(client, config.SentimentTable), nil
}

func ProvideTranscriptionDAO(client *dynamodb.Client, config *services.Config) (*transcriptiondao.DAO, error) {
	if config.TranscriptionTable == "" {
		return nil, fmt.Errorf("%w: transcription table", deployerrors.ErrMissingParameter)
	}
	return transcriptiondao.New(client, config.TranscriptionTable), nil
}
