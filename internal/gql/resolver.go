package gql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/graph-gophers/graphql-go"
	"github.com/savaki/asset-deployer/internal/dao/sentimentdao"
	"github.com/savaki/asset-deployer/internal/dao/transcriptiondao"
)

//go:embed schema.graphqls
var schemaString string

// SentimentReader reads the records written by the analyze-data job
type SentimentReader interface {
	Find(ctx context.Context, uid string) (*sentimentdao.Record, error)
	FindAll(ctx context.Context) ([]*sentimentdao.Record, error)
}

// TranscriptionReader reads the records written by the save-audio job
type TranscriptionReader interface {
	Find(ctx context.Context, guid string) (*transcriptiondao.Record, error)
	FindByJob(ctx context.Context, jobName string) ([]*transcriptiondao.Record, error)
}

// Resolver is the root GraphQL resolver
type Resolver struct {
	sentiments     SentimentReader
	transcriptions TranscriptionReader
}

// NewResolver creates a new root resolver with the required dependencies
func NewResolver(sentiments SentimentReader, transcriptions TranscriptionReader) *Resolver {
	return &Resolver{
		sentiments:     sentiments,
		transcriptions: transcriptions,
	}
}

// NewSchema creates a new GraphQL schema with the root resolver
func NewSchema(resolver *Resolver) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaString, resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return schema, nil
}

// Ok returns "ok" for health checks
func (r *Resolver) Ok() string {
	return "ok"
}
