package di

import (
	"github.com/graph-gophers/graphql-go"
	"github.com/savaki/asset-deployer/internal/dao/sentimentdao"
	"github.com/savaki/asset-deployer/internal/dao/transcriptiondao"
	"github.com/savaki/asset-deployer/internal/gql"
)

// ProvideGraphQL provides the results API schema over the sentiment and transcription tables
func ProvideGraphQL(sentiments *sentimentdao.DAO, transcriptions *transcriptiondao.DAO) (*graphql.Schema, error) {
	return gql.NewSchema(gql.NewResolver(sentiments, transcriptions))
}
