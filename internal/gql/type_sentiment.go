package gql

import (
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/savaki/asset-deployer/internal/dao/sentimentdao"
)

// SentimentResolver resolves the Sentiment GraphQL type
type SentimentResolver struct {
	record *sentimentdao.Record
}

func newSentimentResolver(record *sentimentdao.Record) *SentimentResolver {
	return &SentimentResolver{record: record}
}

// UID resolves the uid field
func (r *SentimentResolver) UID() graphql.ID {
	return graphql.ID(r.record.UID)
}

func (r *SentimentResolver) Name() string {
	return r.record.Name
}

func (r *SentimentResolver) Type() string {
	return r.record.Type
}

func (r *SentimentResolver) Message() string {
	return r.record.Message
}

func (r *SentimentResolver) Timestamp() string {
	return r.record.Timestamp
}

// Label resolves the label field from the sentiment Comprehend reported
func (r *SentimentResolver) Label() SentimentLabel {
	return FromRecordSentiment(r.record.Sentiment)
}

func (r *SentimentResolver) Scores() *SentimentScoresResolver {
	return &SentimentScoresResolver{record: r.record}
}

// SentimentScoresResolver resolves the SentimentScores GraphQL type
type SentimentScoresResolver struct {
	record *sentimentdao.Record
}

func (r *SentimentScoresResolver) Positive() float64 { return r.record.PositiveScore }
func (r *SentimentScoresResolver) Negative() float64 { return r.record.NegativeScore }
func (r *SentimentScoresResolver) Neutral() float64  { return r.record.NeutralScore }
func (r *SentimentScoresResolver) Mixed() float64    { return r.record.MixedScore }

// SentimentSummaryResolver resolves the SentimentSummary GraphQL type
type SentimentSummaryResolver struct {
	total    int32
	positive int32
	negative int32
	neutral  int32
	mixed    int32
}

func (r *SentimentSummaryResolver) Total() int32    { return r.total }
func (r *SentimentSummaryResolver) Positive() int32 { return r.positive }
func (r *SentimentSummaryResolver) Negative() int32 { return r.negative }
func (r *SentimentSummaryResolver) Neutral() int32  { return r.neutral }
func (r *SentimentSummaryResolver) Mixed() int32    { return r.mixed }
