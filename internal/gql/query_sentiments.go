package gql

import (
	"context"

	"github.com/graph-gophers/graphql-go"
	"github.com/savaki/asset-deployer/internal/dao/sentimentdao"
	"github.com/savaki/gox/slicex"
)

// Sentiments resolves the sentiments query
func (r *Resolver) Sentiments(ctx context.Context, args struct{ Label *SentimentLabel }) ([]*SentimentResolver, error) {
	records, err := r.sentiments.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if args.Label != nil {
		var matched []*sentimentdao.Record
		for _, record := range records {
			if FromRecordSentiment(record.Sentiment) == *args.Label {
				matched = append(matched, record)
			}
		}
		records = matched
	}

	return slicex.Map(records, newSentimentResolver), nil
}

// Sentiment resolves the sentiment query
func (r *Resolver) Sentiment(ctx context.Context, args struct{ UID graphql.ID }) (*SentimentResolver, error) {
	record, err := r.sentiments.Find(ctx, string(args.UID))
	if err != nil || record == nil {
		return nil, err
	}
	return newSentimentResolver(record), nil
}

// SentimentSummary resolves the sentimentSummary query
func (r *Resolver) SentimentSummary(ctx context.Context) (*SentimentSummaryResolver, error) {
	records, err := r.sentiments.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &SentimentSummaryResolver{total: int32(len(records))}
	for _, record := range records {
		switch FromRecordSentiment(record.Sentiment) {
		case SentimentLabelPositive:
			summary.positive++
		case SentimentLabelNegative:
			summary.negative++
		case SentimentLabelNeutral:
			summary.neutral++
		case SentimentLabelMixed:
			summary.mixed++
		}
	}
	return summary, nil
}
