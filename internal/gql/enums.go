package gql

import "strings"

// SentimentLabel represents the GraphQL SentimentLabel enum
type SentimentLabel string

const (
	SentimentLabelPositive SentimentLabel = "POSITIVE"
	SentimentLabelNegative SentimentLabel = "NEGATIVE"
	SentimentLabelNeutral  SentimentLabel = "NEUTRAL"
	SentimentLabelMixed    SentimentLabel = "MIXED"
	SentimentLabelUnknown  SentimentLabel = "UNKNOWN"
)

// FromRecordSentiment converts the sentiment stored by Comprehend to a SentimentLabel
func FromRecordSentiment(sentiment string) SentimentLabel {
	switch label := SentimentLabel(strings.ToUpper(sentiment)); label {
	case SentimentLabelPositive, SentimentLabelNegative, SentimentLabelNeutral, SentimentLabelMixed:
		return label
	default:
		return SentimentLabelUnknown
	}
}
