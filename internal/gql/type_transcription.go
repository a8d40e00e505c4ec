package gql

import (
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/savaki/asset-deployer/internal/dao/transcriptiondao"
)

// TranscriptionResolver resolves the Transcription GraphQL type
type TranscriptionResolver struct {
	record *transcriptiondao.Record
}

func newTranscriptionResolver(record *transcriptiondao.Record) *TranscriptionResolver {
	return &TranscriptionResolver{record: record}
}

// GUID resolves the guid field
func (r *TranscriptionResolver) GUID() graphql.ID {
	return graphql.ID(r.record.GUID)
}

func (r *TranscriptionResolver) JobName() string {
	return r.record.JobName
}

func (r *TranscriptionResolver) Transcript() string {
	return r.record.Transcript
}

// SavedAt resolves the savedAt field. Timestamps that are not RFC3339 resolve to null.
func (r *TranscriptionResolver) SavedAt() *DateTime {
	t, err := time.Parse(time.RFC3339, r.record.Timestamp)
	if err != nil {
		return nil
	}
	return NewDateTimePtr(&t)
}
