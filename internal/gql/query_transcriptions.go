package gql

import (
	"context"

	"github.com/graph-gophers/graphql-go"
	"github.com/savaki/gox/slicex"
)

// Transcriptions resolves the transcriptions query
func (r *Resolver) Transcriptions(ctx context.Context, args struct{ JobName string }) ([]*TranscriptionResolver, error) {
	records, err := r.transcriptions.FindByJob(ctx, args.JobName)
	if err != nil {
		return nil, err
	}
	return slicex.Map(records, newTranscriptionResolver), nil
}

// Transcription resolves the transcription query
func (r *Resolver) Transcription(ctx context.Context, args struct{ GUID graphql.ID }) (*TranscriptionResolver, error) {
	record, err := r.transcriptions.Find(ctx, string(args.GUID))
	if err != nil || record == nil {
		return nil, err
	}
	return newTranscriptionResolver(record), nil
}
