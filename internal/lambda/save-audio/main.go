package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/dao/transcriptiondao"
	"github.com/savaki/asset-deployer/internal/di"
	"github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/savaki/asset-deployer/internal/services"
	"github.com/urfave/cli/v2"
)

// TranscriptStore persists a finished transcription
type TranscriptStore interface {
	Save(ctx context.Context, record *transcriptiondao.Record) error
}

// Handler stores transcription results written to the audio output bucket
type Handler struct {
	s3Client services.S3Getter
	store    TranscriptStore
}

func NewHandler(s3Client services.S3Getter, store TranscriptStore) *Handler {
	return &Handler{
		s3Client: s3Client,
		store:    store,
	}
}

// HandleS3Event saves the transcript of every json object in the event
func (h *Handler) HandleS3Event(ctx context.Context, event events.S3Event) ([]models.SaveAudioReply, error) {
	logger := zerolog.Ctx(ctx)

	var replies []models.SaveAudioReply
	for i := range event.Records {
		reply, err := h.processS3Record(ctx, &event.Records[i])
		if err != nil {
			logger.Error().Err(err).Msg("Error processing S3 record")
			replies = append(replies, models.SaveAudioReply{OK: false, Err: err.Error()})
			return replies, err
		}
		if reply != nil {
			replies = append(replies, *reply)
		}
	}
	return replies, nil
}

func (h *Handler) processS3Record(ctx context.Context, record *events.S3EventRecord) (*models.SaveAudioReply, error) {
	logger := zerolog.Ctx(ctx)

	bucket := record.S3.Bucket.Name
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key %s: %w", record.S3.Object.Key, err)
	}

	// Transcribe also writes an access check file to the output bucket
	if path.Ext(key) != ".json" {
		logger.Debug().Str("key", key).Msg("Ignoring non transcript object")
		return nil, nil
	}

	data, err := services.ReadObject(ctx, h.s3Client, bucket, key)
	if err != nil {
		return nil, err
	}

	var doc models.TranscriptionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrInvalidTranscript, key, err)
	}
	if doc.JobName == "" {
		return nil, fmt.Errorf("%w: %s has no job name", errors.ErrInvalidTranscript, key)
	}

	timestamp := record.EventTime
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	saved := transcriptiondao.NewRecord(doc.JobName, doc.Transcript(), timestamp.UTC().Format(time.RFC3339))
	if err := h.store.Save(ctx, saved); err != nil {
		return nil, fmt.Errorf("failed to save transcription %s: %w", doc.JobName, err)
	}

	logger.Info().
		Str("job_name", doc.JobName).
		Str("guid", saved.GUID).
		Str("bucket", bucket).
		Str("key", key).
		Msg("Saved transcription")

	return &models.SaveAudioReply{
		OK:      true,
		JobName: doc.JobName,
		GUID:    saved.GUID,
		Message: "Transcription saved",
	}, nil
}

func main() {
	logger := di.ProvideLogger(false).With().Str("lambda", "save-audio").Logger()

	env := os.Getenv("ENV")
	if env == "" {
		env = "dev"
	}

	container, err := di.New(env, di.WithContext(logger.WithContext(context.Background())))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create DI container")
		os.Exit(1)
	}

	handler := NewHandler(
		di.MustGet[*s3.Client](container),
		di.MustGet[*transcriptiondao.DAO](container),
	)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		// Wrap handler to inject logger into context
		wrappedHandler := func(ctx context.Context, event events.S3Event) ([]models.SaveAudioReply, error) {
			ctx = logger.WithContext(ctx)
			return handler.HandleS3Event(ctx, event)
		}
		lambda.Start(wrappedHandler)
		return
	}

	app := &cli.App{
		Name:  "save-audio",
		Usage: "Simulate S3 event to store a finished transcription",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "bucket",
				Usage:    "S3 bucket name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "key",
				Usage:    "S3 object key (e.g., interview-2bUq.json)",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			event := events.S3Event{
				Records: []events.S3EventRecord{
					{
						EventTime: time.Now(),
						S3: events.S3Entity{
							Bucket: events.S3Bucket{
								Name: c.String("bucket"),
							},
							Object: events.S3Object{
								Key: c.String("key"),
							},
						},
					},
				},
			}

			ctx := logger.WithContext(context.Background())
			replies, err := handler.HandleS3Event(ctx, event)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(replies)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
