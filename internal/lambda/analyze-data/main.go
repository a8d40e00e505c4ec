package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/dao/sentimentdao"
	"github.com/savaki/asset-deployer/internal/di"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/savaki/asset-deployer/internal/services"
	"github.com/savaki/gox/slicex"
	"github.com/urfave/cli/v2"
)

const defaultConcurrency = 8

// SentimentDetector abstracts Comprehend DetectSentiment for testing
type SentimentDetector interface {
	DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error)
}

// SentimentStore persists one analyzed message
type SentimentStore interface {
	Save(ctx context.Context, record *sentimentdao.Record) error
}

// Handler analyzes the sentiment of every message in the chat messages document
type Handler struct {
	s3Client    services.S3Getter
	detector    SentimentDetector
	store       SentimentStore
	bucket      string
	key         string
	concurrency int
}

// NewHandler creates a Handler reading bucket/key
func NewHandler(s3Client services.S3Getter, detector SentimentDetector, store SentimentStore, bucket, key string) *Handler {
	return &Handler{
		s3Client:    s3Client,
		detector:    detector,
		store:       store,
		bucket:      bucket,
		key:         key,
		concurrency: defaultConcurrency,
	}
}

// HandleRequest returns a reply describing every message. Failures are
// reported in the reply rather than as an error so the caller can log them.
func (h *Handler) HandleRequest(ctx context.Context) (*models.SentimentReply, error) {
	logger := zerolog.Ctx(ctx)

	defer func(begin time.Time) {
		logger.Info().
			Str("bucket", h.bucket).
			Str("key", h.key).
			Dur("duration", time.Since(begin)).
			Msg("Analyzed chat messages")
	}(time.Now())

	data, err := services.ReadObject(ctx, h.s3Client, h.bucket, h.key)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch chat messages")
		return failed(err), nil
	}

	var messages []models.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		logger.Error().Err(err).Msg("Failed to parse chat messages")
		return failed(fmt.Errorf("failed to parse %s: %w", h.key, err)), nil
	}

	logger.Info().Int("messages", len(messages)).Msg("Batch analyzing messages")

	results, err := slicex.MapConcurrent(h.analyze).
		Concurrency(h.concurrency).
		CollectErrors().
		DoValues(ctx, messages...)
	if err != nil {
		return failed(err), nil
	}

	return &models.SentimentReply{
		Status:           200,
		OK:               true,
		MessagesResponse: results,
	}, nil
}

func (h *Handler) analyze(ctx context.Context, message models.ChatMessage) (models.MessageResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("uid", message.UID).Logger()

	output, err := h.detector.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		LanguageCode: types.LanguageCodeEn,
		Text:         aws.String(message.Message),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error during detect sentiment request")
		return models.MessageResult{Data: message.UID, Message: "Message not analyzed", Error: err.Error()}, nil
	}

	record := newRecord(message, output)
	if err := h.store.Save(ctx, record); err != nil {
		logger.Error().Err(err).Msg("Error saving sentiment")
		return models.MessageResult{Data: message.UID, Message: "Message not saved", Error: err.Error()}, nil
	}

	return models.MessageResult{
		OK:        true,
		Data:      message.UID,
		Sentiment: record.Sentiment,
		Message:   "Message Saved",
	}, nil
}

func newRecord(message models.ChatMessage, output *comprehend.DetectSentimentOutput) *sentimentdao.Record {
	record := &sentimentdao.Record{
		UID:       message.UID,
		Name:      message.Name,
		Type:      message.Type,
		Message:   message.Message,
		Timestamp: message.Timestamp,
		Sentiment: string(output.Sentiment),
	}
	if score := output.SentimentScore; score != nil {
		record.PositiveScore = float64(aws.ToFloat32(score.Positive))
		record.NegativeScore = float64(aws.ToFloat32(score.Negative))
		record.NeutralScore = float64(aws.ToFloat32(score.Neutral))
		record.MixedScore = float64(aws.ToFloat32(score.Mixed))
	}
	return record
}

func failed(err error) *models.SentimentReply {
	return &models.SentimentReply{
		Status: 500,
		OK:     false,
		Error:  err.Error(),
	}
}

func newHandler(ctx context.Context, env string) (*Handler, error) {
	container, err := di.New(env, di.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create DI container: %w", err)
	}

	config := di.MustGet[*services.Config](container)
	if err := services.Require(map[string]string{
		"json bucket":     config.JSONBucket,
		"json file":       config.JSONFile,
		"sentiment table": config.SentimentTable,
	}); err != nil {
		return nil, err
	}

	return NewHandler(
		di.MustGet[*s3.Client](container),
		di.MustGet[*comprehend.Client](container),
		di.MustGet[*sentimentdao.DAO](container),
		config.JSONBucket,
		config.JSONFile,
	), nil
}

func main() {
	logger := di.ProvideLogger(false).With().Str("lambda", "analyze-data").Logger()

	env := os.Getenv("ENV")
	if env == "" {
		env = "dev"
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		handler, err := newHandler(logger.WithContext(context.Background()), env)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create handler")
			os.Exit(1)
		}

		// Wrap handler to inject logger into context
		wrappedHandler := func(ctx context.Context) (*models.SentimentReply, error) {
			ctx = logger.WithContext(ctx)
			return handler.HandleRequest(ctx)
		}
		lambda.Start(wrappedHandler)
		return
	}

	app := &cli.App{
		Name:  "analyze-data",
		Usage: "Detect the sentiment of the chat messages stored in S3",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "disable-ssm",
				Usage:   "Disable AWS Systems Manager Parameter Store (use environment variables)",
				EnvVars: []string{"DISABLE_SSM"},
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("disable-ssm") {
				os.Setenv("DISABLE_SSM", "true")
			}

			ctx := logger.WithContext(c.Context)
			handler, err := newHandler(ctx, env)
			if err != nil {
				return fmt.Errorf("failed to create handler: %w", err)
			}

			reply, err := handler.HandleRequest(ctx)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(reply)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
