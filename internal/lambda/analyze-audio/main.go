package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/di"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/savaki/asset-deployer/internal/services"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

// TranscriptionStarter abstracts Transcribe StartTranscriptionJob for testing
type TranscriptionStarter interface {
	StartTranscriptionJob(ctx context.Context, params *transcribe.StartTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error)
}

// Handler starts a transcription of the configured audio file
type Handler struct {
	client TranscriptionStarter
	config *services.Config
	newID  func() string
}

// NewHandler creates a Handler
func NewHandler(client TranscriptionStarter, config *services.Config) *Handler {
	return &Handler{
		client: client,
		config: config,
		newID:  func() string { return ksuid.New().String() },
	}
}

// JobName returns a unique job name. Transcribe rejects a job name that was
// already used, so every run appends a fresh id.
func (h *Handler) JobName() string {
	return h.config.TranscriptionJobName + "-" + h.newID()
}

// MediaFileURI returns the location of the audio file
func (h *Handler) MediaFileURI() string {
	return fmt.Sprintf("s3://%s/%s", h.config.AudioInputBucket, h.config.AudioFile)
}

// HandleRequest starts the transcription job. The finished transcript is
// written to the audio output bucket where the save-audio job picks it up.
func (h *Handler) HandleRequest(ctx context.Context) (*models.TranscriptionReply, error) {
	logger := zerolog.Ctx(ctx)

	jobName := h.JobName()
	mediaFileURI := h.MediaFileURI()

	logger.Info().
		Str("job_name", jobName).
		Str("media", mediaFileURI).
		Str("output_bucket", h.config.AudioOutputBucket).
		Msg("Starting transcription job")

	output, err := h.client.StartTranscriptionJob(ctx, &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
		LanguageCode:         types.LanguageCode(h.config.LanguageCode),
		MediaFormat:          types.MediaFormat(h.config.MediaFormat),
		Media: &types.Media{
			MediaFileUri: aws.String(mediaFileURI),
		},
		OutputBucketName: aws.String(h.config.AudioOutputBucket),
	})
	if err != nil {
		logger.Error().Err(err).Str("job_name", jobName).Msg("Failed to start transcription job")
		return &models.TranscriptionReply{
			OK:  false,
			Err: errorJSON(err),
		}, nil
	}

	results, err := json.Marshal(output.TranscriptionJob)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcription job: %w", err)
	}

	logger.Info().
		Str("job_name", jobName).
		Str("status", string(jobStatus(output.TranscriptionJob))).
		Msg("Transcription job started")

	return &models.TranscriptionReply{
		OK:                true,
		TranscribeResults: results,
	}, nil
}

func jobStatus(job *types.TranscriptionJob) types.TranscriptionJobStatus {
	if job == nil {
		return ""
	}
	return job.TranscriptionJobStatus
}

func errorJSON(err error) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"message": err.Error()})
	return data
}

func newHandler(ctx context.Context, env string) (*Handler, error) {
	container, err := di.New(env, di.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create DI container: %w", err)
	}

	config := di.MustGet[*services.Config](container)
	if err := services.Require(map[string]string{
		"audio input bucket":     config.AudioInputBucket,
		"audio file":             config.AudioFile,
		"audio output bucket":    config.AudioOutputBucket,
		"transcription job name": config.TranscriptionJobName,
	}); err != nil {
		return nil, err
	}

	return NewHandler(di.MustGet[*transcribe.Client](container), config), nil
}

func main() {
	logger := di.ProvideLogger(false).With().Str("lambda", "analyze-audio").Logger()

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
		wrappedHandler := func(ctx context.Context) (*models.TranscriptionReply, error) {
			ctx = logger.WithContext(ctx)
			return handler.HandleRequest(ctx)
		}
		lambda.Start(wrappedHandler)
		return
	}

	app := &cli.App{
		Name:  "analyze-audio",
		Usage: "Start an Amazon Transcribe job for the configured audio file",
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
