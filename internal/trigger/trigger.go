package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/savaki/asset-deployer/internal/services"
)

// Invoker runs a downstream function and waits for its reply
type Invoker interface {
	Invoke(ctx context.Context, functionName string, payload []byte) (services.Invocation, error)
}

// ExecutionStarter starts the optional post-sync state machine
type ExecutionStarter interface {
	StartExecution(ctx context.Context, input services.ExecutionInput) (string, error)
}

// Report summarizes one trigger run. Failures are recorded, never returned.
type Report struct {
	Sentiment     JobReport `json:"sentiment"`
	Transcription JobReport `json:"transcription"`
	ExecutionArn  string    `json:"execution_arn,omitempty"`
}

// JobReport is the outcome of one downstream job
type JobReport struct {
	Function   string `json:"function"`
	Skipped    bool   `json:"skipped,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// Trigger starts the downstream jobs once a sync has completed
type Trigger struct {
	invoker       Invoker
	starter       ExecutionStarter
	sentiment     models.TriggerJob
	transcription models.TriggerJob
}

// Option configures a Trigger
type Option func(*Trigger)

// WithExecutionStarter also starts a state machine execution after the jobs
func WithExecutionStarter(starter ExecutionStarter) Option {
	return func(t *Trigger) {
		t.starter = starter
	}
}

// New creates a Trigger for the sentiment and transcription functions
func New(invoker Invoker, sentimentFunction, transcriptionFunction string, opts ...Option) *Trigger {
	t := &Trigger{
		invoker:       invoker,
		sentiment:     models.TriggerJob{Name: "sentiment", Function: sentimentFunction},
		transcription: models.TriggerJob{Name: "transcription", Function: transcriptionFunction},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run invokes sentiment analysis and then transcription, interpreting each
// reply independently. input is passed to the state machine, when configured.
func (t *Trigger) Run(ctx context.Context, input services.ExecutionInput) Report {
	logger := zerolog.Ctx(ctx)

	defer func(begin time.Time) {
		logger.Info().Dur("duration", time.Since(begin)).Msg("Post-sync trigger finished")
	}(time.Now())

	logger.Info().Msg("Invoking data analysis function for sentiment analysis and transcription of audio")

	report := Report{
		Sentiment:     t.invoke(ctx, t.sentiment, t.interpretSentiment),
		Transcription: t.invoke(ctx, t.transcription, t.interpretTranscription),
	}

	if t.starter != nil {
		arn, err := t.starter.StartExecution(ctx, input)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to start post-sync execution")
		}
		report.ExecutionArn = arn
	}

	return report
}

func (t *Trigger) invoke(ctx context.Context, job models.TriggerJob, interpret func(context.Context, JobReport, []byte) JobReport) JobReport {
	logger := zerolog.Ctx(ctx).With().Str("job", job.Name).Str("function", job.Function).Logger()
	report := JobReport{Function: job.Function}

	if job.Function == "" {
		logger.Debug().Msg("No function configured, skipping")
		report.Skipped = true
		return report
	}

	invocation, err := t.invoker.Invoke(ctx, job.Function, nil)
	if err != nil {
		logger.Error().Err(err).Msg("There was an error during invocation")
		report.Error = err.Error()
		return report
	}
	report.StatusCode = invocation.StatusCode

	if !invocation.OK() {
		logger.Error().
			Int("status_code", invocation.StatusCode).
			Str("function_error", invocation.FunctionError).
			RawJSON("payload", jsonOrNull(invocation.Payload)).
			Msgf("Error in %s invocation, check CloudWatch", job.Name)
		report.Error = fmt.Sprintf("invocation returned status %d %s", invocation.StatusCode, invocation.FunctionError)
		return report
	}

	return interpret(logger.WithContext(ctx), report, invocation.Payload)
}

func (t *Trigger) interpretSentiment(ctx context.Context, report JobReport, payload []byte) JobReport {
	logger := zerolog.Ctx(ctx)

	var reply models.SentimentReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		logger.Error().Err(err).Msg("Unable to parse sentiment analysis reply")
		report.Error = err.Error()
		return report
	}

	logger.Info().Msg("Sentiment Analysis Results:")
	failed := 0
	for _, message := range reply.MessagesResponse {
		if message.OK {
			logger.Info().Msgf("OK: GUID: %s | SENTIMENT: %s", message.Data, message.Sentiment)
			continue
		}
		failed++
		logger.Error().Str("uid", message.Data).Msg("Error in message analysis, check CloudWatch")
	}

	report.OK = reply.OK && failed == 0
	if !reply.OK && reply.Error != "" {
		report.Error = reply.Error
	} else if failed > 0 {
		report.Error = fmt.Sprintf("%d of %d messages failed", failed, len(reply.MessagesResponse))
	}
	return report
}

func (t *Trigger) interpretTranscription(ctx context.Context, report JobReport, payload []byte) JobReport {
	logger := zerolog.Ctx(ctx)

	var reply models.TranscriptionReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		logger.Error().Err(err).Msg("Unable to parse transcription reply")
		report.Error = err.Error()
		return report
	}

	if !reply.OK {
		logger.Error().RawJSON("err", jsonOrNull(reply.Err)).Msg("Transcription job failed")
		report.Error = string(reply.Err)
		return report
	}

	logger.Info().RawJSON("transcribe_results", jsonOrNull(reply.TranscribeResults)).Msg("Transcription started")
	logger.Info().Msg("Check Dynamo Transcription table for results once finished")
	report.OK = true
	return report
}

func jsonOrNull(data []byte) []byte {
	if len(data) == 0 || !json.Valid(data) {
		return []byte("null")
	}
	return data
}
