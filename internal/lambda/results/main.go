package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/dao/sentimentdao"
	"github.com/savaki/asset-deployer/internal/dao/transcriptiondao"
	"github.com/savaki/asset-deployer/internal/di"
	"github.com/urfave/cli/v2"
)

type Handler struct {
	schema *graphql.Schema
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewHandler(schema *graphql.Schema) *Handler {
	return &Handler{schema: schema}
}

// loggingMiddleware logs details about each request and response
func loggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Inject logger into request context
			ctx := logger.WithContext(r.Context())
			r = r.WithContext(ctx)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			event := zerolog.Ctx(ctx).Info()
			if rw.statusCode >= http.StatusInternalServerError {
				event = zerolog.Ctx(ctx).Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status_code", rw.statusCode).
				Dur("duration", time.Since(start)).
				Msg("Request completed")
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// stripStagePrefixMiddleware removes the /{stage} prefix API Gateway adds to request paths
func stripStagePrefixMiddleware(stage string, next http.Handler) http.Handler {
	if stage == "" {
		return next
	}

	prefix := "/" + stage
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == prefix || strings.HasPrefix(r.URL.Path, prefix+"/") {
			r.URL.Path = strings.TrimPrefix(r.URL.Path, prefix)
		}
		if r.URL.Path == "" {
			r.URL.Path = "/"
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (h *Handler) jsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "no route for " + r.URL.Path})
}

// setupRouter configures all HTTP routes
func (h *Handler) setupRouter() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("POST /graphql", &relay.Handler{Schema: h.schema})
	mux.HandleFunc("/", h.handleNotFound)
	return mux
}

func setupContainer(ctx context.Context, env string) (di.Container, error) {
	return di.New(env,
		di.WithContext(ctx),
		di.WithProviders(di.ProvideGraphQL),
	)
}

func serveAction(c *cli.Context, logger zerolog.Logger) error {
	addr := fmt.Sprintf(":%s", c.String("port"))
	env := c.String("env")

	container, err := setupContainer(logger.WithContext(c.Context), env)
	if err != nil {
		return fmt.Errorf("failed to setup DI container: %w", err)
	}

	handler := NewHandler(di.MustGet[*graphql.Schema](container))

	logger.Info().
		Str("addr", addr).
		Str("env", env).
		Msg("Starting HTTP server")

	server := &http.Server{
		Addr:    addr,
		Handler: loggingMiddleware(logger)(handler.setupRouter()),
	}
	return server.ListenAndServe()
}

// listSentimentsAction prints every sentiment record
func listSentimentsAction(c *cli.Context, logger zerolog.Logger) error {
	ctx := logger.WithContext(c.Context)
	container, err := setupContainer(ctx, c.String("env"))
	if err != nil {
		return fmt.Errorf("failed to create DI container: %w", err)
	}

	records, err := di.MustGet[*sentimentdao.DAO](container).FindAll(ctx)
	if err != nil {
		return err
	}
	return printJSON(records)
}

// listTranscriptionsAction prints the transcriptions saved for a job
func listTranscriptionsAction(c *cli.Context, logger zerolog.Logger) error {
	ctx := logger.WithContext(c.Context)
	container, err := setupContainer(ctx, c.String("env"))
	if err != nil {
		return fmt.Errorf("failed to create DI container: %w", err)
	}

	records, err := di.MustGet[*transcriptiondao.DAO](container).FindByJob(ctx, c.String("job"))
	if err != nil {
		return err
	}
	return printJSON(records)
}

func printJSON(v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	fmt.Println(string(jsonData))
	return nil
}

func main() {
	logger := di.ProvideLogger(false).With().Str("lambda", "results").Logger()

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "dev"
		}

		container, err := setupContainer(logger.WithContext(context.Background()), env)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to setup DI container")
			os.Exit(1)
		}

		handler := NewHandler(di.MustGet[*graphql.Schema](container))

		// Apply middleware stack: strip stage prefix -> logging
		httpHandler := loggingMiddleware(logger)(stripStagePrefixMiddleware(os.Getenv("API_STAGE"), handler.setupRouter()))

		// Use AWS Lambda HTTP adapter for API Gateway V2
		lambda.Start(httpadapter.NewV2(httpHandler).ProxyWithContext)
		return
	}

	envFlag := &cli.StringFlag{
		Name:    "env",
		Usage:   "Parameter store namespace",
		Value:   "dev",
		EnvVars: []string{"ENV"},
	}
	disableSSMFlag := &cli.BoolFlag{
		Name:    "disable-ssm",
		Usage:   "Disable AWS Systems Manager Parameter Store (use environment variables)",
		EnvVars: []string{"DISABLE_SSM"},
	}
	before := func(c *cli.Context) error {
		if c.Bool("disable-ssm") {
			return os.Setenv("DISABLE_SSM", "true")
		}
		return nil
	}

	app := &cli.App{
		Name:   "results",
		Usage:  "GraphQL API over the sentiment and transcription results",
		Flags:  []cli.Flag{envFlag, disableSSMFlag},
		Before: before,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start local HTTP server for testing",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "port",
						Usage: "Port to listen on",
						Value: "8080",
					},
				},
				Action: func(c *cli.Context) error {
					return serveAction(c, logger)
				},
			},
			{
				Name:  "sentiments",
				Usage: "List every analyzed chat message",
				Action: func(c *cli.Context) error {
					return listSentimentsAction(c, logger)
				},
			},
			{
				Name:  "transcriptions",
				Usage: "List the transcriptions saved for a job",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "job",
						Usage:    "Transcription job name",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					return listTranscriptionsAction(c, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
