package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	deployerrors "github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/utils"
)

// Config holds the settings of the downstream jobs started after a sync
type Config struct {
	SentimentTable       string
	TranscriptionTable   string
	JSONBucket           string
	JSONFile             string
	AudioInputBucket     string
	AudioFile            string
	AudioOutputBucket    string
	TranscriptionJobName string
	MediaFormat          string
	LanguageCode         string
}

func (c *Config) setDefaults() {
	if c.MediaFormat == "" {
		c.MediaFormat = "mp4"
	}
	if c.LanguageCode == "" {
		c.LanguageCode = "en-US"
	}
}

// Require returns ErrMissingParameter naming the first empty value
func Require(values map[string]string) error {
	var missing []string
	for _, name := range utils.SortedKeys(values) {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", deployerrors.ErrMissingParameter, strings.Join(missing, ", "))
	}
	return nil
}

// ParameterStore defines the interface for accessing configuration parameters
type ParameterStore interface {
	// GetParameter retrieves a single parameter by name
	GetParameter(ctx context.Context, name string) (string, error)

	// GetConfig loads the downstream job settings
	GetConfig(ctx context.Context) (*Config, error)
}

// SSMAPI defines the SSM operations used by SSMParameterStore
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// SSMParameterStore implements ParameterStore using AWS Systems Manager Parameter Store
type SSMParameterStore struct {
	client SSMAPI
	env    string
	mu     sync.RWMutex
	cache  map[string]string
}

// NewSSMParameterStore creates a new SSM-backed parameter store
func NewSSMParameterStore(client SSMAPI, env string) *SSMParameterStore {
	return &SSMParameterStore{
		client: client,
		env:    env,
		cache:  make(map[string]string),
	}
}

func (s *SSMParameterStore) path() string {
	return fmt.Sprintf("/%s/asset-deployer", s.env)
}

// GetParameter retrieves a single parameter from SSM Parameter Store
func (s *SSMParameterStore) GetParameter(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	if value, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return value, nil
	}
	s.mu.RUnlock()

	result, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get parameter %s: %w", name, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("%w: %s", deployerrors.ErrMissingParameter, name)
	}

	value := *result.Parameter.Value

	s.mu.Lock()
	s.cache[name] = value
	s.mu.Unlock()

	return value, nil
}

// GetConfig loads every parameter below /{env}/asset-deployer
func (s *SSMParameterStore) GetConfig(ctx context.Context) (*Config, error) {
	path := s.path()
	params := make(map[string]string)

	var token *string
	for {
		result, err := s.client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:           aws.String(path),
			Recursive:      aws.Bool(true),
			WithDecryption: aws.Bool(true),
			NextToken:      token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get parameters by path %s: %w", path, err)
		}

		for _, param := range result.Parameters {
			if param.Name != nil && param.Value != nil {
				params[*param.Name] = *param.Value
			}
		}

		if aws.ToString(result.NextToken) == "" {
			break
		}
		token = result.NextToken
	}

	s.mu.Lock()
	for k, v := range params {
		s.cache[k] = v
	}
	s.mu.Unlock()

	get := func(name string) string {
		return params[path+"/"+name]
	}

	config := &Config{
		SentimentTable:       get("sentiment-table"),
		TranscriptionTable:   get("transcription-table"),
		JSONBucket:           get("json-bucket"),
		JSONFile:             get("json-file"),
		AudioInputBucket:     get("audio-input-bucket"),
		AudioFile:            get("audio-file"),
		AudioOutputBucket:    get("audio-output-bucket"),
		TranscriptionJobName: get("transcription-job-name"),
		MediaFormat:          get("media-format"),
		LanguageCode:         get("language-code"),
	}
	config.setDefaults()

	return config, nil
}

// EnvParameterStore implements ParameterStore using environment variables
// for local development without an SSM connection
type EnvParameterStore struct {
	env string
}

// NewEnvParameterStore creates a new environment variable-backed parameter store
func NewEnvParameterStore(env string) *EnvParameterStore {
	return &EnvParameterStore{
		env: env,
	}
}

// GetParameter returns the environment variable called name
func (e *EnvParameterStore) GetParameter(_ context.Context, name string) (string, error) {
	return os.Getenv(name), nil
}

// GetConfig loads the downstream job settings from environment variables
func (e *EnvParameterStore) GetConfig(_ context.Context) (*Config, error) {
	config := &Config{
		SentimentTable:       os.Getenv("SENTIMENT_TABLE"),
		TranscriptionTable:   os.Getenv("TRANSCRIPTION_TABLE"),
		JSONBucket:           os.Getenv("JSON_BUCKET"),
		JSONFile:             os.Getenv("JSON_FILE"),
		AudioInputBucket:     os.Getenv("AUDIO_INPUT_BUCKET"),
		AudioFile:            os.Getenv("AUDIO_FILE"),
		AudioOutputBucket:    os.Getenv("AUDIO_OUTPUT_BUCKET"),
		TranscriptionJobName: os.Getenv("TRANSCRIPTION_JOB_NAME"),
		MediaFormat:          os.Getenv("MEDIA_FORMAT"),
		LanguageCode:         os.Getenv("LANGUAGE_CODE"),
	}
	config.setDefaults()

	return config, nil
}
