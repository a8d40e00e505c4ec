package errors

import "errors"

var (
	ErrInvalidBucketName   = errors.New("invalid bucket name")
	ErrStackNameRequired   = errors.New("stack name is required to resolve bucket references")
	ErrStackNotFound       = errors.New("stack does not exist")
	ErrConfigNotFound      = errors.New("asset configuration not found")
	ErrInvalidConfig       = errors.New("invalid asset configuration")
	ErrInvalidGlobPattern  = errors.New("invalid glob pattern")
	ErrDeleteObjectsFailed = errors.New("delete objects reported failures")
	ErrMissingParameter    = errors.New("required parameter is not configured")
	ErrInvalidTranscript   = errors.New("invalid transcription document")
	ErrPolicyViolation     = errors.New("asset policy violation")
)
