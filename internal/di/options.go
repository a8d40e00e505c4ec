package di

import (
	"context"

	"github.com/savaki/asset-deployer/internal/config"
)

// EndpointURL overrides the AWS endpoint, e.g. for LocalStack
type EndpointURL string

// BucketFilter restricts a deployment to a single resolved bucket
type BucketFilter string

// Concurrency caps the number of targets synced at once; zero means the default
type Concurrency int

// Option is a function that configures the dependency injection container.
type Option func(*options)

// WithContext registers ctx, including its logger, for providers that need one
func WithContext(ctx context.Context) Option {
	return func(opts *options) {
		opts.ctx = ctx
	}
}

func WithEndpointURL(url string) Option {
	return func(opts *options) {
		opts.endpointURL = EndpointURL(url)
	}
}

func WithBucketFilter(bucket string) Option {
	return func(opts *options) {
		opts.bucketFilter = BucketFilter(bucket)
	}
}

func WithConcurrency(n int) Option {
	return func(opts *options) {
		opts.concurrency = Concurrency(n)
	}
}

// WithAssetConfig registers the loaded asset configuration
func WithAssetConfig(cfg *config.Config) Option {
	return func(opts *options) {
		opts.assetConfig = cfg
	}
}

// WithProviders adds constructor functions to the dependency injection container.
// Each provider should be a constructor function that returns one or more values.
// Providers can declare dependencies as function parameters, which will be
// automatically resolved by the container.
//
// Example:
//
//	WithProviders(
//	    func() *Database { return &Database{} },
//	    func(db *Database) *Service { return &Service{DB: db} },
//	)
func WithProviders(providers ...any) Option {
	return func(opts *options) {
		opts.providers = append(opts.providers, providers...)
	}
}

type options struct {
	ctx          context.Context
	endpointURL  EndpointURL
	bucketFilter BucketFilter
	concurrency  Concurrency
	assetConfig  *config.Config
	providers    []any
}
