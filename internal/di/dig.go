// Package di provides a lightweight wrapper around uber's dig dependency injection framework.
// It simplifies container setup and provides type-safe dependency retrieval with generics.
package di

import (
	"context"

	"github.com/savaki/asset-deployer/internal/config"
	"go.uber.org/dig"
)

// Container defines a dependency injection container based on uber's dig.
// This interface allows for easy testing and mocking of the DI container.
type Container interface {
	// Invoke executes a function, injecting its dependencies from the container.
	Invoke(function any, opts ...dig.InvokeOption) error

	// Provide registers a constructor function in the container.
	Provide(constructor any, opts ...dig.ProvideOption) error

	// Scope creates a scoped sub-container with its own set of values.
	Scope(name string, opts ...dig.ScopeOption) *dig.Scope
}

// MustGet returns an instance constructed via dependency injection or panics.
// This is a convenience function for retrieving a dependency from the container
// when you're certain it exists. If the dependency cannot be resolved, it will panic.
//
// Example:
//
//	engine := MustGet[*assets.Engine](container)
func MustGet[T any](container Container) (want T) {
	callback := func(got T) {
		want = got
	}
	if err := container.Invoke(callback); err != nil {
		panic(err)
	}
	return want
}

// New creates a new dependency injection container for the given environment.
// The environment string is automatically registered as a string dependency
// that can be injected as a regular string parameter. The context, asset
// configuration and command line settings supplied through options are
// registered the same way.
//
// Example:
//
//	container, err := New("dev",
//	    WithContext(ctx),
//	    WithAssetConfig(cfg),
//	    WithBucketFilter("web-bucket"),
//	)
func New(env string, opts ...Option) (Container, error) {
	o := options{
		ctx: context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.assetConfig == nil {
		cfg := config.Default()
		o.assetConfig = &cfg
	}

	container := dig.New()
	values := []any{
		func() string { return env },
		func() context.Context { return o.ctx },
		func() EndpointURL { return o.endpointURL },
		func() BucketFilter { return o.bucketFilter },
		func() Concurrency { return o.concurrency },
		func() *config.Config { return o.assetConfig },
	}
	for _, value := range values {
		if err := container.Provide(value); err != nil {
			return nil, err
		}
	}

	// Register all provided constructors
	for _, provider := range core {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	// Register all provided constructors
	for _, provider := range o.providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}

var core = []any{
	ProvideAWSConfig,
	ProvideCloudFormation,
	ProvideS3Client,
	ProvideLambdaClient,
	ProvideStepFunctions,
	ProvideDynamoDB,
	ProvideComprehend,
	ProvideTranscribe,
	ProvideSTS,
	ProvideSSMClient,
	ProvideParameterStore,
	ProvideAppConfig,
	ProvideInventoryService,
	ProvideBucketService,
	ProvideInvokerService,
	ProvideEngine,
	ProvideTrigger,
	ProvidePolicy,
	ProvideOrchestrator,
	ProvideSentimentDAO,
	ProvideTranscriptionDAO,
}
