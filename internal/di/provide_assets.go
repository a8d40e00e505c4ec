package di

import (
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/savaki/asset-deployer/internal/assets"
	"github.com/savaki/asset-deployer/internal/config"
	"github.com/savaki/asset-deployer/internal/orchestrator"
	"github.com/savaki/asset-deployer/internal/policy"
	"github.com/savaki/asset-deployer/internal/services"
	"github.com/savaki/asset-deployer/internal/trigger"
)

// ProvideInventoryService lists the configured stack. Listing is skipped when
// reference resolution is disabled or nothing could need it.
func ProvideInventoryService(client *cloudformation.Client, cfg *config.Config) *services.InventoryService {
	stackName := cfg.ResolvedStackName()
	enabled := cfg.ResolveReferences && (stackName != "" || cfg.HasReferences())
	return services.NewInventoryService(client, stackName, enabled)
}

func ProvideBucketService(client *s3.Client) *services.BucketService {
	return services.NewBucketService(client)
}

func ProvideInvokerService(client *awslambda.Client) *services.InvokerService {
	return services.NewInvokerService(client)
}

func ProvideEngine(bucketService *services.BucketService, cfg *config.Config, bucket BucketFilter, concurrency Concurrency) *assets.Engine {
	return assets.New(bucketService, bucketService,
		assets.WithBucketFilter(string(bucket)),
		assets.WithConcurrency(int(concurrency)),
		assets.WithBaseDir(cfg.BaseDir),
	)
}

func ProvideTrigger(invoker *services.InvokerService, sfnClient *sfn.Client, cfg *config.Config) *trigger.Trigger {
	var opts []trigger.Option
	if cfg.StateMachineArn != "" {
		opts = append(opts, trigger.WithExecutionStarter(services.NewStateMachineService(sfnClient, cfg.StateMachineArn)))
	}
	return trigger.New(invoker, cfg.AnalyzeDataLambda, cfg.TranscribeAudioLambda, opts...)
}

func ProvideOrchestrator(inventory *services.InventoryService, engine *assets.Engine, trig *trigger.Trigger, validator *policy.Validator, cfg *config.Config) *orchestrator.Orchestrator {
	opts := []orchestrator.Option{
		orchestrator.WithAuto(cfg.Auto),
		orchestrator.WithStack(cfg.ResolvedStackName(), cfg.Stage),
	}
	if validator != nil {
		opts = append(opts, orchestrator.WithPolicy(validator))
	}
	return orchestrator.New(inventory, engine, trig, opts...)
}
