package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/assets"
	"github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/savaki/asset-deployer/internal/policy"
	"github.com/savaki/asset-deployer/internal/services"
	"github.com/savaki/asset-deployer/internal/trigger"
	"github.com/savaki/gox/slicex"
	"github.com/segmentio/ksuid"
)

// Inventory lists the resources of the deployment stack
type Inventory interface {
	ListAll(ctx context.Context) ([]models.ResourceSummary, error)
}

// Syncer uploads the configured targets
type Syncer interface {
	Sync(ctx context.Context, inventory []models.ResourceSummary, targets []models.AssetTarget) ([]assets.Result, error)
}

// Trigger starts the downstream jobs
type Trigger interface {
	Run(ctx context.Context, input services.ExecutionInput) trigger.Report
}

// Policy checks the targets before any object is touched
type Policy interface {
	Validate(ctx context.Context, targets []models.AssetTarget) (*policy.ValidationResult, error)
}

// Summary describes one deployment run
type Summary struct {
	RunID     string          `json:"run_id"`
	StackName string          `json:"stack_name,omitempty"`
	Targets   []assets.Result `json:"targets"`
	Trigger   *trigger.Report `json:"trigger,omitempty"`
}

// Orchestrator runs inventory, sync and the optional trigger in that order
type Orchestrator struct {
	inventory Inventory
	syncer    Syncer
	trigger   Trigger
	policy    Policy
	auto      bool
	stackName string
	stage     string
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithAuto runs the trigger after every successful sync
func WithAuto(auto bool) Option {
	return func(o *Orchestrator) {
		o.auto = auto
	}
}

// WithStack records the stack and stage passed to the trigger
func WithStack(stackName, stage string) Option {
	return func(o *Orchestrator) {
		o.stackName = stackName
		o.stage = stage
	}
}

// WithPolicy rejects a run whose targets violate policy
func WithPolicy(policy Policy) Option {
	return func(o *Orchestrator) {
		o.policy = policy
	}
}

// New creates a new Orchestrator instance
func New(inventory Inventory, syncer Syncer, trigger Trigger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		inventory: inventory,
		syncer:    syncer,
		trigger:   trigger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Deploy checks the policy, fetches the inventory once, syncs every target and,
// when auto is set, runs the trigger. A failed step returns before the next one.
func (o *Orchestrator) Deploy(ctx context.Context, targets []models.AssetTarget) (summary *Summary, err error) {
	summary = &Summary{
		RunID:     ksuid.New().String(),
		StackName: o.stackName,
	}

	logger := zerolog.Ctx(ctx).With().Str("run_id", summary.RunID).Logger()
	ctx = logger.WithContext(ctx)

	defer func(begin time.Time) {
		event := logger.Info()
		if err != nil {
			event = logger.Error().Err(err)
		}
		event.Int("targets", len(targets)).
			Dur("duration", time.Since(begin)).
			Msg("Asset deployment finished")
	}(time.Now())

	if o.policy != nil {
		result, err := o.policy.Validate(ctx, targets)
		if err != nil {
			return summary, fmt.Errorf("failed to validate asset policy: %w", err)
		}
		if !result.Allowed {
			for _, violation := range result.Violations {
				logger.Error().Str("violation", violation).Msg("Asset policy violation")
			}
			return summary, fmt.Errorf("%w: %s", errors.ErrPolicyViolation, strings.Join(result.Violations, "; "))
		}
	}

	inventory, err := o.inventory.ListAll(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load stack inventory: %w", err)
	}

	results, err := o.syncer.Sync(ctx, inventory, targets)
	summary.Targets = results
	if err != nil {
		return summary, fmt.Errorf("failed to sync assets: %w", err)
	}

	if !o.auto || o.trigger == nil {
		return summary, nil
	}

	report := o.Trigger(ctx, summary.RunID, results)
	summary.Trigger = &report
	return summary, nil
}

// Trigger runs the downstream jobs on their own
func (o *Orchestrator) Trigger(ctx context.Context, runID string, results []assets.Result) trigger.Report {
	return o.trigger.Run(ctx, services.ExecutionInput{
		RunID:     runID,
		StackName: o.stackName,
		Stage:     o.stage,
		Buckets:   syncedBuckets(results),
	})
}

func syncedBuckets(results []assets.Result) []string {
	var synced []assets.Result
	for _, result := range results {
		if !result.Skipped && result.Bucket != "" {
			synced = append(synced, result)
		}
	}
	return slicex.Map(synced, func(r assets.Result) string { return r.Bucket })
}
