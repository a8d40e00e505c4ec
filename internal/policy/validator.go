package policy

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"
	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/savaki/gox/slicex"
)

//go:embed assets.rego
var policyContent string

// Settings is the data the policy is evaluated against
type Settings struct {
	Stage                string
	AllowPublic          bool
	AllowAbsoluteSources bool
	ProtectedStages      []string
}

type Validator struct {
	allow      rego.PreparedEvalQuery
	violations rego.PreparedEvalQuery
}

type ValidationResult struct {
	Allowed    bool     `json:"allowed"`
	Violations []string `json:"violations,omitempty"`
}

// NewValidator prepares the built-in asset policy
func NewValidator(ctx context.Context, settings Settings) (*Validator, error) {
	return newValidator(ctx, "assets.rego", policyContent, settings)
}

// NewValidatorFromFile prepares a custom policy. The module must declare
// package assets and define allow and violations.
func NewValidatorFromFile(ctx context.Context, path string, settings Settings) (*Validator, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy %s: %w", path, err)
	}
	return newValidator(ctx, path, string(content), settings)
}

func newValidator(ctx context.Context, name, module string, settings Settings) (*Validator, error) {
	protected := settings.ProtectedStages
	if protected == nil {
		protected = []string{}
	}

	// Create data context for the policy
	data := map[string]interface{}{
		"stage":                  settings.Stage,
		"allow_public":           settings.AllowPublic,
		"allow_absolute_sources": settings.AllowAbsoluteSources,
		"protected_stages":       slicex.Map(protected, func(s string) interface{} { return s }),
	}

	prepare := func(query string) (rego.PreparedEvalQuery, error) {
		return rego.New(
			rego.Query(query),
			rego.Module(name, module),
			rego.Store(inmem.NewFromObject(data)),
		).PrepareForEval(ctx)
	}

	allow, err := prepare("data.assets.allow")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare policy query: %w", err)
	}

	violations, err := prepare("data.assets.violations")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare violations query: %w", err)
	}

	return &Validator{
		allow:      allow,
		violations: violations,
	}, nil
}

// Validate evaluates the policy against targets
func (v *Validator) Validate(ctx context.Context, targets []models.AssetTarget) (*ValidationResult, error) {
	logger := zerolog.Ctx(ctx)

	defer func(begin time.Time) {
		logger.Debug().
			Int("targets", len(targets)).
			Dur("duration", time.Since(begin)).
			Msg("Evaluated asset policy")
	}(time.Now())

	input := map[string]interface{}{
		"targets": slicex.Map(targets, targetInput),
	}

	results, err := v.allow.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 {
		return &ValidationResult{
			Allowed:    false,
			Violations: []string{"policy evaluation returned no results"},
		}, nil
	}

	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return &ValidationResult{
			Allowed:    false,
			Violations: []string{"policy evaluation returned non-boolean result"},
		}, nil
	}

	result := &ValidationResult{
		Allowed: allowed,
	}

	// If not allowed, get violations
	if !allowed {
		violations, err := v.getViolations(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to get violations: %w", err)
		}
		result.Violations = violations
	}

	return result, nil
}

func (v *Validator) getViolations(ctx context.Context, input map[string]interface{}) ([]string, error) {
	results, err := v.violations.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate violations: %w", err)
	}

	if len(results) == 0 {
		return []string{"unknown policy violation"}, nil
	}

	violationsInterface := results[0].Expressions[0].Value
	if violationsInterface == nil {
		return []string{"unknown policy violation"}, nil
	}

	// Convert the violations to strings
	var violations []string
	switch v := violationsInterface.(type) {
	case []interface{}:
		for _, violation := range v {
			if str, ok := violation.(string); ok {
				violations = append(violations, str)
			}
		}
	case map[string]interface{}:
		// Handle set type from Rego
		for violation := range v {
			violations = append(violations, violation)
		}
	}

	if len(violations) == 0 {
		return []string{"policy validation failed but no specific violations found"}, nil
	}

	sort.Strings(violations)
	return violations, nil
}

// targetInput flattens a target into the document the policy reads
func targetInput(target models.AssetTarget) interface{} {
	return map[string]interface{}{
		"bucket": target.Bucket.String(),
		"ref":    target.Bucket.IsReference(),
		"prefix": target.Prefix,
		"acl":    target.ACL,
		"empty":  target.Empty,
		"files": slicex.Map(target.Files, func(group models.FileGroup) interface{} {
			return map[string]interface{}{
				"source": group.Source,
				"globs":  slicex.Map(group.Globs, func(s string) interface{} { return s }),
			}
		}),
	}
}
