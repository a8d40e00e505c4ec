package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	deployerrors "github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/models"
)

// ResolveBucket turns a bucket value into a concrete bucket name.
//
// Literal names are returned unchanged. References are looked up by logical id
// in the inventory; a miss logs a warning and returns an empty name so the
// caller can skip the target. Any other value is an ErrInvalidBucketName.
func ResolveBucket(ctx context.Context, inventory []models.ResourceSummary, value models.BucketRef) (string, error) {
	switch value.Kind {
	case models.BucketRefLiteral:
		return value.Name, nil

	case models.BucketRefReference:
		for _, resource := range inventory {
			if resource.LogicalID == value.Ref {
				return resource.PhysicalID, nil
			}
		}

		zerolog.Ctx(ctx).Warn().
			Str("ref", value.Ref).
			Msgf("Failed to resolve reference %s", value.Ref)
		return "", nil

	default:
		return "", fmt.Errorf("%w %s", deployerrors.ErrInvalidBucketName, value)
	}
}
