package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/savaki/asset-deployer/internal/constants"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/savaki/asset-deployer/internal/services"
	"github.com/savaki/asset-deployer/internal/utils"
	"golang.org/x/sync/errgroup"
)

// Uploader writes a single object
type Uploader interface {
	Put(ctx context.Context, task models.UploadTask) error
}

// Emptier deletes every object below a prefix
type Emptier interface {
	Empty(ctx context.Context, bucket, prefix string) error
}

// Result describes what happened to one target
type Result struct {
	Bucket   string `json:"bucket"`
	Prefix   string `json:"prefix,omitempty"`
	Skipped  bool   `json:"skipped,omitempty"`
	Emptied  bool   `json:"emptied,omitempty"`
	Uploaded int    `json:"uploaded"`
}

// Engine syncs local files into their target buckets
type Engine struct {
	uploader    Uploader
	emptier     Emptier
	concurrency int
	bucket      string
	baseDir     string
}

// Option configures an Engine
type Option func(*Engine)

// WithConcurrency caps the number of targets processed at once
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithBucketFilter restricts a sync to the target whose resolved bucket is bucket
func WithBucketFilter(bucket string) Option {
	return func(e *Engine) {
		e.bucket = bucket
	}
}

// WithBaseDir resolves relative source directories against dir
func WithBaseDir(dir string) Option {
	return func(e *Engine) {
		e.baseDir = dir
	}
}

// New creates an Engine
func New(uploader Uploader, emptier Emptier, opts ...Option) *Engine {
	e := &Engine{
		uploader:    uploader,
		emptier:     emptier,
		concurrency: constants.MaxConcurrentTargets,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync resolves, optionally empties and uploads every target. At most
// concurrency targets run at once; within a target, groups and files run one at
// a time. The first failure cancels targets that have not started and is
// returned once every running target settles. Results are indexed like targets.
func (e *Engine) Sync(ctx context.Context, inventory []models.ResourceSummary, targets []models.AssetTarget) ([]Result, error) {
	logger := zerolog.Ctx(ctx)

	defer func(begin time.Time) {
		logger.Debug().
			Int("targets", len(targets)).
			Dur("duration", time.Since(begin)).
			Msg("Synced targets")
	}(time.Now())

	results := make([]Result, len(targets))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency)

	for i, target := range targets {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := e.syncTarget(ctx, inventory, i, target)
			results[i] = result
			return err
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (e *Engine) syncTarget(ctx context.Context, inventory []models.ResourceSummary, index int, target models.AssetTarget) (Result, error) {
	bucket, err := services.ResolveBucket(ctx, inventory, target.Bucket)
	if err != nil {
		return Result{Skipped: true}, err
	}

	result := Result{Bucket: bucket, Prefix: target.Prefix}
	logger := zerolog.Ctx(ctx).With().
		Int("target", index).
		Str("bucket", bucket).
		Str("prefix", target.Prefix).
		Logger()

	if bucket == "" {
		logger.Debug().Str("ref", target.Bucket.String()).Msg("Skipping target with unresolved bucket")
		result.Skipped = true
		return result, nil
	}
	if e.bucket != "" && e.bucket != bucket {
		logger.Debug().Str("filter", e.bucket).Msg("Skipping target excluded by bucket filter")
		result.Skipped = true
		return result, nil
	}

	ctx = logger.WithContext(ctx)

	if target.Empty {
		logger.Debug().Msg("Emptying bucket")
		if err := e.emptier.Empty(ctx, bucket, target.Prefix); err != nil {
			return result, fmt.Errorf("failed to empty target %d: %w", index, err)
		}
		result.Emptied = true
	}

	acl := target.ACL
	if acl == "" {
		acl = constants.DefaultACL
	}

	for _, files := range target.Files {
		n, err := e.syncGroup(ctx, bucket, target.Prefix, acl, files)
		result.Uploaded += n
		if err != nil {
			return result, err
		}
	}

	logger.Debug().Int("uploaded", result.Uploaded).Msg("Synced target")
	return result, nil
}

func (e *Engine) syncGroup(ctx context.Context, bucket, prefix, acl string, group models.FileGroup) (int, error) {
	logger := zerolog.Ctx(ctx)

	source := group.Source
	if source == "" {
		source = "."
	}
	if e.baseDir != "" && !filepath.IsAbs(source) {
		source = filepath.Join(e.baseDir, source)
	}

	if _, err := os.Stat(source); errors.Is(err, os.ErrNotExist) {
		logger.Debug().Str("source", source).Msg("Source directory does not exist, nothing to upload")
		return 0, nil
	}

	fs := osfs.New(source)
	files, err := Match(fs, group.Globs)
	if err != nil {
		return 0, err
	}

	logger.Debug().Str("source", source).Int("files", len(files)).Msg("Matched files")

	uploaded := 0
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}

		body, err := util.ReadFile(fs, rel)
		if err != nil {
			return uploaded, fmt.Errorf("failed to read %s: %w", filepath.Join(source, rel), err)
		}

		task := models.UploadTask{
			Bucket:      bucket,
			Key:         Key(prefix, rel),
			Body:        body,
			ContentType: ContentType(rel, group, body),
			ACL:         acl,
			Headers:     utils.MergeHeaders(group.Headers),
		}

		logger.Debug().
			Str("key", task.Key).
			Str("content_type", task.ContentType).
			Msg("Uploading file")

		if err := e.uploader.Put(ctx, task); err != nil {
			return uploaded, err
		}
		uploaded++
	}

	return uploaded, nil
}
