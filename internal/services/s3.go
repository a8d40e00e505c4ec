package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	deployerrors "github.com/savaki/asset-deployer/internal/errors"
	"github.com/savaki/asset-deployer/internal/models"
	"github.com/savaki/asset-deployer/internal/utils"
)

// ObjectStore defines the S3 operations needed to empty and fill a bucket
type ObjectStore interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ ObjectStore = (*s3.Client)(nil)

// BucketService empties buckets and uploads objects
type BucketService struct {
	client ObjectStore
}

// NewBucketService creates a BucketService backed by client
func NewBucketService(client ObjectStore) *BucketService {
	return &BucketService{client: client}
}

// Empty deletes every object under bucket/prefix. Each listed page is deleted
// in one DeleteObjects call and the bucket is listed again until a listing is
// no longer truncated. Objects written concurrently by someone else may or may
// not be removed.
func (s *BucketService) Empty(ctx context.Context, bucket, prefix string) (err error) {
	logger := zerolog.Ctx(ctx)

	deleted := 0
	defer func(begin time.Time) {
		logger.Debug().
			Str("bucket", bucket).
			Str("prefix", prefix).
			Int("deleted", deleted).
			Dur("duration", time.Since(begin)).
			Err(err).
			Msg("Emptied bucket")
	}(time.Now())

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	for {
		listed, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to list objects in %s/%s: %w", bucket, prefix, err)
		}
		if len(listed.Contents) == 0 {
			return nil
		}

		objects := make([]types.ObjectIdentifier, 0, len(listed.Contents))
		for _, object := range listed.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: object.Key})
		}

		output, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects in %s/%s: %w", bucket, prefix, err)
		}
		if output != nil && len(output.Errors) > 0 {
			first := output.Errors[0]
			return fmt.Errorf("%w: %d of %d keys in %s, first %s: %s",
				deployerrors.ErrDeleteObjectsFailed,
				len(output.Errors), len(objects), bucket,
				aws.ToString(first.Key), aws.ToString(first.Message))
		}
		deleted += len(objects)

		if !aws.ToBool(listed.IsTruncated) {
			return nil
		}
		logger.Debug().Str("bucket", bucket).Str("prefix", prefix).Msg("Listing truncated, emptying next page")
	}
}

// Put uploads a single object
func (s *BucketService) Put(ctx context.Context, task models.UploadTask) error {
	input, err := NewPutObjectInput(task)
	if err != nil {
		return err
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %s to bucket %s: %w", task.Key, task.Bucket, err)
	}
	return nil
}

// NewPutObjectInput builds a fresh PutObjectInput for task. Header names follow
// the PutObject parameter names; names that are not PutObject parameters are
// stored as user metadata. Headers override the task's ACL and ContentType.
func NewPutObjectInput(task models.UploadTask) (*s3.PutObjectInput, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(task.Bucket),
		Key:         aws.String(task.Key),
		Body:        bytes.NewReader(task.Body),
		ContentType: aws.String(task.ContentType),
		ACL:         types.ObjectCannedACL(task.ACL),
	}

	for _, name := range utils.SortedKeys(task.Headers) {
		value := task.Headers[name]
		switch name {
		case "ACL":
			input.ACL = types.ObjectCannedACL(value)
		case "CacheControl":
			input.CacheControl = aws.String(value)
		case "ContentDisposition":
			input.ContentDisposition = aws.String(value)
		case "ContentEncoding":
			input.ContentEncoding = aws.String(value)
		case "ContentLanguage":
			input.ContentLanguage = aws.String(value)
		case "ContentType":
			input.ContentType = aws.String(value)
		case "Expires":
			expires, err := http.ParseTime(value)
			if err != nil {
				if expires, err = time.Parse(time.RFC3339, value); err != nil {
					return nil, fmt.Errorf("invalid Expires header %q for %s: %w", value, task.Key, err)
				}
			}
			input.Expires = aws.Time(expires)
		case "ServerSideEncryption":
			input.ServerSideEncryption = types.ServerSideEncryption(value)
		case "SSEKMSKeyId":
			input.SSEKMSKeyId = aws.String(value)
		case "StorageClass":
			input.StorageClass = types.StorageClass(value)
		case "Tagging":
			input.Tagging = aws.String(value)
		case "WebsiteRedirectLocation":
			input.WebsiteRedirectLocation = aws.String(value)
		default:
			if input.Metadata == nil {
				input.Metadata = map[string]string{}
			}
			input.Metadata[strings.TrimPrefix(strings.ToLower(name), "x-amz-meta-")] = value
		}
	}

	return input, nil
}
