// ABOUTME: S3-backed blob store
// ABOUTME: Resolves and uploads assets in any S3-compatible bucket
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client abstracts the S3 API operations used by S3Store.
// The *s3.Client type satisfies this interface.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Options configures an S3 client built by NewS3Client
type S3Options struct {
	Region          string
	Endpoint        string // non-empty for MinIO, R2 and other S3-compatible stores
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client from static options
func NewS3Client(opts S3Options) *s3.Client {
	o := s3.Options{Region: opts.Region}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	}
	if opts.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
			Source:          "hippolingua",
		}
		o.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		))
	}
	return s3.New(o)
}

// S3Store resolves assets stored under <prefix>/<id> in a bucket
type S3Store struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3 creates an S3-backed store
func NewS3(client S3Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Resolve fetches the asset's bytes
func (s *S3Store) Resolve(ctx context.Context, id string) (*Blob, error) {
	key, err := s.findKey(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.wrap(ctx, "get", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", key, unavailable(ctx, err))
	}

	asset := s.asset(id, key)
	asset.Size = int64(len(data))
	if ct := aws.ToString(out.ContentType); ct != "" {
		asset.ContentType = ct
	}
	asset.LastModified = aws.ToTime(out.LastModified)
	asset.Metadata = out.Metadata
	detectFormat(&asset, data)

	return &Blob{Asset: asset, Data: data, Origin: OriginStore}, nil
}

// Stat returns the asset's metadata via HeadObject
func (s *S3Store) Stat(ctx context.Context, id string) (*Asset, error) {
	key, err := s.findKey(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.wrap(ctx, "head", key, err)
	}

	asset := s.asset(id, key)
	asset.Size = aws.ToInt64(out.ContentLength)
	if ct := aws.ToString(out.ContentType); ct != "" {
		asset.ContentType = ct
	}
	asset.LastModified = aws.ToTime(out.LastModified)
	asset.Metadata = out.Metadata
	return &asset, nil
}

// Put uploads r under <prefix>/<id>
func (s *S3Store) Put(ctx context.Context, id string, r io.Reader, opts PutOptions) (*Asset, error) {
	key := joinKey(s.prefix, id)

	input := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     r,
		Metadata: opts.Metadata,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("s3 put %s: %w", key, unavailable(ctx, err))
	}

	asset := s.asset(id, key)
	if opts.ContentType != "" {
		asset.ContentType = opts.ContentType
	}
	asset.Metadata = opts.Metadata
	return &asset, nil
}

// Ping checks that the bucket is reachable with the configured credentials
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(joinKey(s.prefix, "")),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("s3 bucket %s: %w", s.bucket, unavailable(ctx, err))
	}
	return nil
}

// findKey returns the exact key when it exists, otherwise the first
// listed key under it with a supported extension
func (s *S3Store) findKey(ctx context.Context, id string) (string, error) {
	key := joinKey(s.prefix, id)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return key, nil
	}
	if !isS3NotFound(err) {
		return "", s.wrap(ctx, "head", key, err)
	}

	var keys []string
	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(key),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return "", s.wrap(ctx, "list", key, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	found, ok := pickKey(keys)
	if !ok {
		return "", fmt.Errorf("s3 %s: %w", id, ErrNotFound)
	}
	return found, nil
}

func (s *S3Store) asset(id, key string) Asset {
	a := newAsset(id, key)
	a.URL = fmt.Sprintf("s3://%s/%s", s.bucket, key)
	return a
}

func (s *S3Store) wrap(ctx context.Context, op, key string, err error) error {
	if isS3NotFound(err) {
		return fmt.Errorf("s3 %s %s: %w", op, key, ErrNotFound)
	}
	return fmt.Errorf("s3 %s %s: %w", op, key, unavailable(ctx, err))
}

// isS3NotFound reports whether err indicates the S3 object does not exist
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var _ Store = (*S3Store)(nil)
