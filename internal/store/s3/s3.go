// Package s3 stores records as objects in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"docstore/internal/logging"
	"docstore/internal/store"
)

// DefaultPageSize is the ListObjectsV2 page size used when none is configured.
const DefaultPageSize int32 = 50

const contentType = "application/json"

var logger = logging.For("store.s3")

// API is the subset of *s3.Client the store calls.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Options configures a client built by NewClient.
type Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// NewClient builds an *s3.Client from the default AWS config chain,
// overridden by any static credentials or custom endpoint in opts.
func NewClient(ctx context.Context, opts Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	}), nil
}

// Store implements store.Provider against a single bucket.
type Store struct {
	client   API
	bucket   string
	pageSize int32
}

// New wraps client for bucket. A non-positive pageSize uses DefaultPageSize.
func New(client API, bucket string, pageSize int32) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{client: client, bucket: bucket, pageSize: pageSize}
}

func (s *Store) GetByKey(ctx context.Context, key string) (store.Record, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s: %w", store.ErrKeyNotFound, key, err)
		}
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	if out.Body == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrEmptyBody, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrEmptyBody, key)
	}
	return store.Decode(data)
}

func (s *Store) Exists(ctx context.Context, collection, id string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(store.ToKey(collection, id)),
	})
	if err == nil {
		return true, nil
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, fmt.Errorf("head %s/%s: %w", collection, id, err)
}

// Keys pages through ListObjectsV2 under "collection/" until the bucket
// reports no continuation token.
func (s *Store) Keys(ctx context.Context, collection string) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(collection + "/"),
		MaxKeys: aws.Int32(s.pageSize),
	})

	keys := []string{}
	pages := 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s (page %d): %w", collection, pages+1, err)
		}
		pages++
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	logger.Debug("listed collection", "collection", collection, "keys", len(keys), "pages", pages)
	return keys, nil
}

func (s *Store) Upsert(ctx context.Context, collection string, data store.Record) (store.Record, error) {
	b, err := store.Encode(data)
	if err != nil {
		return nil, err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(store.ToKey(collection, data.ID())),
		Body:        bytes.NewReader(b),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("putting %s/%s: %w", collection, data.ID(), err)
	}
	return data, nil
}

// DeleteObject relies on S3 treating a missing key as a successful delete.
func (s *Store) DeleteObject(ctx context.Context, collection, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(store.ToKey(collection, id)),
	})
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}
