package s3

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"

	"github.com/OFFIS-RIT/biograph/internal/util"
	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/loader"
	"github.com/OFFIS-RIT/biograph/pkg/logger"
)

const (
	defaultMaxRetries = 3
	retryBackoff      = 200 * time.Millisecond
)

// S3StatementLoader loads a JSON statement dump from an S3 bucket
// using the AWS SDK v2. Works with S3-compatible storage such as MinIO.
type S3StatementLoader struct {
	bucket     string
	key        string
	maxRetries int
	client     *s3.Client

	cache   map[string][]*common.Statement
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewS3StatementLoaderParams configures a S3StatementLoader.
//
// Endpoint overrides the S3 endpoint for S3-compatible storage.
// AccessKey and SecretKey provide static credentials.
// MaxRetries bounds GetObject attempts and defaults to 3.
type NewS3StatementLoaderParams struct {
	Bucket     string
	Key        string
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	MaxRetries int
}

// NewS3StatementLoaderWithClient creates a loader around a preconfigured
// client.
func NewS3StatementLoaderWithClient(bucket, key string, client *s3.Client) *S3StatementLoader {
	return &S3StatementLoader{
		bucket:     bucket,
		key:        key,
		maxRetries: defaultMaxRetries,
		client:     client,
		cache:      make(map[string][]*common.Statement),
	}
}

// NewS3StatementLoader creates a loader with a client built from static
// credentials and the given endpoint and region.
func NewS3StatementLoader(ctx context.Context, params NewS3StatementLoaderParams) (*S3StatementLoader, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(params.Region),
		config.WithBaseEndpoint(params.Endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	l := NewS3StatementLoaderWithClient(params.Bucket, params.Key, client)
	if params.MaxRetries > 0 {
		l.maxRetries = params.MaxRetries
	}
	return l, nil
}

// Load fetches and decodes the object. It implements
// loader.StatementLoader.
func (l *S3StatementLoader) Load(ctx context.Context) ([]*common.Statement, error) {
	cacheKey := l.bucket + "/" + l.key

	l.cacheMu.RLock()
	if cached, ok := l.cache[cacheKey]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(cacheKey, func() (any, error) {
		data, err := util.RetryWithContext(ctx, l.maxRetries, retryBackoff, func(ctx context.Context) ([]byte, error) {
			out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(l.bucket),
				Key:    aws.String(l.key),
			})
			if err != nil {
				logger.Warn("[Loader] GetObject failed", "bucket", l.bucket, "key", l.key, "err", err)
				return nil, err
			}
			defer out.Body.Close()
			return io.ReadAll(out.Body)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch s3://%s: %w", cacheKey, err)
		}

		stmts, err := loader.ParseStatements(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode s3://%s: %w", cacheKey, err)
		}

		l.cacheMu.Lock()
		l.cache[cacheKey] = stmts
		l.cacheMu.Unlock()

		return stmts, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*common.Statement), nil
}
