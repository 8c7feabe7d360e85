// Package s3 implements object storage for run artifacts on AWS S3.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"tallyflow/internal/config"
	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

type s3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

// NewS3Client creates a new S3-backed ObjectStorage implementation.
func NewS3Client(cfg *config.S3Config) (port.ObjectStorage, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &s3Client{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
	}, nil
}

// Put uploads a local file under the logical path and returns the
// stored key. Upload failures surface as StorageUnavailable so the
// pipeline retries them.
func (c *s3Client) Put(ctx context.Context, localPath, logicalPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("s3 put: %w", err)
	}
	defer f.Close()

	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(logicalPath),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w: %v", logicalPath, domain.ErrStorageUnavailable, err)
	}
	return logicalPath, nil
}

// Get downloads the object to a temp file and returns its local path.
func (c *s3Client) Get(ctx context.Context, logicalPath string) (string, error) {
	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(logicalPath),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("s3 get %s: %w: %v", logicalPath, domain.ErrStorageUnavailable, err)
	}
	defer result.Body.Close()

	f, err := os.CreateTemp("", "s3-*"+filepath.Ext(logicalPath))
	if err != nil {
		return "", fmt.Errorf("s3 get: %w", err)
	}
	if _, err := io.Copy(f, result.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("s3 get: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("s3 get: %w", err)
	}
	return f.Name(), nil
}

func (c *s3Client) Exists(ctx context.Context, logicalPath string) (bool, error) {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(logicalPath),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("s3 exists %s: %w: %v", logicalPath, domain.ErrStorageUnavailable, err)
	}
	return true, nil
}
