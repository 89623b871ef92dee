package attachment

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/shashiranjanraj/bookstore/config"
)

// s3Source reads attachments from S3-compatible object storage.
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2.
type s3Source struct {
	client *s3.Client
}

func newS3Source() (*s3Source, error) {
	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(config.S3Region()),
	}

	// Static credentials (required for MinIO / R2 / Spaces)
	if key, secret := config.S3Key(), config.S3Secret(); key != "" && secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("attachment/s3: load config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if endpoint := config.S3Endpoint(); endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}

	return &s3Source{client: s3.NewFromConfig(cfg, clientOpts...)}, nil
}

// Fetch downloads bucket/key, refusing objects over MaxSize.
func (s *s3Source) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("attachment/s3: get %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > MaxSize {
		return nil, ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(out.Body, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("attachment/s3: read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}
