package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

const defaultS3Region = "us-east-1"

// S3Options configures S3Store.
type S3Options struct {
	Region string
	// Endpoint overrides the AWS endpoint (MinIO, LocalStack). Path-style addressing is used when set.
	Endpoint string
	// PublicBaseURL is the CDN or bucket host prefix. Empty means the virtual-hosted S3 URL.
	PublicBaseURL string
}

// S3Store uploads assets as public-read objects.
type S3Store struct {
	uploader s3manageriface.UploaderAPI
	opts     S3Options
}

// NewS3Store opens an AWS session using the default credential chain.
func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.Region == "" {
		opts.Region = defaultS3Region
	}
	awsCfg := &aws.Config{Region: aws.String(opts.Region)}
	if opts.Endpoint != "" {
		awsCfg.Endpoint = aws.String(opts.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewS3StoreWithUploader(s3manager.NewUploader(sess), opts), nil
}

// NewS3StoreWithUploader builds a store around an existing uploader.
func NewS3StoreWithUploader(uploader s3manageriface.UploaderAPI, opts S3Options) *S3Store {
	if opts.Region == "" {
		opts.Region = defaultS3Region
	}
	return &S3Store{uploader: uploader, opts: opts}
}

// Upload puts one object into bucket under key.
func (s *S3Store) Upload(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	input := &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL returns the public retrieval URL of an uploaded object.
func (s *S3Store) PublicURL(bucket, key string) string {
	if s.opts.PublicBaseURL != "" {
		return joinURL(s.opts.PublicBaseURL, bucket, key)
	}
	if s.opts.Endpoint != "" {
		return joinURL(s.opts.Endpoint, bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.opts.Region, key)
}
