package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nuptial-ops/wedding-manager/pkg/config"
)

// NewAWSS3Client builds an S3 client from the default AWS credential chain. A configured endpoint
// switches to path style addressing so localstack and minio work.
func NewAWSS3Client(ctx context.Context, c config.S3) (*s3.Client, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(c.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %v", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3Client(logger *slog.Logger, client AWSS3Client, uploader AWSS3Uploader) *S3Client {
	return &S3Client{
		logger:   logger,
		client:   client,
		uploader: uploader,
	}
}

type S3Client struct {
	logger   *slog.Logger
	client   AWSS3Client
	uploader AWSS3Uploader
}

type AWSS3Client interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type AWSS3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

func (s S3Client) Upload(ctx context.Context, bucket string, key string, body io.Reader, contentType string) error {
	// only use context for values when writing
	ctx = context.WithoutCancel(ctx)

	s.logger.InfoContext(ctx, "Uploading", "bucket", bucket, "key", key)
	reader := &countingReader{r: body}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("error uploading object to bucket %q using key %q: %v", bucket, key, err)
	}

	s.logger.InfoContext(ctx, "Uploaded", "bucket", bucket, "key", key, "bytes", reader.read)
	return nil
}

func (s S3Client) Delete(ctx context.Context, bucket string, key string) error {
	_, err := s.client.DeleteObject(context.WithoutCancel(ctx), &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("error deleting object from bucket %q using key %q: %v", bucket, key, err)
	}
	return nil
}

// Download copies the object into dst and returns the number of bytes written.
func (s S3Client) Download(ctx context.Context, bucket string, key string, dst io.Writer) (int64, error) {
	object, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("error downloading object from bucket %q using key %q: %v", bucket, key, err)
	}
	defer object.Body.Close()

	return io.Copy(dst, object.Body)
}

// not safe for concurrent use
type countingReader struct {
	r    io.Reader
	read int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	return n, err
}
