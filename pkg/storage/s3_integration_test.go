package storage_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nuptial-ops/wedding-manager/pkg/config"
	"github.com/nuptial-ops/wedding-manager/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	minioContainer "github.com/testcontainers/testcontainers-go/modules/minio"
)

func TestS3ClientIntegration(t *testing.T) {
	ctx := context.Background()
	container, err := minioContainer.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z")
	t.Cleanup(func() { require.NoError(t, testcontainers.TerminateContainer(container)) })
	require.NoError(t, err)

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(container.Username, container.Password, ""),
		Secure: false,
	})
	require.NoError(t, err)
	bucket := "wedding-documents"
	require.NoError(t, minioClient.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))

	t.Setenv("AWS_ACCESS_KEY_ID", container.Username)
	t.Setenv("AWS_SECRET_ACCESS_KEY", container.Password)
	awsClient, err := storage.NewAWSS3Client(ctx, config.S3{Bucket: bucket, Region: "eu-west-1", Endpoint: "http://" + endpoint})
	require.NoError(t, err)
	client := storage.NewS3Client(slog.Default(), awsClient, manager.NewUploader(awsClient))

	content := []byte("guest list for the ceremony")
	err = client.Upload(ctx, bucket, "7/guests.docx", bytes.NewReader(content), "application/octet-stream")
	require.NoError(t, err)

	info, err := minioClient.StatObject(ctx, bucket, "7/guests.docx", minio.StatObjectOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, len(content), info.Size)

	var buf bytes.Buffer
	n, err := client.Download(ctx, bucket, "7/guests.docx", &buf)
	require.NoError(t, err)
	assert.EqualValues(t, len(content), n)
	assert.Equal(t, content, buf.Bytes())

	require.NoError(t, client.Delete(ctx, bucket, "7/guests.docx"))
	_, err = minioClient.StatObject(ctx, bucket, "7/guests.docx", minio.StatObjectOptions{})
	require.Error(t, err)
}
