package execsrvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ExecLogRepo stores completed executions as JSON objects in an S3
// bucket, keyed by day and execution id so operators can browse by
// date.
type S3ExecLogRepo struct {
	logger     *slog.Logger
	client     *s3.Client
	bucketName string
}

func NewS3ExecLogRepo(logger *slog.Logger, client *s3.Client, bucketName string) *S3ExecLogRepo {
	return &S3ExecLogRepo{
		logger:     logger.With("module", "execlog"),
		client:     client,
		bucketName: bucketName,
	}
}

func (r *S3ExecLogRepo) Save(ctx context.Context, rec ExecLogRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal execution log: %w", err)
	}

	key := fmt.Sprintf("%s/%s.json",
		rec.CreatedAt.UTC().Format("2006-01-02"),
		rec.ExecID.String())

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to store execution log in S3: %w", err)
	}
	r.logger.Debug("saved execution log", "key", key)
	return nil
}
