package sink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is the subset of the S3 API the sink uses; narrowed for tests.
type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads the dataset to an S3 object.
type S3Sink struct {
	client s3Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewS3Sink creates a sink for an s3://bucket/key destination using the
// default AWS credential chain.
func NewS3Sink(ctx context.Context, dest string, logger *slog.Logger) (*S3Sink, error) {
	bucket, key, err := parseS3URI(dest)
	if err != nil {
		return nil, err
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, &SinkError{Op: "put", Dest: dest, Err: fmt.Errorf("loading AWS config: %w", err)}
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &S3Sink{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		key:    key,
		logger: logger,
	}, nil
}

// Location returns the s3:// URI.
func (s *S3Sink) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Store uploads body as one object. Errors are surfaced, not retried.
func (s *S3Sink) Store(ctx context.Context, body io.Reader) error {
	s.logger.Debug("uploading dataset", "bucket", s.bucket, "key", s.key)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        body,
		ContentType: contentType(s.key),
	})
	if err != nil {
		return &SinkError{Op: "put", Dest: s.Location(), Err: err}
	}
	return nil
}

func contentType(key string) *string {
	ct := "application/octet-stream"
	if strings.HasSuffix(key, ".csv") {
		ct = "text/csv"
	}
	return &ct
}

func parseS3URI(dest string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(dest, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", &SinkError{Op: "put", Dest: dest,
			Err: fmt.Errorf("destination must have the form s3://bucket/key")}
	}
	return bucket, key, nil
}
