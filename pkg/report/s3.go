package report

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client is the slice of the S3 API the reporter needs.
// *s3.Client satisfies it.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Reporter writes one JSON object per report to an S3 bucket.
// Keys are time-prefixed so reports list chronologically:
//
//	<prefix>2026/08/24/150405-a1b2c3d4e5f6a7b8.json
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	reporter := report.NewS3Reporter(s3.NewFromConfig(cfg), "my-bucket", "errors/")
type S3Reporter struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3Reporter creates an S3-backed reporter.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: Key prefix for reports (e.g., "errors/")
func NewS3Reporter(client S3Client, bucket, prefix string) *S3Reporter {
	return &S3Reporter{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Report uploads the report as a JSON object.
func (s *S3Reporter) Report(ctx context.Context, report *Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("report marshal failed: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(report)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"error-kind":  report.Kind,
			"report-time": report.Time.Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	return nil
}

// Close is a no-op; the S3 client owns no long-lived resources here.
func (s *S3Reporter) Close() error { return nil }

func (s *S3Reporter) key(report *Report) string {
	t := report.Time
	if t.IsZero() {
		t = time.Now().UTC()
	}
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%s%s-%s.json", s.prefix, t.Format("2006/01/02/150405"), hex.EncodeToString(b))
}
