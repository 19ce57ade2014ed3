// Package storage archives resolved complaint records to S3 for
// retention. Archival is best-effort and disabled unless a bucket is
// configured.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver writes JSON documents to a configured S3 bucket
type Archiver struct {
	Client *s3.Client
	Bucket string
}

// NewArchiver builds an archiver from COMPLAINT_ARCHIVE_BUCKET. An
// empty bucket leaves the archiver disabled rather than failing.
func NewArchiver(ctx context.Context) (*Archiver, error) {
	bucket := os.Getenv("COMPLAINT_ARCHIVE_BUCKET")
	if bucket == "" {
		return &Archiver{}, nil
	}
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		region = "eu-central-1"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &Archiver{Client: s3.NewFromConfig(cfg), Bucket: bucket}, nil
}

// Enabled reports whether the archiver has a client and bucket
func (a *Archiver) Enabled() bool {
	return a != nil && a.Client != nil && a.Bucket != ""
}

// ArchiveJSON marshals v and uploads it under key, returning the s3 URI
func (a *Archiver) ArchiveJSON(ctx context.Context, key string, v interface{}) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("archiver not configured")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	contentType := "application/json"
	_, err = a.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.Bucket,
		Key:         &key,
		Body:        bytes.NewReader(b),
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", a.Bucket, key), nil
}
