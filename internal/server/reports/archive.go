// Package reports archives analysis reports as JSON objects in
// S3-compatible storage (AWS S3 or MinIO).
package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// Archiver stores a report and returns its object key.
type Archiver interface {
	Archive(ctx context.Context, id int64, report any) (string, error)
}

// Nop discards reports; it is used when no bucket is configured.
type Nop struct{}

func (Nop) Archive(context.Context, int64, any) (string, error) { return "", nil }

type Options struct {
	Bucket       string
	Region       string
	RootUser     string
	RootPassword string
	BaseEndpoint string
}

type S3Archiver struct {
	client *s3.Client
	bucket string
}

// NewS3Archiver builds a client with static credentials. A non-empty
// BaseEndpoint points it at a MinIO-style server.
func NewS3Archiver(ctx context.Context, o Options) (*S3Archiver, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.RootUser, o.RootPassword, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			so.UsePathStyle = true
		}
	})

	return &S3Archiver{client: client, bucket: o.Bucket}, nil
}

// StorageKey names the object for report id created at t.
func StorageKey(id int64, t time.Time) string {
	return fmt.Sprintf("reports/%d/%d/%d/%d-%v.json", t.Year(), t.Month(), t.Day(), id, uuid.New())
}

func (a *S3Archiver) Archive(ctx context.Context, id int64, report any) (string, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	key := StorageKey(id, time.Now())
	_, err = putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}
