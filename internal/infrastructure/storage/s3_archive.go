// Package storage archives acknowledged settlements to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/erp/settlement/internal/domain/settlement"
	infraconfig "github.com/erp/settlement/internal/infrastructure/config"
	"go.uber.org/zap"
)

const contentTypeJSON = "application/json"

// S3SettlementArchive writes snapshots as JSON objects keyed
// <prefix>/<tenant>/<yyyy>/<mm>/<snapshot>.json
type S3SettlementArchive struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// S3ArchiveOption is a functional option for S3SettlementArchive
type S3ArchiveOption func(*S3SettlementArchive)

// WithLogger sets the archive logger
func WithLogger(logger *zap.Logger) S3ArchiveOption {
	return func(a *S3SettlementArchive) {
		a.logger = logger
	}
}

// NewS3SettlementArchive builds an archive from storage config. Works with
// AWS S3 and compatible servers such as MinIO when UsePathStyle is set.
func NewS3SettlementArchive(ctx context.Context, cfg infraconfig.StorageConfig, opts ...S3ArchiveOption) (*S3SettlementArchive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(regionOrDefault(cfg.Region)),
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
			return nil, errors.New("storage access key id and secret access key must be set together")
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := normalizeEndpoint(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	a := &S3SettlementArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// EnsureBucket creates the bucket if it does not exist
func (a *S3SettlementArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}

	a.logger.Info("Creating settlement archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Archive uploads the snapshot and returns its object key
func (a *S3SettlementArchive) Archive(ctx context.Context, snapshot settlement.SettlementSnapshot) (string, error) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot %s: %w", snapshot.ID, err)
	}

	key := ObjectKey(a.prefix, snapshot)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentTypeJSON),
		Metadata: map[string]string{
			"session-id":   snapshot.SessionID.String(),
			"customer-ref": snapshot.CustomerRef,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot %s: %w", snapshot.ID, err)
	}

	a.logger.Info("Settlement archived",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.String("snapshot_id", snapshot.ID.String()),
	)
	return key, nil
}

// Load reads an archived snapshot back
func (a *S3SettlementArchive) Load(ctx context.Context, key string) (settlement.SettlementSnapshot, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return settlement.SettlementSnapshot{}, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer out.Body.Close()

	var snap settlement.SettlementSnapshot
	if err := json.NewDecoder(out.Body).Decode(&snap); err != nil {
		return settlement.SettlementSnapshot{}, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return snap, nil
}

// Bucket returns the bucket name
func (a *S3SettlementArchive) Bucket() string {
	return a.bucket
}

// ObjectKey returns the object key for a snapshot
func ObjectKey(prefix string, snapshot settlement.SettlementSnapshot) string {
	created := snapshot.CreatedAt.UTC()
	return path.Join(
		prefix,
		snapshot.TenantID.String(),
		fmt.Sprintf("%04d", created.Year()),
		fmt.Sprintf("%02d", int(created.Month())),
		snapshot.ID.String()+".json",
	)
}

func regionOrDefault(region string) string {
	if region == "" {
		return "us-east-1"
	}
	return region
}

func normalizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return ""
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return "https://" + endpoint
}

var _ settlement.SettlementArchive = (*S3SettlementArchive)(nil)
