package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// S3API is the subset of *s3.Client the source needs.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds a client from the default credential chain. A custom
// endpoint (MinIO, LocalStack) switches to path-style addressing.
func NewS3Client(ctx context.Context, cfg common.StorageConfig) (*s3.Client, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Source lists PDFs under Bucket/Prefix. Keys are full object keys.
type S3Source struct {
	client   S3API
	bucket   string
	prefix   string
	maxBytes int64
	logger   *slog.Logger
}

func NewS3Source(client S3API, bucket, prefix string, maxBytes int64, logger *slog.Logger) (*S3Source, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "s3 bucket is required", common.ErrInvalidInput)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Source{client: client, bucket: bucket, prefix: prefix, maxBytes: maxBytes, logger: logger}, nil
}

func (s *S3Source) List(ctx context.Context) ([]Item, ListStats, error) {
	var items []Item
	var stats ListStats

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return items, stats, fmt.Errorf("list s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			stats.Scanned++
			if !isReportKey(key) {
				stats.Skipped++
				continue
			}
			items = append(items, Item{Key: key, Size: aws.ToInt64(obj.Size)})
			stats.Matched++
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })

	s.logger.Info("s3 prefix listed", "bucket", s.bucket, "prefix", s.prefix,
		"scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped)
	return items, stats, nil
}

func (s *S3Source) Load(ctx context.Context, key string) (entity.Document, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return entity.Document{}, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer func() {
		if err := out.Body.Close(); err != nil {
			s.logger.Warn("close s3 body", "key", key, "error", err)
		}
	}()

	var r io.Reader = out.Body
	if s.maxBytes > 0 {
		r = io.LimitReader(out.Body, s.maxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return entity.Document{}, fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}
	if s.maxBytes > 0 && int64(len(b)) > s.maxBytes {
		return entity.Document{}, common.NewAppError("TOO_LARGE",
			fmt.Sprintf("%s exceeds %d bytes", key, s.maxBytes), common.ErrTooLarge)
	}
	return entity.Document{Name: key, Content: b}, nil
}
