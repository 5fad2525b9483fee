package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/roster"
	"github.com/hupe1980/roster/account"
	"github.com/hupe1980/roster/blobstore"
	rosterminio "github.com/hupe1980/roster/blobstore/minio"
	rosters3 "github.com/hupe1980/roster/blobstore/s3"
	"github.com/hupe1980/roster/codec"
	"github.com/hupe1980/roster/config"
	"github.com/hupe1980/roster/hashtable"
	"github.com/hupe1980/roster/internal/resource"
	"github.com/hupe1980/roster/store"
	"github.com/hupe1980/roster/store/blobs"
	"github.com/hupe1980/roster/store/dynamo"
	"github.com/hupe1980/roster/student"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Record namespaces shared by every backend.
const (
	studentsNamespace = "students"
	adminsNamespace   = "admins"
)

type stores struct {
	students store.Store[int, student.Student]
	admins   store.Store[string, account.Admin]
	close    func() error
}

func hashtableCapacity[K comparable](n int) []hashtable.Option[K] {
	if n <= 0 {
		return nil
	}
	return []hashtable.Option[K]{hashtable.WithInitialCapacity[K](n)}
}

func nopClose() error { return nil }

// openStores builds the durable stores selected by cfg.Backend.
func openStores(ctx context.Context, cfg *config.Config, logger *roster.Logger) (*stores, error) {
	if cfg.Backend == config.BackendDynamoDB {
		return openDynamo(ctx, cfg)
	}

	bs, closeFn, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	compression, err := codec.ParseCompression(cfg.Records.Compression)
	if err != nil {
		return nil, err
	}
	c, _ := codec.ByName(cfg.Records.Codec)
	rc := resource.NewController(resource.Config{
		MaxConcurrency:     cfg.Records.Concurrency,
		IOLimitBytesPerSec: cfg.Records.IOLimitBytesPerSec,
		MemoryLimitBytes:   cfg.Records.MemoryLimitBytes,
	})

	blobOptions := func(prefix string) func(*blobs.Options) {
		return func(o *blobs.Options) {
			o.Prefix = prefix + "/"
			o.Codec = c
			o.Compression = compression
			o.Resources = rc
		}
	}

	return &stores{
		students: blobs.New(bs, student.KeyOf, blobOptions(studentsNamespace)),
		admins:   blobs.New(bs, account.KeyOf, blobOptions(adminsNamespace)),
		close:    closeFn,
	}, nil
}

func openBlobStore(ctx context.Context, cfg *config.Config, logger *roster.Logger) (blobstore.BlobStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return blobstore.NewMemoryStore(), nopClose, nil

	case config.BackendLocal:
		logger.Debug("opening local store", slog.String("dir", cfg.Local.Dir))
		s, err := blobstore.NewLocalStore(cfg.Local.Dir, func(o *blobstore.LocalOptions) {
			o.Lock = !cfg.Local.DisableLock
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.BackendS3:
		awsCfg, err := loadAWSConfig(ctx, cfg.S3.Region)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("opening s3 store", slog.String("bucket", cfg.S3.Bucket))
		s := rosters3.New(awss3.NewFromConfig(awsCfg), cfg.S3.Bucket, func(o *rosters3.Options) {
			o.Prefix = cfg.S3.Prefix
			if cfg.S3.PartSize > 0 {
				o.Upload.PartSize = cfg.S3.PartSize
			}
			if cfg.S3.UploadConcurrency > 0 {
				o.Upload.Concurrency = cfg.S3.UploadConcurrency
			}
		})
		return s, nopClose, nil

	case config.BackendMinIO:
		client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		logger.Debug("opening minio store", slog.String("endpoint", cfg.MinIO.Endpoint), slog.String("bucket", cfg.MinIO.Bucket))
		s := rosterminio.NewStore(client, cfg.MinIO.Bucket, cfg.MinIO.Prefix)
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to ensure bucket: %w", err)
		}
		return s, nopClose, nil

	default:
		return nil, nil, fmt.Errorf("unsupported blob backend %q", cfg.Backend)
	}
}

func openDynamo(ctx context.Context, cfg *config.Config) (*stores, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg.DynamoDB.Region)
	if err != nil {
		return nil, err
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		}
	})

	compression, err := codec.ParseCompression(cfg.Records.Compression)
	if err != nil {
		return nil, err
	}
	c, _ := codec.ByName(cfg.Records.Codec)
	opts := func(o *dynamo.Options) {
		o.Codec = c
		o.Compression = compression
		o.PageSize = cfg.DynamoDB.PageSize
	}

	return &stores{
		students: dynamo.New(client, cfg.DynamoDB.Table, studentsNamespace, student.KeyOf, opts),
		admins:   dynamo.New(client, cfg.DynamoDB.Table, adminsNamespace, account.KeyOf, opts),
		close:    nopClose,
	}, nil
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if region != "" {
		optFns = append(optFns, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}
