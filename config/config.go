// Package config holds the rosterctl configuration: which durable backend to
// use, how records are encoded, and how the process logs.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hupe1980/roster/codec"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid")

// Backend types.
const (
	BackendLocal    = "local"
	BackendMemory   = "memory"
	BackendS3       = "s3"
	BackendMinIO    = "minio"
	BackendDynamoDB = "dynamodb"
)

// Config is the root configuration.
type Config struct {
	Backend  string         `json:"backend"`
	Local    LocalConfig    `json:"local"`
	S3       S3Config       `json:"s3"`
	MinIO    MinIOConfig    `json:"minio"`
	DynamoDB DynamoDBConfig `json:"dynamodb"`
	Records  RecordsConfig  `json:"records"`
	Log      LogConfig      `json:"log"`
	Table    TableConfig    `json:"table"`
}

// LocalConfig configures the local filesystem backend.
type LocalConfig struct {
	Dir         string `json:"dir,omitempty"`
	DisableLock bool   `json:"disable_lock,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *LocalConfig) Merge(source *LocalConfig) {
	if source.Dir != "" {
		c.Dir = source.Dir
	}
	if source.DisableLock {
		c.DisableLock = true
	}
}

// S3Config configures the Amazon S3 backend.
type S3Config struct {
	Bucket            string `json:"bucket,omitempty"`
	Prefix            string `json:"prefix,omitempty"`
	Region            string `json:"region,omitempty"`
	PartSize          int64  `json:"part_size,omitempty"`
	UploadConcurrency int    `json:"upload_concurrency,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *S3Config) Merge(source *S3Config) {
	if source.Bucket != "" {
		c.Bucket = source.Bucket
	}
	if source.Prefix != "" {
		c.Prefix = source.Prefix
	}
	if source.Region != "" {
		c.Region = source.Region
	}
	if source.PartSize > 0 {
		c.PartSize = source.PartSize
	}
	if source.UploadConcurrency > 0 {
		c.UploadConcurrency = source.UploadConcurrency
	}
}

// MinIOConfig configures an S3-compatible backend reached through minio-go.
type MinIOConfig struct {
	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	UseSSL    bool   `json:"use_ssl,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *MinIOConfig) Merge(source *MinIOConfig) {
	if source.Endpoint != "" {
		c.Endpoint = source.Endpoint
	}
	if source.AccessKey != "" {
		c.AccessKey = source.AccessKey
	}
	if source.SecretKey != "" {
		c.SecretKey = source.SecretKey
	}
	if source.Bucket != "" {
		c.Bucket = source.Bucket
	}
	if source.Prefix != "" {
		c.Prefix = source.Prefix
	}
	if source.UseSSL {
		c.UseSSL = true
	}
}

// DynamoDBConfig configures the DynamoDB backend.
type DynamoDBConfig struct {
	Table    string `json:"table,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
	PageSize int32  `json:"page_size,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *DynamoDBConfig) Merge(source *DynamoDBConfig) {
	if source.Table != "" {
		c.Table = source.Table
	}
	if source.Region != "" {
		c.Region = source.Region
	}
	if source.Endpoint != "" {
		c.Endpoint = source.Endpoint
	}
	if source.PageSize > 0 {
		c.PageSize = source.PageSize
	}
}

// RecordsConfig controls record encoding and load throttling.
type RecordsConfig struct {
	Codec              string `json:"codec,omitempty"`
	Compression        string `json:"compression,omitempty"`
	Concurrency        int64  `json:"concurrency,omitempty"`
	IOLimitBytesPerSec int64  `json:"io_limit_bytes_per_sec,omitempty"`
	MemoryLimitBytes   int64  `json:"memory_limit_bytes,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *RecordsConfig) Merge(source *RecordsConfig) {
	if source.Codec != "" {
		c.Codec = source.Codec
	}
	if source.Compression != "" {
		c.Compression = source.Compression
	}
	if source.Concurrency > 0 {
		c.Concurrency = source.Concurrency
	}
	if source.IOLimitBytesPerSec > 0 {
		c.IOLimitBytesPerSec = source.IOLimitBytesPerSec
	}
	if source.MemoryLimitBytes > 0 {
		c.MemoryLimitBytes = source.MemoryLimitBytes
	}
}

// LogConfig selects the log level and format ("text" or "json").
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *LogConfig) Merge(source *LogConfig) {
	if source.Level != "" {
		c.Level = source.Level
	}
	if source.Format != "" {
		c.Format = source.Format
	}
}

// SlogLevel parses Level. Unknown levels map to Info.
func (c *LogConfig) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// TableConfig sets the initial bucket counts of the in-memory indexes.
type TableConfig struct {
	StudentCapacity int `json:"student_capacity,omitempty"`
	AdminCapacity   int `json:"admin_capacity,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *TableConfig) Merge(source *TableConfig) {
	if source.StudentCapacity > 0 {
		c.StudentCapacity = source.StudentCapacity
	}
	if source.AdminCapacity > 0 {
		c.AdminCapacity = source.AdminCapacity
	}
}

// DefaultConfig returns a Config that keeps records under ./roster-data.
func DefaultConfig() Config {
	return Config{
		Backend: BackendLocal,
		Local:   LocalConfig{Dir: "roster-data"},
		S3:      S3Config{Prefix: "roster/"},
		MinIO:   MinIOConfig{Prefix: "roster/"},
		DynamoDB: DynamoDBConfig{
			Table: "roster-records",
		},
		Records: RecordsConfig{
			Codec:       "go-json",
			Compression: codec.CompressionNone.String(),
			Concurrency: 8,
		},
		Log:   LogConfig{Level: "info", Format: "text"},
		Table: TableConfig{StudentCapacity: 64, AdminCapacity: 32},
	}
}

// Merge applies non-zero values from source into c, section by section.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	c.Local.Merge(&source.Local)
	c.S3.Merge(&source.S3)
	c.MinIO.Merge(&source.MinIO)
	c.DynamoDB.Merge(&source.DynamoDB)
	c.Records.Merge(&source.Records)
	c.Log.Merge(&source.Log)
	c.Table.Merge(&source.Table)
}

// Validate checks the fields the selected backend needs.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendMemory:
	case BackendLocal:
		if c.Local.Dir == "" {
			errs = append(errs, errors.New("local.dir is required"))
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("s3.bucket is required"))
		}
	case BackendMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			errs = append(errs, errors.New("minio.endpoint and minio.bucket are required"))
		}
	case BackendDynamoDB:
		if c.DynamoDB.Table == "" {
			errs = append(errs, errors.New("dynamodb.table is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}

	if _, ok := codec.ByName(c.Records.Codec); !ok {
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Records.Codec))
	}
	if _, err := codec.ParseCompression(c.Records.Compression); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
