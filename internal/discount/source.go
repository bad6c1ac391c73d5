package discount

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// fileSource reads a catalog snapshot from the local file system.
type fileSource struct {
	path   string
	logger zerolog.Logger
}

// NewFileSource creates a source that reads a JSON snapshot from path.
// Gzipped snapshots are detected and decompressed transparently.
func NewFileSource(path string, logger zerolog.Logger) CatalogSource {
	return &fileSource{
		path:   path,
		logger: logger.With().Str("component", "catalog-file-source").Logger(),
	}
}

func (s *fileSource) Fetch(ctx context.Context) ([]Record, error) {
	s.logger.Debug().Str("file", s.path).Msg("loading catalog snapshot")

	file, err := os.Open(s.path)
	if err != nil {
		s.logger.Error().Err(err).Str("file", s.path).Msg("failed to open catalog snapshot")
		return nil, fmt.Errorf("failed to open catalog snapshot %s: %w", s.path, err)
	}
	defer file.Close()

	records, err := decodeSnapshot(ctx, file)
	if err != nil {
		s.logger.Error().Err(err).Str("file", s.path).Msg("failed to decode catalog snapshot")
		return nil, fmt.Errorf("failed to decode catalog snapshot %s: %w", s.path, err)
	}

	s.logger.Debug().
		Str("file", s.path).
		Int("discounts_loaded", len(records)).
		Msg("catalog snapshot loaded")

	return records, nil
}

// ObjectGetter is the subset of the S3 client used by the S3 source.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Source reads a catalog snapshot from an S3 object.
type s3Source struct {
	client ObjectGetter
	bucket string
	key    string
	logger zerolog.Logger
}

// NewS3Source creates a source backed by the default AWS credential chain.
func NewS3Source(ctx context.Context, bucket, region, key string, logger zerolog.Logger) (CatalogSource, error) {
	logger = logger.With().Str("component", "catalog-s3-source").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("key", key).
		Msg("S3 catalog source initialised")

	return NewS3SourceWithClient(s3.NewFromConfig(cfg), bucket, key, logger), nil
}

// NewS3SourceWithClient creates an S3 source around an existing client.
func NewS3SourceWithClient(client ObjectGetter, bucket, key string, logger zerolog.Logger) CatalogSource {
	return &s3Source{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger.With().Str("component", "catalog-s3-source").Logger(),
	}
}

func (s *s3Source) Fetch(ctx context.Context) ([]Record, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", s.key).
			Msg("failed to get catalog snapshot from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", s.bucket, s.key, err)
	}
	defer result.Body.Close()

	records, err := decodeSnapshot(ctx, result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode S3 catalog snapshot %s: %w", s.key, err)
	}

	s.logger.Debug().
		Str("key", s.key).
		Int("discounts_loaded", len(records)).
		Msg("catalog snapshot loaded from S3")

	return records, nil
}

// fallbackSource tries the primary source and falls back to the secondary.
type fallbackSource struct {
	primary   CatalogSource
	secondary CatalogSource
	logger    zerolog.Logger
}

// NewFallbackSource creates a source that uses secondary whenever primary
// fails. A nil primary always reads from secondary.
func NewFallbackSource(primary, secondary CatalogSource, logger zerolog.Logger) CatalogSource {
	return &fallbackSource{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "catalog-fallback-source").Logger(),
	}
}

func (s *fallbackSource) Fetch(ctx context.Context) ([]Record, error) {
	if s.primary != nil {
		records, err := s.primary.Fetch(ctx)
		if err == nil {
			return records, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		s.logger.Warn().Err(err).Msg("primary catalog source failed, falling back")
	}

	return s.secondary.Fetch(ctx)
}

// FetchObserver receives the duration and outcome of every catalog fetch.
type FetchObserver func(source string, elapsed time.Duration, err error)

type observedSource struct {
	name     string
	source   CatalogSource
	observer FetchObserver
}

// Observe wraps source so that each fetch is reported to observer.
func Observe(name string, source CatalogSource, observer FetchObserver) CatalogSource {
	return &observedSource{name: name, source: source, observer: observer}
}

func (s *observedSource) Fetch(ctx context.Context) ([]Record, error) {
	start := time.Now()
	records, err := s.source.Fetch(ctx)
	s.observer(s.name, time.Since(start), err)
	return records, err
}

// decodeSnapshot reads a JSON array of records, gunzipping first when the
// stream starts with the gzip magic bytes.
func decodeSnapshot(ctx context.Context, r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	var body io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		body = gz
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []Record
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
