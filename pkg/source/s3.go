package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/Hafizh1187/apriory/internal/logctx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client reads transaction files from S3.
//
// CSV objects are streamed. XLSX and Parquet objects need random access and
// are downloaded to a temp file first with the S3 download manager, which
// fetches byte ranges in parallel.
type Client struct {
	s3Client   *s3.Client
	downloader *manager.Downloader
}

// NewClient creates a new S3 client using default AWS configuration.
func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewClientWithConfig(cfg), nil
}

// NewClientWithConfig creates a new S3 client with a custom AWS config.
func NewClientWithConfig(cfg aws.Config) *Client {
	s3Client := s3.NewFromConfig(cfg)
	concurrency := min(max(runtime.NumCPU(), 4), 16)

	return &Client{
		s3Client: s3Client,
		downloader: manager.NewDownloader(s3Client, func(d *manager.Downloader) {
			d.Concurrency = concurrency
			d.PartSize = 16 * 1024 * 1024
		}),
	}
}

// Open returns a Reader for the object at uri (s3://bucket/key). The format
// is detected from the key.
func (c *Client) Open(ctx context.Context, uri string, cfg Config) (Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("invalid S3 URI %q: missing object key", uri)
	}
	format, err := DetectFormat(key)
	if err != nil {
		return nil, err
	}

	if format == FormatCSV {
		body, err := c.StreamObject(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		return NewCSVReaderFromStream(body, key, cfg)
	}

	tf, err := c.download(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		defer tf.Close()
		return NewXLSXReader(tf, cfg)
	default:
		size, err := tf.Size()
		if err != nil {
			tf.Close()
			return nil, err
		}
		pr, err := newParquetReader(tf, size, cfg)
		if err != nil {
			tf.Close()
			return nil, err
		}
		pr.closers = append(pr.closers, tf)
		return pr, nil
	}
}

// StreamObject returns a reader for an S3 object.
func (c *Client) StreamObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	resp, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object s3://%s/%s: %w", bucket, key, err)
	}
	return resp.Body, nil
}

// download fetches an object into a temp file that is removed on Close.
func (c *Client) download(ctx context.Context, bucket, key string) (*tempFileReader, error) {
	log := logctx.FromContext(ctx)
	start := time.Now()

	tempFile, err := os.CreateTemp("", "apriori-s3-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tf := &tempFileReader{file: tempFile, path: tempFile.Name()}

	n, err := c.downloader.Download(ctx, tempFile, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		tf.Close()
		return nil, fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}

	log.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int64("bytes", n).
		Dur("elapsed", time.Since(start)).
		Msg("downloaded object")
	return tf, nil
}

// ParseS3URI parses an S3 URI (s3://bucket/key) into bucket and key components.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", errors.New("invalid S3 URI: must start with s3://")
	}

	path := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		return "", "", errors.New("invalid S3 URI: missing bucket name")
	}

	bucket = parts[0]
	if len(parts) == 2 {
		key = parts[1]
	}
	return bucket, key, nil
}

// tempFileReader wraps an os.File and deletes it on close.
type tempFileReader struct {
	file *os.File
	path string
}

func (r *tempFileReader) Read(p []byte) (n int, err error) {
	return r.file.Read(p)
}

// ReadAt implements io.ReaderAt for Parquet.
func (r *tempFileReader) ReadAt(p []byte, off int64) (n int, err error) {
	return r.file.ReadAt(p, off)
}

// Size returns the file size.
func (r *tempFileReader) Size() (int64, error) {
	info, err := r.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat temp file: %w", err)
	}
	return info.Size(), nil
}

func (r *tempFileReader) Close() error {
	err := r.file.Close()
	os.Remove(r.path)
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}
