package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/VADemon/archive/internal/config"
)

// uploadContentType is pinned into every presigned PUT. The signature covers
// the header, so workers cannot upload under a different type.
const uploadContentType = "application/gzip"

// Client wraps the S3 API for presigned batch uploads and size checks.
type Client struct {
	api       *s3.S3
	bucket    string
	signTTL   time.Duration
	publicURL string
}

// NewClient sets up an S3 API client against cfg.Endpoint, which is the
// provider's bare domain. The regional endpoint and the virtual-host bucket
// URL are derived from it.
func NewClient(cfg config.S3, signTTL time.Duration) (*Client, error) {
	awsCfg := &aws.Config{
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Region:      aws.String(cfg.Region),
		Endpoint:    aws.String("https://" + cfg.Region + "." + cfg.Endpoint),
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store session: %w", err)
	}

	return &Client{
		api:       s3.New(sess),
		bucket:    cfg.Bucket,
		signTTL:   signTTL,
		publicURL: fmt.Sprintf("https://%s.%s.%s", cfg.Bucket, cfg.Region, cfg.Endpoint),
	}, nil
}

// PublicBaseURL is the bucket root handed to workers on enrollment, so they
// can fetch finished batch objects directly.
func (c *Client) PublicBaseURL() string {
	return c.publicURL
}

// PresignPut returns a URL that lets the holder upload exactly contentLength
// bytes of gzip data under key, valid for the configured TTL.
func (c *Client) PresignPut(key string, contentLength int64) (string, error) {
	req, _ := c.api.PutObjectRequest(&s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		ContentLength: aws.Int64(contentLength),
		ContentType:   aws.String(uploadContentType),
	})
	url, err := req.Presign(c.signTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}
	return url, nil
}

// HeadSize returns the stored size of key. Errors surface to the caller; a
// missing object must never read as size zero.
func (c *Client) HeadSize(ctx context.Context, key string) (int64, error) {
	out, err := c.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to head %s: %w", key, err)
	}
	if out.ContentLength == nil {
		return 0, fmt.Errorf("no content length for %s", key)
	}
	return *out.ContentLength, nil
}

// CanonicalKey is the object name a batch's results upload to.
func CanonicalKey(batchID string) string {
	return batchID + ".json.gz"
}

// VersionKey is the object name for a trusted re-upload. version is the
// batch's version counter before the overwrite was recorded.
func VersionKey(batchID string, version int64) string {
	return fmt.Sprintf("%s.json.gz-%d", batchID, version)
}
