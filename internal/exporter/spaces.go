package exporter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"wikijobs/internal/config"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/pkg/utils"
)

// SpacesClient uploads exports to DigitalOcean Spaces through the S3 API
type SpacesClient struct {
	client     *s3.S3
	bucketName string
	bucketURL  string
	cdnURL     string
	region     string
	logger     types.Logger
}

// NewSpacesClient creates a Spaces client. Missing credentials or bucket
// settings give a ConfigurationError.
func NewSpacesClient(cfg *config.Config) (*SpacesClient, error) {
	spaces := cfg.Storage.Spaces

	if spaces.AccessKeyID == "" || spaces.AccessKeySecret == "" {
		return nil, utils.NewConfigurationError("BUCKET_ACCESS_KEY_ID/BUCKET_ACCESS_KEY_SECRET", "export storage credentials not configured")
	}
	if spaces.BucketName == "" {
		return nil, utils.NewConfigurationError("BUCKET_NAME", "export storage bucket not configured")
	}

	endpoint := spaces.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", spaces.Region)
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(spaces.AccessKeyID, spaces.AccessKeySecret, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(spaces.Region),
		S3ForcePathStyle: aws.Bool(spaces.ForcePathStyle),
		MaxRetries:       aws.Int(2),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	logger := logging.ForComponent("exporter")
	logger.Info("Export storage initialized", map[string]interface{}{
		"bucket_name": spaces.BucketName,
		"region":      spaces.Region,
		"endpoint":    endpoint,
	})

	return &SpacesClient{
		client:     s3.New(sess),
		bucketName: spaces.BucketName,
		bucketURL:  spaces.BucketURL,
		cdnURL:     spaces.CDNEndpoint,
		region:     spaces.Region,
		logger:     logger,
	}, nil
}

// ObjectKey is where an export is stored in the bucket
func ObjectKey(e Export) string {
	return fmt.Sprintf("exports/%s/%s", e.SessionID, e.FileName())
}

// Upload stores data under key with a public-read ACL and returns its URL
func (sc *SpacesClient) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := sc.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(sc.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		sc.logger.Error("Failed to upload export", map[string]interface{}{
			"object_key":     key,
			types.FieldError: err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	url := sc.PublicURL(key)
	sc.logger.Info("Export uploaded", map[string]interface{}{
		"object_key": key,
		"size_bytes": len(data),
		"url":        url,
	})
	return url, nil
}

// PublicURL returns the address of key, preferring the CDN, then the bucket
// URL, then the default Spaces host.
func (sc *SpacesClient) PublicURL(key string) string {
	if sc.cdnURL != "" {
		return strings.TrimRight(sc.cdnURL, "/") + "/" + key
	}
	if sc.bucketURL != "" {
		base := strings.TrimRight(sc.bucketURL, "/")
		if !strings.HasPrefix(base, "https://") && !strings.HasPrefix(base, "http://") {
			base = "https://" + base
		}
		return base + "/" + key
	}
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", sc.bucketName, sc.region, key)
}

// IsHealthy checks that the bucket is reachable
func (sc *SpacesClient) IsHealthy(ctx context.Context) bool {
	_, err := sc.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(sc.bucketName),
	})
	if err != nil {
		sc.logger.Warn("Export storage health check failed", map[string]interface{}{
			"bucket_name":    sc.bucketName,
			types.FieldError: err.Error(),
		})
		return false
	}
	return true
}
