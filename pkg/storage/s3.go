package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxThumbnailSize is the maximum allowed thumbnail upload (5MB).
	MaxThumbnailSize = 5 * 1024 * 1024
	// FolderThumbnails is the S3 prefix for webinar thumbnails.
	FolderThumbnails = "thumbnails"
)

// AllowedThumbnailExtensions maps accepted image extensions to their MIME type.
var AllowedThumbnailExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// S3Config holds S3 client configuration.
type S3Config struct {
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	ThumbnailsBucket string
	// PublicBaseURL overrides the virtual-hosted bucket URL (e.g. a CDN in front of the bucket).
	PublicBaseURL string
}

// S3 stores webinar assets.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or the default chain.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if cfg.ThumbnailsBucket == "" {
		return nil, fmt.Errorf("thumbnails bucket is not configured")
	}
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		logger.Info("S3 client using static credentials", zap.String("region", cfg.Region), zap.String("bucket", cfg.ThumbnailsBucket))
	} else {
		logger.Warn("S3 client using default credential chain")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ThumbnailContentType returns the MIME type for an allowed thumbnail filename, or "" if not allowed.
func ThumbnailContentType(filename string) string {
	return AllowedThumbnailExtensions[strings.ToLower(path.Ext(filename))]
}

// ThumbnailKey returns thumbnails/{webinar_id}/{random}{ext}. The random part busts caches on replace.
func ThumbnailKey(webinarID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(FolderThumbnails, webinarID, uuid.New().String()+ext)
}

// PublicObjectURL returns the public URL for an object in the thumbnails bucket.
func (s *S3) PublicObjectURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.ThumbnailsBucket, s.cfg.Region, key)
}

// UploadThumbnail streams an image to the thumbnails bucket with public-read ACL and returns its URL.
func (s *S3) UploadThumbnail(ctx context.Context, webinarID, filename string, body io.Reader, size int64) (string, error) {
	contentType := ThumbnailContentType(filename)
	if contentType == "" {
		return "", fmt.Errorf("unsupported thumbnail type %q", path.Ext(filename))
	}
	key := ThumbnailKey(webinarID, filename)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.ThumbnailsBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	s.logger.Info("thumbnail uploaded", zap.String("key", key))
	return s.PublicObjectURL(key), nil
}
