package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config holds configuration of S3-compatible storage (Supabase storage, MinIO)
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	PublicURL       string // base URL objects are served from
}

// putter is the subset of the S3 client used for uploads
type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageStorage stores post images in an S3 bucket
type ImageStorage struct {
	client    putter
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewImageStorage creates a new S3 image storage client
func NewImageStorage(cfg S3Config) *ImageStorage {
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true,
	})

	return newImageStorage(client, cfg.Bucket, cfg.PublicURL)
}

func newImageStorage(client putter, bucket, publicURL string) *ImageStorage {
	return &ImageStorage{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// UploadInput represents an image to upload
type UploadInput struct {
	Reader      io.Reader
	ContentType string
	Size        int64
	Filename    string // used for the extension only
}

// UploadOutput represents an uploaded image
type UploadOutput struct {
	Key string
	URL string
}

// Upload stores an image under posts/{postID}/ and returns its public URL
func (s *ImageStorage) Upload(ctx context.Context, postID string, in UploadInput) (*UploadOutput, error) {
	ext := strings.ToLower(path.Ext(in.Filename))
	if ext == "" {
		ext = extensionFor(in.ContentType)
	}
	key := fmt.Sprintf("posts/%s/%s-%s%s", postID, s.now().UTC().Format("20060102"), uuid.NewString(), ext)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        in.Reader,
		ContentType: aws.String(in.ContentType),
	}
	if in.Size > 0 {
		input.ContentLength = aws.Int64(in.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("uploading to s3: %w", err)
	}

	return &UploadOutput{
		Key: key,
		URL: fmt.Sprintf("%s/%s", s.publicURL, key),
	}, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
