package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"go-videotube/internal/util"
)

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL is the base used to build returned object URLs. Defaults
	// to <Endpoint>/<Bucket>.
	PublicURL string
	Prefix    string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader pushes staged images to an S3 compatible bucket and returns
// their public URL.
type S3Uploader struct {
	client    objectPutter
	staging   *Staging
	bucket    string
	prefix    string
	publicURL string
}

func NewS3Uploader(ctx context.Context, cfg S3Config, staging *Staging) (*S3Uploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Uploader(client, cfg, staging), nil
}

func newS3Uploader(client objectPutter, cfg S3Config, staging *Staging) *S3Uploader {
	publicURL := strings.TrimSpace(cfg.PublicURL)
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = "images"
	}

	return &S3Uploader{
		client:    client,
		staging:   staging,
		bucket:    cfg.Bucket,
		prefix:    prefix,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Upload validates that localPath is a staged image, stores it under a
// random key and returns the object's public URL.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := u.staging.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer file.Close()

	info, err := util.InspectImage(file)
	if err != nil {
		return "", err
	}

	stat, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat staged file: %w", err)
	}

	key := fmt.Sprintf("%s/%s.%s", u.prefix, uuid.NewString(), extensionFor(info.Format, localPath))
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(info.MIME),
		ContentLength: aws.Int64(stat.Size()),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return u.publicURL + "/" + key, nil
}

func extensionFor(format string, fallbackPath string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "":
		return strings.TrimPrefix(strings.ToLower(filepath.Ext(fallbackPath)), ".")
	default:
		return format
	}
}
