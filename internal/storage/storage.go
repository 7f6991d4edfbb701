// Package storage hands out presigned S3 upload URLs for profile images.
// Browsers PUT the file straight to the bucket; the server never sees the
// bytes, only the resulting public URL that the owner saves into content.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/xid"

	"github.com/sakif/flexfolio/internal/apperror"
)

const defaultExpiry = 15 * time.Minute

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Config describes the bucket. Endpoint is set for S3-compatible servers
// such as MinIO and switches the client to path-style addressing.
type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

func (c Config) Enabled() bool { return c.Bucket != "" }

// Presigner is the part of *s3.PresignClient this package uses.
type Presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Upload tells the client where and how to send the file.
type Upload struct {
	Method    string            `json:"method"`
	URL       string            `json:"uploadUrl"`
	Headers   map[string]string `json:"headers"`
	Key       string            `json:"key"`
	PublicURL string            `json:"publicUrl"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

type S3 struct {
	presigner  Presigner
	bucket     string
	publicBase string
	expiry     time.Duration
	now        func() time.Time
}

// New builds an S3 presigner from cfg. Static credentials are used when
// given; otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg Config) (*S3, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithPresigner(s3.NewPresignClient(client), cfg.Bucket, publicBase(cfg)), nil
}

func NewWithPresigner(p Presigner, bucket, publicBaseURL string) *S3 {
	return &S3{
		presigner:  p,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBaseURL, "/"),
		expiry:     defaultExpiry,
		now:        time.Now,
	}
}

// PresignProfileImage returns a PUT URL for a new profile image of userID.
// Only common web image types are accepted.
func (s *S3) PresignProfileImage(ctx context.Context, userID, contentType string) (*Upload, error) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, apperror.ValidationFailed("contentType",
			"contentType must be one of: image/jpeg, image/png, image/webp, image/gif")
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	key := fmt.Sprintf("profile-images/%s/%s.%s", userID, xid.New().String(), ext)
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return nil, fmt.Errorf("storage: presigning %s: %w", key, err)
	}

	return &Upload{
		Method:    "PUT",
		URL:       req.URL,
		Headers:   map[string]string{"Content-Type": contentType},
		Key:       key,
		PublicURL: s.publicBase + "/" + key,
		ExpiresAt: s.now().UTC().Add(s.expiry),
	}, nil
}

func publicBase(cfg Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}
