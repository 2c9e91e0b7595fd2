package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	cardUploadExpiry   = 5 * time.Minute
	defaultContentType = "image/png"
)

// ErrCardsDisabled is returned when no bucket is configured for card images
var ErrCardsDisabled = errors.New("card uploads are not configured")

// Presigner creates pre-signed S3 requests. *s3.PresignClient implements it.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// CardStorageConfig describes where rendered sighting cards are stored
type CardStorageConfig struct {
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	PublicBaseURL string
}

// CardService issues upload URLs for rendered sighting card images
type CardService struct {
	presigner Presigner
	bucket    string
	baseURL   string
}

// CardUploadRequest represents a request for a card upload URL
type CardUploadRequest struct {
	ContentType string `json:"content_type"`
}

// CardUpload is a pre-signed upload target and the URL the card will be served from
type CardUpload struct {
	UploadURL  string `json:"upload_url"`
	CardPNGURL string `json:"card_png_url"`
	ExpiresIn  int    `json:"expires_in"`
}

// NewCardService creates a card service backed by S3 or an S3-compatible
// endpoint. With no bucket configured the service is disabled.
func NewCardService(ctx context.Context, cfg CardStorageConfig) (*CardService, error) {
	if cfg.Bucket == "" {
		return &CardService{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewCardServiceWithPresigner(s3.NewPresignClient(client), cfg), nil
}

// NewCardServiceWithPresigner creates a card service around an existing presigner
func NewCardServiceWithPresigner(presigner Presigner, cfg CardStorageConfig) *CardService {
	return &CardService{
		presigner: presigner,
		bucket:    cfg.Bucket,
		baseURL:   publicBaseURL(cfg),
	}
}

// Enabled reports whether uploads can be issued
func (s *CardService) Enabled() bool {
	return s.presigner != nil && s.bucket != ""
}

// CreateUploadURL generates a pre-signed PUT for a new card image of the user
func (s *CardService) CreateUploadURL(ctx context.Context, telegramID int64, contentType string) (upload *CardUpload, err error) {
	ctx, span := startSpan(ctx, "CardService.CreateUploadURL", telegramID)
	defer func() { endSpan(span, err) }()

	if !s.Enabled() {
		return nil, ErrCardsDisabled
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	// cards/{telegram_id}/{uuid}.png
	key := fmt.Sprintf("cards/%d/%s.png", telegramID, uuid.New().String())

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = cardUploadExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &CardUpload{
		UploadURL:  request.URL,
		CardPNGURL: s.baseURL + "/" + key,
		ExpiresIn:  int(cardUploadExpiry.Seconds()),
	}, nil
}

func publicBaseURL(cfg CardStorageConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}
