package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_storefront/internal/config"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// MaxUploadSize caps customization photos and cake images.
const MaxUploadSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Asset folders.
const (
	AssetFolderCustomizations = "customizations"
	AssetFolderCakes          = "cakes"
)

// AssetService uploads images to the MinIO / S3 compatible asset host.
type AssetService struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewAssetService connects to the asset host. An empty endpoint yields a
// disabled service whose uploads fail with ErrAssetsDisabled.
func NewAssetService(cfg config.AssetsConfig) (*AssetService, error) {
	if cfg.Endpoint == "" {
		return &AssetService{}, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &AssetService{client: client, bucket: cfg.Bucket, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

// Enabled reports whether uploads are configured.
func (s *AssetService) Enabled() bool {
	return s.client != nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *AssetService) EnsureBucket(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	log.Info().Str("bucket", s.bucket).Msg("Asset bucket created")
	return nil
}

// Upload stores an image under folder and returns its public URL.
func (s *AssetService) Upload(ctx context.Context, folder string, r io.Reader, size int64, contentType string) (string, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ve := utils.NewValidationError()
	ext, ok := imageExtensions[contentType]
	if !ok {
		ve.Add("file", "must be a JPEG, PNG or WebP image")
	}
	if size <= 0 || size > MaxUploadSize {
		ve.Add("file", fmt.Sprintf("must be between 1 byte and %d MB", MaxUploadSize>>20))
	}
	if !ve.Empty() {
		return "", ve
	}
	if !s.Enabled() {
		return "", utils.ErrAssetsDisabled
	}

	objectName := path.Join(folder, uuid.New().String()+ext)
	if _, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	log.Info().Str("object", objectName).Int64("size", size).Msg("Asset uploaded")
	return s.publicURL + "/" + objectName, nil
}
