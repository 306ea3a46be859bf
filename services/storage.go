package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"case_flow_app_go/config"
	"case_flow_app_go/logging"
	"case_flow_app_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// URLSigner issues temporary download links for stored objects
type URLSigner interface {
	GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// R2Storage signs download links for objects in a Cloudflare R2 bucket
type R2Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// NewR2Storage creates a new R2 storage provider
func NewR2Storage(cfg *config.Config) (*R2Storage, error) {
	// R2 endpoint format: https://<account_id>.r2.cloudflarestorage.com
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)

	creds := credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion("auto"), // R2 uses "auto" region
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2BucketName,
	}, nil
}

// GetSignedURL generates a presigned URL for temporary access
func (r *R2Storage) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}

	presignedReq, err := r.presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return presignedReq.URL, nil
}

// Ping checks that the bucket is reachable with the configured credentials
func (r *R2Storage) Ping(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)})
	return err
}

// InitializeStorage returns an R2 signer when R2 is configured and
// reachable, and nil otherwise. Files then resolve to their stored URL.
func InitializeStorage(cfg *config.Config) URLSigner {
	if !cfg.R2Configured() {
		logging.L().Info("R2 storage not configured, file downloads use stored URLs")
		return nil
	}

	r2, err := NewR2Storage(cfg)
	if err != nil {
		logging.L().Warn("Failed to initialize R2 storage", zap.Error(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r2.Ping(ctx); err != nil {
		logging.L().Warn("R2 bucket connection test failed", zap.String("bucket", cfg.R2BucketName), zap.Error(err))
		return nil
	}

	logging.L().Info("Storage connection established", zap.String("provider", "r2"), zap.String("bucket", cfg.R2BucketName))
	return r2
}

// FileService resolves download locations for case files
type FileService struct {
	DB     *gorm.DB
	Signer URLSigner
	Expiry time.Duration
}

func NewFileService(db *gorm.DB, signer URLSigner, expiry time.Duration) *FileService {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &FileService{DB: db, Signer: signer, Expiry: expiry}
}

// DownloadURL returns a presigned link for files kept in our bucket, or the
// stored URL otherwise
func (s *FileService) DownloadURL(ctx context.Context, id string) (string, error) {
	if !isID(id) {
		return "", &NotFoundError{Resource: "File", ID: id}
	}

	var file models.File
	if err := s.DB.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &NotFoundError{Resource: "File", ID: id}
		}
		return "", persistenceError("fetch file", err)
	}

	if file.StorageKey != nil && *file.StorageKey != "" && s.Signer != nil {
		signed, err := s.Signer.GetSignedURL(ctx, *file.StorageKey, s.Expiry)
		if err == nil {
			return signed, nil
		}
		logging.L().Warn("Failed to sign file URL, using stored URL", zap.String("file_id", id), zap.Error(err))
	}

	if file.URL == "" {
		return "", &NotFoundError{Resource: "File URL", ID: id}
	}
	return file.URL, nil
}
