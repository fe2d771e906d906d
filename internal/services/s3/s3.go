// Package s3service exports loan schedules to S3.
package s3service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"car-loan-calculator/internal/amortization"
	appConfig "car-loan-calculator/internal/config"
	"car-loan-calculator/internal/utils"
)

// CSVContentType is the content type of exported schedules.
const CSVContentType = "text/csv; charset=utf-8"

// DefaultURLExpiry is used when the configured expiry is not positive.
const DefaultURLExpiry = 15 * time.Minute

// ObjectAPI is the subset of the S3 client used by the service.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// PresignAPI is the subset of the S3 presign client used by the service.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Service handles S3 operations
type Service struct {
	client     ObjectAPI
	presigner  PresignAPI
	bucketName string
	expiry     time.Duration
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// ExportResult describes an uploaded schedule and its download link.
type ExportResult struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Bucket    string    `json:"bucket"`
	Size      int       `json:"size"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewService creates a new S3 service from the default AWS credential chain.
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return NewServiceWithClients(client, s3.NewPresignClient(client), appCfg.S3Bucket, appCfg.ExportURLExpiry), nil
}

// NewServiceWithClients creates a service on top of existing clients.
func NewServiceWithClients(client ObjectAPI, presigner PresignAPI, bucket string, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	return &Service{
		client:     client,
		presigner:  presigner,
		bucketName: bucket,
		expiry:     expiry,
		logger:     utils.Named("s3"),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// ScheduleKey returns a fresh object key for an export of the car's schedule.
func (s *Service) ScheduleKey(carID string) string {
	return path.Join("schedules", carID, s.newID()+".csv")
}

// ExportSchedule uploads the schedule as CSV and returns a presigned
// download URL for it.
func (s *Service) ExportSchedule(ctx context.Context, carID string, calc *amortization.LoanCalculation) (*ExportResult, error) {
	if carID == "" {
		return nil, fmt.Errorf("car id is required")
	}
	if calc == nil || len(calc.Schedule) == 0 {
		return nil, fmt.Errorf("schedule is empty")
	}

	var buf bytes.Buffer
	if err := utils.WriteScheduleCSV(&buf, calc); err != nil {
		return nil, fmt.Errorf("failed to render schedule: %w", err)
	}

	key := s.ScheduleKey(carID)
	size := buf.Len()
	if err := s.UploadFile(ctx, key, buf.Bytes(), CSVContentType); err != nil {
		return nil, err
	}

	url, expiresAt, err := s.presignDownload(ctx, key)
	if err != nil {
		if delErr := s.DeleteFile(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove unsigned export",
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	return &ExportResult{
		URL:       url,
		Key:       key,
		Bucket:    s.bucketName,
		Size:      size,
		ExpiresAt: expiresAt,
	}, nil
}

// UploadFile uploads a file to S3
func (s *Service) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		s.logger.Error("Failed to upload file to S3",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to upload file: %w", err)
	}

	s.logger.Info("Uploaded file to S3",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return nil
}

// DeleteFile deletes a file from S3
func (s *Service) DeleteFile(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	if _, err := s.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.logger.Info("Deleted file from S3",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
	)

	return nil
}

func (s *Service) presignDownload(ctx context.Context, key string) (string, time.Time, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	presignedReq, err := s.presigner.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = s.expiry
	})
	if err != nil {
		s.logger.Error("Failed to generate presigned URL",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", time.Time{}, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return presignedReq.URL, s.now().Add(s.expiry), nil
}
