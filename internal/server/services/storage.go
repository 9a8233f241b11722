package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sc "github.com/clipforge/clipforge/internal/server/config"
	"github.com/clipforge/clipforge/internal/server/models"
	"github.com/clipforge/clipforge/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// presignExpiry bounds how long presigned URLs stay valid.
const presignExpiry = 15 * time.Minute

// StorageService hands out presigned URLs against the S3-compatible backend:
// GET URLs for downloading rendered clips and PUT URLs for uploading training
// footage. Training video metadata lands in the database alongside.
type StorageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewStorageService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *StorageService {
	return &StorageService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

// GetRandomStorageKey produces a date-bucketed object key, e.g.
// users/2026/8/24/4cfe….
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *StorageService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// GetPresignedGetUrl returns a time-limited download URL for the object at key.
func (s *StorageService) GetPresignedGetUrl(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// PresignTrainingUpload mints a fresh storage key, records the training video
// row, and returns the key plus a presigned PUT URL the client uploads to.
func (s *StorageService) PresignTrainingUpload(ctx context.Context, userID, title string) (*models.TrainingVideo, string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, "", err
	}

	repo := s.repomanager.TrainingVideos(s.db)
	video, err := repo.Create(ctx, userID, title, key)
	if err != nil {
		return nil, "", fmt.Errorf("error recording training video: %v", err)
	}

	return video, req.URL, nil
}

// ListTrainingVideos returns the user's training footage, newest first.
func (s *StorageService) ListTrainingVideos(ctx context.Context, userID string) ([]*models.TrainingVideo, error) {
	repo := s.repomanager.TrainingVideos(s.db)
	return repo.ListByUser(ctx, userID)
}

// DeleteTrainingVideo removes the metadata row. The object itself is left to
// the bucket's lifecycle policy.
func (s *StorageService) DeleteTrainingVideo(ctx context.Context, userID, id string) error {
	repo := s.repomanager.TrainingVideos(s.db)
	return repo.Delete(ctx, userID, id)
}
