package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/clipforge/clipforge/internal/server/config"
	"github.com/clipforge/clipforge/internal/server/models"
)

func newStorageService(t *testing.T, rm *fakeRepoManager) *StorageService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	cfg := &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "clipforge",
	}
	return NewStorageService(db, rm, cfg)
}

// stubPresign replaces the AWS seams so no network or credentials are needed.
func stubPresign(t *testing.T, getURL, putURL string, presignErr error) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origGet := presignGetObject
	origPut := presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignGetObject = origGet
		presignPutObject = origPut
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return nil
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if presignErr != nil {
			return nil, presignErr
		}
		return &v4.PresignedHTTPRequest{URL: getURL + "/" + *in.Key}, nil
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if presignErr != nil {
			return nil, presignErr
		}
		return &v4.PresignedHTTPRequest{URL: putURL + "/" + *in.Key}, nil
	}
}

func TestGetRandomStorageKey_Shape(t *testing.T) {
	key := GetRandomStorageKey()
	want := regexp.MustCompile(`^users/\d{4}/\d{1,2}/\d{1,2}/[0-9a-f-]{36}$`)
	if !want.MatchString(key) {
		t.Fatalf("key %q does not match expected shape", key)
	}
	if !strings.HasPrefix(key, fmt.Sprintf("users/%d/", time.Now().Year())) {
		t.Fatalf("key %q not bucketed under current year", key)
	}
}

func TestGetPresignedGetUrl(t *testing.T) {
	stubPresign(t, "https://minio.local/get", "https://minio.local/put", nil)

	s := newStorageService(t, &fakeRepoManager{})
	url, err := s.GetPresignedGetUrl(context.Background(), "users/2026/8/24/abc")
	if err != nil {
		t.Fatalf("GetPresignedGetUrl error: %v", err)
	}
	if url != "https://minio.local/get/users/2026/8/24/abc" {
		t.Fatalf("url = %q", url)
	}
}

func TestPresignTrainingUpload_RecordsRow(t *testing.T) {
	stubPresign(t, "https://minio.local/get", "https://minio.local/put", nil)

	tvRepo := &fakeTrainingVideosRepo{createOut: &models.TrainingVideo{ID: "v1", UserID: "u1", Title: "hooks"}}
	s := newStorageService(t, &fakeRepoManager{tv: tvRepo})

	video, url, err := s.PresignTrainingUpload(context.Background(), "u1", "hooks")
	if err != nil {
		t.Fatalf("PresignTrainingUpload error: %v", err)
	}
	if video.ID != "v1" {
		t.Fatalf("video = %+v", video)
	}
	if !strings.HasPrefix(url, "https://minio.local/put/users/") {
		t.Fatalf("url = %q", url)
	}
}

func TestPresignTrainingUpload_PresignError(t *testing.T) {
	stubPresign(t, "", "", errors.New("presign boom"))

	s := newStorageService(t, &fakeRepoManager{tv: &fakeTrainingVideosRepo{}})
	_, _, err := s.PresignTrainingUpload(context.Background(), "u1", "hooks")
	if err == nil || !strings.Contains(err.Error(), "presign boom") {
		t.Fatalf("expected presign error, got %v", err)
	}
}
