package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Store uploads objects to a bucket.
type S3Store struct {
	bucket   string
	baseURL  string
	uploader s3manageriface.UploaderAPI
}

// NewS3Store returns a store for bucket in region. When baseURL is empty
// the upload location reported by S3 is returned.
func NewS3Store(bucket, region, baseURL string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return newS3Store(bucket, baseURL, s3manager.NewUploader(sess)), nil
}

func newS3Store(bucket, baseURL string, uploader s3manageriface.UploaderAPI) *S3Store {
	return &S3Store{bucket: bucket, baseURL: baseURL, uploader: uploader}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(clean),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", clean, err)
	}

	if s.baseURL != "" {
		return joinURL(s.baseURL, clean), nil
	}
	return out.Location, nil
}
