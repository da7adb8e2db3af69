package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrStorage covers upload and delete failures against the object store.
var ErrStorage = errors.New("object storage")

// Upload puts a local file into the bucket under the given key.
func (s *implStorage) Upload(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrStorage, localPath, err)
	}
	defer f.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", ErrStorage, key, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.logger.Info(ctx, "Uploaded %s -> %s", localPath, uri)
	return uri, nil
}

// Delete removes an object from the bucket.
func (s *implStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStorage, key, err)
	}

	s.logger.Info(ctx, "Deleted s3://%s/%s", s.bucket, key)
	return nil
}

// StorageURI builds the public HTTPS URI for an uploaded object. The
// recognition service requires the endpoint/bucket/key form.
func (s *implStorage) StorageURI(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}
