// Package blob talks to the external object store holding poll attachments.
package blob

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

type Storage struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func New(ctx context.Context, credentialsFile, bucketName string) (*Storage, error) {
	const op = "blob.New"

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName},
		option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{bucket: bucket, bucketName: bucketName}, nil
}

// Upload writes the object and returns its public URL.
func (s *Storage) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	const op = "blob.Upload"

	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, path), nil
}

func (s *Storage) Delete(ctx context.Context, path string) error {
	const op = "blob.Delete"

	if err := s.bucket.Object(path).Delete(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
