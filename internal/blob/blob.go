package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// Store is the blob-store surface the post adapter needs: upload an image
// and get back its retrieval URL, or delete a previously uploaded one.
type Store interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, blobURL string) error
}

// GCSStore implements Store over a Cloud Storage bucket. Objects are named
// posts/<epoch-millis>_<filename> and served through the public storage URL.
type GCSStore struct {
	bucket *storage.BucketHandle
	name   string
	now    func() time.Time
}

// NewGCSStore creates a GCSStore for the named bucket
func NewGCSStore(bucket *storage.BucketHandle, bucketName string) *GCSStore {
	return &GCSStore{bucket: bucket, name: bucketName, now: time.Now}
}

// Upload writes the image to the bucket and returns its retrieval URL
func (s *GCSStore) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	object := fmt.Sprintf("posts/%d_%s", s.now().UnixMilli(), filename)

	w := s.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload image %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize image upload %s: %w", object, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.name, object), nil
}

// Delete removes the object behind a retrieval URL previously returned by
// Upload. Callers treat failures as non-fatal.
func (s *GCSStore) Delete(ctx context.Context, blobURL string) error {
	object, err := s.objectPath(blobURL)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", object, err)
	}
	return nil
}

func (s *GCSStore) objectPath(blobURL string) (string, error) {
	u, err := url.Parse(blobURL)
	if err != nil {
		return "", fmt.Errorf("invalid blob URL %q: %w", blobURL, err)
	}
	prefix := "/" + s.name + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", fmt.Errorf("blob URL %q does not belong to bucket %s", blobURL, s.name)
	}
	return strings.TrimPrefix(u.Path, prefix), nil
}
