package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
)

// FirebaseStorageService implements BlobStore on the project's Firebase Storage bucket.
type FirebaseStorageService struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseStorageService wraps the default bucket handle from the Firebase app.
func NewFirebaseStorageService(bucket *gcs.BucketHandle, bucketName string) *FirebaseStorageService {
	return &FirebaseStorageService{bucket: bucket, bucketName: bucketName}
}

// PublicURL returns https://storage.googleapis.com/{bucket}/{path}.
func PublicURL(bucketName, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectPath)
}

// Upload writes the object with public read access.
func (s *FirebaseStorageService) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	w.ACL = []gcs.ACLRule{{Entity: gcs.AllUsers, Role: gcs.RoleReader}}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer for %s: %w", objectPath, err)
	}
	return PublicURL(s.bucketName, objectPath), nil
}

// Download reads the object behind a gs://, storage.googleapis.com or firebasestorage URL.
func (s *FirebaseStorageService) Download(ctx context.Context, ref string) ([]byte, error) {
	objectPath, err := s.ObjectPath(ref)
	if err != nil {
		return nil, err
	}
	r, err := s.bucket.Object(objectPath).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open %s: %w", objectPath, err)
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, MaxObjectBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", objectPath, err)
	}
	if len(data) > MaxObjectBytes {
		return nil, fmt.Errorf("object %s exceeds %d bytes", objectPath, MaxObjectBytes)
	}
	return data, nil
}

// ObjectPath resolves ref against this bucket.
func (s *FirebaseStorageService) ObjectPath(ref string) (string, error) {
	return ParseBucketRef(s.bucketName, ref)
}

// Delete removes an object.
func (s *FirebaseStorageService) Delete(ctx context.Context, objectPath string) error {
	if err := s.bucket.Object(objectPath).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", objectPath, err)
	}
	return nil
}

// ParseBucketRef accepts gs://bucket/path, https://storage.googleapis.com/bucket/path,
// https://firebasestorage.googleapis.com/v0/b/bucket/o/escaped-path and bare object paths.
// References to any other bucket or host are rejected.
func ParseBucketRef(bucketName, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrForeignReference
	}
	if !strings.Contains(ref, "://") {
		return cleanObjectPath(ref)
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", ErrForeignReference
	}

	switch {
	case u.Scheme == "gs":
		if u.Host != bucketName {
			return "", ErrForeignReference
		}
		return cleanObjectPath(u.Path)

	case u.Scheme == "https" && u.Host == "storage.googleapis.com":
		bucket, objectPath, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if !ok || bucket != bucketName {
			return "", ErrForeignReference
		}
		return cleanObjectPath(objectPath)

	case u.Scheme == "https" && u.Host == "firebasestorage.googleapis.com":
		rest, ok := strings.CutPrefix(u.EscapedPath(), "/v0/b/"+bucketName+"/o/")
		if !ok {
			return "", ErrForeignReference
		}
		objectPath, err := url.PathUnescape(rest)
		if err != nil {
			return "", ErrForeignReference
		}
		return cleanObjectPath(objectPath)
	}
	return "", ErrForeignReference
}
