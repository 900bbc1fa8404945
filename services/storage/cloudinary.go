package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var versionSegment = regexp.MustCompile(`^v\d+$`)

// CloudinaryStorageService implements BlobStore on a Cloudinary account.
// Object paths map to public IDs without their file extension.
type CloudinaryStorageService struct {
	cld        *cloudinary.Cloudinary
	cloudName  string
	httpClient *http.Client
}

// NewCloudinaryStorageService creates a new CloudinaryStorageService.
func NewCloudinaryStorageService(cloudName, apiKey, apiSecret string) (*CloudinaryStorageService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStorageService{
		cld:        cld,
		cloudName:  cloudName,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func publicID(objectPath string) string {
	return strings.TrimSuffix(objectPath, path.Ext(objectPath))
}

// Upload sends the bytes as an image asset and returns its secure URL.
func (s *CloudinaryStorageService) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID(objectPath),
		ResourceType: "image",
		Overwrite:    api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload %s: %s", objectPath, result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("no secure URL returned for %s", objectPath)
	}
	return result.SecureURL, nil
}

// Download fetches the delivery URL of the referenced asset.
func (s *CloudinaryStorageService) Download(ctx context.Context, ref string) ([]byte, error) {
	objectPath, err := s.ObjectPath(ref)
	if err != nil {
		return nil, err
	}
	deliveryURL := ref
	if !strings.HasPrefix(ref, "https://") {
		deliveryURL = fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s", s.cloudName, objectPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, deliveryURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", objectPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrObjectNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s returned status %d", objectPath, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxObjectBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", objectPath, err)
	}
	if len(data) > MaxObjectBytes {
		return nil, fmt.Errorf("object %s exceeds %d bytes", objectPath, MaxObjectBytes)
	}
	return data, nil
}

// ObjectPath resolves ref against this cloud.
func (s *CloudinaryStorageService) ObjectPath(ref string) (string, error) {
	return ParseCloudinaryRef(s.cloudName, ref)
}

// Delete destroys the asset.
func (s *CloudinaryStorageService) Delete(ctx context.Context, objectPath string) error {
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID(objectPath)})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", objectPath, err)
	}
	if result.Result == "not found" {
		return ErrObjectNotFound
	}
	return nil
}

// ParseCloudinaryRef accepts https://res.cloudinary.com/{cloud}/image/upload/[v123/]{path}
// and bare object paths.
func ParseCloudinaryRef(cloudName, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrForeignReference
	}
	if !strings.Contains(ref, "://") {
		return cleanObjectPath(ref)
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "https" || u.Host != "res.cloudinary.com" {
		return "", ErrForeignReference
	}
	rest, ok := strings.CutPrefix(u.Path, "/"+cloudName+"/image/upload/")
	if !ok {
		return "", ErrForeignReference
	}
	if first, tail, found := strings.Cut(rest, "/"); found && versionSegment.MatchString(first) {
		rest = tail
	}
	return cleanObjectPath(rest)
}
