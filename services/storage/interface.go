package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxObjectBytes bounds every download into memory.
const MaxObjectBytes = 25 << 20

var (
	// ErrObjectNotFound is returned when the referenced object does not exist.
	ErrObjectNotFound = errors.New("object not found")
	// ErrForeignReference is returned for URLs that do not point into this store.
	ErrForeignReference = errors.New("reference is outside the configured store")
)

// BlobStore holds model, garment and generated images.
type BlobStore interface {
	// Upload writes data at objectPath and returns its public URL.
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
	// Download reads the object a URL or path refers to.
	Download(ctx context.Context, ref string) ([]byte, error)
	// ObjectPath resolves a URL or path to an object path inside this store.
	ObjectPath(ref string) (string, error)
	// Delete removes an object.
	Delete(ctx context.Context, objectPath string) error
}

// Upload kinds.
const (
	KindModels   = "models"
	KindGarments = "garments"
)

// ValidUploadKind reports whether kind is an accepted upload folder.
func ValidUploadKind(kind string) bool {
	return kind == KindModels || kind == KindGarments
}

// UploadPath returns uploads/{uid}/{kind}/{timestamp}_{filename}.
func UploadPath(uid, kind, filename string, at time.Time) string {
	return fmt.Sprintf("uploads/%s/%s/%d_%s", uid, kind, at.UnixMilli(), sanitizeFilename(filename))
}

// GeneratedPath returns generated/{uid}/{timestamp}_{suffix}.jpg. The random suffix keeps
// two generations finishing in the same millisecond from sharing an object.
func GeneratedPath(uid string, at time.Time) string {
	return fmt.Sprintf("generated/%s/%d_%s.jpg", uid, at.UnixMilli(), uuid.New().String()[:8])
}

// UserScoped reports whether objectPath lives under a per-user prefix.
func UserScoped(objectPath string) bool {
	return strings.HasPrefix(objectPath, "uploads/") || strings.HasPrefix(objectPath, "generated/")
}

// OwnedBy reports whether a user-scoped objectPath belongs to uid.
func OwnedBy(objectPath, uid string) bool {
	if uid == "" {
		return false
	}
	return strings.HasPrefix(objectPath, "uploads/"+uid+"/") || strings.HasPrefix(objectPath, "generated/"+uid+"/")
}

// sanitizeFilename keeps [A-Za-z0-9._-], replaces everything else with '_'
// and collapses runs of dots so the name never carries a ".." sequence.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	var b strings.Builder
	prevDot := false
	for _, r := range name {
		switch {
		case r == '.':
			if !prevDot {
				b.WriteRune(r)
			}
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		prevDot = r == '.'
	}
	return b.String()
}

// cleanObjectPath rejects empty paths and "." or ".." segments.
func cleanObjectPath(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "", ErrForeignReference
	}
	segments := strings.Split(p, "/")
	if slices.Contains(segments, "..") || slices.Contains(segments, ".") {
		return "", ErrForeignReference
	}
	return p, nil
}
