// Package imagestore resolves stored image references (clothing photos and
// preset body images) to their bytes.
package imagestore

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/spigell/fitting-room/internal/apperr"
)

const (
	DefaultRoot = "./uploads"
	uploadsPath = "/uploads/"
)

// Config selects the image backend. S3 is used when a bucket is set.
type Config struct {
	Root string   `mapstructure:"root"`
	S3   S3Config `mapstructure:"s3"`
}

// Loader returns the bytes and MIME type of the image behind ref.
type Loader interface {
	Load(ctx context.Context, ref string) ([]byte, string, error)
}

// Open builds the loader described by cfg.
func Open(ctx context.Context, cfg Config) (Loader, error) {
	if cfg.S3.Bucket != "" {
		return NewS3(ctx, cfg.S3)
	}
	root := cfg.Root
	if root == "" {
		root = DefaultRoot
	}
	return NewDir(root), nil
}

// objectKey turns a public reference such as "/uploads/items/a.jpg" into
// the relative key "items/a.jpg". References escaping the root are rejected.
func objectKey(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", apperr.Validation("image reference is empty")
	}

	ref = strings.TrimPrefix(ref, uploadsPath)
	for _, segment := range strings.Split(ref, "/") {
		if segment == ".." {
			return "", apperr.Validation("image reference %q leaves the image root", ref)
		}
	}

	key := strings.TrimPrefix(path.Clean("/"+ref), "/")
	if key == "" {
		return "", apperr.Validation("image reference %q does not name a file", ref)
	}
	return key, nil
}

func detectMIME(data []byte, declared string) string {
	if declared != "" && declared != "application/octet-stream" && declared != "binary/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}
