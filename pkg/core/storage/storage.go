// Package storage keeps uploaded photo bytes behind a provider-agnostic interface.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kobbyowen/focus/pkg/common/config"
	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
)

var ErrObjectNotFound = fmt.Errorf("file %w", apperrors.ErrNotFound)

// FileStore defines the behavior for any storage backend.
type FileStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*FileObject, error)
	Delete(ctx context.Context, key string) error
}

// FileObject is the provider-agnostic representation of a file.
type FileObject struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
}

// NewKey returns "<uuid>-<YYYYMMDDHH><ext>" where ext is the lower-cased
// extension of filename, dot included.
func NewKey(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "." {
		ext = ""
	}
	return fmt.Sprintf("%s-%s%s", uuid.New(), now.UTC().Format("2006010215"), ext)
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// New builds the provider selected by cfg.Provider.
func New(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "local":
		return NewLocalProvider(cfg.UploadDir)
	case "s3":
		return NewS3Provider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
