// Package images stores listing photos and hands back the path or URL under
// which they are served.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize is the per-file upload limit.
const MaxImageSize = 10 << 20

var (
	ErrUnsupportedType = errors.New("only JPEG and PNG images are allowed")
	ErrTooLarge        = errors.New("image exceeds 10MB limit")
)

// Store persists one image and returns its public location. Delete of a
// key that was never saved is not an error.
type Store interface {
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Upload is a validated image ready to be stored.
type Upload struct {
	Key         string
	ContentType string
	Data        []byte
}

// Prepare reads an uploaded file, enforces the size limit and checks both the
// file extension and the sniffed content type.
func Prepare(filename string, r io.Reader) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return nil, ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	canonicalExt, ok := allowedTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	return &Upload{
		Key:         uuid.NewString() + canonicalExt,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// SaveAll stores every upload in order, returning their locations. When one
// upload fails the ones already stored are deleted again.
func SaveAll(ctx context.Context, store Store, uploads []*Upload) ([]string, error) {
	locations := make([]string, 0, len(uploads))
	for i, u := range uploads {
		loc, err := store.Save(ctx, u.Key, u.ContentType, u.Data)
		if err != nil {
			err = fmt.Errorf("failed to store image %s: %w", u.Key, err)
			if derr := DeleteAll(context.WithoutCancel(ctx), store, uploads[:i]); derr != nil {
				err = errors.Join(err, derr)
			}
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// DeleteAll removes every upload, continuing past failures.
func DeleteAll(ctx context.Context, store Store, uploads []*Upload) error {
	var errs []error
	for _, u := range uploads {
		if err := store.Delete(ctx, u.Key); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete image %s: %w", u.Key, err))
		}
	}
	return errors.Join(errs...)
}
