// Package attachment loads the binary parts the client uploads: book covers
// and payment proofs.
//
// A reference is either a local path or an object in S3-compatible storage:
//
//	f, err := attachment.Open(ctx, "./receipt.jpg")
//	f, err := attachment.Open(ctx, "s3://payments/2024/receipt.jpg")
//
// The content type is sniffed from the bytes, never trusted from the name.
package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxSize caps an attachment at 10 MiB.
const MaxSize = 10 << 20

var (
	ErrTooLarge = errors.New("attachment: larger than 10 MiB")
	ErrEmpty    = errors.New("attachment: empty file")
)

// File is one loaded attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsImage reports whether the sniffed type is an image.
func (f File) IsImage() bool { return strings.HasPrefix(f.ContentType, "image/") }

// Open loads ref, a local path or s3://bucket/key.
func Open(ctx context.Context, ref string) (File, error) {
	if bucket, key, ok := parseS3(ref); ok {
		src, err := newS3Source()
		if err != nil {
			return File{}, err
		}
		data, err := src.Fetch(ctx, bucket, key)
		if err != nil {
			return File{}, err
		}
		return FromBytes(filepath.Base(key), data)
	}
	return openLocal(ref)
}

// FromReader reads at most MaxSize bytes from r.
func FromReader(name string, r io.Reader) (File, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return File{}, fmt.Errorf("attachment: read %s: %w", name, err)
	}
	return FromBytes(name, data)
}

// FromBytes wraps data, enforcing the size limits and sniffing the type.
func FromBytes(name string, data []byte) (File, error) {
	if len(data) == 0 {
		return File{}, ErrEmpty
	}
	if len(data) > MaxSize {
		return File{}, ErrTooLarge
	}
	return File{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

func openLocal(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("attachment: %w", err)
	}
	defer f.Close()
	return FromReader(filepath.Base(path), f)
}

func parseS3(ref string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(ref, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
