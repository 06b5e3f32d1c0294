package service

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type ImageStore interface {
	Save(prefix, filename string, content io.Reader) (string, error)
}

// LocalImageStore writes uploads under Dir and serves them from /uploads/.
type LocalImageStore struct {
	Dir string
}

// Save stores content under a generated name that keeps only the client
// file's extension, and returns its public URL.
func (s LocalImageStore) Save(prefix, filename string, content io.Reader) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", err
	}

	name := prefix + "_" + uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(filename)))
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
