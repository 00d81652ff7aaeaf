package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"training-portal/internal/config"
)

// Storage persists uploaded files and returns their public URLs.
type Storage interface {
	Upload(data []byte, key string) (string, error)
}

// StorageService is a local-disk object store. Keys may contain path
// separators; anything escaping the uploads directory is rejected.
type StorageService struct {
	dir       string
	publicURL string
}

// NewStorageService reads the storage layout from config.
func NewStorageService() *StorageService {
	cfg := config.Get()
	return &StorageService{
		dir:       cfg.Storage.UploadsDir,
		publicURL: strings.TrimRight(cfg.Storage.PublicURL, "/"),
	}
}

// Upload writes the bytes under key and returns the public URL.
func (s *StorageService) Upload(data []byte, key string) (string, error) {
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}

	path := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}

	return s.publicURL + "/" + filepath.ToSlash(clean), nil
}
