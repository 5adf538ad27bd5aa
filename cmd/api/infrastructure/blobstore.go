package infrastructure

import (
	"fmt"

	"go.uber.org/zap"

	"vet-clinic-service/internal/adapter/blob"
	"vet-clinic-service/internal/config"
)

// NewBlobStore creates the Cloudinary-backed image store.
func NewBlobStore(cfg *config.Config, l *zap.Logger) (*blob.CloudinaryStore, error) {
	store, err := blob.NewCloudinaryStore(cfg.Blob.CloudinaryURL, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	return store, nil
}
