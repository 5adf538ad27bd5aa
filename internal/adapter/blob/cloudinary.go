package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"

	pkgerrors "vet-clinic-service/pkg/errors"
)

// Store defines the interface for image blob operations. Upload returns an
// opaque locator; Delete takes a locator previously returned by Upload.
type Store interface {
	// Upload stores an image under the given folder and returns its locator.
	Upload(ctx context.Context, r io.Reader, folder string) (string, error)

	// Delete removes a previously uploaded image by its locator.
	Delete(ctx context.Context, locator string) error
}

// CloudinaryStore implements Store against the Cloudinary upload API.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
	log *zap.Logger
}

// NewCloudinaryStore creates a blob store from a cloudinary:// URL.
func NewCloudinaryStore(cloudinaryURL string, log *zap.Logger) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}
	return &CloudinaryStore{cld: cld, log: log}, nil
}

// Upload stores an image under folder and returns the secure URL as locator.
func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, folder string) (string, error) {
	publicID := uuid.New().String()

	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   folder,
		PublicID: publicID,
	})
	if err != nil {
		s.log.Error("blob upload failed", zap.String("folder", folder), zap.Error(err))
		return "", pkgerrors.NewUploadError("image upload failed", err)
	}
	if resp.Error.Message != "" {
		s.log.Error("blob upload rejected", zap.String("folder", folder), zap.String("reason", resp.Error.Message))
		return "", pkgerrors.NewUploadError("image upload failed", fmt.Errorf("%s", resp.Error.Message))
	}

	s.log.Info("blob uploaded", zap.String("folder", folder), zap.String("public_id", resp.PublicID))
	return resp.SecureURL, nil
}

// Delete removes the image identified by locator. The deletable public ID is
// derived from the locator string.
func (s *CloudinaryStore) Delete(ctx context.Context, locator string) error {
	publicID, err := PublicIDFromLocator(locator)
	if err != nil {
		return err
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", publicID, err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("failed to delete blob %s: %s", publicID, resp.Result)
	}

	s.log.Info("blob deleted", zap.String("public_id", publicID))
	return nil
}

// versionSegment matches the version path element Cloudinary inserts into
// delivery URLs, e.g. "v1699999999".
var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicIDFromLocator recovers the deletable public ID from a delivery URL.
// A locator looks like
// https://res.cloudinary.com/<cloud>/image/upload/v123/<folder>/<id>.<ext>;
// the public ID is everything after the version segment, without extension.
func PublicIDFromLocator(locator string) (string, error) {
	_, after, found := strings.Cut(locator, "/upload/")
	if !found || after == "" {
		return "", fmt.Errorf("unrecognized blob locator: %s", locator)
	}

	segments := strings.Split(after, "/")
	if versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("unrecognized blob locator: %s", locator)
	}

	publicID := strings.Join(segments, "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	if publicID == "" {
		return "", fmt.Errorf("unrecognized blob locator: %s", locator)
	}
	return publicID, nil
}
