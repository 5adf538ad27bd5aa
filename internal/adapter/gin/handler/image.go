package handler

import (
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	pkgerrors "vet-clinic-service/pkg/errors"
)

// maxImageSize caps uploaded images at 5 MB.
const maxImageSize = 5 << 20

// imageFileField is the multipart field holding the uploaded image.
const imageFileField = "image_file"

// removeImageField, when set to a truthy value, requests image removal.
const removeImageField = "remove_image"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// imagePayload is the validated result of extracting an image from a
// multipart request.
type imagePayload struct {
	File        multipart.File
	Filename    string
	ContentType string
	Size        int64
}

// extractImage pulls the image_file part from a multipart request and
// validates its declared content type and size. Returns (nil, nil) when no
// file part was supplied.
func extractImage(c *gin.Context) (*imagePayload, error) {
	header, err := c.FormFile(imageFileField)
	if err != nil {
		// No file part, or not a multipart request at all.
		return nil, nil
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return nil, pkgerrors.NewValidationError(imageFileField, "image must be JPEG, PNG or WEBP")
	}
	if header.Size > maxImageSize {
		return nil, pkgerrors.NewValidationError(imageFileField, "image must not exceed 5MB")
	}

	file, err := header.Open()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to read uploaded file", err)
	}

	return &imagePayload{
		File:        file,
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	}, nil
}

// removeImageRequested reports whether the request asked for image removal.
func removeImageRequested(c *gin.Context) bool {
	v := strings.ToLower(strings.TrimSpace(c.PostForm(removeImageField)))
	return v == "true" || v == "1"
}
