package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vet-clinic-service/internal/usecase/profile"
	pkgerrors "vet-clinic-service/pkg/errors"
)

// UserHandler exposes the user and veterinarian profile operations.
type UserHandler struct {
	uc  profile.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(uc profile.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{uc: uc, log: log}
}

type createUserForm struct {
	FirstName     string  `form:"first_name" json:"first_name"`
	LastName      string  `form:"last_name" json:"last_name"`
	Email         string  `form:"email" json:"email"`
	Password      string  `form:"password" json:"password"`
	Phone         string  `form:"phone" json:"phone"`
	Role          string  `form:"role" json:"role"`
	LicenseNumber string  `form:"license_number" json:"license_number"`
	Experience    *int    `form:"experience" json:"experience"`
	Education     *string `form:"education" json:"education"`
}

type updateUserForm struct {
	FirstName     *string `form:"first_name" json:"first_name"`
	LastName      *string `form:"last_name" json:"last_name"`
	Email         *string `form:"email" json:"email"`
	Password      *string `form:"password" json:"password"`
	Phone         *string `form:"phone" json:"phone"`
	Role          *string `form:"role" json:"role"`
	LicenseNumber *string `form:"license_number" json:"license_number"`
	Experience    *int    `form:"experience" json:"experience"`
	Education     *string `form:"education" json:"education"`
}

type changePasswordBody struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Create handles POST /v1/users. Accepts JSON or multipart form data; an
// optional image_file part becomes the user's profile image.
func (h *UserHandler) Create(c *gin.Context) {
	var form createUserForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	image, err := extractImage(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if image != nil {
		defer image.File.Close()
	}

	req := profile.CreateUserRequest{
		FirstName:     form.FirstName,
		LastName:      form.LastName,
		Email:         form.Email,
		Password:      form.Password,
		Phone:         form.Phone,
		Role:          form.Role,
		LicenseNumber: form.LicenseNumber,
		Experience:    form.Experience,
		Education:     form.Education,
	}

	resp, err := h.uc.Create(c.Request.Context(), req, toProfileImage(image))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Update handles PUT /v1/users/:id. Fields absent from the payload are left
// untouched; remove_image=true clears the profile image.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var form updateUserForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	image, err := extractImage(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if image != nil {
		defer image.File.Close()
	}

	req := profile.UpdateUserRequest{
		FirstName:     form.FirstName,
		LastName:      form.LastName,
		Email:         form.Email,
		Password:      form.Password,
		Phone:         form.Phone,
		Role:          form.Role,
		LicenseNumber: form.LicenseNumber,
		Experience:    form.Experience,
		Education:     form.Education,
	}

	resp, err := h.uc.Update(c.Request.Context(), id, req, toProfileImage(image), removeImageRequested(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ChangePassword handles PUT /v1/users/:id/password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var body changePasswordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	if err := h.uc.ChangePassword(c.Request.Context(), id, profile.ChangePasswordRequest{
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	}); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List handles GET /v1/users with optional search and pagination.
func (h *UserHandler) List(c *gin.Context) {
	req := profile.ListUsersRequest{
		Query: c.Query("search"),
		Page:  queryInt64(c, "page", 1),
		Limit: queryInt64(c, "limit", 10),
	}

	resp, err := h.uc.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /v1/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.uc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func toProfileImage(img *imagePayload) *profile.ImageUpload {
	if img == nil {
		return nil
	}
	return &profile.ImageUpload{
		Reader:      img.File,
		Filename:    img.Filename,
		ContentType: img.ContentType,
		Size:        img.Size,
	}
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.NewValidationError("id", "id must be a positive integer")
	}
	return id, nil
}

// queryInt64 parses an optional integer query parameter.
func queryInt64(c *gin.Context, name string, def int64) int64 {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}
