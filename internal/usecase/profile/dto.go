package profile

import (
	"io"
	"time"
)

// ImageUpload carries a validated image payload into the service. The
// handler enforces the content-type and size preconditions before the
// service is invoked.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// CreateUserRequest represents the payload for creating a new user account.
// LicenseNumber is required when Role is VETERINARIAN; that rule is enforced
// in code because it depends on another field.
type CreateUserRequest struct {
	FirstName     string `validate:"required,max=100"`
	LastName      string `validate:"required,max=100"`
	Email         string `validate:"required,email"`
	Password      string `validate:"required,min=6"`
	Phone         string `validate:"required,max=30"`
	Role          string `validate:"required"`
	LicenseNumber string
	Experience    *int `validate:"omitempty,gte=0"`
	Education     *string
}

// UpdateUserRequest represents the payload for updating a user. Pointer
// fields distinguish "not supplied" (nil) from "supplied", so partial
// updates never clobber unspecified fields.
type UpdateUserRequest struct {
	FirstName     *string `validate:"omitempty,min=1,max=100"`
	LastName      *string `validate:"omitempty,min=1,max=100"`
	Email         *string `validate:"omitempty,email"`
	Password      *string `validate:"omitempty,min=6"`
	Phone         *string `validate:"omitempty,max=30"`
	Role          *string
	LicenseNumber *string
	Experience    *int `validate:"omitempty,gte=0"`
	Education     *string
}

// ChangePasswordRequest represents the payload for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=6"`
}

// VeterinarianView is the veterinarian profile as returned to callers.
type VeterinarianView struct {
	LicenseNumber string  `json:"license_number"`
	Experience    *int    `json:"experience,omitempty"`
	Education     *string `json:"education,omitempty"`
}

// UserResponse is the canonical user representation returned by the service.
// The password hash is never included.
type UserResponse struct {
	ID           int64             `json:"id"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Role         string            `json:"role"`
	ImageURL     string            `json:"image_url,omitempty"`
	Veterinarian *VeterinarianView `json:"veterinarian,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ListUsersRequest represents the payload for listing users with pagination
// and search.
type ListUsersRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListUsersResponse represents the payload for a user listing.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
	Page  int64          `json:"page"`
	Limit int64          `json:"limit"`
}
