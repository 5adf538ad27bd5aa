package profile

import "context"

// Usecase defines the interface for profile management operations.
type Usecase interface {
	Create(ctx context.Context, in CreateUserRequest, image *ImageUpload) (*UserResponse, error)
	Update(ctx context.Context, id int64, in UpdateUserRequest, image *ImageUpload, removeImage bool) (*UserResponse, error)
	ChangePassword(ctx context.Context, id int64, in ChangePasswordRequest) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*UserResponse, error)
	List(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
}
