package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"vet-clinic-service/internal/adapter/blob"
	domain "vet-clinic-service/internal/domain/user"
	pkgerrors "vet-clinic-service/pkg/errors"
	"vet-clinic-service/pkg/security"
)

// Repository defines the interface for user data access operations. Create
// and Update must persist the user row and its veterinarian profile row
// atomically; implementations back uniqueness checks with storage-level
// unique constraints, which remain the final authority under concurrency.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByLicense(ctx context.Context, license string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, query string, page, limit int64) ([]domain.User, error)
}

// Service implements the profile management business logic: validation,
// image lifecycle against the blob store, password hashing, and the
// user/veterinarian-profile consistency rules. It is the single authority
// for role transitions.
type Service struct {
	repo       Repository
	blobs      blob.Store
	userFolder string
	log        *zap.Logger
	validate   *validator.Validate
}

// New creates a new profile Service. userFolder is the blob store namespace
// for profile images.
func New(repo Repository, blobs blob.Store, userFolder string, log *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		blobs:      blobs,
		userFolder: userFolder,
		log:        log,
		validate:   validator.New(),
	}
}

// formatValidationError converts validator.ValidationErrors into a typed
// validation error with a human-readable message.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			case "gte":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return err
}

// Create creates a new user account, hashing the password and, for
// veterinarians, creating the profile row in the same transaction as the
// user row. An image upload happens before any database write so that a
// blob store failure aborts the whole operation.
func (s *Service) Create(ctx context.Context, in CreateUserRequest, image *ImageUpload) (*UserResponse, error) {
	s.log.Info("creating user", zap.String("email", in.Email), zap.String("role", in.Role))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	role := domain.Role(in.Role)
	if !role.Valid() {
		return nil, pkgerrors.NewValidationError("role", fmt.Sprintf("unknown role %q", in.Role))
	}
	if role == domain.RoleVeterinarian && in.LicenseNumber == "" {
		return nil, pkgerrors.NewValidationError("license_number", "license number is required for veterinarians")
	}

	if existing, err := s.repo.GetByEmail(ctx, in.Email); err != nil {
		s.log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to validate email uniqueness", err)
	} else if existing != nil {
		s.log.Warn("email already exists", zap.String("email", in.Email))
		return nil, pkgerrors.NewConflictError("email", "email already in use")
	}

	if role == domain.RoleVeterinarian {
		if owner, err := s.repo.GetByLicense(ctx, in.LicenseNumber); err != nil {
			s.log.Error("failed to check existing license", zap.Error(err))
			return nil, pkgerrors.NewInternalError("failed to validate license uniqueness", err)
		} else if owner != nil {
			s.log.Warn("license already exists", zap.String("license", in.LicenseNumber))
			return nil, pkgerrors.NewConflictError("license number", "license number already in use")
		}
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to hash password", err)
	}

	var imageURL string
	if image != nil {
		imageURL, err = s.blobs.Upload(ctx, image.Reader, s.userFolder)
		if err != nil {
			// Aborts before any database mutation.
			return nil, err
		}
	}

	u := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Role:         role,
		ImageURL:     imageURL,
	}
	if role == domain.RoleVeterinarian {
		u.Profile = &domain.VeterinarianProfile{
			LicenseNumber: in.LicenseNumber,
			Experience:    in.Experience,
			Education:     in.Education,
		}
	}

	id, err := s.repo.Create(ctx, u)
	if err != nil {
		s.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(created), nil
}

// Update applies partial field changes, runs the image lifecycle, and
// reconciles the veterinarian profile according to the role transition
// rules. The user row and profile row commit in one transaction.
func (s *Service) Update(ctx context.Context, id int64, in UpdateUserRequest, image *ImageUpload, removeImage bool) (*UserResponse, error) {
	s.log.Info("updating user", zap.Int64("id", id))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != current.Email {
		existing, err := s.repo.GetByEmail(ctx, *in.Email)
		if err != nil {
			return nil, pkgerrors.NewInternalError("failed to validate email uniqueness", err)
		}
		if existing != nil && existing.ID != id {
			return nil, pkgerrors.NewConflictError("email", "email already in use")
		}
	}

	targetRole := current.Role
	if in.Role != nil {
		targetRole = domain.Role(*in.Role)
		if !targetRole.Valid() {
			return nil, pkgerrors.NewValidationError("role", fmt.Sprintf("unknown role %q", *in.Role))
		}
	}

	if targetRole == domain.RoleVeterinarian && in.LicenseNumber != nil {
		owner, err := s.repo.GetByLicense(ctx, *in.LicenseNumber)
		if err != nil {
			return nil, pkgerrors.NewInternalError("failed to validate license uniqueness", err)
		}
		if owner != nil && owner.ID != id {
			return nil, pkgerrors.NewConflictError("license number", "license number already in use")
		}
	}

	profile, err := s.transitionProfile(current, targetRole, in)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.applyImageLifecycle(ctx, current.ImageURL, image, removeImage)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Role = targetRole
	updated.Profile = profile
	updated.ImageURL = imageURL
	if in.FirstName != nil {
		updated.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		updated.LastName = *in.LastName
	}
	if in.Email != nil {
		updated.Email = *in.Email
	}
	if in.Phone != nil {
		updated.Phone = *in.Phone
	}
	if in.Password != nil {
		hash, err := security.HashPassword(*in.Password)
		if err != nil {
			return nil, pkgerrors.NewInternalError("failed to hash password", err)
		}
		updated.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		s.log.Error("failed to update user", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(result), nil
}

// transitionProfile computes the veterinarian profile state after the
// update. This is the single authority for role transitions:
//
//	-> VETERINARIAN, no profile:  create, license number required
//	-> VETERINARIAN, has profile: merge supplied fields over existing values
//	VETERINARIAN -> other:        profile removed
//	other, unchanged:             no profile
func (s *Service) transitionProfile(current *domain.User, targetRole domain.Role, in UpdateUserRequest) (*domain.VeterinarianProfile, error) {
	if targetRole != domain.RoleVeterinarian {
		return nil, nil
	}

	if current.Profile == nil {
		if in.LicenseNumber == nil || *in.LicenseNumber == "" {
			return nil, pkgerrors.NewValidationError("license_number", "license number is required for veterinarians")
		}
		return &domain.VeterinarianProfile{
			LicenseNumber: *in.LicenseNumber,
			Experience:    in.Experience,
			Education:     in.Education,
		}, nil
	}

	merged := *current.Profile
	if in.LicenseNumber != nil {
		merged.LicenseNumber = *in.LicenseNumber
	}
	if in.Experience != nil {
		merged.Experience = in.Experience
	}
	if in.Education != nil {
		merged.Education = in.Education
	}
	return &merged, nil
}

// applyImageLifecycle handles the three image cases of an update: remove,
// replace, or leave untouched. Deleting an old blob is best-effort and never
// blocks the record update; uploading a new blob is a hard failure that
// aborts the update before any database write.
func (s *Service) applyImageLifecycle(ctx context.Context, currentURL string, image *ImageUpload, removeImage bool) (string, error) {
	switch {
	case removeImage:
		if currentURL != "" {
			if err := s.blobs.Delete(ctx, currentURL); err != nil {
				s.log.Warn("failed to delete image blob, continuing", zap.String("locator", currentURL), zap.Error(err))
			}
		}
		return "", nil

	case image != nil:
		if currentURL != "" {
			if err := s.blobs.Delete(ctx, currentURL); err != nil {
				s.log.Warn("failed to delete old image blob, continuing", zap.String("locator", currentURL), zap.Error(err))
			}
		}
		newURL, err := s.blobs.Upload(ctx, image.Reader, s.userFolder)
		if err != nil {
			return "", err
		}
		return newURL, nil

	default:
		return currentURL, nil
	}
}

// ChangePassword verifies the current password and replaces the stored
// hash. The new password must differ from the current one; the comparison
// runs through hash verification, never through stored plaintext.
func (s *Service) ChangePassword(ctx context.Context, id int64, in ChangePasswordRequest) error {
	if err := s.validate.Struct(in); err != nil {
		return formatValidationError(err)
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !security.VerifyPassword(in.CurrentPassword, u.PasswordHash) {
		s.log.Warn("password change rejected", zap.Int64("id", id))
		return pkgerrors.NewAuthError("current password is incorrect")
	}
	if security.VerifyPassword(in.NewPassword, u.PasswordHash) {
		return pkgerrors.NewValidationError("new_password", "new password must differ from the current password")
	}

	hash, err := security.HashPassword(in.NewPassword)
	if err != nil {
		return pkgerrors.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		s.log.Error("failed to update password", zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.log.Info("password changed", zap.Int64("id", id))
	return nil
}

// Delete removes a user. The veterinarian profile row is removed by the
// persistence layer's referential cascade, not by application logic. The
// profile image blob is cleaned up best-effort afterwards.
func (s *Service) Delete(ctx context.Context, id int64) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete user", zap.Int64("id", id), zap.Error(err))
		return err
	}

	if u.ImageURL != "" {
		if err := s.blobs.Delete(ctx, u.ImageURL); err != nil {
			s.log.Warn("failed to delete image blob after user deletion", zap.String("locator", u.ImageURL), zap.Error(err))
		}
	}

	s.log.Info("user deleted", zap.Int64("id", id))
	return nil
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(u), nil
}

// List retrieves a paginated list of users with optional name/email search.
func (s *Service) List(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = 10
	}
	if in.Limit > 100 {
		in.Limit = 100
	}

	users, err := s.repo.List(ctx, in.Query, in.Page, in.Limit)
	if err != nil {
		if strings.Contains(err.Error(), "invalid search query") {
			return nil, pkgerrors.NewValidationError("query", "invalid search query")
		}
		s.log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = *toResponse(&users[i])
	}
	return &ListUsersResponse{Users: out, Page: in.Page, Limit: in.Limit}, nil
}

// toResponse converts a domain user into its canonical API representation,
// excluding the password hash.
func toResponse(u *domain.User) *UserResponse {
	resp := &UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		ImageURL:  u.ImageURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Profile != nil {
		resp.Veterinarian = &VeterinarianView{
			LicenseNumber: u.Profile.LicenseNumber,
			Experience:    u.Profile.Experience,
			Education:     u.Profile.Education,
		}
	}
	return resp
}
