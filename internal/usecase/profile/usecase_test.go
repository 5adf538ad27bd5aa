package profile_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "vet-clinic-service/internal/domain/user"
	"vet-clinic-service/internal/usecase/profile"
	pkgerrors "vet-clinic-service/pkg/errors"
	"vet-clinic-service/pkg/security"
)

// MockRepository is a mock implementation of the Repository interface.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByLicense(ctx context.Context, license string) (*domain.User, error) {
	args := m.Called(ctx, license)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.User, error) {
	args := m.Called(ctx, query, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockBlobStore is a mock implementation of the blob.Store interface.
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, r io.Reader, folder string) (string, error) {
	args := m.Called(ctx, r, folder)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, locator string) error {
	args := m.Called(ctx, locator)
	return args.Error(0)
}

func setupService(t *testing.T) (*profile.Service, *MockRepository, *MockBlobStore) {
	repo := new(MockRepository)
	blobs := new(MockBlobStore)
	svc := profile.New(repo, blobs, "vet-clinic/users", zaptest.NewLogger(t))
	return svc, repo, blobs
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func staffUser(id int64) *domain.User {
	hash, _ := security.HashPassword("secret123")
	return &domain.User{
		ID:           id,
		FirstName:    "Alice",
		LastName:     "Nguyen",
		Email:        "alice@clinic.test",
		PasswordHash: hash,
		Phone:        "555-0101",
		Role:         domain.RoleStaff,
	}
}

func vetUser(id int64) *domain.User {
	u := staffUser(id)
	u.Role = domain.RoleVeterinarian
	u.Profile = &domain.VeterinarianProfile{
		ID:            id,
		UserID:        id,
		LicenseNumber: "VET-100",
		Experience:    intPtr(5),
	}
	return u
}

// ==================== CREATE ====================

func TestCreate_StaffSuccess(t *testing.T) {
	svc, repo, blobs := setupService(t)
	ctx := context.Background()

	req := profile.CreateUserRequest{
		FirstName: "Alice",
		LastName:  "Nguyen",
		Email:     "alice@clinic.test",
		Password:  "secret123",
		Phone:     "555-0101",
		Role:      "STAFF",
	}

	repo.On("GetByEmail", ctx, req.Email).Return(nil, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		// Password must be stored hashed, profile absent for staff.
		return u.Profile == nil &&
			u.PasswordHash != req.Password &&
			security.VerifyPassword(req.Password, u.PasswordHash)
	})).Return(int64(1), nil)
	repo.On("GetByID", ctx, int64(1)).Return(staffUser(1), nil)

	resp, err := svc.Create(ctx, req, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Nil(t, resp.Veterinarian)
	blobs.AssertNotCalled(t, "Upload")
	repo.AssertExpectations(t)
}

func TestCreate_VeterinarianRequiresLicense(t *testing.T) {
	svc, _, _ := setupService(t)

	req := profile.CreateUserRequest{
		FirstName: "Bob",
		LastName:  "Tran",
		Email:     "bob@clinic.test",
		Password:  "secret123",
		Phone:     "555-0102",
		Role:      "VETERINARIAN",
	}

	resp, err := svc.Create(context.Background(), req, nil)

	assert.Nil(t, resp)
	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "license")
}

func TestCreate_VeterinarianWithProfile(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	req := profile.CreateUserRequest{
		FirstName:     "Bob",
		LastName:      "Tran",
		Email:         "bob@clinic.test",
		Password:      "secret123",
		Phone:         "555-0102",
		Role:          "VETERINARIAN",
		LicenseNumber: "VET-100",
		Experience:    intPtr(5),
	}

	repo.On("GetByEmail", ctx, req.Email).Return(nil, nil)
	repo.On("GetByLicense", ctx, "VET-100").Return(nil, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Profile != nil && u.Profile.LicenseNumber == "VET-100"
	})).Return(int64(2), nil)
	repo.On("GetByID", ctx, int64(2)).Return(vetUser(2), nil)

	resp, err := svc.Create(ctx, req, nil)

	require.NoError(t, err)
	require.NotNil(t, resp.Veterinarian)
	assert.Equal(t, "VET-100", resp.Veterinarian.LicenseNumber)
	repo.AssertExpectations(t)
}

func TestCreate_UnknownRole(t *testing.T) {
	svc, _, _ := setupService(t)

	req := profile.CreateUserRequest{
		FirstName: "Eve",
		LastName:  "Pham",
		Email:     "eve@clinic.test",
		Password:  "secret123",
		Phone:     "555-0103",
		Role:      "JANITOR",
	}

	_, err := svc.Create(context.Background(), req, nil)

	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	req := profile.CreateUserRequest{
		FirstName: "Alice",
		LastName:  "Nguyen",
		Email:     "alice@clinic.test",
		Password:  "secret123",
		Phone:     "555-0101",
		Role:      "STAFF",
	}

	repo.On("GetByEmail", ctx, req.Email).Return(staffUser(9), nil)

	_, err := svc.Create(ctx, req, nil)

	var cerr *pkgerrors.ConflictError
	require.ErrorAs(t, err, &cerr)
	repo.AssertNotCalled(t, "Create")
}

func TestCreate_DuplicateLicense(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	req := profile.CreateUserRequest{
		FirstName:     "Bob",
		LastName:      "Tran",
		Email:         "bob@clinic.test",
		Password:      "secret123",
		Phone:         "555-0102",
		Role:          "VETERINARIAN",
		LicenseNumber: "VET-100",
	}

	repo.On("GetByEmail", ctx, req.Email).Return(nil, nil)
	repo.On("GetByLicense", ctx, "VET-100").Return(vetUser(9), nil)

	_, err := svc.Create(ctx, req, nil)

	var cerr *pkgerrors.ConflictError
	require.ErrorAs(t, err, &cerr)
	repo.AssertNotCalled(t, "Create")
}

func TestCreate_UploadsImageBeforePersisting(t *testing.T) {
	svc, repo, blobs := setupService(t)
	ctx := context.Background()

	req := profile.CreateUserRequest{
		FirstName: "Alice",
		LastName:  "Nguyen",
		Email:     "alice@clinic.test",
		Password:  "secret123",
		Phone:     "555-0101",
		Role:      "STAFF",
	}
	image := &profile.ImageUpload{
		Reader:      strings.NewReader("jpegdata"),
		Filename:    "avatar.jpg",
		ContentType: "image/jpeg",
		Size:        8,
	}

	repo.On("GetByEmail", ctx, req.Email).Return(nil, nil)
	blobs.On("Upload", ctx, image.Reader, "vet-clinic/users").
		Return("https://cdn.test/vet-clinic/users/abc.jpg", nil)
	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ImageURL == "https://cdn.test/vet-clinic/users/abc.jpg"
	})).Return(int64(1), nil)
	repo.On("GetByID", ctx, int64(1)).Return(staffUser(1), nil)

	_, err := svc.Create(ctx, req, image)

	require.NoError(t, err)
	blobs.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestCreate_UploadFailureAbortsBeforeDatabaseWrite(t *testing.T) {
	svc, repo, blobs := setupService(t)
	ctx := context.Background()

	req := profile.CreateUserRequest{
		FirstName: "Alice",
		LastName:  "Nguyen",
		Email:     "alice@clinic.test",
		Password:  "secret123",
		Phone:     "555-0101",
		Role:      "STAFF",
	}
	image := &profile.ImageUpload{
		Reader:      strings.NewReader("jpegdata"),
		ContentType: "image/jpeg",
		Size:        8,
	}

	repo.On("GetByEmail", ctx, req.Email).Return(nil, nil)
	blobs.On("Upload", ctx, image.Reader, "vet-clinic/users").
		Return("", pkgerrors.NewUploadError("upload failed", errors.New("boom")))

	_, err := svc.Create(ctx, req, image)

	var uerr *pkgerrors.UploadError
	require.ErrorAs(t, err, &uerr)
	repo.AssertNotCalled(t, "Create")
}

// ==================== UPDATE / ROLE TRANSITIONS ====================

func TestUpdate_VeterinarianToStaffDropsProfile(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	current := vetUser(2)
	repo.On("GetByID", ctx, int64(2)).Return(current, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleStaff && u.Profile == nil
	})).Return(nil)

	after := staffUser(2)
	repo.On("GetByID", ctx, int64(2)).Return(after, nil).Once()

	resp, err := svc.Update(ctx, 2, profile.UpdateUserRequest{Role: strPtr("STAFF")}, nil, false)

	require.NoError(t, err)
	assert.Nil(t, resp.Veterinarian)
	repo.AssertExpectations(t)
}

func TestUpdate_StaffToVeterinarianRequiresLicense(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(1)).Return(staffUser(1), nil)

	_, err := svc.Update(ctx, 1, profile.UpdateUserRequest{Role: strPtr("VETERINARIAN")}, nil, false)

	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	repo.AssertNotCalled(t, "Update")
}

func TestUpdate_StaffToVeterinarianCreatesProfile(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(1)).Return(staffUser(1), nil).Once()
	repo.On("GetByLicense", ctx, "VET-200").Return(nil, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleVeterinarian &&
			u.Profile != nil && u.Profile.LicenseNumber == "VET-200"
	})).Return(nil)
	repo.On("GetByID", ctx, int64(1)).Return(vetUser(1), nil).Once()

	_, err := svc.Update(ctx, 1, profile.UpdateUserRequest{
		Role:          strPtr("VETERINARIAN"),
		LicenseNumber: strPtr("VET-200"),
	}, nil, false)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdate_VeterinarianMergesProfileFields(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	current := vetUser(2)
	repo.On("GetByID", ctx, int64(2)).Return(current, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		// License untouched, experience replaced.
		return u.Profile != nil &&
			u.Profile.LicenseNumber == "VET-100" &&
			u.Profile.Experience != nil && *u.Profile.Experience == 9
	})).Return(nil)
	repo.On("GetByID", ctx, int64(2)).Return(vetUser(2), nil).Once()

	_, err := svc.Update(ctx, 2, profile.UpdateUserRequest{Experience: intPtr(9)}, nil, false)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdate_DuplicateEmailOtherUser(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	other := staffUser(7)
	other.Email = "taken@clinic.test"

	repo.On("GetByID", ctx, int64(1)).Return(staffUser(1), nil)
	repo.On("GetByEmail", ctx, "taken@clinic.test").Return(other, nil)

	_, err := svc.Update(ctx, 1, profile.UpdateUserRequest{Email: strPtr("taken@clinic.test")}, nil, false)

	var cerr *pkgerrors.ConflictError
	require.ErrorAs(t, err, &cerr)
	repo.AssertNotCalled(t, "Update")
}

// ==================== UPDATE / IMAGE LIFECYCLE ====================

func TestUpdate_RemoveImageClearsLocator(t *testing.T) {
	svc, repo, blobs := setupService(t)
	ctx := context.Background()

	current := staffUser(1)
	current.ImageURL = "https://cdn.test/vet-clinic/users/old.jpg"

	repo.On("GetByID", ctx, int64(1)).Return(current, nil).Once()
	blobs.On("Delete", ctx, current.ImageURL).Return(nil)
	repo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ImageURL == ""
	})).Return(nil)
	repo.On("GetByID", ctx, int64(1)).Return(staffUser(1), nil).Once()

	_, err := svc.Update(ctx, 1, profile.UpdateUserRequest{}, nil, true)

	require.NoError(t, err)
	blobs.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestUpdate_ReplaceImageToleratesDeleteFailure(t *testing.T) {
	svc, repo, blobs := setupService(t)
	ctx := context.Background()

	current := staffUser(1)
	current.ImageURL = "https://cdn.test/vet-clinic/users/old.jpg"

	image := &profile.ImageUpload{
		Reader:      strings.NewReader("newimg"),
		ContentType: "image/png",
		Size:        6,
	}

	repo.On("GetByID", ctx, int64(1)).Return(current, nil).Once()
	// Old blob delete fails; the update must still go through.
	blobs.On("Delete", ctx, current.ImageURL).Return(errors.New("cdn unreachable"))
	blobs.On("Upload", ctx, image.Reader, "vet-clinic/users").
		Return("https://cdn.test/vet-clinic/users/new.png", nil)
	repo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ImageURL == "https://cdn.test/vet-clinic/users/new.png"
	})).Return(nil)
	repo.On("GetByID", ctx, int64(1)).Return(staffUser(1), nil).Once()

	_, err := svc.Update(ctx, 1, profile.UpdateUserRequest{}, image, false)

	require.NoError(t, err)
	blobs.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestUpdate_ReplaceImageUploadFailureAborts(t *testing.T) {
	svc, repo, blobs := setupService(t)
	ctx := context.Background()

	current := staffUser(1)
	current.ImageURL = "https://cdn.test/vet-clinic/users/old.jpg"

	image := &profile.ImageUpload{
		Reader:      strings.NewReader("newimg"),
		ContentType: "image/png",
		Size:        6,
	}

	repo.On("GetByID", ctx, int64(1)).Return(current, nil)
	blobs.On("Delete", ctx, current.ImageURL).Return(nil)
	blobs.On("Upload", ctx, image.Reader, "vet-clinic/users").
		Return("", pkgerrors.NewUploadError("upload failed", errors.New("boom")))

	_, err := svc.Update(ctx, 1, profile.UpdateUserRequest{}, image, false)

	var uerr *pkgerrors.UploadError
	require.ErrorAs(t, err, &uerr)
	repo.AssertNotCalled(t, "Update")
}

// ==================== CHANGE PASSWORD ====================

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(1)).Return(staffUser(1), nil)

	err := svc.ChangePassword(ctx, 1, profile.ChangePasswordRequest{
		CurrentPassword: "wrongpass",
		NewPassword:     "brandnew1",
	})

	var aerr *pkgerrors.AuthError
	require.ErrorAs(t, err, &aerr)
	repo.AssertNotCalled(t, "UpdatePassword")
}

func TestChangePassword_SameAsCurrent(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(1)).Return(staffUser(1), nil)

	err := svc.ChangePassword(ctx, 1, profile.ChangePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "secret123",
	})

	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	repo.AssertNotCalled(t, "UpdatePassword")
}

func TestChangePassword_Success(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(1)).Return(staffUser(1), nil)
	repo.On("UpdatePassword", ctx, int64(1), mock.MatchedBy(func(hash string) bool {
		return security.VerifyPassword("brandnew1", hash)
	})).Return(nil)

	err := svc.ChangePassword(ctx, 1, profile.ChangePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "brandnew1",
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// ==================== DELETE / LIST ====================

func TestDelete_CleansUpImageBestEffort(t *testing.T) {
	svc, repo, blobs := setupService(t)
	ctx := context.Background()

	u := staffUser(1)
	u.ImageURL = "https://cdn.test/vet-clinic/users/gone.jpg"

	repo.On("GetByID", ctx, int64(1)).Return(u, nil)
	repo.On("Delete", ctx, int64(1)).Return(int64(1), nil)
	blobs.On("Delete", ctx, u.ImageURL).Return(errors.New("cdn unreachable"))

	err := svc.Delete(ctx, 1)

	// Blob failure after the row is gone must not surface.
	require.NoError(t, err)
	repo.AssertExpectations(t)
	blobs.AssertExpectations(t)
}

func TestDelete_NotFound(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(42)).Return(nil, pkgerrors.NewNotFoundError("user", "user not found"))

	err := svc.Delete(ctx, 42)

	var nerr *pkgerrors.NotFoundError
	require.ErrorAs(t, err, &nerr)
	repo.AssertNotCalled(t, "Delete")
}

func TestList_ClampsPagination(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	repo.On("List", ctx, "", int64(1), int64(100)).Return([]domain.User{*staffUser(1)}, nil)

	resp, err := svc.List(ctx, profile.ListUsersRequest{Page: -3, Limit: 500})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Page)
	assert.Equal(t, int64(100), resp.Limit)
	assert.Len(t, resp.Users, 1)
	repo.AssertExpectations(t)
}

func TestList_InvalidSearchQuery(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	repo.On("List", ctx, "DROP TABLE", int64(1), int64(10)).
		Return(nil, errors.New("invalid search query"))

	_, err := svc.List(ctx, profile.ListUsersRequest{Query: "DROP TABLE"})

	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
}
