package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "vet-clinic-service/internal/domain/user"
	"vet-clinic-service/internal/usecase/auth"
	pkgerrors "vet-clinic-service/pkg/errors"
	"vet-clinic-service/pkg/security"
)

// MockRepository is a mock implementation of the profile.Repository interface.
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

func setupAuth(t *testing.T) (*auth.Service, *MockRepository, *security.TokenManager) {
	repo := new(MockRepository)
	tokens := security.NewTokenManager("test-secret", time.Hour)
	svc := auth.New(repo, tokens, zaptest.NewLogger(t))
	return svc, repo, tokens
}

func TestLogin_Success(t *testing.T) {
	svc, repo, tokens := setupAuth(t)
	ctx := context.Background()

	hash, err := security.HashPassword("secret123")
	require.NoError(t, err)

	repo.On("GetByEmail", ctx, "vet@clinic.test").Return(&domain.User{
		ID:           3,
		FirstName:    "Bob",
		LastName:     "Tran",
		Email:        "vet@clinic.test",
		PasswordHash: hash,
		Role:         domain.RoleVeterinarian,
	}, nil)

	resp, err := svc.Login(ctx, auth.LoginRequest{Email: "vet@clinic.test", Password: "secret123"})

	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.User.ID)
	assert.Equal(t, "VETERINARIAN", resp.User.Role)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)
	assert.Equal(t, "VETERINARIAN", claims.Role)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	svc, repo, _ := setupAuth(t)
	ctx := context.Background()

	hash, err := security.HashPassword("secret123")
	require.NoError(t, err)

	repo.On("GetByEmail", ctx, "nobody@clinic.test").Return(nil, nil)
	repo.On("GetByEmail", ctx, "vet@clinic.test").Return(&domain.User{
		ID:           3,
		Email:        "vet@clinic.test",
		PasswordHash: hash,
		Role:         domain.RoleVeterinarian,
	}, nil)

	_, errUnknown := svc.Login(ctx, auth.LoginRequest{Email: "nobody@clinic.test", Password: "secret123"})
	_, errWrongPw := svc.Login(ctx, auth.LoginRequest{Email: "vet@clinic.test", Password: "wrong"})

	var aerr *pkgerrors.AuthError
	require.ErrorAs(t, errUnknown, &aerr)
	require.ErrorAs(t, errWrongPw, &aerr)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _, _ := setupAuth(t)

	_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "not-an-email", Password: ""})

	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
}
