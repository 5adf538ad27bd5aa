package postgres_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vet-clinic-service/internal/adapter/db/postgres"
	"vet-clinic-service/internal/domain/user"
	pkgerrors "vet-clinic-service/pkg/errors"
)

// openTestDB creates an in-memory SQLite database wired the same way the
// production Postgres connection is: translated driver errors and enforced
// foreign keys, so conflict mapping and cascades behave like production.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	require.NoError(t, db.AutoMigrate(&postgres.UserSchema{}, &postgres.VeterinarianSchema{}))
	return db
}

func newUserRepo(t *testing.T) *postgres.UserRepoPG {
	return postgres.NewUserRepoPG(openTestDB(t), zaptest.NewLogger(t))
}

func intPtr(v int) *int { return &v }

func seedVet(t *testing.T, repo *postgres.UserRepoPG, email, license string) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), &user.User{
		FirstName:    "Bob",
		LastName:     "Tran",
		Email:        email,
		PasswordHash: "hashed",
		Phone:        "555-0102",
		Role:         user.RoleVeterinarian,
		Profile: &user.VeterinarianProfile{
			LicenseNumber: license,
			Experience:    intPtr(5),
		},
	})
	require.NoError(t, err)
	return id
}

func seedStaff(t *testing.T, repo *postgres.UserRepoPG, email string) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), &user.User{
		FirstName:    "Alice",
		LastName:     "Nguyen",
		Email:        email,
		PasswordHash: "hashed",
		Phone:        "555-0101",
		Role:         user.RoleStaff,
	})
	require.NoError(t, err)
	return id
}

func TestUserRepo_CreateAndGetVeterinarian(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	id := seedVet(t, repo, "bob@clinic.test", "VET-100")

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, user.RoleVeterinarian, got.Role)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "VET-100", got.Profile.LicenseNumber)
	assert.Equal(t, id, got.Profile.UserID)
}

func TestUserRepo_DuplicateEmailConflict(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	seedStaff(t, repo, "alice@clinic.test")

	_, err := repo.Create(ctx, &user.User{
		FirstName:    "Other",
		LastName:     "Person",
		Email:        "alice@clinic.test",
		PasswordHash: "hashed",
		Role:         user.RoleStaff,
	})

	var cerr *pkgerrors.ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestUserRepo_DuplicateLicenseRollsBackUserRow(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	seedVet(t, repo, "bob@clinic.test", "VET-100")

	_, err := repo.Create(ctx, &user.User{
		FirstName:    "Carla",
		LastName:     "Vo",
		Email:        "carla@clinic.test",
		PasswordHash: "hashed",
		Role:         user.RoleVeterinarian,
		Profile:      &user.VeterinarianProfile{LicenseNumber: "VET-100"},
	})

	var cerr *pkgerrors.ConflictError
	require.ErrorAs(t, err, &cerr)

	// The user row from the failed transaction must not survive.
	u, err := repo.GetByEmail(ctx, "carla@clinic.test")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepo_UpdateDropsProfileWhenNil(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	id := seedVet(t, repo, "bob@clinic.test", "VET-100")

	current, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	current.Role = user.RoleStaff
	current.Profile = nil
	require.NoError(t, repo.Update(ctx, current))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, user.RoleStaff, got.Role)
	assert.Nil(t, got.Profile)

	// License is free for reuse after the transition.
	owner, err := repo.GetByLicense(ctx, "VET-100")
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestUserRepo_UpdateCreatesProfileOnPromotion(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	id := seedStaff(t, repo, "alice@clinic.test")

	current, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	current.Role = user.RoleVeterinarian
	current.Profile = &user.VeterinarianProfile{LicenseNumber: "VET-200", Experience: intPtr(2)}
	require.NoError(t, repo.Update(ctx, current))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, user.RoleVeterinarian, got.Role)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "VET-200", got.Profile.LicenseNumber)
}

func TestUserRepo_UpdateMergesProfileFields(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	id := seedVet(t, repo, "bob@clinic.test", "VET-100")

	current, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	current.Profile.Experience = intPtr(9)
	require.NoError(t, repo.Update(ctx, current))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, 9, *got.Profile.Experience)
	assert.Equal(t, "VET-100", got.Profile.LicenseNumber)
}

func TestUserRepo_UpdateNotFound(t *testing.T) {
	repo := newUserRepo(t)

	err := repo.Update(context.Background(), &user.User{ID: 4242, Role: user.RoleStaff})

	var nerr *pkgerrors.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestUserRepo_DeleteCascadesProfile(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	id := seedVet(t, repo, "bob@clinic.test", "VET-100")

	_, err := repo.Delete(ctx, id)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, id)
	var nerr *pkgerrors.NotFoundError
	require.ErrorAs(t, err, &nerr)

	// The profile row must be gone with the user row.
	owner, err := repo.GetByLicense(ctx, "VET-100")
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestUserRepo_GetByEmailMissingReturnsNil(t *testing.T) {
	repo := newUserRepo(t)

	u, err := repo.GetByEmail(context.Background(), "nobody@clinic.test")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepo_UpdatePasswordNotFound(t *testing.T) {
	repo := newUserRepo(t)

	err := repo.UpdatePassword(context.Background(), 4242, "newhash")

	var nerr *pkgerrors.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestUserRepo_ListSearchesNameAndEmail(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	seedStaff(t, repo, "alice@clinic.test")
	seedVet(t, repo, "bob@clinic.test", "VET-100")

	users, err := repo.List(ctx, "bob", 1, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob@clinic.test", users[0].Email)
	require.NotNil(t, users[0].Profile)

	all, err := repo.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUserRepo_ListTreatsWildcardsLiterally(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	seedStaff(t, repo, "anna_b@clinic.test")
	seedStaff(t, repo, "annaxb@clinic.test")

	// The underscore in the query must match only a literal underscore,
	// never act as a single-character wildcard.
	users, err := repo.List(ctx, "anna_b", 1, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "anna_b@clinic.test", users[0].Email)
}

func TestUserRepo_ListRejectsDangerousQuery(t *testing.T) {
	repo := newUserRepo(t)

	_, err := repo.List(context.Background(), "name'; DROP TABLE users;--", 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid search query")
}
