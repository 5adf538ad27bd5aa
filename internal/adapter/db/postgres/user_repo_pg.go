package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vet-clinic-service/internal/domain/user"
	pkgerrors "vet-clinic-service/pkg/errors"
	"vet-clinic-service/pkg/security"
)

// UserRepoPG implements the profile repository interface using PostgreSQL
// and GORM.
type UserRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table. The unique
// index on Email is the final authority on email uniqueness; concurrent
// writes that pass the service pre-check are rejected here.
type UserSchema struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	Email        string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Phone        string
	Role         string `gorm:"not null"`
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Profile row is dropped by the database when the user row goes away.
	// Cascade deletion is a persistence-layer contract, not application logic.
	Profile *VeterinarianSchema `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// VeterinarianSchema represents the database schema for the veterinarians
// table. LicenseNumber carries the unique index backing license uniqueness.
type VeterinarianSchema struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	UserID        int64  `gorm:"not null;uniqueIndex"`
	LicenseNumber string `gorm:"not null;uniqueIndex"`
	Experience    *int
	Education     *string
}

// TableName specifies the table name for the VeterinarianSchema model.
func (VeterinarianSchema) TableName() string {
	return "veterinarians"
}

func toUserSchema(u *user.User) UserSchema {
	model := UserSchema{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Role:         string(u.Role),
		ImageURL:     u.ImageURL,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	return model
}

func toDomainUser(m *UserSchema) *user.User {
	u := &user.User{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Phone:        m.Phone,
		Role:         user.Role(m.Role),
		ImageURL:     m.ImageURL,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Profile != nil {
		u.Profile = &user.VeterinarianProfile{
			ID:            m.Profile.ID,
			UserID:        m.Profile.UserID,
			LicenseNumber: m.Profile.LicenseNumber,
			Experience:    m.Profile.Experience,
			Education:     m.Profile.Education,
		}
	}
	return u
}

// mapWriteError translates driver-level uniqueness violations into the
// conflict error the service layer reports to callers.
func mapWriteError(err error, resource string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.NewConflictError(resource, fmt.Sprintf("%s already exists", resource))
	}
	return err
}

// Create inserts a new user and, when present, its veterinarian profile in a
// single transaction. Either both rows are persisted or neither is.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := toUserSchema(u)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return mapWriteError(err, "user")
		}
		if u.Profile != nil {
			profile := VeterinarianSchema{
				UserID:        model.ID,
				LicenseNumber: u.Profile.LicenseNumber,
				Experience:    u.Profile.Experience,
				Education:     u.Profile.Education,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return mapWriteError(err, "license number")
			}
		}
		return nil
	})
	if err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, err
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Update persists user field changes and reconciles the veterinarian profile
// row with u.Profile in one transaction: a non-nil profile is upserted, a nil
// profile is deleted. This keeps the role/profile invariant atomic.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"first_name":    u.FirstName,
			"last_name":     u.LastName,
			"email":         u.Email,
			"password_hash": u.PasswordHash,
			"phone":         u.Phone,
			"role":          string(u.Role),
			"image_url":     u.ImageURL,
		}
		res := tx.Model(&UserSchema{}).Where("id = ?", u.ID).Updates(updates)
		if res.Error != nil {
			return mapWriteError(res.Error, "user")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", u.ID))
		}

		if u.Profile == nil {
			return tx.Where("user_id = ?", u.ID).Delete(&VeterinarianSchema{}).Error
		}

		var existing VeterinarianSchema
		err := tx.Where("user_id = ?", u.ID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile := VeterinarianSchema{
				UserID:        u.ID,
				LicenseNumber: u.Profile.LicenseNumber,
				Experience:    u.Profile.Experience,
				Education:     u.Profile.Education,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return mapWriteError(err, "license number")
			}
		case err != nil:
			return err
		default:
			existing.LicenseNumber = u.Profile.LicenseNumber
			existing.Experience = u.Profile.Experience
			existing.Education = u.Profile.Education
			if err := tx.Save(&existing).Error; err != nil {
				return mapWriteError(err, "license number")
			}
		}
		return nil
	})
	if err != nil {
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", u.ID))
		return err
	}

	r.log.Info("user updated in db", zap.Int64("id", u.ID))
	return nil
}

// UpdatePassword replaces the stored password hash and bumps the
// modification timestamp.
func (r *UserRepoPG) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", id).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now()})
	if res.Error != nil {
		r.log.Error("failed to update password in db", zap.Error(res.Error), zap.Int64("id", id))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
	}

	r.log.Info("password updated in db", zap.Int64("id", id))
	return nil
}

// Delete removes a user by ID. The veterinarian profile row is removed by
// the database's referential cascade.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, errors.New("invalid user id")
	}

	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return 0, fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return id, nil
}

// GetByID retrieves a user and its profile by unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Preload("Profile").First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toDomainUser(&model), nil
}

// GetByEmail retrieves a user by email address. Returns nil without error
// when no user has the email.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Preload("Profile").Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return toDomainUser(&model), nil
}

// GetByLicense retrieves the user owning the given license number. Returns
// nil without error when the license is unused.
func (r *UserRepoPG) GetByLicense(ctx context.Context, license string) (*user.User, error) {
	var profile VeterinarianSchema
	if err := r.db.WithContext(ctx).Where("license_number = ?", license).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get profile by license from db", zap.Error(err), zap.String("license", license))
		return nil, fmt.Errorf("failed to get profile by license: %w", err)
	}

	return r.GetByID(ctx, profile.UserID)
}

// List retrieves users with pagination and name/email search.
func (r *UserRepoPG) List(ctx context.Context, query string, page, limit int64) ([]user.User, error) {
	validated, err := security.ValidateSearchQuery(query)
	if err != nil {
		r.log.Warn("rejected search query", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("invalid search query: %w", err)
	}
	pattern := "%" + security.SanitizeSearchString(validated) + "%"

	// Explicit ESCAPE keeps the backslash-escaped wildcards literal on every
	// backend, not just the Postgres default.
	var models []UserSchema
	if err := r.db.WithContext(ctx).Preload("Profile").
		Where("first_name LIKE ? ESCAPE '\\' OR last_name LIKE ? ESCAPE '\\' OR email LIKE ? ESCAPE '\\'", pattern, pattern, pattern).
		Order("id").
		Offset(int((page - 1) * limit)).Limit(int(limit)).
		Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("query", query))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *toDomainUser(&models[i])
	}

	return users, nil
}
