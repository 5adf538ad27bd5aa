package user

import "time"

// Role is the access tier of a user account.
type Role string

const (
	RoleStaff        Role = "STAFF"
	RoleAdmin        Role = "ADMIN"
	RoleVeterinarian Role = "VETERINARIAN"
)

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleAdmin, RoleVeterinarian:
		return true
	}
	return false
}

// User represents a staff account in the clinic. Profile is non-nil
// exactly when Role is RoleVeterinarian; the profile service is the single
// authority for that transition.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string // unique across all users
	PasswordHash string // bcrypt hash, never exposed outside the service
	Phone        string
	Role         Role
	ImageURL     string // blob store locator, empty when no image is set
	Profile      *VeterinarianProfile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VeterinarianProfile is the role-specific extension record owned by a
// VETERINARIAN user. It cannot outlive the owning user's role.
type VeterinarianProfile struct {
	ID            int64
	UserID        int64
	LicenseNumber string // unique across all profiles
	Experience    *int   // years, optional, non-negative
	Education     *string
}
