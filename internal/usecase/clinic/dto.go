package clinic

import (
	"io"
	"time"
)

// ImageUpload carries a validated pet image payload. The handler enforces
// content-type and size preconditions before the service is invoked.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// CreateOwnerRequest represents the payload for registering a pet owner.
type CreateOwnerRequest struct {
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
	Email     string `validate:"required,email"`
	Phone     string `validate:"omitempty,max=30"`
}

// UpdateOwnerRequest represents a partial owner update.
type UpdateOwnerRequest struct {
	FirstName *string `validate:"omitempty,min=1,max=100"`
	LastName  *string `validate:"omitempty,min=1,max=100"`
	Email     *string `validate:"omitempty,email"`
	Phone     *string `validate:"omitempty,max=30"`
}

// CreatePetTypeRequest represents the payload for creating a pet type.
type CreatePetTypeRequest struct {
	TypeName string `validate:"required,max=100"`
}

// CreatePetRequest represents the payload for registering a pet.
type CreatePetRequest struct {
	Name      string `validate:"required,max=100"`
	OwnerID   int64  `validate:"required,gt=0"`
	TypeID    int64  `validate:"required,gt=0"`
	BirthDate *time.Time
	Gender    string `validate:"omitempty,oneof=MALE FEMALE"`
}

// UpdatePetRequest represents a partial pet update.
type UpdatePetRequest struct {
	Name      *string `validate:"omitempty,min=1,max=100"`
	OwnerID   *int64  `validate:"omitempty,gt=0"`
	TypeID    *int64  `validate:"omitempty,gt=0"`
	BirthDate *time.Time
	Gender    *string `validate:"omitempty,oneof=MALE FEMALE"`
}

// CreateAppointmentRequest represents the payload for booking an appointment.
type CreateAppointmentRequest struct {
	PetID       int64     `validate:"required,gt=0"`
	VetUserID   int64     `validate:"required,gt=0"`
	ScheduledAt time.Time `validate:"required"`
	Reason      string    `validate:"omitempty,max=500"`
}

// UpdateAppointmentRequest represents a partial appointment update.
type UpdateAppointmentRequest struct {
	PetID       *int64 `validate:"omitempty,gt=0"`
	VetUserID   *int64 `validate:"omitempty,gt=0"`
	RecordID    *int64 `validate:"omitempty,gt=0"`
	ScheduledAt *time.Time
	Status      *string
	Reason      *string `validate:"omitempty,max=500"`
}

// CreateRecordRequest represents the payload for writing a medical record.
type CreateRecordRequest struct {
	PetID     int64     `validate:"required,gt=0"`
	VetUserID int64     `validate:"required,gt=0"`
	VisitDate time.Time `validate:"required"`
	Diagnosis string    `validate:"omitempty,max=2000"`
	Treatment string    `validate:"omitempty,max=2000"`
	Notes     string    `validate:"omitempty,max=2000"`
}

// UpdateRecordRequest represents a partial medical record update.
type UpdateRecordRequest struct {
	VisitDate *time.Time
	Diagnosis *string `validate:"omitempty,max=2000"`
	Treatment *string `validate:"omitempty,max=2000"`
	Notes     *string `validate:"omitempty,max=2000"`
}

// OwnerResponse is the owner representation returned to callers.
type OwnerResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PetTypeResponse is the pet type representation returned to callers.
type PetTypeResponse struct {
	ID       int64  `json:"id"`
	TypeName string `json:"type_name"`
}

// PetResponse is the pet representation returned to callers.
type PetResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	OwnerID   int64      `json:"owner_id"`
	TypeID    int64      `json:"type_id"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AppointmentResponse is the appointment representation returned to callers.
type AppointmentResponse struct {
	ID          int64     `json:"id"`
	PetID       int64     `json:"pet_id"`
	VetUserID   int64     `json:"vet_user_id"`
	RecordID    *int64    `json:"record_id,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecordResponse is the medical record representation returned to callers.
type RecordResponse struct {
	ID        int64     `json:"id"`
	PetID     int64     `json:"pet_id"`
	VetUserID int64     `json:"vet_user_id"`
	VisitDate time.Time `json:"visit_date"`
	Diagnosis string    `json:"diagnosis,omitempty"`
	Treatment string    `json:"treatment,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
