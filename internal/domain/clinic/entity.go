package clinic

import "time"

// Owner represents a pet owner registered with the clinic.
type Owner struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string // unique across all owners
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PetType is a species/category label for pets (dog, cat, ...).
type PetType struct {
	ID       int64
	TypeName string
}

// Pet represents an animal belonging to an owner.
type Pet struct {
	ID        int64
	Name      string
	OwnerID   int64
	TypeID    int64
	BirthDate *time.Time
	Gender    string
	ImageURL  string // blob store locator, empty when no image is set
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// Valid reports whether the status is one of the known states.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Appointment is a scheduled visit for a pet with a veterinarian. RecordID
// links the appointment to the medical record written during the visit.
type Appointment struct {
	ID          int64
	PetID       int64
	VetUserID   int64
	RecordID    *int64
	ScheduledAt time.Time
	Status      AppointmentStatus
	Reason      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MedicalRecord documents a veterinarian's findings for a single visit.
type MedicalRecord struct {
	ID        int64
	PetID     int64
	VetUserID int64
	VisitDate time.Time
	Diagnosis string
	Treatment string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
