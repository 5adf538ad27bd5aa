package clinic

import "context"

// Usecase defines the clinic management operations exposed to transports.
type Usecase interface {
	CreateOwner(ctx context.Context, in CreateOwnerRequest) (*OwnerResponse, error)
	UpdateOwner(ctx context.Context, id int64, in UpdateOwnerRequest) (*OwnerResponse, error)
	GetOwner(ctx context.Context, id int64) (*OwnerResponse, error)
	DeleteOwner(ctx context.Context, id int64) error
	ListOwners(ctx context.Context) ([]OwnerResponse, error)

	CreatePetType(ctx context.Context, in CreatePetTypeRequest) (*PetTypeResponse, error)
	UpdatePetType(ctx context.Context, id int64, in CreatePetTypeRequest) (*PetTypeResponse, error)
	GetPetType(ctx context.Context, id int64) (*PetTypeResponse, error)
	DeletePetType(ctx context.Context, id int64) error
	ListPetTypes(ctx context.Context) ([]PetTypeResponse, error)

	CreatePet(ctx context.Context, in CreatePetRequest, image *ImageUpload) (*PetResponse, error)
	UpdatePet(ctx context.Context, id int64, in UpdatePetRequest, image *ImageUpload, removeImage bool) (*PetResponse, error)
	GetPet(ctx context.Context, id int64) (*PetResponse, error)
	DeletePet(ctx context.Context, id int64) error
	ListPets(ctx context.Context) ([]PetResponse, error)

	CreateAppointment(ctx context.Context, in CreateAppointmentRequest) (*AppointmentResponse, error)
	UpdateAppointment(ctx context.Context, id int64, in UpdateAppointmentRequest) (*AppointmentResponse, error)
	GetAppointment(ctx context.Context, id int64) (*AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, id int64) error
	ListAppointments(ctx context.Context) ([]AppointmentResponse, error)

	CreateRecord(ctx context.Context, in CreateRecordRequest) (*RecordResponse, error)
	UpdateRecord(ctx context.Context, id int64, in UpdateRecordRequest) (*RecordResponse, error)
	GetRecord(ctx context.Context, id int64) (*RecordResponse, error)
	DeleteRecord(ctx context.Context, id int64) error
	ListRecords(ctx context.Context) ([]RecordResponse, error)
}

var _ Usecase = (*Service)(nil)
