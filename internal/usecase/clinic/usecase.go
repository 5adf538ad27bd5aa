package clinic

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"vet-clinic-service/internal/adapter/blob"
	domain "vet-clinic-service/internal/domain/clinic"
	userdomain "vet-clinic-service/internal/domain/user"
	"vet-clinic-service/internal/usecase/profile"
	pkgerrors "vet-clinic-service/pkg/errors"
)

// Repository defines the interface for clinic data access operations.
type Repository interface {
	CreateOwner(ctx context.Context, o *domain.Owner) (int64, error)
	GetOwnerByID(ctx context.Context, id int64) (*domain.Owner, error)
	GetOwnerByEmail(ctx context.Context, email string) (*domain.Owner, error)
	UpdateOwner(ctx context.Context, o *domain.Owner) error
	DeleteOwner(ctx context.Context, id int64) error
	ListOwners(ctx context.Context) ([]domain.Owner, error)

	CreatePetType(ctx context.Context, t *domain.PetType) (int64, error)
	GetPetTypeByID(ctx context.Context, id int64) (*domain.PetType, error)
	UpdatePetType(ctx context.Context, t *domain.PetType) error
	DeletePetType(ctx context.Context, id int64) error
	ListPetTypes(ctx context.Context) ([]domain.PetType, error)

	CreatePet(ctx context.Context, p *domain.Pet) (int64, error)
	GetPetByID(ctx context.Context, id int64) (*domain.Pet, error)
	UpdatePet(ctx context.Context, p *domain.Pet) error
	DeletePet(ctx context.Context, id int64) error
	ListPets(ctx context.Context) ([]domain.Pet, error)

	CreateAppointment(ctx context.Context, a *domain.Appointment) (int64, error)
	GetAppointmentByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateAppointment(ctx context.Context, a *domain.Appointment) error
	DeleteAppointment(ctx context.Context, id int64) error
	ListAppointments(ctx context.Context) ([]domain.Appointment, error)

	CreateRecord(ctx context.Context, r *domain.MedicalRecord) (int64, error)
	GetRecordByID(ctx context.Context, id int64) (*domain.MedicalRecord, error)
	UpdateRecord(ctx context.Context, r *domain.MedicalRecord) error
	DeleteRecord(ctx context.Context, id int64) error
	ListRecords(ctx context.Context) ([]domain.MedicalRecord, error)
}

// Service implements the clinic CRUD flows: owners, pet types, pets with
// their image lifecycle, appointments, and medical records. Foreign keys to
// users are resolved through the profile repository.
type Service struct {
	repo      Repository
	users     profile.Repository
	blobs     blob.Store
	petFolder string
	log       *zap.Logger
	validate  *validator.Validate
}

// New creates a new clinic Service. petFolder is the blob store namespace
// for pet images.
func New(repo Repository, users profile.Repository, blobs blob.Store, petFolder string, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		blobs:     blobs,
		petFolder: petFolder,
		log:       log,
		validate:  validator.New(),
	}
}

func (s *Service) validateStruct(in any) error {
	if err := s.validate.Struct(in); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			return pkgerrors.NewValidationError("", err.Error())
		}
		return err
	}
	return nil
}

// requireVet checks that the referenced user exists and holds the
// VETERINARIAN role.
func (s *Service) requireVet(ctx context.Context, userID int64) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role != userdomain.RoleVeterinarian {
		return pkgerrors.NewValidationError("vet_user_id", fmt.Sprintf("user %d is not a veterinarian", userID))
	}
	return nil
}

// ---- owners ----

// CreateOwner registers a new pet owner.
func (s *Service) CreateOwner(ctx context.Context, in CreateOwnerRequest) (*OwnerResponse, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetOwnerByEmail(ctx, in.Email); err != nil {
		return nil, pkgerrors.NewInternalError("failed to validate owner email", err)
	} else if existing != nil {
		return nil, pkgerrors.NewConflictError("owner", "owner email already in use")
	}

	id, err := s.repo.CreateOwner(ctx, &domain.Owner{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	})
	if err != nil {
		s.log.Error("failed to create owner", zap.Error(err))
		return nil, err
	}
	return s.ownerByID(ctx, id)
}

// UpdateOwner applies partial owner field changes.
func (s *Service) UpdateOwner(ctx context.Context, id int64, in UpdateOwnerRequest) (*OwnerResponse, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	current, err := s.repo.GetOwnerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != current.Email {
		existing, err := s.repo.GetOwnerByEmail(ctx, *in.Email)
		if err != nil {
			return nil, pkgerrors.NewInternalError("failed to validate owner email", err)
		}
		if existing != nil && existing.ID != id {
			return nil, pkgerrors.NewConflictError("owner", "owner email already in use")
		}
	}

	updated := *current
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

	if err := s.repo.UpdateOwner(ctx, &updated); err != nil {
		return nil, err
	}
	return s.ownerByID(ctx, id)
}

// GetOwner retrieves an owner by ID.
func (s *Service) GetOwner(ctx context.Context, id int64) (*OwnerResponse, error) {
	return s.ownerByID(ctx, id)
}

// DeleteOwner removes an owner.
func (s *Service) DeleteOwner(ctx context.Context, id int64) error {
	return s.repo.DeleteOwner(ctx, id)
}

// ListOwners retrieves all owners.
func (s *Service) ListOwners(ctx context.Context) ([]OwnerResponse, error) {
	owners, err := s.repo.ListOwners(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OwnerResponse, len(owners))
	for i := range owners {
		out[i] = *ownerResponse(&owners[i])
	}
	return out, nil
}

// ---- pet types ----

// CreatePetType creates a new pet type.
func (s *Service) CreatePetType(ctx context.Context, in CreatePetTypeRequest) (*PetTypeResponse, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	id, err := s.repo.CreatePetType(ctx, &domain.PetType{TypeName: in.TypeName})
	if err != nil {
		return nil, err
	}
	return s.petTypeByID(ctx, id)
}

// UpdatePetType renames a pet type.
func (s *Service) UpdatePetType(ctx context.Context, id int64, in CreatePetTypeRequest) (*PetTypeResponse, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePetType(ctx, &domain.PetType{ID: id, TypeName: in.TypeName}); err != nil {
		return nil, err
	}
	return s.petTypeByID(ctx, id)
}

// GetPetType retrieves a pet type by ID.
func (s *Service) GetPetType(ctx context.Context, id int64) (*PetTypeResponse, error) {
	return s.petTypeByID(ctx, id)
}

// DeletePetType removes a pet type.
func (s *Service) DeletePetType(ctx context.Context, id int64) error {
	return s.repo.DeletePetType(ctx, id)
}

// ListPetTypes retrieves all pet types.
func (s *Service) ListPetTypes(ctx context.Context) ([]PetTypeResponse, error) {
	types, err := s.repo.ListPetTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PetTypeResponse, len(types))
	for i := range types {
		out[i] = *petTypeResponse(&types[i])
	}
	return out, nil
}

// ---- pets ----

// CreatePet registers a pet for an owner. When an image is supplied it is
// uploaded before the database write so a blob failure aborts the creation.
func (s *Service) CreatePet(ctx context.Context, in CreatePetRequest, image *ImageUpload) (*PetResponse, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetOwnerByID(ctx, in.OwnerID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetPetTypeByID(ctx, in.TypeID); err != nil {
		return nil, err
	}

	var imageURL string
	if image != nil {
		url, err := s.blobs.Upload(ctx, image.Reader, s.petFolder)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	id, err := s.repo.CreatePet(ctx, &domain.Pet{
		Name:      in.Name,
		OwnerID:   in.OwnerID,
		TypeID:    in.TypeID,
		BirthDate: in.BirthDate,
		Gender:    in.Gender,
		ImageURL:  imageURL,
	})
	if err != nil {
		s.log.Error("failed to create pet", zap.Error(err))
		return nil, err
	}
	return s.petByID(ctx, id)
}

// UpdatePet applies partial pet field changes plus the image lifecycle
// (remove, replace, or keep). Old-blob deletion is best-effort; new-blob
// upload failure aborts the update.
func (s *Service) UpdatePet(ctx context.Context, id int64, in UpdatePetRequest, image *ImageUpload, removeImage bool) (*PetResponse, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	current, err := s.repo.GetPetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.OwnerID != nil {
		if _, err := s.repo.GetOwnerByID(ctx, *in.OwnerID); err != nil {
			return nil, err
		}
	}
	if in.TypeID != nil {
		if _, err := s.repo.GetPetTypeByID(ctx, *in.TypeID); err != nil {
			return nil, err
		}
	}

	imageURL := current.ImageURL
	switch {
	case removeImage:
		if imageURL != "" {
			if err := s.blobs.Delete(ctx, imageURL); err != nil {
				s.log.Warn("failed to delete pet image blob, continuing", zap.String("locator", imageURL), zap.Error(err))
			}
		}
		imageURL = ""
	case image != nil:
		if imageURL != "" {
			if err := s.blobs.Delete(ctx, imageURL); err != nil {
				s.log.Warn("failed to delete old pet image blob, continuing", zap.String("locator", imageURL), zap.Error(err))
			}
		}
		url, err := s.blobs.Upload(ctx, image.Reader, s.petFolder)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	updated := *current
	updated.ImageURL = imageURL
	if in.Name != nil {
		updated.Name = *in.Name
	}
	if in.OwnerID != nil {
		updated.OwnerID = *in.OwnerID
	}
	if in.TypeID != nil {
		updated.TypeID = *in.TypeID
	}
	if in.BirthDate != nil {
		updated.BirthDate = in.BirthDate
	}
	if in.Gender != nil {
		updated.Gender = *in.Gender
	}

	if err := s.repo.UpdatePet(ctx, &updated); err != nil {
		return nil, err
	}
	return s.petByID(ctx, id)
}

// GetPet retrieves a pet by ID.
func (s *Service) GetPet(ctx context.Context, id int64) (*PetResponse, error) {
	return s.petByID(ctx, id)
}

// DeletePet removes a pet and best-effort cleans up its image blob.
func (s *Service) DeletePet(ctx context.Context, id int64) error {
	p, err := s.repo.GetPetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePet(ctx, id); err != nil {
		return err
	}
	if p.ImageURL != "" {
		if err := s.blobs.Delete(ctx, p.ImageURL); err != nil {
			s.log.Warn("failed to delete pet image blob after deletion", zap.String("locator", p.ImageURL), zap.Error(err))
		}
	}
	return nil
}

// ListPets retrieves all pets.
func (s *Service) ListPets(ctx context.Context) ([]PetResponse, error) {
	pets, err := s.repo.ListPets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PetResponse, len(pets))
	for i := range pets {
		out[i] = *petResponse(&pets[i])
	}
	return out, nil
}

// ---- appointments ----

// CreateAppointment books a visit after validating the pet and vet
// references. New appointments start in SCHEDULED state.
func (s *Service) CreateAppointment(ctx context.Context, in CreateAppointmentRequest) (*AppointmentResponse, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetPetByID(ctx, in.PetID); err != nil {
		return nil, err
	}
	if err := s.requireVet(ctx, in.VetUserID); err != nil {
		return nil, err
	}

	id, err := s.repo.CreateAppointment(ctx, &domain.Appointment{
		PetID:       in.PetID,
		VetUserID:   in.VetUserID,
		ScheduledAt: in.ScheduledAt,
		Status:      domain.AppointmentScheduled,
		Reason:      in.Reason,
	})
	if err != nil {
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, err
	}
	return s.appointmentByID(ctx, id)
}

// UpdateAppointment applies partial appointment changes, validating any
// changed references and the status value.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, in UpdateAppointmentRequest) (*AppointmentResponse, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	current, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.PetID != nil {
		if _, err := s.repo.GetPetByID(ctx, *in.PetID); err != nil {
			return nil, err
		}
	}
	if in.VetUserID != nil {
		if err := s.requireVet(ctx, *in.VetUserID); err != nil {
			return nil, err
		}
	}
	if in.RecordID != nil {
		if _, err := s.repo.GetRecordByID(ctx, *in.RecordID); err != nil {
			return nil, err
		}
	}

	updated := *current
	if in.PetID != nil {
		updated.PetID = *in.PetID
	}
	if in.VetUserID != nil {
		updated.VetUserID = *in.VetUserID
	}
	if in.RecordID != nil {
		updated.RecordID = in.RecordID
	}
	if in.ScheduledAt != nil {
		updated.ScheduledAt = *in.ScheduledAt
	}
	if in.Status != nil {
		status := domain.AppointmentStatus(*in.Status)
		if !status.Valid() {
			return nil, pkgerrors.NewValidationError("status", fmt.Sprintf("unknown status %q", *in.Status))
		}
		updated.Status = status
	}
	if in.Reason != nil {
		updated.Reason = *in.Reason
	}

	if err := s.repo.UpdateAppointment(ctx, &updated); err != nil {
		return nil, err
	}
	return s.appointmentByID(ctx, id)
}

// GetAppointment retrieves an appointment by ID.
func (s *Service) GetAppointment(ctx context.Context, id int64) (*AppointmentResponse, error) {
	return s.appointmentByID(ctx, id)
}

// DeleteAppointment removes an appointment.
func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	return s.repo.DeleteAppointment(ctx, id)
}

// ListAppointments retrieves all appointments.
func (s *Service) ListAppointments(ctx context.Context) ([]AppointmentResponse, error) {
	appts, err := s.repo.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AppointmentResponse, len(appts))
	for i := range appts {
		out[i] = *appointmentResponse(&appts[i])
	}
	return out, nil
}

// ---- medical records ----

// CreateRecord writes a medical record after validating the pet and vet
// references.
func (s *Service) CreateRecord(ctx context.Context, in CreateRecordRequest) (*RecordResponse, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetPetByID(ctx, in.PetID); err != nil {
		return nil, err
	}
	if err := s.requireVet(ctx, in.VetUserID); err != nil {
		return nil, err
	}

	id, err := s.repo.CreateRecord(ctx, &domain.MedicalRecord{
		PetID:     in.PetID,
		VetUserID: in.VetUserID,
		VisitDate: in.VisitDate,
		Diagnosis: in.Diagnosis,
		Treatment: in.Treatment,
		Notes:     in.Notes,
	})
	if err != nil {
		s.log.Error("failed to create medical record", zap.Error(err))
		return nil, err
	}
	return s.recordByID(ctx, id)
}

// UpdateRecord applies partial medical record changes.
func (s *Service) UpdateRecord(ctx context.Context, id int64, in UpdateRecordRequest) (*RecordResponse, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	current, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if in.VisitDate != nil {
		updated.VisitDate = *in.VisitDate
	}
	if in.Diagnosis != nil {
		updated.Diagnosis = *in.Diagnosis
	}
	if in.Treatment != nil {
		updated.Treatment = *in.Treatment
	}
	if in.Notes != nil {
		updated.Notes = *in.Notes
	}

	if err := s.repo.UpdateRecord(ctx, &updated); err != nil {
		return nil, err
	}
	return s.recordByID(ctx, id)
}

// GetRecord retrieves a medical record by ID.
func (s *Service) GetRecord(ctx context.Context, id int64) (*RecordResponse, error) {
	return s.recordByID(ctx, id)
}

// DeleteRecord removes a medical record along with the appointments that
// reference it.
func (s *Service) DeleteRecord(ctx context.Context, id int64) error {
	return s.repo.DeleteRecord(ctx, id)
}

// ListRecords retrieves all medical records.
func (s *Service) ListRecords(ctx context.Context) ([]RecordResponse, error) {
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RecordResponse, len(records))
	for i := range records {
		out[i] = *recordResponse(&records[i])
	}
	return out, nil
}

// ---- response views ----

func (s *Service) ownerByID(ctx context.Context, id int64) (*OwnerResponse, error) {
	o, err := s.repo.GetOwnerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ownerResponse(o), nil
}

func (s *Service) petTypeByID(ctx context.Context, id int64) (*PetTypeResponse, error) {
	t, err := s.repo.GetPetTypeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return petTypeResponse(t), nil
}

func (s *Service) petByID(ctx context.Context, id int64) (*PetResponse, error) {
	p, err := s.repo.GetPetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return petResponse(p), nil
}

func (s *Service) appointmentByID(ctx context.Context, id int64) (*AppointmentResponse, error) {
	a, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return appointmentResponse(a), nil
}

func (s *Service) recordByID(ctx context.Context, id int64) (*RecordResponse, error) {
	rec, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordResponse(rec), nil
}

func ownerResponse(o *domain.Owner) *OwnerResponse {
	return &OwnerResponse{
		ID:        o.ID,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Email:     o.Email,
		Phone:     o.Phone,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func petTypeResponse(t *domain.PetType) *PetTypeResponse {
	return &PetTypeResponse{ID: t.ID, TypeName: t.TypeName}
}

func petResponse(p *domain.Pet) *PetResponse {
	return &PetResponse{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		TypeID:    p.TypeID,
		BirthDate: p.BirthDate,
		Gender:    p.Gender,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func appointmentResponse(a *domain.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:          a.ID,
		PetID:       a.PetID,
		VetUserID:   a.VetUserID,
		RecordID:    a.RecordID,
		ScheduledAt: a.ScheduledAt,
		Status:      string(a.Status),
		Reason:      a.Reason,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func recordResponse(rec *domain.MedicalRecord) *RecordResponse {
	return &RecordResponse{
		ID:        rec.ID,
		PetID:     rec.PetID,
		VetUserID: rec.VetUserID,
		VisitDate: rec.VisitDate,
		Diagnosis: rec.Diagnosis,
		Treatment: rec.Treatment,
		Notes:     rec.Notes,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
