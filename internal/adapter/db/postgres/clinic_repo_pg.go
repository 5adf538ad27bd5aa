package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vet-clinic-service/internal/domain/clinic"
	pkgerrors "vet-clinic-service/pkg/errors"
)

// ClinicRepoPG implements the clinic repository interface using PostgreSQL
// and GORM. It covers owners, pet types, pets, appointments and medical
// records.
type ClinicRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewClinicRepoPG creates a new instance of ClinicRepoPG.
func NewClinicRepoPG(db *gorm.DB, log *zap.Logger) *ClinicRepoPG {
	return &ClinicRepoPG{db: db, log: log}
}

// OwnerSchema represents the database schema for the owners table.
type OwnerSchema struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	Email     string `gorm:"not null;uniqueIndex"`
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the OwnerSchema model.
func (OwnerSchema) TableName() string {
	return "owners"
}

// PetTypeSchema represents the database schema for the pet_types table.
type PetTypeSchema struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	TypeName string `gorm:"not null"`
}

// TableName specifies the table name for the PetTypeSchema model.
func (PetTypeSchema) TableName() string {
	return "pet_types"
}

// PetSchema represents the database schema for the pets table. Referential
// integrity of the owner and type columns is enforced by the database, so a
// write that slips past the service checks cannot leave a dangling reference.
type PetSchema struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null"`
	OwnerID   int64  `gorm:"not null;index"`
	TypeID    int64  `gorm:"not null"`
	BirthDate *time.Time
	Gender    string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time

	Owner *OwnerSchema   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Type  *PetTypeSchema `gorm:"foreignKey:TypeID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for the PetSchema model.
func (PetSchema) TableName() string {
	return "pets"
}

// AppointmentSchema represents the database schema for the appointments table.
type AppointmentSchema struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	PetID       int64 `gorm:"not null;index"`
	VetUserID   int64 `gorm:"not null;index"`
	RecordID    *int64
	ScheduledAt time.Time `gorm:"not null"`
	Status      string    `gorm:"not null"`
	Reason      string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Pet    *PetSchema           `gorm:"foreignKey:PetID;constraint:OnDelete:CASCADE"`
	Vet    *UserSchema          `gorm:"foreignKey:VetUserID;constraint:OnDelete:CASCADE"`
	Record *MedicalRecordSchema `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the AppointmentSchema model.
func (AppointmentSchema) TableName() string {
	return "appointments"
}

// MedicalRecordSchema represents the database schema for the medical_records
// table.
type MedicalRecordSchema struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	PetID     int64     `gorm:"not null;index"`
	VetUserID int64     `gorm:"not null;index"`
	VisitDate time.Time `gorm:"not null"`
	Diagnosis string
	Treatment string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time

	Pet *PetSchema  `gorm:"foreignKey:PetID;constraint:OnDelete:CASCADE"`
	Vet *UserSchema `gorm:"foreignKey:VetUserID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the MedicalRecordSchema model.
func (MedicalRecordSchema) TableName() string {
	return "medical_records"
}

// ---- owners ----

// CreateOwner inserts a new owner.
func (r *ClinicRepoPG) CreateOwner(ctx context.Context, o *clinic.Owner) (int64, error) {
	model := OwnerSchema{
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Email:     o.Email,
		Phone:     o.Phone,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create owner in db", zap.Error(err), zap.String("email", o.Email))
		return 0, mapWriteError(err, "owner")
	}
	return model.ID, nil
}

// GetOwnerByID retrieves an owner by ID.
func (r *ClinicRepoPG) GetOwnerByID(ctx context.Context, id int64) (*clinic.Owner, error) {
	var model OwnerSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("owner", fmt.Sprintf("owner not found: id=%d", id))
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return ownerToDomain(&model), nil
}

// GetOwnerByEmail retrieves an owner by email. Returns nil without error
// when no owner has the email.
func (r *ClinicRepoPG) GetOwnerByEmail(ctx context.Context, email string) (*clinic.Owner, error) {
	var model OwnerSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get owner by email: %w", err)
	}
	return ownerToDomain(&model), nil
}

// UpdateOwner persists owner field changes.
func (r *ClinicRepoPG) UpdateOwner(ctx context.Context, o *clinic.Owner) error {
	res := r.db.WithContext(ctx).Model(&OwnerSchema{}).Where("id = ?", o.ID).Updates(map[string]any{
		"first_name": o.FirstName,
		"last_name":  o.LastName,
		"email":      o.Email,
		"phone":      o.Phone,
	})
	if res.Error != nil {
		return mapWriteError(res.Error, "owner")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("owner", fmt.Sprintf("owner not found: id=%d", o.ID))
	}
	return nil
}

// DeleteOwner removes an owner by ID.
func (r *ClinicRepoPG) DeleteOwner(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&OwnerSchema{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete owner: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("owner", fmt.Sprintf("owner not found: id=%d", id))
	}
	return nil
}

// ListOwners retrieves all owners ordered by ID.
func (r *ClinicRepoPG) ListOwners(ctx context.Context) ([]clinic.Owner, error) {
	var models []OwnerSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	owners := make([]clinic.Owner, len(models))
	for i := range models {
		owners[i] = *ownerToDomain(&models[i])
	}
	return owners, nil
}

func ownerToDomain(m *OwnerSchema) *clinic.Owner {
	return &clinic.Owner{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ---- pet types ----

// CreatePetType inserts a new pet type.
func (r *ClinicRepoPG) CreatePetType(ctx context.Context, t *clinic.PetType) (int64, error) {
	model := PetTypeSchema{TypeName: t.TypeName}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, fmt.Errorf("failed to create pet type: %w", err)
	}
	return model.ID, nil
}

// GetPetTypeByID retrieves a pet type by ID.
func (r *ClinicRepoPG) GetPetTypeByID(ctx context.Context, id int64) (*clinic.PetType, error) {
	var model PetTypeSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("pet type", fmt.Sprintf("pet type not found: id=%d", id))
		}
		return nil, fmt.Errorf("failed to get pet type: %w", err)
	}
	return &clinic.PetType{ID: model.ID, TypeName: model.TypeName}, nil
}

// UpdatePetType persists pet type field changes.
func (r *ClinicRepoPG) UpdatePetType(ctx context.Context, t *clinic.PetType) error {
	res := r.db.WithContext(ctx).Model(&PetTypeSchema{}).Where("id = ?", t.ID).
		Update("type_name", t.TypeName)
	if res.Error != nil {
		return fmt.Errorf("failed to update pet type: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("pet type", fmt.Sprintf("pet type not found: id=%d", t.ID))
	}
	return nil
}

// DeletePetType removes a pet type by ID.
func (r *ClinicRepoPG) DeletePetType(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&PetTypeSchema{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete pet type: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("pet type", fmt.Sprintf("pet type not found: id=%d", id))
	}
	return nil
}

// ListPetTypes retrieves all pet types ordered by ID.
func (r *ClinicRepoPG) ListPetTypes(ctx context.Context) ([]clinic.PetType, error) {
	var models []PetTypeSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list pet types: %w", err)
	}
	types := make([]clinic.PetType, len(models))
	for i, m := range models {
		types[i] = clinic.PetType{ID: m.ID, TypeName: m.TypeName}
	}
	return types, nil
}

// ---- pets ----

// CreatePet inserts a new pet.
func (r *ClinicRepoPG) CreatePet(ctx context.Context, p *clinic.Pet) (int64, error) {
	model := PetSchema{
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		TypeID:    p.TypeID,
		BirthDate: p.BirthDate,
		Gender:    p.Gender,
		ImageURL:  p.ImageURL,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create pet in db", zap.Error(err), zap.String("name", p.Name))
		return 0, fmt.Errorf("failed to create pet: %w", err)
	}
	return model.ID, nil
}

// GetPetByID retrieves a pet by ID.
func (r *ClinicRepoPG) GetPetByID(ctx context.Context, id int64) (*clinic.Pet, error) {
	var model PetSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("pet", fmt.Sprintf("pet not found: id=%d", id))
		}
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return petToDomain(&model), nil
}

// UpdatePet persists pet field changes.
func (r *ClinicRepoPG) UpdatePet(ctx context.Context, p *clinic.Pet) error {
	res := r.db.WithContext(ctx).Model(&PetSchema{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":       p.Name,
		"owner_id":   p.OwnerID,
		"type_id":    p.TypeID,
		"birth_date": p.BirthDate,
		"gender":     p.Gender,
		"image_url":  p.ImageURL,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update pet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("pet", fmt.Sprintf("pet not found: id=%d", p.ID))
	}
	return nil
}

// DeletePet removes a pet by ID.
func (r *ClinicRepoPG) DeletePet(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&PetSchema{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete pet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("pet", fmt.Sprintf("pet not found: id=%d", id))
	}
	return nil
}

// ListPets retrieves all pets ordered by ID.
func (r *ClinicRepoPG) ListPets(ctx context.Context) ([]clinic.Pet, error) {
	var models []PetSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	pets := make([]clinic.Pet, len(models))
	for i := range models {
		pets[i] = *petToDomain(&models[i])
	}
	return pets, nil
}

func petToDomain(m *PetSchema) *clinic.Pet {
	return &clinic.Pet{
		ID:        m.ID,
		Name:      m.Name,
		OwnerID:   m.OwnerID,
		TypeID:    m.TypeID,
		BirthDate: m.BirthDate,
		Gender:    m.Gender,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ---- appointments ----

// CreateAppointment inserts a new appointment.
func (r *ClinicRepoPG) CreateAppointment(ctx context.Context, a *clinic.Appointment) (int64, error) {
	model := AppointmentSchema{
		PetID:       a.PetID,
		VetUserID:   a.VetUserID,
		RecordID:    a.RecordID,
		ScheduledAt: a.ScheduledAt,
		Status:      string(a.Status),
		Reason:      a.Reason,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, fmt.Errorf("failed to create appointment: %w", err)
	}
	return model.ID, nil
}

// GetAppointmentByID retrieves an appointment by ID.
func (r *ClinicRepoPG) GetAppointmentByID(ctx context.Context, id int64) (*clinic.Appointment, error) {
	var model AppointmentSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("appointment", fmt.Sprintf("appointment not found: id=%d", id))
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appointmentToDomain(&model), nil
}

// UpdateAppointment persists appointment field changes.
func (r *ClinicRepoPG) UpdateAppointment(ctx context.Context, a *clinic.Appointment) error {
	res := r.db.WithContext(ctx).Model(&AppointmentSchema{}).Where("id = ?", a.ID).Updates(map[string]any{
		"pet_id":       a.PetID,
		"vet_user_id":  a.VetUserID,
		"record_id":    a.RecordID,
		"scheduled_at": a.ScheduledAt,
		"status":       string(a.Status),
		"reason":       a.Reason,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("appointment", fmt.Sprintf("appointment not found: id=%d", a.ID))
	}
	return nil
}

// DeleteAppointment removes an appointment by ID.
func (r *ClinicRepoPG) DeleteAppointment(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&AppointmentSchema{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("appointment", fmt.Sprintf("appointment not found: id=%d", id))
	}
	return nil
}

// ListAppointments retrieves all appointments ordered by scheduled time.
func (r *ClinicRepoPG) ListAppointments(ctx context.Context) ([]clinic.Appointment, error) {
	var models []AppointmentSchema
	if err := r.db.WithContext(ctx).Order("scheduled_at").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	appts := make([]clinic.Appointment, len(models))
	for i := range models {
		appts[i] = *appointmentToDomain(&models[i])
	}
	return appts, nil
}

func appointmentToDomain(m *AppointmentSchema) *clinic.Appointment {
	return &clinic.Appointment{
		ID:          m.ID,
		PetID:       m.PetID,
		VetUserID:   m.VetUserID,
		RecordID:    m.RecordID,
		ScheduledAt: m.ScheduledAt,
		Status:      clinic.AppointmentStatus(m.Status),
		Reason:      m.Reason,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ---- medical records ----

// CreateRecord inserts a new medical record.
func (r *ClinicRepoPG) CreateRecord(ctx context.Context, rec *clinic.MedicalRecord) (int64, error) {
	model := MedicalRecordSchema{
		PetID:     rec.PetID,
		VetUserID: rec.VetUserID,
		VisitDate: rec.VisitDate,
		Diagnosis: rec.Diagnosis,
		Treatment: rec.Treatment,
		Notes:     rec.Notes,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, fmt.Errorf("failed to create medical record: %w", err)
	}
	return model.ID, nil
}

// GetRecordByID retrieves a medical record by ID.
func (r *ClinicRepoPG) GetRecordByID(ctx context.Context, id int64) (*clinic.MedicalRecord, error) {
	var model MedicalRecordSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("medical record", fmt.Sprintf("medical record not found: id=%d", id))
		}
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return recordToDomain(&model), nil
}

// UpdateRecord persists medical record field changes.
func (r *ClinicRepoPG) UpdateRecord(ctx context.Context, rec *clinic.MedicalRecord) error {
	res := r.db.WithContext(ctx).Model(&MedicalRecordSchema{}).Where("id = ?", rec.ID).Updates(map[string]any{
		"pet_id":      rec.PetID,
		"vet_user_id": rec.VetUserID,
		"visit_date":  rec.VisitDate,
		"diagnosis":   rec.Diagnosis,
		"treatment":   rec.Treatment,
		"notes":       rec.Notes,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update medical record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("medical record", fmt.Sprintf("medical record not found: id=%d", rec.ID))
	}
	return nil
}

// DeleteRecord removes a medical record and the appointments that reference
// it in a single transaction.
func (r *ClinicRepoPG) DeleteRecord(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", id).Delete(&AppointmentSchema{}).Error; err != nil {
			return fmt.Errorf("failed to delete linked appointments: %w", err)
		}
		res := tx.Delete(&MedicalRecordSchema{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete medical record: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return pkgerrors.NewNotFoundError("medical record", fmt.Sprintf("medical record not found: id=%d", id))
		}
		return nil
	})
}

// ListRecords retrieves all medical records ordered by visit date.
func (r *ClinicRepoPG) ListRecords(ctx context.Context) ([]clinic.MedicalRecord, error) {
	var models []MedicalRecordSchema
	if err := r.db.WithContext(ctx).Order("visit_date").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	records := make([]clinic.MedicalRecord, len(models))
	for i := range models {
		records[i] = *recordToDomain(&models[i])
	}
	return records, nil
}

func recordToDomain(m *MedicalRecordSchema) *clinic.MedicalRecord {
	return &clinic.MedicalRecord{
		ID:        m.ID,
		PetID:     m.PetID,
		VetUserID: m.VetUserID,
		VisitDate: m.VisitDate,
		Diagnosis: m.Diagnosis,
		Treatment: m.Treatment,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
