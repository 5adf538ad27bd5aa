package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vet-clinic-service/internal/usecase/clinic"
	pkgerrors "vet-clinic-service/pkg/errors"
)

// PetTypeHandler exposes the pet type endpoints.
type PetTypeHandler struct {
	uc  clinic.Usecase
	log *zap.Logger
}

// NewPetTypeHandler creates a new pet type handler.
func NewPetTypeHandler(uc clinic.Usecase, log *zap.Logger) *PetTypeHandler {
	return &PetTypeHandler{uc: uc, log: log}
}

type petTypeBody struct {
	TypeName string `json:"type_name"`
}

// Create handles POST /v1/pet-types.
func (h *PetTypeHandler) Create(c *gin.Context) {
	var body petTypeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	t, err := h.uc.CreatePetType(c.Request.Context(), clinic.CreatePetTypeRequest{TypeName: body.TypeName})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

// Update handles PUT /v1/pet-types/:id.
func (h *PetTypeHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var body petTypeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	t, err := h.uc.UpdatePetType(c.Request.Context(), id, clinic.CreatePetTypeRequest{TypeName: body.TypeName})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// Get handles GET /v1/pet-types/:id.
func (h *PetTypeHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	t, err := h.uc.GetPetType(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// List handles GET /v1/pet-types.
func (h *PetTypeHandler) List(c *gin.Context) {
	types, err := h.uc.ListPetTypes(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pet_types": types})
}

// Delete handles DELETE /v1/pet-types/:id.
func (h *PetTypeHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.uc.DeletePetType(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "pet type deleted"})
}

// PetHandler exposes the pet endpoints. Pet create and update accept
// multipart form data so an image can ride along with the payload.
type PetHandler struct {
	uc  clinic.Usecase
	log *zap.Logger
}

// NewPetHandler creates a new pet handler.
func NewPetHandler(uc clinic.Usecase, log *zap.Logger) *PetHandler {
	return &PetHandler{uc: uc, log: log}
}

type createPetForm struct {
	Name      string     `form:"name" json:"name"`
	OwnerID   int64      `form:"owner_id" json:"owner_id"`
	TypeID    int64      `form:"type_id" json:"type_id"`
	BirthDate *time.Time `form:"birth_date" json:"birth_date" time_format:"2006-01-02"`
	Gender    string     `form:"gender" json:"gender"`
}

type updatePetForm struct {
	Name      *string    `form:"name" json:"name"`
	OwnerID   *int64     `form:"owner_id" json:"owner_id"`
	TypeID    *int64     `form:"type_id" json:"type_id"`
	BirthDate *time.Time `form:"birth_date" json:"birth_date" time_format:"2006-01-02"`
	Gender    *string    `form:"gender" json:"gender"`
}

// Create handles POST /v1/pets.
func (h *PetHandler) Create(c *gin.Context) {
	var form createPetForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	image, err := extractImage(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if image != nil {
		defer image.File.Close()
	}

	pet, err := h.uc.CreatePet(c.Request.Context(), clinic.CreatePetRequest{
		Name:      form.Name,
		OwnerID:   form.OwnerID,
		TypeID:    form.TypeID,
		BirthDate: form.BirthDate,
		Gender:    form.Gender,
	}, toClinicImage(image))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, pet)
}

// Update handles PUT /v1/pets/:id.
func (h *PetHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var form updatePetForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	image, err := extractImage(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if image != nil {
		defer image.File.Close()
	}

	pet, err := h.uc.UpdatePet(c.Request.Context(), id, clinic.UpdatePetRequest{
		Name:      form.Name,
		OwnerID:   form.OwnerID,
		TypeID:    form.TypeID,
		BirthDate: form.BirthDate,
		Gender:    form.Gender,
	}, toClinicImage(image), removeImageRequested(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, pet)
}

// Get handles GET /v1/pets/:id.
func (h *PetHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	pet, err := h.uc.GetPet(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, pet)
}

// List handles GET /v1/pets.
func (h *PetHandler) List(c *gin.Context) {
	pets, err := h.uc.ListPets(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pets": pets})
}

// Delete handles DELETE /v1/pets/:id.
func (h *PetHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.uc.DeletePet(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "pet deleted"})
}

func toClinicImage(img *imagePayload) *clinic.ImageUpload {
	if img == nil {
		return nil
	}
	return &clinic.ImageUpload{
		Reader:      img.File,
		Filename:    img.Filename,
		ContentType: img.ContentType,
		Size:        img.Size,
	}
}
