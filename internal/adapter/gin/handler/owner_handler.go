package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vet-clinic-service/internal/usecase/clinic"
	pkgerrors "vet-clinic-service/pkg/errors"
)

// OwnerHandler exposes the pet owner endpoints.
type OwnerHandler struct {
	uc  clinic.Usecase
	log *zap.Logger
}

// NewOwnerHandler creates a new owner handler.
func NewOwnerHandler(uc clinic.Usecase, log *zap.Logger) *OwnerHandler {
	return &OwnerHandler{uc: uc, log: log}
}

type createOwnerBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type updateOwnerBody struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// Create handles POST /v1/owners.
func (h *OwnerHandler) Create(c *gin.Context) {
	var body createOwnerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	owner, err := h.uc.CreateOwner(c.Request.Context(), clinic.CreateOwnerRequest{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Phone:     body.Phone,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, owner)
}

// Update handles PUT /v1/owners/:id.
func (h *OwnerHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var body updateOwnerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	owner, err := h.uc.UpdateOwner(c.Request.Context(), id, clinic.UpdateOwnerRequest{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Phone:     body.Phone,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, owner)
}

// Get handles GET /v1/owners/:id.
func (h *OwnerHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	owner, err := h.uc.GetOwner(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, owner)
}

// List handles GET /v1/owners.
func (h *OwnerHandler) List(c *gin.Context) {
	owners, err := h.uc.ListOwners(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"owners": owners})
}

// Delete handles DELETE /v1/owners/:id.
func (h *OwnerHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.uc.DeleteOwner(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "owner deleted"})
}
