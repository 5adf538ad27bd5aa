package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vet-clinic-service/internal/usecase/clinic"
	pkgerrors "vet-clinic-service/pkg/errors"
)

// AppointmentHandler exposes the appointment endpoints.
type AppointmentHandler struct {
	uc  clinic.Usecase
	log *zap.Logger
}

// NewAppointmentHandler creates a new appointment handler.
func NewAppointmentHandler(uc clinic.Usecase, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{uc: uc, log: log}
}

type createAppointmentBody struct {
	PetID       int64     `json:"pet_id"`
	VetUserID   int64     `json:"vet_user_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason"`
}

type updateAppointmentBody struct {
	PetID       *int64     `json:"pet_id"`
	VetUserID   *int64     `json:"vet_user_id"`
	RecordID    *int64     `json:"record_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Status      *string    `json:"status"`
	Reason      *string    `json:"reason"`
}

// Create handles POST /v1/appointments.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var body createAppointmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	appt, err := h.uc.CreateAppointment(c.Request.Context(), clinic.CreateAppointmentRequest{
		PetID:       body.PetID,
		VetUserID:   body.VetUserID,
		ScheduledAt: body.ScheduledAt,
		Reason:      body.Reason,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, appt)
}

// Update handles PUT /v1/appointments/:id.
func (h *AppointmentHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var body updateAppointmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	appt, err := h.uc.UpdateAppointment(c.Request.Context(), id, clinic.UpdateAppointmentRequest{
		PetID:       body.PetID,
		VetUserID:   body.VetUserID,
		RecordID:    body.RecordID,
		ScheduledAt: body.ScheduledAt,
		Status:      body.Status,
		Reason:      body.Reason,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// Get handles GET /v1/appointments/:id.
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	appt, err := h.uc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// List handles GET /v1/appointments.
func (h *AppointmentHandler) List(c *gin.Context) {
	appts, err := h.uc.ListAppointments(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// Delete handles DELETE /v1/appointments/:id.
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.uc.DeleteAppointment(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "appointment deleted"})
}
