package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vet-clinic-service/internal/usecase/clinic"
	pkgerrors "vet-clinic-service/pkg/errors"
)

// RecordHandler exposes the medical record endpoints.
type RecordHandler struct {
	uc  clinic.Usecase
	log *zap.Logger
}

// NewRecordHandler creates a new medical record handler.
func NewRecordHandler(uc clinic.Usecase, log *zap.Logger) *RecordHandler {
	return &RecordHandler{uc: uc, log: log}
}

type createRecordBody struct {
	PetID     int64     `json:"pet_id"`
	VetUserID int64     `json:"vet_user_id"`
	VisitDate time.Time `json:"visit_date"`
	Diagnosis string    `json:"diagnosis"`
	Treatment string    `json:"treatment"`
	Notes     string    `json:"notes"`
}

type updateRecordBody struct {
	VisitDate *time.Time `json:"visit_date"`
	Diagnosis *string    `json:"diagnosis"`
	Treatment *string    `json:"treatment"`
	Notes     *string    `json:"notes"`
}

// Create handles POST /v1/records.
func (h *RecordHandler) Create(c *gin.Context) {
	var body createRecordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	rec, err := h.uc.CreateRecord(c.Request.Context(), clinic.CreateRecordRequest{
		PetID:     body.PetID,
		VetUserID: body.VetUserID,
		VisitDate: body.VisitDate,
		Diagnosis: body.Diagnosis,
		Treatment: body.Treatment,
		Notes:     body.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// Update handles PUT /v1/records/:id.
func (h *RecordHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var body updateRecordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, pkgerrors.NewValidationError("", err.Error()))
		return
	}

	rec, err := h.uc.UpdateRecord(c.Request.Context(), id, clinic.UpdateRecordRequest{
		VisitDate: body.VisitDate,
		Diagnosis: body.Diagnosis,
		Treatment: body.Treatment,
		Notes:     body.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Get handles GET /v1/records/:id.
func (h *RecordHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	rec, err := h.uc.GetRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// List handles GET /v1/records.
func (h *RecordHandler) List(c *gin.Context) {
	recs, err := h.uc.ListRecords(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// Delete handles DELETE /v1/records/:id. Appointments referencing the
// record are removed in the same transaction.
func (h *RecordHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.uc.DeleteRecord(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "record deleted"})
}
