// controllers/appointment.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"clinicapi-backend/config"
	"clinicapi-backend/models"
	"clinicapi-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateAppointmentInput defines the expected JSON structure for creating an appointment
type CreateAppointmentInput struct {
	PatientID   uuid.UUID `json:"patientId" binding:"required"`
	DoctorID    uuid.UUID `json:"doctorId" binding:"required"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	Reason      string    `json:"reason"`
}

// CreateAppointment schedules a new appointment
func CreateAppointment(c *gin.Context) {
	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Validate patient exists
	var patient models.Patient
	if err := config.DB.First(&patient, "id = ?", input.PatientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Patient not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Validate doctor exists
	var doctor models.Doctor
	if err := config.DB.First(&doctor, "id = ?", input.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Doctor not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	appointment := models.Appointment{
		PatientID:   input.PatientID,
		DoctorID:    input.DoctorID,
		ScheduledAt: input.ScheduledAt,
		Reason:      input.Reason,
		Status:      models.AppointmentScheduled,
	}

	if err := config.DB.Create(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

// GetAppointments retrieves all appointments, optionally filtered by status
func GetAppointments(c *gin.Context) {
	query := config.DB.Order("scheduled_at")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetAppointment retrieves a specific appointment by ID
func GetAppointment(c *gin.Context) {
	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := config.DB.First(&appointment, "id = ?", appointmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// CompleteAppointment marks a scheduled appointment as completed
func CompleteAppointment(c *gin.Context) {
	transitionAppointment(c, models.AppointmentCompleted)
}

// CancelAppointment cancels a scheduled appointment
func CancelAppointment(c *gin.Context) {
	transitionAppointment(c, models.AppointmentCancelled)
}

// MarkAppointmentNoShow records that the patient did not attend
func MarkAppointmentNoShow(c *gin.Context) {
	transitionAppointment(c, models.AppointmentNoShow)
}

// Only SCHEDULED appointments can transition; COMPLETED, CANCELLED and
// NO_SHOW are all terminal.
func transitionAppointment(c *gin.Context, target string) {
	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := config.DB.First(&appointment, "id = ?", appointmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if appointment.Status != models.AppointmentScheduled {
		utils.RespondWithError(c, http.StatusConflict,
			"Appointment cannot transition from status: "+appointment.Status)
		return
	}

	appointment.Status = target
	if err := config.DB.Save(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	c.JSON(http.StatusOK, appointment)
}
