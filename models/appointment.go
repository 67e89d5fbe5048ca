package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment statuses. Only COMPLETED appointments can be invoiced.
const (
	AppointmentScheduled = "SCHEDULED"
	AppointmentCompleted = "COMPLETED"
	AppointmentCancelled = "CANCELLED"
	AppointmentNoShow    = "NO_SHOW"
)

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	PatientID uuid.UUID `gorm:"type:uuid;index;not null"`
	DoctorID  uuid.UUID `gorm:"type:uuid;index;not null"`

	ScheduledAt time.Time `gorm:"not null"`
	Reason      string
	Status      string `gorm:"type:varchar(20);not null;default:'SCHEDULED'"`

	// Whether an appointment already has an invoice is answered by querying
	// invoices on appointment_id; the appointment row carries no back-pointer.

	ReminderSent bool `gorm:"default:false"`

	gorm.Model
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
