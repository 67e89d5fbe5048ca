package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Patient struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`

	Name     string `gorm:"not null"`
	Phone    string `gorm:"not null;uniqueIndex"`
	Email    string
	Birthday *time.Time
	Notes    string
	IsActive bool `gorm:"default:true"`

	Appointments []Appointment `gorm:"foreignKey:PatientID"`

	gorm.Model
}

func (p *Patient) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
