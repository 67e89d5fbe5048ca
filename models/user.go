package models

import (
	"time"

	"clinicapi-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff roles understood by the role middleware.
const (
	RoleAdmin     = "ADMIN"
	RoleBilling   = "BILLING"
	RoleReception = "RECEPTION"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    `gorm:"not null" json:"-"`
	Name     string    `gorm:"not null"`
	Phone    string

	Role string `gorm:"type:varchar(20);not null"` // ADMIN, BILLING or RECEPTION

	LastLogin *time.Time
	IsActive  bool `gorm:"default:true"`

	gorm.Model
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
