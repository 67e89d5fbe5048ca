package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice statuses. An invoice is always created PENDING; PAID is terminal.
const (
	InvoicePending = "PENDING"
	InvoicePaid    = "PAID"
)

// Payment methods accepted when paying an invoice.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
)

// Discount and tax rate are fixed for every line in this system.
const (
	DiscountNone = "NONE"
	VatRate21    = "VAT_21"
)

type Invoice struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`

	// The invoice owns the link to its appointment. The unique index is the
	// storage-level guard against two invoices for the same appointment.
	AppointmentID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	Status   string          `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Subtotal decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TaxTotal decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	IssuedAt      time.Time `gorm:"not null"`
	PaidAt        *time.Time
	PaymentMethod string

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID"`
}

type InvoiceLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID uuid.UUID `gorm:"type:uuid;index;not null"`

	// Position preserves the request order of the lines
	Position int `gorm:"not null"`

	// Snapshots taken at issuance. A later change to the medical service
	// never touches an already issued line.
	ServiceName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	DiscountType  string          `gorm:"type:varchar(20);not null;default:'NONE'"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TaxRate       string          `gorm:"type:varchar(20);not null;default:'VAT_21'"`

	LineTotal decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

func (l *InvoiceLine) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
