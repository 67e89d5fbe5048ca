// services/invoice_service.go
package services

import (
	"errors"
	"time"

	"clinicapi-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Every line is taxed at the fixed 21% rate.
var vatRate = decimal.RequireFromString("0.21")

type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// InvoiceLineRequest is one requested line of a new invoice
type InvoiceLineRequest struct {
	ServiceID uuid.UUID `json:"serviceId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type InvoiceLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ServiceID   uuid.UUID       `json:"serviceId"`
	ServiceName string          `json:"serviceName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     string          `json:"taxRate"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	AppointmentID uuid.UUID             `json:"appointmentId"`
	Status        string                `json:"status"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxTotal      decimal.Decimal       `json:"taxTotal"`
	Total         decimal.Decimal       `json:"total"`
	IssuedAt      time.Time             `json:"issuedAt"`
	PaidAt        *time.Time            `json:"paidAt"`
	PaymentMethod string                `json:"paymentMethod"`
	Lines         []InvoiceLineResponse `json:"lines"`
}

// IssueInvoice creates the invoice for a completed appointment. The whole
// operation runs in one transaction: either the invoice and all its lines are
// written together or nothing is.
func (s *InvoiceService) IssueInvoice(appointmentID uuid.UUID, lines []InvoiceLineRequest) (*InvoiceResponse, error) {

	// Requested lines may not repeat a service. Checked before touching the
	// database so a malformed request never costs a lookup.
	if err := checkDuplicateServices(lines); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var appointment models.Appointment
	if err := tx.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("Appointment not found with id: %s", appointmentID)
		}
		return nil, err
	}

	// One invoice per appointment. The unique index on invoices.appointment_id
	// backs this check against concurrent issuance.
	var existing int64
	if err := tx.Model(&models.Invoice{}).
		Where("appointment_id = ?", appointmentID).
		Count(&existing).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if existing > 0 {
		tx.Rollback()
		return nil, Conflictf("Appointment already has an invoice")
	}

	if appointment.Status == models.AppointmentCancelled {
		tx.Rollback()
		return nil, BusinessRulef("Cannot issue invoice for cancelled appointment")
	}

	if appointment.Status != models.AppointmentCompleted {
		tx.Rollback()
		return nil, BusinessRulef("Cannot issue invoice for non-completed appointment")
	}

	// Service validation and pricing happen in the same pass, in request
	// order. The first invalid line aborts the transaction.
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	var invoiceLines []models.InvoiceLine

	for position, lineReq := range lines {
		var service models.MedicalService
		if err := tx.First(&service, "id = ?", lineReq.ServiceID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NotFoundf("Medical service not found with id: %s", lineReq.ServiceID)
			}
			return nil, err
		}

		if !service.IsActive {
			tx.Rollback()
			return nil, BusinessRulef("Medical service is not active: %s", lineReq.ServiceID)
		}

		// unitPrice is a snapshot of the service's base price
		unitPrice := service.BasePrice
		qty := decimal.NewFromInt(int64(lineReq.Quantity))

		base := unitPrice.Mul(qty)
		tax := base.Mul(vatRate)

		// Only the displayed line total is rounded here. The running sums stay
		// unrounded so many small lines cannot accumulate rounding drift.
		lineTotal := base.Add(tax).Round(2)

		invoiceLines = append(invoiceLines, models.InvoiceLine{
			Position:      position,
			ServiceID:     service.ID,
			ServiceName:   service.Name,
			Quantity:      lineReq.Quantity,
			UnitPrice:     unitPrice,
			DiscountType:  models.DiscountNone,
			DiscountValue: decimal.Zero,
			TaxRate:       models.VatRate21,
			LineTotal:     lineTotal,
		})

		subtotal = subtotal.Add(base)
		taxTotal = taxTotal.Add(tax)
	}

	// Rounded once, after the full sums. total is therefore always exactly
	// subtotal + taxTotal at two decimals, even when the rounded line totals
	// do not add up to it.
	subtotal = subtotal.Round(2)
	taxTotal = taxTotal.Round(2)

	invoice := models.Invoice{
		Status:   models.InvoicePending,
		IssuedAt: time.Now(),
		Subtotal: subtotal,
		TaxTotal: taxTotal,
		Total:    subtotal.Add(taxTotal).Round(2),
		Lines:    invoiceLines,
	}

	// The appointment link is set last, once the invoice is fully built.
	invoice.AppointmentID = appointment.ID

	// Creating the invoice cascades to its lines in the same write
	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return toInvoiceResponse(&invoice), nil
}

// PayInvoice moves a PENDING invoice to PAID, stamping the payment time and
// method. PAID is terminal; nothing transitions out of it.
func (s *InvoiceService) PayInvoice(invoiceID uuid.UUID, paymentMethod string) (*InvoiceResponse, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var invoice models.Invoice
	if err := tx.Preload("Lines", lineOrder).First(&invoice, "id = ?", invoiceID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("Invoice not found with id: %s", invoiceID)
		}
		return nil, err
	}

	if invoice.Status != models.InvoicePending {
		tx.Rollback()
		return nil, Conflictf("Invoice cannot be paid from status: %s", invoice.Status)
	}

	now := time.Now()
	invoice.Status = models.InvoicePaid
	invoice.PaidAt = &now
	invoice.PaymentMethod = paymentMethod

	if err := tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"status":         invoice.Status,
			"paid_at":        invoice.PaidAt,
			"payment_method": invoice.PaymentMethod,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return toInvoiceResponse(&invoice), nil
}

// GetInvoice returns the projection of a single invoice
func (s *InvoiceService) GetInvoice(invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var invoice models.Invoice
	if err := s.db.Preload("Lines", lineOrder).First(&invoice, "id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("Invoice not found with id: %s", invoiceID)
		}
		return nil, err
	}
	return toInvoiceResponse(&invoice), nil
}

// ListInvoices returns projections of all invoices, optionally filtered by status
func (s *InvoiceService) ListInvoices(status string) ([]*InvoiceResponse, error) {
	query := s.db.Preload("Lines", lineOrder)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var invoices []models.Invoice
	if err := query.Order("issued_at").Find(&invoices).Error; err != nil {
		return nil, err
	}

	responses := make([]*InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, toInvoiceResponse(&invoices[i]))
	}
	return responses, nil
}

// lineOrder keeps preloaded lines in the order they were requested
func lineOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func checkDuplicateServices(lines []InvoiceLineRequest) error {
	seen := make(map[uuid.UUID]bool)
	for _, line := range lines {
		if seen[line.ServiceID] {
			return BadRequestf("Duplicate medical service id in lines: %s", line.ServiceID)
		}
		seen[line.ServiceID] = true

		if line.Quantity < 1 {
			return BadRequestf("Quantity must be positive for service: %s", line.ServiceID)
		}
	}
	return nil
}

func toInvoiceResponse(inv *models.Invoice) *InvoiceResponse {
	paymentMethod := inv.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "UNPAID"
	}

	lines := make([]InvoiceLineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:          l.ID,
			ServiceID:   l.ServiceID,
			ServiceName: l.ServiceName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			LineTotal:   l.LineTotal,
		})
	}

	return &InvoiceResponse{
		ID:            inv.ID,
		AppointmentID: inv.AppointmentID,
		Status:        inv.Status,
		Subtotal:      inv.Subtotal,
		TaxTotal:      inv.TaxTotal,
		Total:         inv.Total,
		IssuedAt:      inv.IssuedAt,
		PaidAt:        inv.PaidAt,
		PaymentMethod: paymentMethod,
		Lines:         lines,
	}
}
