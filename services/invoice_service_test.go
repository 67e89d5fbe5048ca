package services

import (
	"testing"
	"time"

	"clinicapi-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Patient{},
		&models.Doctor{},
		&models.Appointment{},
		&models.MedicalService{},
		&models.Invoice{},
		&models.InvoiceLine{},
	))
	return db
}

func createAppointment(t *testing.T, db *gorm.DB, status string) models.Appointment {
	appointment := models.Appointment{
		PatientID:   uuid.New(),
		DoctorID:    uuid.New(),
		ScheduledAt: time.Now().Add(-24 * time.Hour),
		Status:      status,
	}
	require.NoError(t, db.Create(&appointment).Error)
	return appointment
}

func createMedicalService(t *testing.T, db *gorm.DB, name, price string, active bool) models.MedicalService {
	service := models.MedicalService{
		Code:      "SVC-" + uuid.NewString()[:8],
		Name:      name,
		BasePrice: decimal.RequireFromString(price),
		IsActive:  active,
	}
	require.NoError(t, db.Create(&service).Error)
	return service
}

func invoiceCount(t *testing.T, db *gorm.DB) int64 {
	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&count).Error)
	return count
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, actual.Equal(decimal.RequireFromString(expected)),
		"expected %s, got %s", expected, actual)
}

func TestIssueInvoice(t *testing.T) {
	t.Run("Valid Single Line", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		appointment := createAppointment(t, db, models.AppointmentCompleted)
		consultation := createMedicalService(t, db, "General consultation", "100.00", true)

		resp, err := svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
			{ServiceID: consultation.ID, Quantity: 2},
		})
		require.NoError(t, err)

		assert.Equal(t, appointment.ID, resp.AppointmentID)
		assert.Equal(t, models.InvoicePending, resp.Status)
		assertDecimal(t, "200.00", resp.Subtotal)
		assertDecimal(t, "42.00", resp.TaxTotal)
		assertDecimal(t, "242.00", resp.Total)
		assert.False(t, resp.IssuedAt.IsZero())
		assert.Nil(t, resp.PaidAt)
		assert.Equal(t, "UNPAID", resp.PaymentMethod)

		require.Len(t, resp.Lines, 1)
		line := resp.Lines[0]
		assert.Equal(t, consultation.ID, line.ServiceID)
		assert.Equal(t, "General consultation", line.ServiceName)
		assert.Equal(t, 2, line.Quantity)
		assertDecimal(t, "100.00", line.UnitPrice)
		assert.Equal(t, models.VatRate21, line.TaxRate)
		assertDecimal(t, "242.00", line.LineTotal)

		// Invoice and lines were persisted together
		var stored models.Invoice
		require.NoError(t, db.Preload("Lines").First(&stored, "id = ?", resp.ID).Error)
		assert.Len(t, stored.Lines, 1)
	})

	t.Run("Duplicate Service Rejected Before Lookup", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		serviceID := uuid.New()

		// Neither the appointment nor the service exists; the duplicate check
		// must fire first.
		_, err := svc.IssueInvoice(uuid.New(), []InvoiceLineRequest{
			{ServiceID: serviceID, Quantity: 1},
			{ServiceID: serviceID, Quantity: 3},
		})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindBadRequest, svcErr.Kind)
		assert.Contains(t, svcErr.Message, serviceID.String())
	})

	t.Run("Non Positive Quantity", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)

		_, err := svc.IssueInvoice(uuid.New(), []InvoiceLineRequest{
			{ServiceID: uuid.New(), Quantity: 0},
		})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindBadRequest, svcErr.Kind)
	})

	t.Run("Appointment Not Found", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		missing := uuid.New()

		_, err := svc.IssueInvoice(missing, []InvoiceLineRequest{
			{ServiceID: uuid.New(), Quantity: 1},
		})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindNotFound, svcErr.Kind)
		assert.Contains(t, svcErr.Message, missing.String())
	})

	t.Run("Already Invoiced", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		appointment := createAppointment(t, db, models.AppointmentCompleted)
		consultation := createMedicalService(t, db, "General consultation", "50.00", true)

		_, err := svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
			{ServiceID: consultation.ID, Quantity: 1},
		})
		require.NoError(t, err)

		_, err = svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
			{ServiceID: consultation.ID, Quantity: 1},
		})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindConflict, svcErr.Kind)
		assert.Equal(t, int64(1), invoiceCount(t, db))
	})

	t.Run("Cancelled Appointment", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		appointment := createAppointment(t, db, models.AppointmentCancelled)
		consultation := createMedicalService(t, db, "General consultation", "50.00", true)

		_, err := svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
			{ServiceID: consultation.ID, Quantity: 1},
		})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindBusinessRule, svcErr.Kind)
		assert.Contains(t, svcErr.Message, "cancelled")
	})

	t.Run("Not Completed Appointment", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		consultation := createMedicalService(t, db, "General consultation", "50.00", true)

		for _, status := range []string{models.AppointmentScheduled, models.AppointmentNoShow} {
			appointment := createAppointment(t, db, status)

			_, err := svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
				{ServiceID: consultation.ID, Quantity: 1},
			})

			var svcErr *ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, KindBusinessRule, svcErr.Kind)
			assert.Contains(t, svcErr.Message, "non-completed")
		}
		assert.Equal(t, int64(0), invoiceCount(t, db))
	})

	t.Run("Unknown Medical Service", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		appointment := createAppointment(t, db, models.AppointmentCompleted)
		consultation := createMedicalService(t, db, "General consultation", "50.00", true)
		missing := uuid.New()

		_, err := svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
			{ServiceID: consultation.ID, Quantity: 1},
			{ServiceID: missing, Quantity: 1},
		})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindNotFound, svcErr.Kind)
		assert.Contains(t, svcErr.Message, missing.String())

		// The first valid line must not survive the failed second one
		assert.Equal(t, int64(0), invoiceCount(t, db))
		var lineCount int64
		require.NoError(t, db.Model(&models.InvoiceLine{}).Count(&lineCount).Error)
		assert.Equal(t, int64(0), lineCount)
	})

	t.Run("Inactive Medical Service", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		appointment := createAppointment(t, db, models.AppointmentCompleted)
		retired := createMedicalService(t, db, "Retired procedure", "80.00", false)

		_, err := svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
			{ServiceID: retired.ID, Quantity: 1},
		})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindBusinessRule, svcErr.Kind)
		assert.Contains(t, svcErr.Message, retired.ID.String())
		assert.Equal(t, int64(0), invoiceCount(t, db))
	})

	t.Run("Aggregate Rounding Has No Drift", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		appointment := createAppointment(t, db, models.AppointmentCompleted)

		// Each line produces repeating decimals after tax. The aggregate is
		// rounded once at the end, so total always equals subtotal + taxTotal
		// even though the rounded line totals say otherwise.
		var lines []InvoiceLineRequest
		for i := 0; i < 3; i++ {
			s := createMedicalService(t, db, "Lab panel", "33.335", true)
			lines = append(lines, InvoiceLineRequest{ServiceID: s.ID, Quantity: 1})
		}

		resp, err := svc.IssueInvoice(appointment.ID, lines)
		require.NoError(t, err)

		assertDecimal(t, "100.01", resp.Subtotal) // 3 x 33.335 = 100.005
		assertDecimal(t, "21.00", resp.TaxTotal)  // 3 x 7.00035 = 21.00105
		assertDecimal(t, "121.01", resp.Total)
		assert.True(t, resp.Total.Equal(resp.Subtotal.Add(resp.TaxTotal)))

		lineSum := decimal.Zero
		for _, line := range resp.Lines {
			assertDecimal(t, "40.34", line.LineTotal) // 40.33535 rounded per line
			lineSum = lineSum.Add(line.LineTotal)
		}
		assertDecimal(t, "121.02", lineSum)
		assert.False(t, lineSum.Equal(resp.Total))
	})

	t.Run("Line Keeps Price Snapshot", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		appointment := createAppointment(t, db, models.AppointmentCompleted)
		consultation := createMedicalService(t, db, "General consultation", "100.00", true)

		resp, err := svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
			{ServiceID: consultation.ID, Quantity: 1},
		})
		require.NoError(t, err)

		// Repricing the service must not reach into the issued line
		require.NoError(t, db.Model(&models.MedicalService{}).
			Where("id = ?", consultation.ID).
			Update("base_price", decimal.RequireFromString("999.99")).Error)

		reloaded, err := svc.GetInvoice(resp.ID)
		require.NoError(t, err)
		assertDecimal(t, "100.00", reloaded.Lines[0].UnitPrice)
		assertDecimal(t, "121.00", reloaded.Lines[0].LineTotal)
	})

	t.Run("Lines Kept In Request Order", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		appointment := createAppointment(t, db, models.AppointmentCompleted)
		first := createMedicalService(t, db, "X-ray", "60.00", true)
		second := createMedicalService(t, db, "Blood test", "25.50", true)

		resp, err := svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
			{ServiceID: first.ID, Quantity: 1},
			{ServiceID: second.ID, Quantity: 2},
		})
		require.NoError(t, err)

		require.Len(t, resp.Lines, 2)
		assert.Equal(t, "X-ray", resp.Lines[0].ServiceName)
		assert.Equal(t, "Blood test", resp.Lines[1].ServiceName)
		assertDecimal(t, "111.00", resp.Subtotal) // 60 + 51
		assertDecimal(t, "23.31", resp.TaxTotal)
		assertDecimal(t, "134.31", resp.Total)
	})
}

func TestPayInvoice(t *testing.T) {
	newPending := func(t *testing.T, db *gorm.DB, svc *InvoiceService) *InvoiceResponse {
		appointment := createAppointment(t, db, models.AppointmentCompleted)
		consultation := createMedicalService(t, db, "General consultation", "100.00", true)
		resp, err := svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
			{ServiceID: consultation.ID, Quantity: 1},
		})
		require.NoError(t, err)
		return resp
	}

	t.Run("Pending To Paid", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		pending := newPending(t, db, svc)

		paid, err := svc.PayInvoice(pending.ID, models.PaymentCard)
		require.NoError(t, err)

		assert.Equal(t, models.InvoicePaid, paid.Status)
		require.NotNil(t, paid.PaidAt)
		assert.Equal(t, models.PaymentCard, paid.PaymentMethod)
		assert.Len(t, paid.Lines, 1)

		// Totals are untouched by payment
		assert.True(t, paid.Total.Equal(pending.Total))

		var stored models.Invoice
		require.NoError(t, db.First(&stored, "id = ?", pending.ID).Error)
		assert.Equal(t, models.InvoicePaid, stored.Status)
		assert.NotNil(t, stored.PaidAt)
	})

	t.Run("Already Paid", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		pending := newPending(t, db, svc)

		_, err := svc.PayInvoice(pending.ID, models.PaymentCash)
		require.NoError(t, err)

		_, err = svc.PayInvoice(pending.ID, models.PaymentCash)
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindConflict, svcErr.Kind)
		assert.Contains(t, svcErr.Message, models.InvoicePaid)
	})

	t.Run("Invoice Not Found", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvoiceService(db)
		missing := uuid.New()

		_, err := svc.PayInvoice(missing, models.PaymentTransfer)

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindNotFound, svcErr.Kind)
		assert.Contains(t, svcErr.Message, missing.String())
	})
}

func TestListInvoices(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)

	consultation := createMedicalService(t, db, "General consultation", "100.00", true)
	for i := 0; i < 2; i++ {
		appointment := createAppointment(t, db, models.AppointmentCompleted)
		_, err := svc.IssueInvoice(appointment.ID, []InvoiceLineRequest{
			{ServiceID: consultation.ID, Quantity: 1},
		})
		require.NoError(t, err)
	}

	all, err := svc.ListInvoices("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.ListInvoices(models.InvoicePending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.PayInvoice(all[0].ID, models.PaymentCash)
	require.NoError(t, err)

	paid, err := svc.ListInvoices(models.InvoicePaid)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, all[0].ID, paid[0].ID)
}
