package controllers

import (
	"net/http"
	"time"

	"clinicapi-backend/config"
	"clinicapi-backend/models"
	"clinicapi-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type DashboardOverview struct {
	TotalPatients        int64           `json:"totalPatients"`
	TotalInvoices        int64           `json:"totalInvoices"`
	PendingInvoices      int64           `json:"pendingInvoices"`
	PaidInvoices         int64           `json:"paidInvoices"`
	MonthlyRevenue       decimal.Decimal `json:"monthlyRevenue"`
	UpcomingAppointments int64           `json:"upcomingAppointments"`
}

// GetDashboardOverview returns billing and scheduling counters for the clinic
func GetDashboardOverview(c *gin.Context) {
	var overview DashboardOverview

	config.DB.Model(&models.Patient{}).
		Where("is_active = ?", true).
		Count(&overview.TotalPatients)

	config.DB.Model(&models.Invoice{}).Count(&overview.TotalInvoices)

	config.DB.Model(&models.Invoice{}).
		Where("status = ?", models.InvoicePending).
		Count(&overview.PendingInvoices)

	config.DB.Model(&models.Invoice{}).
		Where("status = ?", models.InvoicePaid).
		Count(&overview.PaidInvoices)

	// Revenue counts paid invoices only, by payment date
	firstOfMonth := utils.BeginningOfMonth(time.Now())
	var monthlyRevenue decimal.NullDecimal
	if err := config.DB.Model(&models.Invoice{}).
		Where("status = ? AND paid_at >= ?", models.InvoicePaid, firstOfMonth).
		Select("COALESCE(SUM(total), 0)").
		Scan(&monthlyRevenue).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute revenue")
		return
	}
	overview.MonthlyRevenue = monthlyRevenue.Decimal

	config.DB.Model(&models.Appointment{}).
		Where("status = ? AND scheduled_at >= ?", models.AppointmentScheduled, time.Now()).
		Count(&overview.UpcomingAppointments)

	c.JSON(http.StatusOK, overview)
}
