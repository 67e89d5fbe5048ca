// controllers/invoice.go
package controllers

import (
	"net/http"

	"clinicapi-backend/config"
	"clinicapi-backend/services"
	"clinicapi-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IssueInvoiceInput defines the expected JSON structure for issuing an invoice
type IssueInvoiceInput struct {
	Lines []services.InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// PayInvoiceInput defines the expected JSON structure for paying an invoice
type PayInvoiceInput struct {
	PaymentMethod string `json:"paymentMethod" binding:"required,oneof=CASH CARD TRANSFER"`
}

// IssueInvoice creates an invoice for a completed appointment
func IssueInvoice(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input IssueInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoiceService := services.NewInvoiceService(config.DB)
	response, err := invoiceService.IssueInvoice(appointmentID, input.Lines)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// PayInvoice settles a pending invoice
func PayInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var input PayInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoiceService := services.NewInvoiceService(config.DB)
	response, err := invoiceService.PayInvoice(invoiceID, input.PaymentMethod)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetInvoice retrieves a specific invoice by ID
func GetInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	invoiceService := services.NewInvoiceService(config.DB)
	response, err := invoiceService.GetInvoice(invoiceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetInvoices retrieves all invoices, optionally filtered by status
func GetInvoices(c *gin.Context) {
	status := c.Query("status")

	invoiceService := services.NewInvoiceService(config.DB)
	responses, err := invoiceService.ListInvoices(status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}
