// controllers/medical_service.go
package controllers

import (
	"errors"
	"net/http"

	"clinicapi-backend/config"
	"clinicapi-backend/models"
	"clinicapi-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateMedicalServiceInput defines the expected JSON structure for creating a medical service
type CreateMedicalServiceInput struct {
	Code        string          `json:"code" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"basePrice" binding:"required"`
}

// UpdateMedicalServiceInput defines the expected JSON structure for updating a medical service
type UpdateMedicalServiceInput struct {
	Code        *string          `json:"code"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"basePrice"`
	IsActive    *bool            `json:"isActive"`
}

// CreateMedicalService creates a new billable medical service
func CreateMedicalService(c *gin.Context) {
	var input CreateMedicalServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.BasePrice.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Base price cannot be negative")
		return
	}

	service := models.MedicalService{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		BasePrice:   input.BasePrice,
		IsActive:    true,
	}

	if err := config.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create medical service")
		return
	}

	c.JSON(http.StatusCreated, service)
}

// GetMedicalServices retrieves all medical services
func GetMedicalServices(c *gin.Context) {
	var servicesList []models.MedicalService
	if err := config.DB.Order("code").Find(&servicesList).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve medical services")
		return
	}

	c.JSON(http.StatusOK, servicesList)
}

// GetMedicalService retrieves a specific medical service by ID
func GetMedicalService(c *gin.Context) {
	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var service models.MedicalService
	if err := config.DB.First(&service, "id = ?", serviceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Medical service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, service)
}

// UpdateMedicalService updates an existing medical service. Price changes
// never touch already issued invoice lines, which keep their snapshots.
func UpdateMedicalService(c *gin.Context) {
	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var input UpdateMedicalServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var service models.MedicalService
	if err := config.DB.First(&service, "id = ?", serviceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Medical service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Code != nil {
		service.Code = *input.Code
	}
	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.BasePrice != nil {
		if input.BasePrice.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Base price cannot be negative")
			return
		}
		service.BasePrice = *input.BasePrice
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update medical service")
		return
	}

	c.JSON(http.StatusOK, service)
}

// DeleteMedicalService soft deletes a medical service
func DeleteMedicalService(c *gin.Context) {
	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	result := config.DB.Where("id = ?", serviceUUID).Delete(&models.MedicalService{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete medical service")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Medical service not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Medical service deleted successfully"})
}
