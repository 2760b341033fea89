// controllers/template.go
package controllers

import (
	"errors"
	"net/http"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTemplateInput defines the expected JSON structure
type CreateTemplateInput struct {
	Type string `json:"type" binding:"required,oneof=job_reminder followup promo"`
	Body string `json:"body" binding:"required"`
}

// UpdateTemplateInput defines the expected JSON structure
type UpdateTemplateInput struct {
	Type     *string `json:"type" binding:"omitempty,oneof=job_reminder followup promo"`
	Body     *string `json:"body"`
	IsActive *bool   `json:"isActive"`
}

// CreateTemplate creates a new message template
func CreateTemplate(c *gin.Context) {
	companyID, exists := c.Get("companyId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Company ID not found in context")
		return
	}

	companyUUID, err := uuid.Parse(companyID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid company ID format")
		return
	}

	var input CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Check if template type already exists for this company
	var existingTemplate models.MessageTemplate
	if err := config.DB.Where("company_id = ? AND type = ?", companyUUID, input.Type).
		First(&existingTemplate).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Template for this type already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	template := models.MessageTemplate{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Type:      input.Type,
		Body:      input.Body,
		IsActive:  true,
	}

	if err := config.DB.Create(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, template)
}

// GetTemplates retrieves all message templates for the company
func GetTemplates(c *gin.Context) {
	companyID, exists := c.Get("companyId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Company ID not found in context")
		return
	}

	companyUUID, err := uuid.Parse(companyID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid company ID format")
		return
	}

	var templates []models.MessageTemplate
	if err := config.DB.Where("company_id = ?", companyUUID).Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}

	c.JSON(http.StatusOK, templates)
}

// GetTemplate retrieves a specific template by ID
func GetTemplate(c *gin.Context) {
	companyID, exists := c.Get("companyId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Company ID not found in context")
		return
	}

	companyUUID, err := uuid.Parse(companyID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid company ID format")
		return
	}

	templateID := c.Param("id")
	templateUUID, err := uuid.Parse(templateID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	var template models.MessageTemplate
	if err := config.DB.Where("company_id = ? AND id = ?", companyUUID, templateUUID).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, template)
}

// UpdateTemplate updates an existing template
func UpdateTemplate(c *gin.Context) {
	companyID, exists := c.Get("companyId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Company ID not found in context")
		return
	}

	companyUUID, err := uuid.Parse(companyID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid company ID format")
		return
	}

	templateID := c.Param("id")
	templateUUID, err := uuid.Parse(templateID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Retrieve existing template
	var template models.MessageTemplate
	if err := config.DB.Where("company_id = ? AND id = ?", companyUUID, templateUUID).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// If changing type, check for conflict
	if input.Type != nil && *input.Type != template.Type {
		var existingTemplate models.MessageTemplate
		if err := config.DB.Where("company_id = ? AND type = ?", companyUUID, *input.Type).
			First(&existingTemplate).Error; err == nil {
			utils.RespondWithError(c, http.StatusConflict, "Template for this type already exists")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		template.Type = *input.Type
	}

	// Update other fields
	if input.Body != nil {
		template.Body = *input.Body
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update template")
		return
	}

	c.JSON(http.StatusOK, template)
}

// DeleteTemplate deletes a template
func DeleteTemplate(c *gin.Context) {
	companyID, exists := c.Get("companyId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Company ID not found in context")
		return
	}

	companyUUID, err := uuid.Parse(companyID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid company ID format")
		return
	}

	templateID := c.Param("id")
	templateUUID, err := uuid.Parse(templateID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	result := config.DB.Where("company_id = ? AND id = ?", companyUUID, templateUUID).
		Delete(&models.MessageTemplate{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete template")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}
