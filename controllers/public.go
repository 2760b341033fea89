// controllers/public.go
//
// Unauthenticated endpoints backing the marketing site: the service list
// shown on landing pages and the quote-request form.
package controllers

import (
	"net/http"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateLeadInput defines the quote-request form payload
type CreateLeadInput struct {
	CompanyID       uuid.UUID `json:"companyId" binding:"required"`
	Name            string    `json:"name" binding:"required"`
	Phone           string    `json:"phone" binding:"required"`
	Email           string    `json:"email" binding:"omitempty,email"`
	Address         string    `json:"address"`
	ServiceInterest string    `json:"serviceInterest"`
	Message         string    `json:"message"`
}

// GetPublicServices lists a company's active services for the marketing site
func GetPublicServices(c *gin.Context) {
	companyID := c.Param("id")
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid company ID format")
		return
	}

	var services []models.Service
	if err := config.DB.
		Select("id", "name", "description", "price", "duration", "category").
		Where("company_id = ? AND is_active = true", companyUUID).
		Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// CreateLead stores a quote request from the marketing site
func CreateLead(c *gin.Context) {
	var input CreateLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// The company must exist; anything else about the payload is taken as-is
	var company models.Company
	if err := config.DB.First(&company, "id = ?", input.CompanyID).Error; err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown company")
		return
	}

	lead := models.Lead{
		CompanyID:       input.CompanyID,
		Name:            input.Name,
		Phone:           utils.NormalizePhone(input.Phone),
		Email:           input.Email,
		Address:         input.Address,
		ServiceInterest: input.ServiceInterest,
		Message:         input.Message,
		Status:          "new",
	}

	if err := config.DB.Create(&lead).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to submit request")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Request received", "id": lead.ID})
}

// GetLeads lists quote requests for staff
func GetLeads(c *gin.Context) {
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

	query := config.DB.Where("company_id = ?", companyUUID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var leads []models.Lead
	if err := query.Order("created_at desc").Find(&leads).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve leads")
		return
	}

	c.JSON(http.StatusOK, leads)
}
