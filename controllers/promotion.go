// controllers/promotion.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePromotionInput defines the expected JSON structure
type CreatePromotionInput struct {
	Code           string     `json:"code"`
	Description    string     `json:"description"`
	DiscountType   string     `json:"discountType" binding:"required,oneof=percent fixed"`
	Amount         float64    `json:"amount" binding:"required,min=0"`
	StartsAt       *time.Time `json:"startsAt"`
	EndsAt         *time.Time `json:"endsAt"`
	MaxRedemptions int        `json:"maxRedemptions" binding:"min=0"`
}

// UpdatePromotionInput defines the expected JSON structure
type UpdatePromotionInput struct {
	Description    *string    `json:"description"`
	Amount         *float64   `json:"amount" binding:"omitempty,min=0"`
	StartsAt       *time.Time `json:"startsAt"`
	EndsAt         *time.Time `json:"endsAt"`
	MaxRedemptions *int       `json:"maxRedemptions" binding:"omitempty,min=0"`
	IsActive       *bool      `json:"isActive"`
}

// CreatePromotion creates a new promotion code
func CreatePromotion(c *gin.Context) {
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

	var input CreatePromotionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		code = utils.GenerateRandomString(8)
	}

	// Check if code already exists for this company
	var existing models.Promotion
	if err := config.DB.Where("company_id = ? AND code = ?", companyUUID, code).
		First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Promotion code already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	promo := models.Promotion{
		CompanyID:      companyUUID,
		Code:           code,
		Description:    input.Description,
		DiscountType:   input.DiscountType,
		Amount:         input.Amount,
		StartsAt:       input.StartsAt,
		EndsAt:         input.EndsAt,
		MaxRedemptions: input.MaxRedemptions,
		IsActive:       true,
	}

	if err := config.DB.Create(&promo).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create promotion")
		return
	}

	c.JSON(http.StatusCreated, promo)
}

// GetPromotions retrieves all promotions for the company
func GetPromotions(c *gin.Context) {
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

	var promos []models.Promotion
	if err := config.DB.Where("company_id = ?", companyUUID).Find(&promos).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve promotions")
		return
	}

	c.JSON(http.StatusOK, promos)
}

// ValidatePromotion checks whether a code is currently redeemable
func ValidatePromotion(c *gin.Context) {
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

	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	var promo models.Promotion
	if err := config.DB.Where("company_id = ? AND code = ?", companyUUID, code).
		First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Promotion not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":         promo.Code,
		"redeemable":   promo.Redeemable(time.Now()),
		"discountType": promo.DiscountType,
		"amount":       promo.Amount,
	})
}

// UpdatePromotion updates an existing promotion
func UpdatePromotion(c *gin.Context) {
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

	promoID := c.Param("id")
	promoUUID, err := uuid.Parse(promoID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid promotion ID format")
		return
	}

	var input UpdatePromotionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var promo models.Promotion
	if err := config.DB.Where("company_id = ? AND id = ?", companyUUID, promoUUID).
		First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Promotion not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Description != nil {
		promo.Description = *input.Description
	}
	if input.Amount != nil {
		promo.Amount = *input.Amount
	}
	if input.StartsAt != nil {
		promo.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		promo.EndsAt = input.EndsAt
	}
	if input.MaxRedemptions != nil {
		promo.MaxRedemptions = *input.MaxRedemptions
	}
	if input.IsActive != nil {
		promo.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&promo).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update promotion")
		return
	}

	c.JSON(http.StatusOK, promo)
}

// DeletePromotion deletes a promotion
func DeletePromotion(c *gin.Context) {
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

	promoID := c.Param("id")
	promoUUID, err := uuid.Parse(promoID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid promotion ID format")
		return
	}

	result := config.DB.Where("company_id = ? AND id = ?", companyUUID, promoUUID).
		Delete(&models.Promotion{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete promotion")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Promotion not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promotion deleted successfully"})
}
