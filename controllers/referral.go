// controllers/referral.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateReferralInput defines the expected JSON structure
type CreateReferralInput struct {
	ReferrerID   uuid.UUID `json:"referrerId" binding:"required"`
	ReferredID   uuid.UUID `json:"referredId" binding:"required"`
	RewardPoints int       `json:"rewardPoints" binding:"min=0"`
}

// AdjustLoyaltyInput defines the expected JSON structure for point adjustments
type AdjustLoyaltyInput struct {
	Points int    `json:"points" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// CreateReferral records that one customer referred another
func CreateReferral(c *gin.Context) {
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

	var input CreateReferralInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.ReferrerID == input.ReferredID {
		utils.RespondWithError(c, http.StatusBadRequest, "Customer cannot refer themselves")
		return
	}

	// Both customers must belong to this company
	var count int64
	config.DB.Model(&models.Customer{}).
		Where("company_id = ? AND id IN ?", companyUUID, []uuid.UUID{input.ReferrerID, input.ReferredID}).
		Count(&count)
	if count != 2 {
		utils.RespondWithError(c, http.StatusBadRequest, "Referrer or referred customer not found")
		return
	}

	// A customer can only be referred once
	var existing models.Referral
	if err := config.DB.Where("company_id = ? AND referred_id = ?", companyUUID, input.ReferredID).
		First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer was already referred")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	referral := models.Referral{
		CompanyID:  companyUUID,
		ReferrerID: input.ReferrerID,
		ReferredID: input.ReferredID,
		Status:     "pending",
	}
	if input.RewardPoints > 0 {
		referral.RewardPoints = input.RewardPoints
	}

	if err := config.DB.Create(&referral).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create referral")
		return
	}

	c.JSON(http.StatusCreated, referral)
}

// GetReferrals retrieves all referrals for the company
func GetReferrals(c *gin.Context) {
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

	var referrals []models.Referral
	if err := config.DB.Where("company_id = ?", companyUUID).Find(&referrals).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve referrals")
		return
	}

	c.JSON(http.StatusOK, referrals)
}

// CompleteReferral marks a referral completed and awards points to both sides
func CompleteReferral(c *gin.Context) {
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

	referralID := c.Param("id")
	referralUUID, err := uuid.Parse(referralID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid referral ID format")
		return
	}

	var referral models.Referral
	if err := config.DB.Where("company_id = ? AND id = ?", companyUUID, referralUUID).
		First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Referral not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if referral.Status == "completed" {
		utils.RespondWithError(c, http.StatusConflict, "Referral already completed")
		return
	}

	now := time.Now()

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&models.Referral{}).Where("id = ?", referral.ID).
		Updates(map[string]interface{}{
			"status":       "completed",
			"completed_at": now,
		}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to complete referral")
		return
	}

	for _, customerID := range []uuid.UUID{referral.ReferrerID, referral.ReferredID} {
		if err := tx.Model(&models.Customer{}).Where("id = ?", customerID).
			Update("loyalty_points", gorm.Expr("loyalty_points + ?", referral.RewardPoints)).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to award points")
			return
		}

		loyalty := models.LoyaltyTransaction{
			CompanyID:  companyUUID,
			CustomerID: customerID,
			Points:     referral.RewardPoints,
			Reason:     "referral_completed",
		}
		if err := tx.Create(&loyalty).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record loyalty points")
			return
		}
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Referral completed", "pointsAwarded": referral.RewardPoints})
}

// AdjustLoyaltyPoints applies a manual point adjustment to a customer
func AdjustLoyaltyPoints(c *gin.Context) {
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

	customerID := c.Param("id")
	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input AdjustLoyaltyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Customer
	if err := config.DB.Where("company_id = ? AND id = ?", companyUUID, customerUUID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if customer.LoyaltyPoints+input.Points < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Adjustment would make balance negative")
		return
	}

	tx := config.DB.Begin()
	if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", input.Points)).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to adjust points")
		return
	}

	loyalty := models.LoyaltyTransaction{
		CompanyID:  companyUUID,
		CustomerID: customer.ID,
		Points:     input.Points,
		Reason:     input.Reason,
	}
	if err := tx.Create(&loyalty).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record adjustment")
		return
	}
	tx.Commit()

	c.JSON(http.StatusOK, gin.H{
		"message": "Points adjusted",
		"balance": customer.LoyaltyPoints + input.Points,
	})
}

// GetLoyaltyHistory lists a customer's loyalty transactions
func GetLoyaltyHistory(c *gin.Context) {
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

	customerID := c.Param("id")
	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var transactions []models.LoyaltyTransaction
	if err := config.DB.Where("company_id = ? AND customer_id = ?", companyUUID, customerUUID).
		Order("created_at desc").Find(&transactions).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve loyalty history")
		return
	}

	c.JSON(http.StatusOK, transactions)
}
