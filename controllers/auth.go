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

type RegisterInput struct {
	Email          string       `json:"email" binding:"required,email"`
	Phone          string       `json:"phone" binding:"required"`
	Name           string       `json:"name" binding:"required"`
	Password       string       `json:"password" binding:"required,min=8"`
	CompanyName    string       `json:"companyName" binding:"required"`
	CompanyAddress string       `json:"companyAddress"`
	WorkingHours   models.JSONB `json:"workingHours"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // Can be email or phone
	Password   string `json:"password" binding:"required"`
}

// Register creates a company and its owner account
func Register(c *gin.Context) {
	var input RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Check if email or phone already exists
	var existingUser models.User
	result := config.DB.Where("email = ? OR phone = ?", input.Email, input.Phone).First(&existingUser)

	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email or phone already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	company := models.Company{
		ID:           uuid.New(),
		Name:         input.CompanyName,
		Address:      input.CompanyAddress,
		WorkingHours: input.WorkingHours,
	}

	// Set default working hours if not provided
	if company.WorkingHours == nil {
		company.WorkingHours = models.JSONB{
			"monday":    map[string]interface{}{"open": "08:00", "close": "18:00", "closed": false},
			"tuesday":   map[string]interface{}{"open": "08:00", "close": "18:00", "closed": false},
			"wednesday": map[string]interface{}{"open": "08:00", "close": "18:00", "closed": false},
			"thursday":  map[string]interface{}{"open": "08:00", "close": "18:00", "closed": false},
			"friday":    map[string]interface{}{"open": "08:00", "close": "18:00", "closed": false},
			"saturday":  map[string]interface{}{"open": "09:00", "close": "15:00", "closed": false},
			"sunday":    map[string]interface{}{"open": "00:00", "close": "00:00", "closed": true},
		}
	}

	newUser := models.User{
		Email:     input.Email,
		Phone:     input.Phone,
		Name:      input.Name,
		Password:  input.Password, // Will be hashed in BeforeCreate hook
		Role:      "owner",
		CompanyID: company.ID,
	}

	tx := config.DB.Begin()
	if err := tx.Create(&company).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create company")
		return
	}
	if err := tx.Create(&newUser).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if err := createDefaultTemplates(tx, company.ID); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create default templates")
		return
	}
	tx.Commit()

	// Generate token
	token, err := utils.GenerateToken(newUser.ID.String(), company.ID.String())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user": gin.H{
			"id":          newUser.ID,
			"email":       newUser.Email,
			"phone":       newUser.Phone,
			"companyName": company.Name,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	// Clean identifier
	identifier := strings.TrimSpace(input.Identifier)

	// Determine if identifier is email or phone
	var user models.User
	result := config.DB.Where("email = ? OR phone = ?", identifier, identifier).First(&user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Check password
	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// Generate token
	token, err := utils.GenerateToken(user.ID.String(), user.CompanyID.String())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Update last login
	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"phone": user.Phone,
			"role":  user.Role,
		},
	})
}

func createDefaultTemplates(tx *gorm.DB, companyID uuid.UUID) error {
	defaultTemplates := []models.MessageTemplate{
		{
			CompanyID: companyID,
			Type:      "job_reminder",
			Body:      "Hi [CustomerName], a reminder that your carpet cleaning is scheduled for [JobDate]. Our technician will arrive between [ArrivalWindow]. Reply STOP to opt out.",
		},
		{
			CompanyID: companyID,
			Type:      "followup",
			Body:      "Hi [CustomerName], thanks for choosing us! How did your carpets turn out? We'd love your feedback. Reply STOP to opt out.",
		},
		{
			CompanyID: companyID,
			Type:      "promo",
			Body:      "Hi [CustomerName], it's been a while since your last cleaning. Book this month and save 15%! Reply STOP to opt out.",
		},
	}

	for _, template := range defaultTemplates {
		template.ID = uuid.New()
		template.IsActive = true
		if err := tx.Create(&template).Error; err != nil {
			return err
		}
	}
	return nil
}

func Me(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusInternalServerError, "User ID not found in context")
		return
	}

	var user models.User
	if err := config.DB.Preload("Company").First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"name":        user.Name,
			"role":        user.Role,
			"companyName": user.Company.Name,
		},
	})
}
