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

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name    string  `json:"name" binding:"required"`
	Phone   string  `json:"phone" binding:"required"`
	Email   *string `json:"email"` // Pointer to allow null
	Address string  `json:"address"`
	City    string  `json:"city"`
	Zip     string  `json:"zip"`
	Notes   string  `json:"notes"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	Zip      *string `json:"zip"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"isActive"`
}

// OptOutInput toggles a customer's phone on or off the opt-out list
type OptOutInput struct {
	OptedOut bool   `json:"optedOut"`
	Reason   string `json:"reason"`
}

// CreateCustomer creates a new customer for the company
func CreateCustomer(c *gin.Context) {
	companyID, exists := c.Get("companyId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Company ID not found in context")
		return
	}
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	companyUUID, err := uuid.Parse(companyID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid company ID format")
		return
	}

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Validate phone format
	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// Check if phone already exists for this company
	var existingCustomer models.Customer
	if err := config.DB.Where("company_id = ? AND phone = ?", companyUUID, input.Phone).
		First(&existingCustomer).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	// Create new customer
	customer := models.Customer{
		ID:              uuid.New(),
		CompanyID:       companyUUID,
		CreatedByUserID: uuid.Must(uuid.Parse(userID.(string))),
		Name:            input.Name,
		Phone:           utils.NormalizePhone(input.Phone),
		Address:         input.Address,
		City:            input.City,
		Zip:             input.Zip,
		Notes:           input.Notes,
		IsActive:        true,
	}

	if input.Email != nil {
		customer.Email = *input.Email
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers retrieves all customers for the company
func GetCustomers(c *gin.Context) {
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

	var customers []models.Customer
	if err := config.DB.Where("company_id = ?", companyUUID).Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}

// GetCustomer retrieves a specific customer by ID
func GetCustomer(c *gin.Context) {
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

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates an existing customer
func UpdateCustomer(c *gin.Context) {
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

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Retrieve existing customer
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

	// Update fields if provided
	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		// Validate phone format
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}

		// Check if phone is being changed to another existing customer
		phone := utils.NormalizePhone(*input.Phone)
		if customer.Phone != phone {
			var existingCustomer models.Customer
			if err := config.DB.Where("company_id = ? AND phone = ?", companyUUID, phone).
				First(&existingCustomer).Error; err == nil {
				utils.RespondWithError(c, http.StatusConflict, "Another customer with this phone number already exists")
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				return
			}
		}
		customer.Phone = phone
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.City != nil {
		customer.City = *input.City
	}
	if input.Zip != nil {
		customer.Zip = *input.Zip
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// SetCustomerOptOut adds or removes the customer's phone from the opt-out list
func SetCustomerOptOut(c *gin.Context) {
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

	var input OptOutInput
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

	if input.OptedOut {
		reason := input.Reason
		if reason == "" {
			reason = "customer_request"
		}
		optOut := models.OptOut{
			CompanyID: companyUUID,
			Phone:     customer.Phone,
			Reason:    reason,
		}
		if err := config.DB.Where("company_id = ? AND phone = ?", companyUUID, customer.Phone).
			FirstOrCreate(&optOut).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record opt-out")
			return
		}
	} else {
		if err := config.DB.Where("company_id = ? AND phone = ?", companyUUID, customer.Phone).
			Delete(&models.OptOut{}).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to remove opt-out")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Opt-out preference updated", "optedOut": input.OptedOut})
}

// DeleteCustomer soft deletes a customer
func DeleteCustomer(c *gin.Context) {
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

	result := config.DB.Where("company_id = ? AND id = ?", companyUUID, customerUUID).
		Delete(&models.Customer{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
