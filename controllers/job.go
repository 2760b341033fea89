// controllers/job.go
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

// JobItemInput defines the structure for a job line item
type JobItemInput struct {
	ServiceID uuid.UUID `json:"serviceId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"min=1"`
}

// CreateJobInput defines the expected JSON structure for creating a job
type CreateJobInput struct {
	CustomerID         uuid.UUID      `json:"customerId" binding:"required"`
	ScheduledDate      time.Time      `json:"scheduledDate" binding:"required"`
	ArrivalWindowStart string         `json:"arrivalWindowStart"`
	ArrivalWindowEnd   string         `json:"arrivalWindowEnd"`
	Address            string         `json:"address"`
	Items              []JobItemInput `json:"items" binding:"required,min=1"`
	Discount           float64        `json:"discount" binding:"min=0"`
	Tax                float64        `json:"tax" binding:"min=0"`
	PromotionCode      string         `json:"promotionCode"`
	Notes              string         `json:"notes"`
}

// UpdateJobInput defines the expected JSON structure for updating a job
type UpdateJobInput struct {
	ScheduledDate      *time.Time `json:"scheduledDate"`
	ArrivalWindowStart *string    `json:"arrivalWindowStart"`
	ArrivalWindowEnd   *string    `json:"arrivalWindowEnd"`
	Address            *string    `json:"address"`
	PaymentStatus      *string    `json:"paymentStatus" binding:"omitempty,oneof=paid unpaid partial"`
	PaidAmount         *float64   `json:"paidAmount" binding:"omitempty,min=0"`
	PaymentMethod      *string    `json:"paymentMethod"`
	Notes              *string    `json:"notes"`
}

// CreateJob schedules a new cleaning job and its reminder
func CreateJob(c *gin.Context) {
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

	var input CreateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Validate customer exists in the same company
	var customer models.Customer
	if err := config.DB.Where("company_id = ? AND id = ?", companyUUID, input.CustomerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Validate and calculate line items
	var subtotal float64 = 0
	var jobItems []models.JobItem

	for _, item := range input.Items {
		// Validate service exists and belongs to the same company
		var service models.Service
		if err := config.DB.Where("company_id = ? AND id = ?", companyUUID, item.ServiceID).
			First(&service).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Service not found: "+item.ServiceID.String())
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}

		itemTotal := service.Price * float64(item.Quantity)
		subtotal += itemTotal

		jobItems = append(jobItems, models.JobItem{
			ID:          uuid.New(),
			ServiceID:   service.ID,
			ServiceName: service.Name,
			Quantity:    item.Quantity,
			UnitPrice:   service.Price,
			TotalPrice:  itemTotal,
		})
	}

	discount := input.Discount

	// Apply promotion code on top of any manual discount
	var promo *models.Promotion
	if input.PromotionCode != "" {
		var p models.Promotion
		if err := config.DB.Where("company_id = ? AND code = ?", companyUUID, input.PromotionCode).
			First(&p).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Unknown promotion code")
			return
		}
		if !p.Redeemable(time.Now()) {
			utils.RespondWithError(c, http.StatusBadRequest, "Promotion code is not redeemable")
			return
		}
		switch p.DiscountType {
		case "percent":
			discount += subtotal * p.Amount / 100
		case "fixed":
			discount += p.Amount
		}
		promo = &p
	}

	total := subtotal - discount + (subtotal * input.Tax / 100)
	if total < 0 {
		total = 0
	}

	address := input.Address
	if address == "" {
		address = customer.Address
	}

	job := models.Job{
		ID:                 uuid.New(),
		CompanyID:          companyUUID,
		CreatedByUserID:    uuid.Must(uuid.Parse(userID.(string))),
		CustomerID:         input.CustomerID,
		ScheduledDate:      input.ScheduledDate,
		ArrivalWindowStart: input.ArrivalWindowStart,
		ArrivalWindowEnd:   input.ArrivalWindowEnd,
		Address:            address,
		Status:             "scheduled",
		Subtotal:           subtotal,
		Discount:           discount,
		Tax:                input.Tax,
		Total:              total,
		PaymentStatus:      "unpaid",
		PromotionCode:      input.PromotionCode,
		Notes:              input.Notes,
		Items:              jobItems,
	}
	job.JobNumber = "JOB-" + time.Now().Format("20060102") + "-" + utils.GenerateRandomString(6)

	// Reminder goes out the day before the visit, or the same morning for
	// next-day bookings.
	reminderDate := job.ScheduledDate.AddDate(0, 0, -1)
	if reminderDate.Before(time.Now()) {
		reminderDate = job.ScheduledDate
	}
	reminder := models.Reminder{
		CompanyID:     companyUUID,
		CustomerID:    customer.ID,
		JobID:         &job.ID,
		Type:          "job_reminder",
		Title:         "Upcoming cleaning",
		ScheduledDate: reminderDate,
		Status:        models.ReminderStatusPending,
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&job).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := tx.Create(&reminder).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to schedule reminder")
		return
	}

	if promo != nil {
		if err := tx.Model(&models.Promotion{}).Where("id = ?", promo.ID).
			Update("redeemed_count", gorm.Expr("redeemed_count + 1")).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to redeem promotion")
			return
		}
	}

	tx.Commit()

	c.JSON(http.StatusCreated, job)
}

// GetJobs retrieves all jobs for the company
func GetJobs(c *gin.Context) {
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

	query := config.DB.Preload("Items").Where("company_id = ?", companyUUID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var jobs []models.Job
	if err := query.Order("scheduled_date asc").Find(&jobs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve jobs")
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJob retrieves a specific job by ID
func GetJob(c *gin.Context) {
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

	jobID := c.Param("id")
	jobUUID, err := uuid.Parse(jobID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	var job models.Job
	if err := config.DB.Preload("Items").
		Where("company_id = ? AND id = ?", companyUUID, jobUUID).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Job not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, job)
}

// UpdateJob updates schedule and payment details of an existing job
func UpdateJob(c *gin.Context) {
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

	jobID := c.Param("id")
	jobUUID, err := uuid.Parse(jobID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	var input UpdateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var job models.Job
	if err := config.DB.Where("company_id = ? AND id = ?", companyUUID, jobUUID).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Job not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if job.Status != "scheduled" && input.ScheduledDate != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot reschedule a "+job.Status+" job")
		return
	}

	if input.ScheduledDate != nil {
		job.ScheduledDate = *input.ScheduledDate
		// Keep the pending reminder in step with the new date
		reminderDate := job.ScheduledDate.AddDate(0, 0, -1)
		if reminderDate.Before(time.Now()) {
			reminderDate = job.ScheduledDate
		}
		config.DB.Model(&models.Reminder{}).
			Where("job_id = ? AND status = ?", job.ID, models.ReminderStatusPending).
			Update("scheduled_date", reminderDate)
	}
	if input.ArrivalWindowStart != nil {
		job.ArrivalWindowStart = *input.ArrivalWindowStart
	}
	if input.ArrivalWindowEnd != nil {
		job.ArrivalWindowEnd = *input.ArrivalWindowEnd
	}
	if input.Address != nil {
		job.Address = *input.Address
	}
	if input.PaymentStatus != nil {
		job.PaymentStatus = *input.PaymentStatus
	}
	if input.PaidAmount != nil {
		job.PaidAmount = *input.PaidAmount
	}
	if input.PaymentMethod != nil {
		job.PaymentMethod = *input.PaymentMethod
	}
	if input.Notes != nil {
		job.Notes = *input.Notes
	}

	if err := config.DB.Save(&job).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// CompleteJob marks a job done, updates customer stats, awards loyalty
// points and schedules the follow-up message
func CompleteJob(c *gin.Context) {
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

	jobID := c.Param("id")
	jobUUID, err := uuid.Parse(jobID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	var job models.Job
	if err := config.DB.Where("company_id = ? AND id = ?", companyUUID, jobUUID).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Job not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if job.Status == "completed" {
		utils.RespondWithError(c, http.StatusConflict, "Job already completed")
		return
	}

	now := time.Now()
	points := int(job.Total / 10) // 1 point per $10

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"status":       "completed",
			"completed_at": now,
		}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to complete job")
		return
	}

	// Update customer stats
	if err := tx.Model(&models.Customer{}).Where("id = ?", job.CustomerID).
		Updates(map[string]interface{}{
			"total_jobs":     gorm.Expr("total_jobs + ?", 1),
			"total_spent":    gorm.Expr("total_spent + ?", job.Total),
			"loyalty_points": gorm.Expr("loyalty_points + ?", points),
			"last_service":   now,
		}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer stats")
		return
	}

	if points > 0 {
		loyalty := models.LoyaltyTransaction{
			CompanyID:  companyUUID,
			CustomerID: job.CustomerID,
			JobID:      &job.ID,
			Points:     points,
			Reason:     "job_completed",
		}
		if err := tx.Create(&loyalty).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record loyalty points")
			return
		}
	}

	// Follow-up message two days after the visit
	followup := models.Reminder{
		CompanyID:     companyUUID,
		CustomerID:    job.CustomerID,
		JobID:         &job.ID,
		Type:          "followup",
		Title:         "How did we do?",
		ScheduledDate: now.AddDate(0, 0, 2),
		Status:        models.ReminderStatusPending,
	}
	if err := tx.Create(&followup).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to schedule follow-up")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Job completed", "loyaltyPointsAwarded": points})
}

// DeleteJob cancels a scheduled job and its pending reminders
func DeleteJob(c *gin.Context) {
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

	jobID := c.Param("id")
	jobUUID, err := uuid.Parse(jobID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	result := config.DB.Model(&models.Job{}).
		Where("company_id = ? AND id = ? AND status = ?", companyUUID, jobUUID, "scheduled").
		Update("status", "cancelled")

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel job")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Scheduled job not found")
		return
	}

	// Pending reminders for a cancelled job must never go out
	config.DB.Model(&models.Reminder{}).
		Where("job_id = ? AND status = ?", jobUUID, models.ReminderStatusPending).
		Update("status", models.ReminderStatusCompleted)

	c.JSON(http.StatusOK, gin.H{"message": "Job cancelled successfully"})
}
