package controllers

import (
	"net/http"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DashboardOverview struct {
	TotalCustomers  int             `json:"totalCustomers"`
	MonthlyRevenue  float64         `json:"monthlyRevenue"`
	JobsThisWeek    int             `json:"jobsThisWeek"`
	UpcomingJobs    []UpcomingJob   `json:"upcomingJobs"`
	RecentCustomers []RecentEntry   `json:"recentCustomers"`
	ReminderStats   ReminderStats   `json:"reminderStats"`
	RecentMessages  []RecentMessage `json:"recentMessages"`
}

type UpcomingJob struct {
	JobNumber     string `json:"jobNumber"`
	CustomerName  string `json:"customerName"`
	ScheduledDate string `json:"scheduledDate"`
	ArrivalWindow string `json:"arrivalWindow"`
}

type RecentEntry struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"createdAt"`
}

type ReminderStats struct {
	Pending   int `json:"pending"`
	SentToday int `json:"sentToday"`
	Failed    int `json:"failed"`
}

type RecentMessage struct {
	To     string `json:"to"`
	Status string `json:"status"`
	SentAt string `json:"sentAt"`
}

func GetDashboardOverview(c *gin.Context) {
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

	overview := DashboardOverview{}

	// Total customers
	var totalCustomers int64
	config.DB.Model(&models.Customer{}).
		Where("company_id = ? AND deleted_at IS NULL", companyUUID).
		Count(&totalCustomers)
	overview.TotalCustomers = int(totalCustomers)

	// This month's revenue from completed jobs
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthlyRevenue float64
	config.DB.Model(&models.Job{}).
		Where("company_id = ? AND status = ? AND completed_at >= ?", companyUUID, "completed", firstOfMonth).
		Select("COALESCE(SUM(total), 0)").Scan(&monthlyRevenue)
	overview.MonthlyRevenue = monthlyRevenue

	// Jobs scheduled over the next 7 days
	var jobsThisWeek int64
	config.DB.Model(&models.Job{}).
		Where("company_id = ? AND status = ? AND scheduled_date BETWEEN ? AND ?",
			companyUUID, "scheduled", utils.BeginningOfDay(now), now.AddDate(0, 0, 7)).
		Count(&jobsThisWeek)
	overview.JobsThisWeek = int(jobsThisWeek)

	// Next 5 upcoming jobs
	var jobs []models.Job
	config.DB.Where("company_id = ? AND status = ? AND scheduled_date >= ?",
		companyUUID, "scheduled", utils.BeginningOfDay(now)).
		Order("scheduled_date asc").Limit(5).Find(&jobs)
	for _, job := range jobs {
		var customer models.Customer
		config.DB.Select("name").First(&customer, "id = ?", job.CustomerID)
		overview.UpcomingJobs = append(overview.UpcomingJobs, UpcomingJob{
			JobNumber:     job.JobNumber,
			CustomerName:  customer.Name,
			ScheduledDate: job.ScheduledDate.Format("2006-01-02"),
			ArrivalWindow: job.ArrivalWindow(),
		})
	}

	// Most recent customers
	var customers []models.Customer
	config.DB.Where("company_id = ?", companyUUID).
		Order("created_at desc").Limit(5).Find(&customers)
	for _, customer := range customers {
		overview.RecentCustomers = append(overview.RecentCustomers, RecentEntry{
			Name:      customer.Name,
			Phone:     customer.Phone,
			CreatedAt: customer.CreatedAt.Format("2006-01-02"),
		})
	}

	// Reminder pipeline health
	var pending, sentToday, failed int64
	config.DB.Model(&models.Reminder{}).
		Where("company_id = ? AND status = ?", companyUUID, models.ReminderStatusPending).
		Count(&pending)
	config.DB.Model(&models.CommunicationLog{}).
		Where("company_id = ? AND status = ? AND sent_at >= ?", companyUUID, models.CommStatusSent, utils.BeginningOfDay(now)).
		Count(&sentToday)
	config.DB.Model(&models.CommunicationLog{}).
		Where("company_id = ? AND status = ?", companyUUID, models.CommStatusFailed).
		Count(&failed)
	overview.ReminderStats = ReminderStats{
		Pending:   int(pending),
		SentToday: int(sentToday),
		Failed:    int(failed),
	}

	// Last few outbound messages
	var logs []models.CommunicationLog
	config.DB.Where("company_id = ?", companyUUID).
		Order("sent_at desc").Limit(5).Find(&logs)
	for _, entry := range logs {
		overview.RecentMessages = append(overview.RecentMessages, RecentMessage{
			To:     entry.ToNumber,
			Status: entry.Status,
			SentAt: entry.SentAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, overview)
}
