// controllers/report.go
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

// ReportController handles all reporting functions
type ReportController struct{}

// AnalyticsSummary represents the analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64           `json:"currentMonthRevenue"`
	MonthGrowth           float64           `json:"monthGrowth"`
	CurrentQuarterRevenue float64           `json:"currentQuarterRevenue"`
	QuarterGrowth         float64           `json:"quarterGrowth"`
	CurrentYearRevenue    float64           `json:"currentYearRevenue"`
	YearGrowth            float64           `json:"yearGrowth"`
	TopServices           []ServiceSummary  `json:"topServices"`
	TopCustomers          []CustomerSummary `json:"topCustomers"`
	QuickStats            QuickStatistics   `json:"quickStats"`
}

type ServiceSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type CustomerSummary struct {
	Name  string  `json:"name"`
	Jobs  int     `json:"jobs"`
	Spent float64 `json:"spent"`
}

type QuickStatistics struct {
	TotalCustomers int     `json:"totalCustomers"`
	TotalJobs      int     `json:"totalJobs"`
	AvgJobValue    float64 `json:"avgJobValue"`
	DeliveryRate   float64 `json:"deliveryRate"` // share of reminder sends that succeeded
}

// GetReportAnalytics returns the complete analytics summary
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
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

	now := time.Now()
	currentYear, currentMonth, _ := now.Date()
	loc := now.Location()

	firstOfMonth := time.Date(currentYear, currentMonth, 1, 0, 0, 0, 0, loc)
	firstOfLastMonth := firstOfMonth.AddDate(0, -1, 0)

	quarterStartMonth := currentMonth - (currentMonth-1)%3
	firstOfQuarter := time.Date(currentYear, quarterStartMonth, 1, 0, 0, 0, 0, loc)
	firstOfLastQuarter := firstOfQuarter.AddDate(0, -3, 0)

	firstOfYear := time.Date(currentYear, 1, 1, 0, 0, 0, 0, loc)
	firstOfLastYear := firstOfYear.AddDate(-1, 0, 0)

	summary := AnalyticsSummary{}

	summary.CurrentMonthRevenue = rc.getRevenue(companyUUID, firstOfMonth, now)
	lastMonthRevenue := rc.getRevenue(companyUUID, firstOfLastMonth, firstOfMonth)
	summary.MonthGrowth = growth(summary.CurrentMonthRevenue, lastMonthRevenue)

	summary.CurrentQuarterRevenue = rc.getRevenue(companyUUID, firstOfQuarter, now)
	lastQuarterRevenue := rc.getRevenue(companyUUID, firstOfLastQuarter, firstOfQuarter)
	summary.QuarterGrowth = growth(summary.CurrentQuarterRevenue, lastQuarterRevenue)

	summary.CurrentYearRevenue = rc.getRevenue(companyUUID, firstOfYear, now)
	lastYearRevenue := rc.getRevenue(companyUUID, firstOfLastYear, firstOfYear)
	summary.YearGrowth = growth(summary.CurrentYearRevenue, lastYearRevenue)

	// Top services by revenue over the last 90 days
	config.DB.Model(&models.JobItem{}).
		Select("job_items.service_name as name, COUNT(*) as count, COALESCE(SUM(job_items.total_price), 0) as revenue").
		Joins("JOIN jobs ON jobs.id = job_items.job_id").
		Where("jobs.company_id = ? AND jobs.status = ? AND jobs.completed_at >= ?",
			companyUUID, "completed", now.AddDate(0, 0, -90)).
		Group("job_items.service_name").
		Order("revenue desc").
		Limit(5).
		Scan(&summary.TopServices)

	// Top customers by lifetime spend
	config.DB.Model(&models.Customer{}).
		Select("name, total_jobs as jobs, total_spent as spent").
		Where("company_id = ? AND deleted_at IS NULL", companyUUID).
		Order("total_spent desc").
		Limit(5).
		Scan(&summary.TopCustomers)

	// Quick stats
	var totalCustomers, totalJobs int64
	config.DB.Model(&models.Customer{}).
		Where("company_id = ? AND deleted_at IS NULL", companyUUID).Count(&totalCustomers)
	config.DB.Model(&models.Job{}).
		Where("company_id = ? AND status = ?", companyUUID, "completed").Count(&totalJobs)

	summary.QuickStats.TotalCustomers = int(totalCustomers)
	summary.QuickStats.TotalJobs = int(totalJobs)
	if totalJobs > 0 {
		summary.QuickStats.AvgJobValue = summary.CurrentYearRevenue / float64(totalJobs)
	}

	var sent, failed int64
	config.DB.Model(&models.CommunicationLog{}).
		Where("company_id = ? AND status IN ?", companyUUID,
			[]string{models.CommStatusSent, models.CommStatusDelivered}).Count(&sent)
	config.DB.Model(&models.CommunicationLog{}).
		Where("company_id = ? AND status = ?", companyUUID, models.CommStatusFailed).Count(&failed)
	if sent+failed > 0 {
		summary.QuickStats.DeliveryRate = float64(sent) / float64(sent+failed) * 100
	}

	c.JSON(http.StatusOK, summary)
}

func (rc *ReportController) getRevenue(companyID uuid.UUID, from, to time.Time) float64 {
	var revenue float64
	config.DB.Model(&models.Job{}).
		Where("company_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			companyID, "completed", from, to).
		Select("COALESCE(SUM(total), 0)").Scan(&revenue)
	return revenue
}

func growth(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
