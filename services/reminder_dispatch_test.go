package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"cleanpro-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:dispatch_test_%d?mode=memory&cache=shared",
		atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Company{},
		&models.Customer{},
		&models.OptOut{},
		&models.Service{},
		&models.Job{},
		&models.JobItem{},
		&models.Reminder{},
		&models.MessageTemplate{},
		&models.CommunicationLog{},
		&models.AuditLog{},
	))
	return db
}

func seedCompany(t *testing.T, db *gorm.DB) models.Company {
	t.Helper()
	company := models.Company{ID: uuid.New(), Name: "Fresh Step Carpet Care"}
	require.NoError(t, db.Create(&company).Error)
	return company
}

func seedCustomer(t *testing.T, db *gorm.DB, company models.Company, name, phone string) models.Customer {
	t.Helper()
	customer := models.Customer{
		ID:              uuid.New(),
		CompanyID:       company.ID,
		CreatedByUserID: uuid.New(),
		Name:            name,
		Phone:           phone,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func seedReminder(t *testing.T, db *gorm.DB, company models.Company, customer models.Customer, due time.Time) models.Reminder {
	t.Helper()
	reminder := models.Reminder{
		CompanyID:     company.ID,
		CustomerID:    customer.ID,
		Type:          "job_reminder",
		ScheduledDate: due,
		Status:        models.ReminderStatusPending,
	}
	require.NoError(t, db.Create(&reminder).Error)
	return reminder
}

func reloadReminder(t *testing.T, db *gorm.DB, id uuid.UUID) models.Reminder {
	t.Helper()
	var r models.Reminder
	require.NoError(t, db.First(&r, "id = ?", id).Error)
	return r
}

// 10 AM UTC, outside the 9PM-8AM quiet window.
var daytime = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func TestRunSendsDueReminders(t *testing.T) {
	db := setupTestDB(t)
	company := seedCompany(t, db)
	sender := NewMockSender()
	sender.FailNumbers["+15550000003"] = true

	var reminders []models.Reminder
	for i := 1; i <= 3; i++ {
		customer := seedCustomer(t, db, company,
			fmt.Sprintf("Customer %d", i), fmt.Sprintf("+1555000000%d", i))
		reminders = append(reminders, seedReminder(t, db, company, customer, daytime))
	}

	d := NewDispatcher(db, sender, "+15559990000", time.UTC)
	report, err := d.Run(daytime)
	require.NoError(t, err)

	assert.True(t, report.OK)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failures)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Snoozed)
	assert.Len(t, sender.SentMessages(), 2)

	// Successful sends are completed and unlocked
	for _, r := range reminders[:2] {
		got := reloadReminder(t, db, r.ID)
		assert.Equal(t, models.ReminderStatusCompleted, got.Status)
		assert.Nil(t, got.LockedAt)
		assert.Equal(t, 1, got.AttemptCount)
	}

	// The failed send stays pending, unlocked, eligible for retry
	failed := reloadReminder(t, db, reminders[2].ID)
	assert.Equal(t, models.ReminderStatusPending, failed.Status)
	assert.Nil(t, failed.LockedAt)
	assert.Equal(t, 1, failed.AttemptCount)

	// Ledger has one row per attempt, keyed deterministically
	var ledger models.CommunicationLog
	require.NoError(t, db.First(&ledger,
		"provider_message_id = ?", fmt.Sprintf("reminder:%s:1", failed.ID)).Error)
	assert.Equal(t, models.CommStatusFailed, ledger.Status)
	assert.NotEmpty(t, ledger.ErrorMessage)

	// One audit row per reminder plus one for the run
	var auditCount int64
	db.Model(&models.AuditLog{}).Where("action = ?", "reminder_processed").Count(&auditCount)
	assert.EqualValues(t, 3, auditCount)
	db.Model(&models.AuditLog{}).Where("action = ?", "cron_run").Count(&auditCount)
	assert.EqualValues(t, 1, auditCount)
}

func TestRunUsesTemplateBody(t *testing.T) {
	db := setupTestDB(t)
	company := seedCompany(t, db)
	customer := seedCustomer(t, db, company, "Dana", "+15550000010")
	seedReminder(t, db, company, customer, daytime)

	require.NoError(t, db.Create(&models.MessageTemplate{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Type:      "job_reminder",
		Body:      "Hi [CustomerName], see you soon!",
		IsActive:  true,
	}).Error)

	sender := NewMockSender()
	d := NewDispatcher(db, sender, "+15559990000", time.UTC)
	_, err := d.Run(daytime)
	require.NoError(t, err)

	messages := sender.SentMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Hi Dana, see you soon!", messages[0].Body)
	assert.Equal(t, "+15550000010", messages[0].To)
	assert.Equal(t, "+15559990000", messages[0].From)
}

func TestQuietHoursSnoozesBatch(t *testing.T) {
	db := setupTestDB(t)
	company := seedCompany(t, db)
	sender := NewMockSender()

	var reminders []models.Reminder
	for i := 1; i <= 2; i++ {
		customer := seedCustomer(t, db, company,
			fmt.Sprintf("Night Owl %d", i), fmt.Sprintf("+1555000010%d", i))
		reminders = append(reminders, seedReminder(t, db, company, customer, daytime))
	}

	night := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)
	d := NewDispatcher(db, sender, "+15559990000", time.UTC)
	report, err := d.Run(night)
	require.NoError(t, err)

	assert.True(t, report.OK)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 2, report.Snoozed)
	assert.Equal(t, "quiet_hours", report.Reason)
	assert.Empty(t, sender.SentMessages())

	wantSnooze := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	for _, r := range reminders {
		got := reloadReminder(t, db, r.ID)
		assert.Equal(t, models.ReminderStatusPending, got.Status)
		assert.Nil(t, got.LockedAt)
		assert.Equal(t, 1, got.AttemptCount)
		require.NotNil(t, got.SnoozedUntil)
		assert.True(t, got.SnoozedUntil.Equal(wantSnooze),
			"snoozed_until = %v, want %v", got.SnoozedUntil, wantSnooze)
	}
}

func TestSelectorExclusions(t *testing.T) {
	db := setupTestDB(t)
	company := seedCompany(t, db)

	// Exhausted attempts
	exhausted := seedCustomer(t, db, company, "Exhausted", "+15550000021")
	r1 := seedReminder(t, db, company, exhausted, daytime)
	db.Model(&models.Reminder{}).Where("id = ?", r1.ID).Update("attempt_count", MaxAttempts)

	// Locked by another run
	locked := seedCustomer(t, db, company, "Locked", "+15550000022")
	r2 := seedReminder(t, db, company, locked, daytime)
	db.Model(&models.Reminder{}).Where("id = ?", r2.ID).Update("locked_at", daytime)

	// Snoozed into the future
	snoozed := seedCustomer(t, db, company, "Snoozed", "+15550000023")
	r3 := seedReminder(t, db, company, snoozed, daytime)
	db.Model(&models.Reminder{}).Where("id = ?", r3.ID).Update("snoozed_until", daytime.Add(4*time.Hour))

	// Opted out
	opted := seedCustomer(t, db, company, "Opted Out", "+15550000024")
	seedReminder(t, db, company, opted, daytime)
	require.NoError(t, db.Create(&models.OptOut{
		CompanyID: company.ID,
		Phone:     opted.Phone,
		Reason:    "customer_request",
	}).Error)

	// Not due yet
	future := seedCustomer(t, db, company, "Future", "+15550000025")
	seedReminder(t, db, company, future, daytime.AddDate(0, 0, 2))

	sender := NewMockSender()
	d := NewDispatcher(db, sender, "+15559990000", time.UTC)
	report, err := d.Run(daytime)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 0, report.Sent)
	assert.Empty(t, sender.SentMessages())
}

func TestExpiredSnoozeIsEligibleAgain(t *testing.T) {
	db := setupTestDB(t)
	company := seedCompany(t, db)
	customer := seedCustomer(t, db, company, "Morning", "+15550000031")
	r := seedReminder(t, db, company, customer, daytime)
	db.Model(&models.Reminder{}).Where("id = ?", r.ID).
		Update("snoozed_until", daytime.Add(-time.Hour))

	sender := NewMockSender()
	d := NewDispatcher(db, sender, "+15559990000", time.UTC)
	report, err := d.Run(daytime)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Sent)
	assert.Len(t, sender.SentMessages(), 1)
}

func TestIdempotentSkipAfterCrash(t *testing.T) {
	db := setupTestDB(t)
	company := seedCompany(t, db)
	customer := seedCustomer(t, db, company, "Crashed", "+15550000041")
	r := seedReminder(t, db, company, customer, daytime)

	// A prior run delivered attempt 1, wrote the ledger, then crashed
	// before completing the reminder (and the lock expired upstream).
	require.NoError(t, db.Create(&models.CommunicationLog{
		CompanyID:         company.ID,
		CustomerID:        customer.ID,
		ReminderID:        &r.ID,
		ProviderMessageID: fmt.Sprintf("reminder:%s:1", r.ID),
		Status:            models.CommStatusSent,
		SentAt:            daytime.Add(-time.Hour),
	}).Error)

	sender := NewMockSender()
	d := NewDispatcher(db, sender, "+15559990000", time.UTC)
	report, err := d.Run(daytime)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Sent)
	assert.Empty(t, sender.SentMessages(), "no second outbound SMS for the same attempt")

	got := reloadReminder(t, db, r.ID)
	assert.Equal(t, models.ReminderStatusCompleted, got.Status)
	assert.Nil(t, got.LockedAt)
}

func TestNoPhoneCompletesWithoutSend(t *testing.T) {
	db := setupTestDB(t)
	company := seedCompany(t, db)
	customer := seedCustomer(t, db, company, "No Phone", "")
	r := seedReminder(t, db, company, customer, daytime)

	sender := NewMockSender()
	d := NewDispatcher(db, sender, "+15559990000", time.UTC)
	report, err := d.Run(daytime)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Sent)
	assert.Empty(t, sender.SentMessages())

	got := reloadReminder(t, db, r.ID)
	assert.Equal(t, models.ReminderStatusCompleted, got.Status)
}

func TestClaimLosesRaceOnLockedRow(t *testing.T) {
	db := setupTestDB(t)
	company := seedCompany(t, db)
	customer := seedCustomer(t, db, company, "Raced", "+15550000051")
	r := seedReminder(t, db, company, customer, daytime)

	d := NewDispatcher(db, NewMockSender(), "+15559990000", time.UTC)

	first := r
	assert.True(t, d.claim(&first, daytime))
	assert.Equal(t, 1, first.AttemptCount)

	// A second claim against the same row must be rejected
	second := reloadReminder(t, db, r.ID)
	second.LockedAt = nil // simulate a stale in-memory copy from selection
	assert.False(t, d.claim(&second, daytime))

	got := reloadReminder(t, db, r.ID)
	assert.Equal(t, 1, got.AttemptCount, "losing claim must not bump the attempt count")
}

func TestEmptyBatchIsNormalRun(t *testing.T) {
	db := setupTestDB(t)
	seedCompany(t, db)

	d := NewDispatcher(db, NewMockSender(), "+15559990000", time.UTC)
	report, err := d.Run(daytime)
	require.NoError(t, err)

	assert.True(t, report.OK)
	assert.Equal(t, 0, report.Processed)

	var runAudits int64
	db.Model(&models.AuditLog{}).Where("action = ?", "cron_run").Count(&runAudits)
	assert.EqualValues(t, 1, runAudits)
}
