// services/reminder_dispatch.go
//
// The reminder dispatch job. Invoked by the cron endpoint (or the optional
// in-process scheduler), it claims due reminders one at a time with a
// conditional update, renders the message, sends it through the Sender and
// records every attempt in the communication ledger and the audit trail.
//
// Two invocations may overlap; the `locked_at IS NULL` guard on the claim
// update is the only concurrency control. A claim that affects zero rows
// lost the race and is dropped from this run's working set.
package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	BatchSize   = 50
	MaxAttempts = 3
)

// RunReport is the JSON body returned to the cron trigger.
type RunReport struct {
	OK        bool     `json:"ok"`
	Processed int      `json:"processed"`
	Sent      int      `json:"sent"`
	Skipped   int      `json:"skipped"`
	Failures  int      `json:"failures"`
	Snoozed   int      `json:"snoozed,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Debug     []string `json:"debug,omitempty"`
}

type Dispatcher struct {
	db     *gorm.DB
	sender Sender
	from   string
	loc    *time.Location
}

func NewDispatcher(db *gorm.DB, sender Sender, from string, loc *time.Location) *Dispatcher {
	if loc == nil {
		loc = utils.BusinessLocation()
	}
	return &Dispatcher{db: db, sender: sender, from: from, loc: loc}
}

// Run processes one batch of due reminders. A selection error is fatal for
// the whole run (nothing has been locked yet); everything after that is
// recovered per reminder.
func (d *Dispatcher) Run(now time.Time) (*RunReport, error) {
	local := now.In(d.loc)

	reminders, err := d.selectDue(local)
	if err != nil {
		return nil, fmt.Errorf("select due reminders: %w", err)
	}

	report := &RunReport{OK: true}

	if len(reminders) == 0 {
		d.auditRun(report)
		return report, nil
	}

	if utils.IsQuietHours(local) {
		report.Snoozed = d.snoozeBatch(reminders, local)
		report.Reason = "quiet_hours"
		d.auditRun(report)
		return report, nil
	}

	for i := range reminders {
		d.process(&reminders[i], local, report)
	}

	d.auditRun(report)
	return report, nil
}

// selectDue returns up to BatchSize pending reminders that are due today,
// unlocked, not snoozed, below the attempt cap and not opted out.
func (d *Dispatcher) selectDue(now time.Time) ([]models.Reminder, error) {
	optedOut := d.db.Model(&models.OptOut{}).Select("phone")

	var reminders []models.Reminder
	err := d.db.Model(&models.Reminder{}).
		Select("reminders.*").
		Joins("JOIN customers ON customers.id = reminders.customer_id").
		Where("reminders.status = ?", models.ReminderStatusPending).
		Where("reminders.scheduled_date <= ?", utils.EndOfDay(now)).
		Where("reminders.attempt_count < ?", MaxAttempts).
		Where("reminders.locked_at IS NULL").
		Where("reminders.snoozed_until IS NULL OR reminders.snoozed_until <= ?", now).
		Where("customers.phone = '' OR customers.phone NOT IN (?)", optedOut).
		Order("reminders.scheduled_date asc").
		Limit(BatchSize).
		Find(&reminders).Error
	return reminders, err
}

// claim locks one reminder and bumps its attempt count, guarded by
// `locked_at IS NULL`. RowsAffected != 1 means a concurrent run got there
// first and the reminder is dropped from this run.
func (d *Dispatcher) claim(r *models.Reminder, now time.Time) bool {
	res := d.db.Model(&models.Reminder{}).
		Where("id = ? AND locked_at IS NULL", r.ID).
		Updates(map[string]interface{}{
			"locked_at":     now,
			"attempt_count": gorm.Expr("attempt_count + 1"),
		})
	if res.Error != nil {
		log.Printf("Failed to claim reminder %s: %v", r.ID, res.Error)
		return false
	}
	if res.RowsAffected != 1 {
		return false
	}
	lockedAt := now
	r.LockedAt = &lockedAt
	r.AttemptCount++
	return true
}

// snoozeBatch defers the whole batch to the next quiet-hours end. Each row
// is claimed first so an overlapping run cannot double-snooze it, then
// snoozed and unlocked in a single update so a crash in between cannot
// strand a locked row.
func (d *Dispatcher) snoozeBatch(reminders []models.Reminder, now time.Time) int {
	next := utils.NextQuietHoursEnd(now)
	snoozed := 0

	for i := range reminders {
		r := &reminders[i]
		if !d.claim(r, now) {
			continue
		}

		err := d.db.Model(&models.Reminder{}).
			Where("id = ?", r.ID).
			Updates(map[string]interface{}{
				"snoozed_until": next,
				"locked_at":     nil,
			}).Error
		if err != nil {
			log.Printf("Failed to snooze reminder %s: %v", r.ID, err)
			continue
		}

		snoozed++
		d.audit(r, "reminder_snoozed", models.JSONB{
			"result":        "snoozed",
			"attempt":       r.AttemptCount,
			"snoozed_until": next.Format(time.RFC3339),
		})
	}

	return snoozed
}

// process handles one reminder: claim, idempotency check, render, send,
// ledger and audit. Failures unlock the reminder for retry on a later run.
func (d *Dispatcher) process(r *models.Reminder, now time.Time, report *RunReport) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Recovered while processing reminder %s: %v", r.ID, rec)
			report.Failures++
			d.unlock(r)
			d.upsertLedger(r, "", "", models.CommStatusFailed, "", fmt.Sprintf("panic: %v", rec))
			d.audit(r, "reminder_processed", models.JSONB{
				"result":  "failed",
				"error":   fmt.Sprintf("panic: %v", rec),
				"attempt": r.AttemptCount,
			})
		}
	}()

	if !d.claim(r, now) {
		report.Skipped++
		d.audit(r, "reminder_processed", models.JSONB{
			"result":  "lock_lost",
			"attempt": r.AttemptCount,
		})
		return
	}
	report.Processed++

	// Idempotency ledger: a prior run may have delivered this attempt and
	// crashed before completing the reminder.
	key := ledgerKey(r)
	var prior models.CommunicationLog
	err := d.db.Where("provider_message_id = ?", key).First(&prior).Error
	if err == nil && (prior.Status == models.CommStatusSent || prior.Status == models.CommStatusDelivered) {
		if err := d.complete(r); err != nil {
			log.Printf("Failed to complete reminder %s: %v", r.ID, err)
		}
		report.Sent++
		d.audit(r, "reminder_processed", models.JSONB{
			"result":  "already_sent",
			"attempt": r.AttemptCount,
		})
		return
	}

	var customer models.Customer
	if err := d.db.First(&customer, "id = ?", r.CustomerID).Error; err != nil {
		report.Failures++
		d.unlock(r)
		d.audit(r, "reminder_processed", models.JSONB{
			"result":  "failed",
			"error":   "customer lookup: " + err.Error(),
			"attempt": r.AttemptCount,
		})
		return
	}

	if strings.TrimSpace(customer.Phone) == "" {
		// Nothing to send to. Complete so the row stops coming back.
		if err := d.complete(r); err != nil {
			log.Printf("Failed to complete reminder %s: %v", r.ID, err)
		}
		report.Skipped++
		d.audit(r, "reminder_processed", models.JSONB{
			"result":  "no_phone",
			"attempt": r.AttemptCount,
		})
		return
	}

	body := d.render(r, &customer)

	sid, sendErr := d.sender.Send(customer.Phone, d.from, body)
	if sendErr != nil {
		report.Failures++
		d.unlock(r)
		d.upsertLedger(r, customer.Phone, body, models.CommStatusFailed, "", sendErr.Error())
		d.audit(r, "reminder_processed", models.JSONB{
			"result":  "failed",
			"error":   sendErr.Error(),
			"attempt": r.AttemptCount,
		})
		return
	}

	if err := d.complete(r); err != nil {
		log.Printf("Failed to complete reminder %s after send: %v", r.ID, err)
	}
	report.Sent++
	d.upsertLedger(r, customer.Phone, body, models.CommStatusSent, sid, "")
	d.audit(r, "reminder_processed", models.JSONB{
		"result":  "sent",
		"sid":     sid,
		"attempt": r.AttemptCount,
	})
}

// render builds the outgoing text. Precedence: explicit body, then the
// company template for the reminder type, then a generic fallback.
func (d *Dispatcher) render(r *models.Reminder, customer *models.Customer) string {
	var templateBody string
	var template models.MessageTemplate
	err := d.db.Where("company_id = ? AND type = ? AND is_active = true", r.CompanyID, r.Type).
		First(&template).Error
	if err == nil {
		templateBody = template.Body
	}

	var job *models.Job
	if r.JobID != nil {
		var j models.Job
		if err := d.db.First(&j, "id = ?", *r.JobID).Error; err == nil {
			job = &j
		}
	}

	return RenderMessage(r, customer, job, templateBody)
}

// RenderMessage is the pure rendering step. It never fails: an unknown type
// with no template falls through to the generic fallback.
func RenderMessage(r *models.Reminder, customer *models.Customer, job *models.Job, template string) string {
	if strings.TrimSpace(r.Body) != "" {
		return r.Body
	}

	if strings.TrimSpace(template) != "" {
		msg := strings.ReplaceAll(template, "[CustomerName]", customer.Name)
		if job != nil {
			msg = strings.ReplaceAll(msg, "[JobDate]", job.ScheduledDate.Format("Monday, Jan 2"))
			msg = strings.ReplaceAll(msg, "[ArrivalWindow]", job.ArrivalWindow())
		}
		return msg
	}

	return fmt.Sprintf("Hi %s, this is a reminder from your carpet cleaning service. Reply STOP to opt out.", customer.Name)
}

// ledgerKey is the deterministic idempotency key, unique per
// (reminder, attempt) pair.
func ledgerKey(r *models.Reminder) string {
	return fmt.Sprintf("reminder:%s:%d", r.ID, r.AttemptCount)
}

func (d *Dispatcher) complete(r *models.Reminder) error {
	return d.db.Model(&models.Reminder{}).
		Where("id = ?", r.ID).
		Updates(map[string]interface{}{
			"status":    models.ReminderStatusCompleted,
			"locked_at": nil,
		}).Error
}

// unlock releases the row lock; the reminder stays pending and retries on a
// later run until it hits MaxAttempts.
func (d *Dispatcher) unlock(r *models.Reminder) {
	err := d.db.Model(&models.Reminder{}).
		Where("id = ?", r.ID).
		Update("locked_at", nil).Error
	if err != nil {
		log.Printf("Failed to unlock reminder %s: %v", r.ID, err)
	}
}

func (d *Dispatcher) upsertLedger(r *models.Reminder, to, body, status, sid, errMsg string) {
	entry := models.CommunicationLog{
		CompanyID:         r.CompanyID,
		CustomerID:        r.CustomerID,
		ReminderID:        &r.ID,
		ProviderMessageID: ledgerKey(r),
		ProviderSID:       sid,
		ToNumber:          to,
		FromNumber:        d.from,
		Body:              body,
		Status:            status,
		ErrorMessage:      errMsg,
		Channel:           "sms",
		SentAt:            time.Now(),
	}

	err := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "provider_sid", "error_message", "body", "sent_at",
		}),
	}).Create(&entry).Error
	if err != nil {
		log.Printf("Failed to record communication log for reminder %s: %v", r.ID, err)
	}
}

func (d *Dispatcher) audit(r *models.Reminder, action string, meta models.JSONB) {
	entry := models.AuditLog{
		CompanyID: &r.CompanyID,
		Action:    action,
		Entity:    "reminder",
		EntityID:  r.ID.String(),
		Meta:      meta,
	}
	if err := d.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to write audit log for reminder %s: %v", r.ID, err)
	}
}

// auditRun writes the one-per-run audit row the SLO alerting job reads.
func (d *Dispatcher) auditRun(report *RunReport) {
	entry := models.AuditLog{
		Action:   "cron_run",
		Entity:   "cron",
		EntityID: "send-reminders",
		Meta: models.JSONB{
			"processed": report.Processed,
			"sent":      report.Sent,
			"skipped":   report.Skipped,
			"failures":  report.Failures,
			"snoozed":   report.Snoozed,
			"reason":    report.Reason,
		},
	}
	if err := d.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to write cron run audit log: %v", err)
	}
}
