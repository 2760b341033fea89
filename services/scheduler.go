// services/scheduler.go
package services

import (
	"log"
	"os"
	"time"

	"cleanpro-backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartScheduler runs the dispatch job in-process every hour between 8 AM
// and 8 PM business time, for deployments without an external cron trigger.
func StartScheduler(db *gorm.DB) {
	c := cron.New(cron.WithLocation(utils.BusinessLocation()))

	_, err := c.AddFunc("0 8-20 * * *", func() {
		d := NewDispatcher(db, NewTwilioSender(), os.Getenv("TWILIO_PHONE_NUMBER"), utils.BusinessLocation())
		report, err := d.Run(time.Now())
		if err != nil {
			log.Printf("Scheduled reminder run failed: %v", err)
			return
		}
		log.Printf("Scheduled reminder run: processed=%d sent=%d skipped=%d failures=%d snoozed=%d",
			report.Processed, report.Sent, report.Skipped, report.Failures, report.Snoozed)
	})
	if err != nil {
		log.Printf("Failed to register reminder schedule: %v", err)
		return
	}

	c.Start()
	log.Println("Reminder scheduler started")
}
