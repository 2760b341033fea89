package services

import (
	"testing"
	"time"

	"cleanpro-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderMessageExplicitBodyWinsUnmodified(t *testing.T) {
	body := "Custom text with [CustomerName] left alone"
	r := &models.Reminder{Type: "job_reminder", Body: body}
	customer := &models.Customer{Name: "Alex"}

	got := RenderMessage(r, customer, nil, "Hi [CustomerName]")
	assert.Equal(t, body, got, "explicit body must be returned exactly as stored")
}

func TestRenderMessageTemplateSubstitution(t *testing.T) {
	r := &models.Reminder{Type: "job_reminder"}
	customer := &models.Customer{Name: "Alex"}
	job := &models.Job{
		ScheduledDate:      time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		ArrivalWindowStart: "09:00",
		ArrivalWindowEnd:   "11:00",
	}

	got := RenderMessage(r, customer, job,
		"Hi [CustomerName], we arrive [JobDate] between [ArrivalWindow].")
	assert.Equal(t, "Hi Alex, we arrive Wednesday, Mar 11 between 09:00-11:00.", got)
}

func TestRenderMessageTemplateWithoutJob(t *testing.T) {
	r := &models.Reminder{Type: "followup"}
	customer := &models.Customer{Name: "Alex"}

	got := RenderMessage(r, customer, nil, "Thanks [CustomerName]!")
	assert.Equal(t, "Thanks Alex!", got)
}

func TestRenderMessageFallback(t *testing.T) {
	r := &models.Reminder{Type: "unknown_type"}
	customer := &models.Customer{Name: "Alex"}

	got := RenderMessage(r, customer, nil, "")
	assert.Contains(t, got, "Alex")
	assert.Contains(t, got, "STOP", "fallback must carry the opt-out instruction")
}

func TestRenderMessageWhitespaceBodyFallsThrough(t *testing.T) {
	r := &models.Reminder{Type: "job_reminder", Body: "   "}
	customer := &models.Customer{Name: "Alex"}

	got := RenderMessage(r, customer, nil, "Hi [CustomerName]")
	assert.Equal(t, "Hi Alex", got)
}
