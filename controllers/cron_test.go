package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/routes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:cron_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.OptOut{},
		&models.Reminder{},
		&models.MessageTemplate{},
		&models.CommunicationLog{},
		&models.AuditLog{},
	))
	config.DB = db

	return routes.SetupRouter()
}

func TestSendRemindersRejectsGet(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cron/send-reminders", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSendRemindersRequiresConfiguredSecret(t *testing.T) {
	router := newTestRouter(t)
	t.Setenv("CRON_SECRET", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cron/send-reminders", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSendRemindersRejectsBadToken(t *testing.T) {
	router := newTestRouter(t)
	t.Setenv("CRON_SECRET", "topsecret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cron/send-reminders", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSendRemindersEmptyBatch(t *testing.T) {
	router := newTestRouter(t)
	t.Setenv("CRON_SECRET", "topsecret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cron/send-reminders", nil)
	req.Header.Set("Authorization", "Bearer topsecret")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.EqualValues(t, 0, body["processed"])
	assert.EqualValues(t, 0, body["sent"])
}
