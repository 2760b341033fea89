// controllers/cron.go
package controllers

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/services"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// SendReminders is the cron trigger for the reminder dispatch job. It is
// authenticated with a shared secret rather than a user JWT, so it sits
// outside the normal auth middleware.
func SendReminders(c *gin.Context) {
	secret := os.Getenv("CRON_SECRET")
	if secret == "" {
		utils.RespondWithError(c, http.StatusInternalServerError, "CRON_SECRET not configured")
		return
	}

	token := c.GetHeader("Authorization")
	if len(token) > 7 && strings.ToUpper(token[0:6]) == "BEARER" {
		token = token[7:]
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid cron token")
		return
	}

	dispatcher := services.NewDispatcher(
		config.DB,
		services.NewTwilioSender(),
		os.Getenv("TWILIO_PHONE_NUMBER"),
		utils.BusinessLocation(),
	)

	report, err := dispatcher.Run(time.Now())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, report)
}
