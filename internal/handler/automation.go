package handler

import (
	"net/http"
	"strconv"
	"time"

	"kecdesk/internal/apierror"
	"kecdesk/internal/dto"
	"kecdesk/internal/service"
	"kecdesk/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AutomationHandler triggers the daily notification run on demand.
type AutomationHandler struct {
	svc           service.NotificationService
	cal           service.Calendar
	allowOverride bool
}

// NewAutomationHandler builds the handler. allowDateOverride lets callers run
// the job for another day with ?date=; it is meant for non-production use.
func NewAutomationHandler(svc service.NotificationService, cal service.Calendar, allowDateOverride bool) *AutomationHandler {
	return &AutomationHandler{svc: svc, cal: cal, allowOverride: allowDateOverride}
}

// SendEmails GET /automation/send-emails?secret=…[&date=YYYY-MM-DD]
// POST /v1/automation/notifications/run
func (h *AutomationHandler) SendEmails(c *gin.Context) {
	today := h.cal.Today()
	if raw := c.Query("date"); raw != "" {
		if !h.allowOverride {
			c.JSON(http.StatusBadRequest, apierror.New("date override is disabled in production"))
			return
		}
		d, err := time.Parse(dto.DateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("date: expected YYYY-MM-DD"))
			return
		}
		today = d
	}

	res, err := h.svc.RunDailyNotifications(c.Request.Context(), today)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().
		Str("date", res.Date.Format(dto.DateLayout)).
		Int("actions", len(res.Actions)).
		Msg("daily notifications run via http")

	actions := res.Actions
	if actions == nil {
		actions = []string{}
	}
	c.JSON(http.StatusOK, dto.NotificationRunResponse{
		Date:              res.Date.Format(dto.DateLayout),
		DueTodayPOs:       res.DueTodayPOs,
		DueTodayInvoices:  res.DueTodayInvoices,
		OverduePOs:        res.OverduePOs,
		OverdueInvoices:   res.OverdueInvoices,
		FollowUpInquiries: res.FollowUpInquiries,
		Actions:           actions,
	})
}

// DeadLetters GET /v1/automation/dead-letters?limit=50
// Lists emails the queue gave up on, newest first.
func DeadLetters(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.JSON(http.StatusServiceUnavailable, apierror.New("email queue is not configured"))
			return
		}
		limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
		if err != nil || limit < 1 || limit > 500 {
			c.JSON(http.StatusBadRequest, apierror.New("limit: expected 1..500"))
			return
		}
		entries, err := worker.DeadLetters(c.Request.Context(), rdb, worker.QueueEmail, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entries})
	}
}
