package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hitoha/lifequest-api/internal/calendar"
	"github.com/hitoha/lifequest-api/internal/constants"
	apierrors "github.com/hitoha/lifequest-api/internal/errors"
)

// CalendarHandler exposes holiday/weekend/workday classification.
type CalendarHandler struct {
	calendarService *calendar.Service
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(calendarService *calendar.Service) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
	}
}

// GetDayType classifies the date given in the `date` query parameter;
// today when absent.
func (h *CalendarHandler) GetDayType(c *gin.Context) {
	date := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse(constants.TaskDateLayout, dateStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	c.JSON(http.StatusOK, gin.H{
		"date":     date.Format(constants.TaskDateLayout),
		"day_type": h.calendarService.Classify(date),
	})
}
