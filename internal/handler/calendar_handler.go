package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/models"
	"github.com/Hasan197668/nis/internal/substitution"
	"github.com/Hasan197668/nis/pkg/config"
	"github.com/Hasan197668/nis/pkg/response"
)

// CalendarHandler serves the fixed school day grid.
type CalendarHandler struct {
	school   config.SchoolConfig
	location *time.Location
	now      func() time.Time
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(school config.SchoolConfig) *CalendarHandler {
	return &CalendarHandler{school: school, location: school.Location(), now: time.Now}
}

// Calendar godoc
// @Summary Lesson hours and school days
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar [get]
func (h *CalendarHandler) Calendar(c *gin.Context) {
	now := h.now().In(h.location)
	today := substitution.TodayWeekDay(now)
	reasons := models.AbsenceReasons()
	labels := make([]string, len(reasons))
	for i, r := range reasons {
		labels[i] = string(r)
	}
	response.JSON(c, http.StatusOK, dto.CalendarResponse{
		LessonHours:    substitution.LessonHours(),
		WeekDays:       substitution.WeekDays(),
		Today:          today,
		Week:           substitution.WeekNumber(now),
		Date:           substitution.DateForDay(now, today, 0),
		AbsenceReasons: labels,
		SchoolName:     h.school.Name,
		AcademicYear:   h.school.AcademicYear,
	}, nil)
}
