package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/service"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
	"github.com/Hasan197668/nis/pkg/response"
)

type planningService interface {
	Open(ctx context.Context, req dto.OpenSessionRequest) (*dto.SessionView, error)
	Get(ctx context.Context, id string) (*dto.SessionView, error)
	SetDay(ctx context.Context, id string, req dto.SetDayRequest) (*dto.SessionView, error)
	SetWeekOffset(ctx context.Context, id string, req dto.SetWeekRequest) (*dto.SessionView, error)
	ToggleAbsence(ctx context.Context, id string, req dto.TeacherRequest) (*dto.SessionView, error)
	SetReason(ctx context.Context, id string, req dto.SetReasonRequest) (*dto.SessionView, error)
	ToggleDuty(ctx context.Context, id string, req dto.TeacherRequest) (*dto.SessionView, error)
	Execute(ctx context.Context, id string) (*dto.SessionView, error)
	SetCell(ctx context.Context, id string, req dto.SetCellRequest) (*dto.SessionView, error)
	Candidates(ctx context.Context, id string, query dto.CandidateQuery) ([]dto.CandidateView, error)
	Commit(ctx context.Context, id string) (*dto.CommitResponse, error)
	ShareText(ctx context.Context, id string) (string, error)
	Share(ctx context.Context, id string) (*dto.ShareResponse, error)
	Export(ctx context.Context, id, format string) (*service.ExportFile, error)
}

// SessionHandler exposes planning session endpoints.
type SessionHandler struct {
	service planningService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service planningService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Open godoc
// @Summary Open a planning session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.OpenSessionRequest false "Day and week"
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
			return
		}
	}
	view, err := h.service.Open(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Get godoc
// @Summary Get a planning session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

// SetDay godoc
// @Summary Change the planned day
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SetDayRequest true "Day"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/day [put]
func (h *SessionHandler) SetDay(c *gin.Context) {
	var req dto.SetDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day payload"))
		return
	}
	view, err := h.service.SetDay(c.Request.Context(), c.Param("id"), req)
	h.respond(c, view, err)
}

// SetWeek godoc
// @Summary Change the planned week
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SetWeekRequest true "Week offset"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/week [put]
func (h *SessionHandler) SetWeek(c *gin.Context) {
	var req dto.SetWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid week payload"))
		return
	}
	view, err := h.service.SetWeekOffset(c.Request.Context(), c.Param("id"), req)
	h.respond(c, view, err)
}

// ToggleAbsence godoc
// @Summary Mark or unmark a teacher as absent
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.TeacherRequest true "Teacher"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/absences/toggle [post]
func (h *SessionHandler) ToggleAbsence(c *gin.Context) {
	var req dto.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid absence payload"))
		return
	}
	view, err := h.service.ToggleAbsence(c.Request.Context(), c.Param("id"), req)
	h.respond(c, view, err)
}

// SetReason godoc
// @Summary Record the reason of an absence
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SetReasonRequest true "Reason"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/absences/reason [put]
func (h *SessionHandler) SetReason(c *gin.Context) {
	var req dto.SetReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reason payload"))
		return
	}
	view, err := h.service.SetReason(c.Request.Context(), c.Param("id"), req)
	h.respond(c, view, err)
}

// ToggleDuty godoc
// @Summary Override a teacher's duty status for the day
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.TeacherRequest true "Teacher"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/duty/toggle [post]
func (h *SessionHandler) ToggleDuty(c *gin.Context) {
	var req dto.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid duty payload"))
		return
	}
	view, err := h.service.ToggleDuty(c.Request.Context(), c.Param("id"), req)
	h.respond(c, view, err)
}

// Execute godoc
// @Summary Run automatic substitute assignment
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/plan [post]
func (h *SessionHandler) Execute(c *gin.Context) {
	view, err := h.service.Execute(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

// SetCell godoc
// @Summary Manually set one plan cell
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SetCellRequest true "Cell"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/plan/cells [put]
func (h *SessionHandler) SetCell(c *gin.Context) {
	var req dto.SetCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan cell payload"))
		return
	}
	view, err := h.service.SetCell(c.Request.Context(), c.Param("id"), req)
	h.respond(c, view, err)
}

// Candidates godoc
// @Summary List substitute candidates for a cell
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param hourId query string true "Lesson hour"
// @Param absentId query string true "Absent teacher"
// @Param q query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/plan/candidates [get]
func (h *SessionHandler) Candidates(c *gin.Context) {
	var query dto.CandidateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid candidate query"))
		return
	}
	candidates, err := h.service.Candidates(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}

// Commit godoc
// @Summary Write the plan to the substitution history
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} response.Envelope
// @Router /sessions/{id}/commit [post]
func (h *SessionHandler) Commit(c *gin.Context) {
	result, err := h.service.Commit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ShareText godoc
// @Summary Render the plan as a chat message
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/share-text [get]
func (h *SessionHandler) ShareText(c *gin.Context) {
	text, err := h.service.ShareText(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ShareTextResponse{Text: text}, nil)
}

// Share godoc
// @Summary Post the plan to the staff channel
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} response.Envelope
// @Router /sessions/{id}/share [post]
func (h *SessionHandler) Share(c *gin.Context) {
	result, err := h.service.Share(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}

// Export godoc
// @Summary Download the daily substitution sheet
// @Tags Sessions
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /sessions/{id}/export [get]
func (h *SessionHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func (h *SessionHandler) respond(c *gin.Context, view *dto.SessionView, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
