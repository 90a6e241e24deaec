package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/models"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
	"github.com/Hasan197668/nis/pkg/response"
)

type historyService interface {
	List(ctx context.Context, query dto.HistoryQuery) ([]models.SubstitutionRecord, *models.Pagination, error)
	Leaderboard(ctx context.Context, query dto.LeaderboardQuery) (*models.Leaderboard, error)
	Reset(ctx context.Context) (int64, error)
}

// HistoryHandler serves the substitution log and statistics.
type HistoryHandler struct {
	service historyService
}

// NewHistoryHandler constructs the handler.
func NewHistoryHandler(service historyService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// List godoc
// @Summary List substitution history
// @Tags History
// @Produce json
// @Param teacher query string false "Absent or substitute teacher"
// @Param since query int false "Unix milliseconds lower bound"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	var query dto.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid history query"))
		return
	}
	records, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Reset godoc
// @Summary Purge the substitution history
// @Tags History
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /history [delete]
func (h *HistoryHandler) Reset(c *gin.Context) {
	removed, err := h.service.Reset(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.HistoryResetResponse{Removed: removed}, nil)
}

// Leaderboard godoc
// @Summary Rank substitutes over a rolling window
// @Tags History
// @Produce json
// @Param period query string false "weekly or monthly"
// @Success 200 {object} response.Envelope
// @Router /stats/leaderboard [get]
func (h *HistoryHandler) Leaderboard(c *gin.Context) {
	var query dto.LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid leaderboard query"))
		return
	}
	board, err := h.service.Leaderboard(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}
