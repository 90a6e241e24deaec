package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/models"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
	"github.com/Hasan197668/nis/pkg/response"
)

const maxWorkbookSize = 10 << 20

type tableService interface {
	Timetables(ctx context.Context) ([]models.TeacherTimetable, error)
	ReplaceTimetables(ctx context.Context, req dto.ReplaceTimetablesRequest) (*dto.TableWriteResponse, error)
	ImportTimetable(ctx context.Context, r io.Reader) (*dto.TableWriteResponse, error)
	Duties(ctx context.Context) ([]models.DutyAssignment, error)
	ReplaceDuties(ctx context.Context, req dto.ReplaceDutiesRequest) (*dto.TableWriteResponse, error)
	ImportDuties(ctx context.Context, r io.Reader) (*dto.TableWriteResponse, error)
	Baseline(ctx context.Context) ([]models.BaselineCount, error)
	ReplaceBaseline(ctx context.Context, req dto.ReplaceBaselineRequest) (*dto.TableWriteResponse, error)
}

// TableHandler manages the weekly timetable, duty and baseline tables.
type TableHandler struct {
	service tableService
}

// NewTableHandler constructs the handler.
func NewTableHandler(service tableService) *TableHandler {
	return &TableHandler{service: service}
}

// ListTimetables godoc
// @Summary List the weekly timetable
// @Tags Tables
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TableHandler) ListTimetables(c *gin.Context) {
	rows, err := h.service.Timetables(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ReplaceTimetables godoc
// @Summary Replace the weekly timetable
// @Tags Tables
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceTimetablesRequest true "Timetable"
// @Success 200 {object} response.Envelope
// @Router /timetables [put]
func (h *TableHandler) ReplaceTimetables(c *gin.Context) {
	var req dto.ReplaceTimetablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	result, err := h.service.ReplaceTimetables(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ImportTimetables godoc
// @Summary Import the weekly timetable from an xlsx workbook
// @Tags Tables
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook"
// @Success 200 {object} response.Envelope
// @Router /timetables/import [post]
func (h *TableHandler) ImportTimetables(c *gin.Context) {
	h.importWorkbook(c, h.service.ImportTimetable)
}

// ListDuties godoc
// @Summary List the duty table
// @Tags Tables
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /duties [get]
func (h *TableHandler) ListDuties(c *gin.Context) {
	rows, err := h.service.Duties(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ReplaceDuties godoc
// @Summary Replace the duty table
// @Tags Tables
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceDutiesRequest true "Duties"
// @Success 200 {object} response.Envelope
// @Router /duties [put]
func (h *TableHandler) ReplaceDuties(c *gin.Context) {
	var req dto.ReplaceDutiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid duty payload"))
		return
	}
	result, err := h.service.ReplaceDuties(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ImportDuties godoc
// @Summary Import the duty table from an xlsx workbook
// @Tags Tables
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook"
// @Success 200 {object} response.Envelope
// @Router /duties/import [post]
func (h *TableHandler) ImportDuties(c *gin.Context) {
	h.importWorkbook(c, h.service.ImportDuties)
}

// ListBaseline godoc
// @Summary List baseline substitution counts
// @Tags Tables
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /baseline [get]
func (h *TableHandler) ListBaseline(c *gin.Context) {
	rows, err := h.service.Baseline(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ReplaceBaseline godoc
// @Summary Replace baseline substitution counts
// @Tags Tables
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceBaselineRequest true "Baseline"
// @Success 200 {object} response.Envelope
// @Router /baseline [put]
func (h *TableHandler) ReplaceBaseline(c *gin.Context) {
	var req dto.ReplaceBaselineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid baseline payload"))
		return
	}
	result, err := h.service.ReplaceBaseline(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *TableHandler) importWorkbook(c *gin.Context, importFn func(context.Context, io.Reader) (*dto.TableWriteResponse, error)) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if fileHeader.Size > maxWorkbookSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "workbook is too large"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	result, err := importFn(c.Request.Context(), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
