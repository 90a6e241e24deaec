package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Hasan197668/nis/internal/service"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
	"github.com/Hasan197668/nis/pkg/response"
)

type reportDownloader interface {
	ResolveDownload(token string) (*service.ReportDownload, error)
}

// ReportHandler serves archived daily sheets.
type ReportHandler struct {
	service reportDownloader
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportDownloader) *ReportHandler {
	return &ReportHandler{service: service}
}

// Download godoc
// @Summary Download an archived daily sheet via signed token
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Success 202 {object} response.Envelope
// @Router /reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.ResolveDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	var size int64 = -1
	if info, statErr := result.File.Stat(); statErr == nil {
		size = info.Size()
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, "application/pdf", result.File, nil)
}
