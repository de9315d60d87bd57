package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduportal-api/internal/middleware"
	"github.com/noah-isme/eduportal-api/internal/service"
	"github.com/noah-isme/eduportal-api/pkg/response"
)

// ReportHandler exposes the derived report endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Summary godoc
// @Summary Enrollment summary report
// @Description Portal-wide application and enrollment counts with grade and gender breakdowns
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	start := time.Now()
	report, cacheHit, err := h.reports.EnrollmentSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, report, nil, meta)
}

// ClassList godoc
// @Summary Class list report
// @Description Enrolled students for one class
// @Tags Reports
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/class-list/{classId} [get]
func (h *ReportHandler) ClassList(c *gin.Context) {
	start := time.Now()
	report, cacheHit, err := h.reports.ClassList(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, report, nil, meta)
}

// Confirmation godoc
// @Summary Enrollment confirmation slip
// @Tags Reports
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /reports/confirmation/{enrollmentId} [get]
func (h *ReportHandler) Confirmation(c *gin.Context) {
	confirmation, err := h.reports.Confirmation(c.Request.Context(), c.Param("enrollmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, confirmation, nil)
}
