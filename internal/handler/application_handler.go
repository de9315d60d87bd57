package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/service"
	appErrors "github.com/noah-isme/eduportal-api/pkg/errors"
	"github.com/noah-isme/eduportal-api/pkg/response"
)

// ApplicationHandler exposes the admission application endpoints.
type ApplicationHandler struct {
	applications *service.ApplicationService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// Submit godoc
// @Summary Submit an admission application
// @Description Validates the admission form and creates a submitted application
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body service.ApplicationSubmission true "Admission form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var sub service.ApplicationSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}

	application, err := h.applications.Submit(c.Request.Context(), sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, application)
}

// List godoc
// @Summary List applications
// @Tags Applications
// @Produce json
// @Param status query string false "Filter by status"
// @Param grade query string false "Filter by grade"
// @Param search query string false "Search by name or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	var filter models.ApplicationFilter
	filter.Status = models.ApplicationStatus(c.Query("status"))
	filter.Grade = c.Query("grade")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	applications, total, err := h.applications.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applications, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get application detail
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	application, err := h.applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, application, nil)
}

// Approve godoc
// @Summary Approve an application
// @Description Creates the student record and, when a class matches the grade, a pending enrollment
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications/{id}/approve [post]
func (h *ApplicationHandler) Approve(c *gin.Context) {
	approvedBy := ""
	if claims := claimsFromContext(c); claims != nil {
		approvedBy = claims.UserID
	}

	result, err := h.applications.Approve(c.Request.Context(), c.Param("id"), approvedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.RejectApplicationRequest false "Rejection reason"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id}/reject [post]
func (h *ApplicationHandler) Reject(c *gin.Context) {
	var req service.RejectApplicationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rejection payload"))
			return
		}
	}

	application, err := h.applications.Reject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, application, nil)
}

// AddDocument godoc
// @Summary Attach a document to an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.AddDocumentRequest true "Document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id}/documents [post]
func (h *ApplicationHandler) AddDocument(c *gin.Context) {
	var req service.AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid document payload"))
		return
	}

	document, err := h.applications.AddDocument(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, document)
}

// VerifyDocument godoc
// @Summary Mark a document verified
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Param documentId path string true "Document ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id}/documents/{documentId}/verify [post]
func (h *ApplicationHandler) VerifyDocument(c *gin.Context) {
	if err := h.applications.VerifyDocument(c.Request.Context(), c.Param("id"), c.Param("documentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RejectDocument godoc
// @Summary Mark a document rejected
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Param documentId path string true "Document ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id}/documents/{documentId}/reject [post]
func (h *ApplicationHandler) RejectDocument(c *gin.Context) {
	if err := h.applications.RejectDocument(c.Request.Context(), c.Param("id"), c.Param("documentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RecordPayment godoc
// @Summary Record the admission fee payment
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.RecordPaymentRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id}/payment [post]
func (h *ApplicationHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	payment, err := h.applications.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}
