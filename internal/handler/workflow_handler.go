package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ethics-case-api/internal/dto"
	"github.com/noah-isme/ethics-case-api/internal/models"
	"github.com/noah-isme/ethics-case-api/internal/service"
	appErrors "github.com/noah-isme/ethics-case-api/pkg/errors"
	"github.com/noah-isme/ethics-case-api/pkg/response"
)

type workflowService interface {
	AssignAnalyst(ctx context.Context, caseID string, actor models.Actor, req dto.AssignAnalystRequest) (*dto.TransitionResult, error)
	SubmitReport(ctx context.Context, caseID string, actor models.Actor, req dto.PhaseReportRequest) (*dto.TransitionResult, error)
	SaveDraft(ctx context.Context, caseID string, actor models.Actor, req dto.PhaseReportRequest) (*dto.TransitionResult, error)
	ApprovePhase(ctx context.Context, caseID string, actor models.Actor, req dto.ReviewRequest) (*dto.TransitionResult, error)
	Archive(ctx context.Context, caseID string, actor models.Actor, req dto.ArchiveRequest) (*dto.TransitionResult, error)
	GetCase(ctx context.Context, caseID string, actor models.Actor) (*models.Case, error)
	ListCases(ctx context.Context, query dto.CaseQuery) ([]models.Case, *models.Pagination, error)
	SetVisibility(ctx context.Context, caseID string, actor models.Actor, req dto.VisibilityRequest) error
}

type auditService interface {
	History(ctx context.Context, caseID string) (*dto.HistoryResponse, error)
	Export(ctx context.Context, caseID string, format service.ExportFormat) (*service.ExportFile, error)
}

// WorkflowHandler exposes the case workflow endpoints.
type WorkflowHandler struct {
	workflow workflowService
	audit    auditService
}

// NewWorkflowHandler builds a new handler.
func NewWorkflowHandler(workflow workflowService, audit auditService) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow, audit: audit}
}

// List godoc
// @Summary List cases
// @Tags Cases
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param analystId query string false "Analyst holding any phase"
// @Param severity query string false "Severity"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /cases [get]
func (h *WorkflowHandler) List(c *gin.Context) {
	query := dto.CaseQuery{
		AnalystID: c.Query("analystId"),
		Severity:  models.Severity(strings.ToUpper(c.Query("severity"))),
	}
	for _, raw := range c.QueryArray("status") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				query.Status = append(query.Status, models.CaseStatus(strings.ToUpper(part)))
			}
		}
	}
	var err error
	if query.Limit, err = intQuery(c, "limit"); err != nil {
		response.Error(c, err)
		return
	}
	if query.Offset, err = intQuery(c, "offset"); err != nil {
		response.Error(c, err)
		return
	}

	cases, pagination, err := h.workflow.ListCases(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cases, pagination)
}

// Get godoc
// @Summary Get case by ID
// @Tags Cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{id} [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	item, err := h.workflow.GetCase(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Assign godoc
// @Summary Assign an analyst to a phase
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body dto.AssignAnalystRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cases/{id}/assign [post]
func (h *WorkflowHandler) Assign(c *gin.Context) {
	var req dto.AssignAnalystRequest
	if !bind(c, &req, "invalid assignment payload") {
		return
	}
	h.transition(c, func(ctx context.Context, id string, actor models.Actor) (*dto.TransitionResult, error) {
		return h.workflow.AssignAnalyst(ctx, id, actor, req)
	})
}

// Report godoc
// @Summary Submit a phase report for review
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body dto.PhaseReportRequest true "Report"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /cases/{id}/report [post]
func (h *WorkflowHandler) Report(c *gin.Context) {
	var req dto.PhaseReportRequest
	if !bind(c, &req, "invalid report payload") {
		return
	}
	h.transition(c, func(ctx context.Context, id string, actor models.Actor) (*dto.TransitionResult, error) {
		return h.workflow.SubmitReport(ctx, id, actor, req)
	})
}

// Draft godoc
// @Summary Save a phase report draft
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body dto.PhaseReportRequest true "Draft"
// @Success 200 {object} response.Envelope
// @Router /cases/{id}/draft [post]
func (h *WorkflowHandler) Draft(c *gin.Context) {
	var req dto.PhaseReportRequest
	if !bind(c, &req, "invalid draft payload") {
		return
	}
	h.transition(c, func(ctx context.Context, id string, actor models.Actor) (*dto.TransitionResult, error) {
		return h.workflow.SaveDraft(ctx, id, actor, req)
	})
}

// Review godoc
// @Summary Approve or return a phase
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body dto.ReviewRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /cases/{id}/review [post]
func (h *WorkflowHandler) Review(c *gin.Context) {
	var req dto.ReviewRequest
	if !bind(c, &req, "invalid review payload") {
		return
	}
	h.transition(c, func(ctx context.Context, id string, actor models.Actor) (*dto.TransitionResult, error) {
		return h.workflow.ApprovePhase(ctx, id, actor, req)
	})
}

// Archive godoc
// @Summary Archive a case from the first review
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body dto.ArchiveRequest true "Archive reason"
// @Success 200 {object} response.Envelope
// @Router /cases/{id}/archive [post]
func (h *WorkflowHandler) Archive(c *gin.Context) {
	var req dto.ArchiveRequest
	if !bind(c, &req, "invalid archive payload") {
		return
	}
	h.transition(c, func(ctx context.Context, id string, actor models.Actor) (*dto.TransitionResult, error) {
		return h.workflow.Archive(ctx, id, actor, req)
	})
}

// Visibility godoc
// @Summary Toggle school management access to the narrative
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body dto.VisibilityRequest true "Visibility"
// @Success 200 {object} response.Envelope
// @Router /cases/{id}/visibility [put]
func (h *WorkflowHandler) Visibility(c *gin.Context) {
	var req dto.VisibilityRequest
	if !bind(c, &req, "invalid visibility payload") {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.workflow.SetVisibility(c.Request.Context(), c.Param("id"), actor, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"caseId": c.Param("id"), "visibleToSchool": *req.Visible}, nil)
}

// History godoc
// @Summary Audit trail of a case
// @Tags Cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} response.Envelope
// @Router /cases/{id}/history [get]
func (h *WorkflowHandler) History(c *gin.Context) {
	history, err := h.audit.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history.Entries, nil, map[string]interface{}{
		"caseId":     history.CaseID,
		"consistent": history.Consistent,
	})
}

// ExportHistory godoc
// @Summary Download the audit trail as CSV or PDF
// @Tags Cases
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Case ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /cases/{id}/history/export [get]
func (h *WorkflowHandler) ExportHistory(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	file, err := h.audit.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *WorkflowHandler) transition(c *gin.Context, run func(ctx context.Context, id string, actor models.Actor) (*dto.TransitionResult, error)) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := run(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func bind(c *gin.Context, req interface{}, message string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be a non-negative integer")
	}
	return v, nil
}
