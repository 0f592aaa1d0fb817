package dto

import "github.com/noah-isme/ethics-case-api/internal/models"

// AssignAnalystRequest assigns an analyst to a phase. Branch is required for
// phase 3 and ignored for the other phases.
type AssignAnalystRequest struct {
	Phase     int    `json:"phase" validate:"required,min=1,max=3"`
	AnalystID string `json:"analystId" validate:"required,max=128"`
	Branch    string `json:"branch,omitempty"`
}

// PhaseReportRequest carries a phase output, either as a draft or for submission.
type PhaseReportRequest struct {
	Phase int    `json:"phase" validate:"required,min=1,max=3"`
	Text  string `json:"text" validate:"required"`
}

// ReviewRequest records the director decision on a review gate.
type ReviewRequest struct {
	Phase    int    `json:"phase" validate:"required,min=1,max=3"`
	Approved *bool  `json:"approved" validate:"required"`
	Comment  string `json:"comment,omitempty"`
}

// ArchiveRequest closes an unsubstantiated case from the first review.
type ArchiveRequest struct {
	Comment string `json:"comment" validate:"required"`
}

// VisibilityRequest toggles school-management access to the narrative.
type VisibilityRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

// CaseQuery mirrors supported listing filters.
type CaseQuery struct {
	Status    []models.CaseStatus
	AnalystID string
	Severity  models.Severity
	Limit     int
	Offset    int
}

// TransitionResult is returned by every workflow operation.
type TransitionResult struct {
	CaseID         string              `json:"caseId"`
	Protocol       string              `json:"protocol"`
	PreviousStatus models.CaseStatus   `json:"previousStatus"`
	Status         models.CaseStatus   `json:"status"`
	Artifacts      *models.ArtifactSet `json:"artifacts,omitempty"`
}

// HistoryResponse lists the audit trail of a case.
type HistoryResponse struct {
	CaseID     string              `json:"caseId"`
	Entries    []models.AuditEntry `json:"entries"`
	Consistent bool                `json:"consistent"`
}
