package models

import (
	"time"

	"github.com/lib/pq"
)

// Severity grades a reported incident. Ordered from LOW to CRITICAL.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns the position of s in the severity order, or 0 when unknown.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// ResolutionBranch selects how phase 3 resolves the case.
type ResolutionBranch string

const (
	BranchMediation    ResolutionBranch = "MEDIATION"
	BranchDisciplinary ResolutionBranch = "DISCIPLINARY"
)

// Valid reports whether b is a known branch.
func (b ResolutionBranch) Valid() bool {
	return b == BranchMediation || b == BranchDisciplinary
}

// Case is a reported complaint under workflow control.
type Case struct {
	ID               string            `db:"id" json:"id"`
	Protocol         string            `db:"protocol" json:"protocol"`
	Status           CaseStatus        `db:"status" json:"status"`
	Severity         Severity          `db:"severity" json:"severity"`
	Categories       pq.StringArray    `db:"categories" json:"categories"`
	Description      string            `db:"description" json:"description,omitempty"`
	Phase1Analyst    *string           `db:"phase1_analyst" json:"phase1Analyst,omitempty"`
	Phase2Analyst    *string           `db:"phase2_analyst" json:"phase2Analyst,omitempty"`
	Phase3Analyst    *string           `db:"phase3_analyst" json:"phase3Analyst,omitempty"`
	ResolutionBranch *ResolutionBranch `db:"resolution_branch" json:"resolutionBranch,omitempty"`
	Opinion1         *string           `db:"opinion1" json:"opinion1,omitempty"`
	Report2          *string           `db:"report2" json:"report2,omitempty"`
	Report3          *string           `db:"report3" json:"report3,omitempty"`
	VisibleToSchool  bool              `db:"visible_to_school" json:"visibleToSchool"`
	Version          int               `db:"version" json:"version"`
	CreatedAt        time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updatedAt"`
}

// PhaseAnalyst returns the analyst holding phase p, or "" when unassigned.
func (c *Case) PhaseAnalyst(p Phase) string {
	var slot *string
	switch p {
	case PhaseProcedure:
		slot = c.Phase1Analyst
	case PhaseInvestigation:
		slot = c.Phase2Analyst
	case PhaseExecution:
		slot = c.Phase3Analyst
	}
	if slot == nil {
		return ""
	}
	return *slot
}

// SetPhaseAnalyst fills the slot for phase p.
func (c *Case) SetPhaseAnalyst(p Phase, analystID string) {
	id := analystID
	switch p {
	case PhaseProcedure:
		c.Phase1Analyst = &id
	case PhaseInvestigation:
		c.Phase2Analyst = &id
	case PhaseExecution:
		c.Phase3Analyst = &id
	}
}

// SetPhaseOutput overwrites the report field owned by phase p.
func (c *Case) SetPhaseOutput(p Phase, text string) {
	value := text
	switch p {
	case PhaseProcedure:
		c.Opinion1 = &value
	case PhaseInvestigation:
		c.Report2 = &value
	case PhaseExecution:
		c.Report3 = &value
	}
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	out := *c
	out.Categories = append(pq.StringArray(nil), c.Categories...)
	out.Phase1Analyst = cloneString(c.Phase1Analyst)
	out.Phase2Analyst = cloneString(c.Phase2Analyst)
	out.Phase3Analyst = cloneString(c.Phase3Analyst)
	out.Opinion1 = cloneString(c.Opinion1)
	out.Report2 = cloneString(c.Report2)
	out.Report3 = cloneString(c.Report3)
	if c.ResolutionBranch != nil {
		b := *c.ResolutionBranch
		out.ResolutionBranch = &b
	}
	return &out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

// CaseFilter constrains listing queries.
type CaseFilter struct {
	Status    []CaseStatus
	AnalystID string
	Severity  Severity
	Limit     int
	Offset    int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
	TotalCount int `json:"totalCount"`
}
