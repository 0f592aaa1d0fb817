package models

import "time"

// ProceedingKind names the record opened when phase 2 or 3 begins.
type ProceedingKind string

const (
	ProceedingInvestigation ProceedingKind = "INVESTIGATION"
	ProceedingMediation     ProceedingKind = "MEDIATION"
	ProceedingDisciplinary  ProceedingKind = "DISCIPLINARY"
)

// Proceeding links a case to the investigation, mediation or disciplinary
// process run by the phase analyst.
type Proceeding struct {
	ID        string         `db:"id" json:"id"`
	CaseID    string         `db:"case_id" json:"caseId"`
	Kind      ProceedingKind `db:"kind" json:"kind"`
	AnalystID string         `db:"analyst_id" json:"analystId"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// Audit finding severities.
const (
	FindingSeverityPending = "PENDING"
)

// Risk matrix levels.
const (
	RiskLevelHigh     = "HIGH"
	RiskLevelCritical = "CRITICAL"
)

// Control ticket statuses.
const (
	ControlTicketOpen = "OPEN"
)

// AuditFinding is the stub handed to internal audit when a case closes.
type AuditFinding struct {
	ID        string    `db:"id" json:"id"`
	CaseID    string    `db:"case_id" json:"caseId"`
	Title     string    `db:"title" json:"title"`
	Severity  string    `db:"severity" json:"severity"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// RiskEntry is the risk-matrix row opened for a closed case.
type RiskEntry struct {
	ID              string    `db:"id" json:"id"`
	CaseID          string    `db:"case_id" json:"caseId"`
	Description     string    `db:"description" json:"description"`
	Probability     string    `db:"probability" json:"probability"`
	Impact          string    `db:"impact" json:"impact"`
	CalculatedLevel string    `db:"calculated_level" json:"calculatedLevel"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// ControlTicket is the internal-control follow-up for a closed case.
type ControlTicket struct {
	ID        string    `db:"id" json:"id"`
	CaseID    string    `db:"case_id" json:"caseId"`
	Title     string    `db:"title" json:"title"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ArtifactSet holds the ids of the records created at closure.
type ArtifactSet struct {
	AuditFindingID  string `json:"auditFindingId"`
	RiskEntryID     string `json:"riskEntryId"`
	ControlTicketID string `json:"controlTicketId"`
}
