package models

import "time"

// AuditEntry records one status transition of a case. Entries are written in
// the same transaction as the transition and never updated.
type AuditEntry struct {
	ID             string      `db:"id" json:"id"`
	CaseID         string      `db:"case_id" json:"caseId"`
	Seq            int64       `db:"seq" json:"seq"`
	PreviousStatus *CaseStatus `db:"prev_status" json:"previousStatus,omitempty"`
	NewStatus      CaseStatus  `db:"new_status" json:"newStatus"`
	Actor          *string     `db:"actor" json:"actor,omitempty"`
	Comment        string      `db:"comment" json:"comment"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
}
