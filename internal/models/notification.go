package models

import "time"

// StatusChangedEvent is published after a transition commits.
type StatusChangedEvent struct {
	CaseID         string      `json:"caseId"`
	Protocol       string      `json:"protocol"`
	PreviousStatus *CaseStatus `json:"previousStatus,omitempty"`
	NewStatus      CaseStatus  `json:"newStatus"`
	Actor          string      `json:"actor,omitempty"`
	RequestID      string      `json:"requestId,omitempty"`
	OccurredAt     time.Time   `json:"occurredAt"`
}
