package models

// CaseStatus is the workflow state of a case. Only the engine moves a case
// between statuses, and only along the edges in caseTransitions.
type CaseStatus string

const (
	StatusRegistered        CaseStatus = "REGISTERED"
	StatusWaitingAnalyst1   CaseStatus = "WAITING_ANALYST_1"
	StatusAnalysis1         CaseStatus = "ANALYSIS_1"
	StatusReview1           CaseStatus = "REVIEW_1"
	StatusReturned1         CaseStatus = "RETURNED_1"
	StatusApprovedProcedure CaseStatus = "APPROVED_PROCEDURE"
	StatusArchived          CaseStatus = "ARCHIVED"
	StatusInvestigation2    CaseStatus = "INVESTIGATION_2"
	StatusReview2           CaseStatus = "REVIEW_2"
	StatusWaitingAnalyst3   CaseStatus = "WAITING_ANALYST_3"
	StatusMediation3        CaseStatus = "MEDIATION_3"
	StatusDisciplinary3     CaseStatus = "DISCIPLINARY_3"
	StatusReview3           CaseStatus = "REVIEW_3"
	StatusClosed            CaseStatus = "CLOSED"
)

var caseTransitions = map[CaseStatus][]CaseStatus{
	StatusRegistered:        {StatusAnalysis1},
	StatusWaitingAnalyst1:   {StatusAnalysis1},
	StatusAnalysis1:         {StatusReview1},
	StatusReturned1:         {StatusAnalysis1},
	StatusReview1:           {StatusApprovedProcedure, StatusReturned1, StatusArchived},
	StatusApprovedProcedure: {StatusInvestigation2},
	StatusInvestigation2:    {StatusReview2},
	StatusReview2:           {StatusWaitingAnalyst3, StatusInvestigation2},
	StatusWaitingAnalyst3:   {StatusMediation3, StatusDisciplinary3},
	StatusMediation3:        {StatusReview3},
	StatusDisciplinary3:     {StatusReview3},
	StatusReview3:           {StatusClosed, StatusMediation3, StatusDisciplinary3},
	StatusArchived:          nil,
	StatusClosed:            nil,
}

// AllCaseStatuses lists every status in workflow order.
func AllCaseStatuses() []CaseStatus {
	return []CaseStatus{
		StatusRegistered, StatusWaitingAnalyst1, StatusAnalysis1, StatusReview1, StatusReturned1,
		StatusApprovedProcedure, StatusArchived, StatusInvestigation2, StatusReview2,
		StatusWaitingAnalyst3, StatusMediation3, StatusDisciplinary3, StatusReview3, StatusClosed,
	}
}

// Valid reports whether s is a known status.
func (s CaseStatus) Valid() bool {
	_, ok := caseTransitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s CaseStatus) Terminal() bool {
	next, ok := caseTransitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether from → to is an edge of the workflow graph.
func CanTransition(from, to CaseStatus) bool {
	for _, next := range caseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Phase identifies one of the three analyst phases.
type Phase int

const (
	PhaseProcedure     Phase = 1
	PhaseInvestigation Phase = 2
	PhaseExecution     Phase = 3
)

// Valid reports whether p is 1, 2 or 3.
func (p Phase) Valid() bool {
	return p >= PhaseProcedure && p <= PhaseExecution
}

// WaitingStatuses returns the statuses from which an analyst can be assigned to p.
func (p Phase) WaitingStatuses() []CaseStatus {
	switch p {
	case PhaseProcedure:
		return []CaseStatus{StatusRegistered, StatusWaitingAnalyst1}
	case PhaseInvestigation:
		return []CaseStatus{StatusApprovedProcedure}
	case PhaseExecution:
		return []CaseStatus{StatusWaitingAnalyst3}
	}
	return nil
}

// WorkingStatuses returns the statuses in which the phase analyst may write
// and submit the phase output.
func (p Phase) WorkingStatuses() []CaseStatus {
	switch p {
	case PhaseProcedure:
		return []CaseStatus{StatusAnalysis1, StatusReturned1}
	case PhaseInvestigation:
		return []CaseStatus{StatusInvestigation2}
	case PhaseExecution:
		return []CaseStatus{StatusMediation3, StatusDisciplinary3}
	}
	return nil
}

// ReviewStatus is the director gate closing phase p.
func (p Phase) ReviewStatus() CaseStatus {
	switch p {
	case PhaseProcedure:
		return StatusReview1
	case PhaseInvestigation:
		return StatusReview2
	case PhaseExecution:
		return StatusReview3
	}
	return ""
}

// ApprovedStatus is where an approved review of phase p leads.
func (p Phase) ApprovedStatus() CaseStatus {
	switch p {
	case PhaseProcedure:
		return StatusApprovedProcedure
	case PhaseInvestigation:
		return StatusWaitingAnalyst3
	case PhaseExecution:
		return StatusClosed
	}
	return ""
}

// WorkStatus is the in-progress status a phase enters on assignment or
// return. Phase 1 returns land in RETURNED_1 rather than ANALYSIS_1.
func (p Phase) WorkStatus(branch *ResolutionBranch, returned bool) CaseStatus {
	switch p {
	case PhaseProcedure:
		if returned {
			return StatusReturned1
		}
		return StatusAnalysis1
	case PhaseInvestigation:
		return StatusInvestigation2
	case PhaseExecution:
		if branch == nil {
			return ""
		}
		if *branch == BranchMediation {
			return StatusMediation3
		}
		return StatusDisciplinary3
	}
	return ""
}

// StatusIn reports whether s is one of candidates.
func StatusIn(s CaseStatus, candidates []CaseStatus) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
