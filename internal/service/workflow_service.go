package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ethics-case-api/internal/dto"
	"github.com/noah-isme/ethics-case-api/internal/models"
	"github.com/noah-isme/ethics-case-api/internal/repository"
	appErrors "github.com/noah-isme/ethics-case-api/pkg/errors"
	"github.com/noah-isme/ethics-case-api/pkg/middleware/requestid"
)

type workflowStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.CaseTx) error) error
}

type caseReader interface {
	GetByID(ctx context.Context, id string) (*models.Case, error)
	List(ctx context.Context, filter models.CaseFilter) ([]models.Case, int, error)
	SetVisibility(ctx context.Context, id string, visible bool) error
}

type statusNotifier interface {
	Notify(ctx context.Context, event models.StatusChangedEvent)
}

type workflowMetrics interface {
	ObserveTransition(from, to models.CaseStatus)
	ObserveTransitionFailure(operation, code string)
	ObserveOperation(operation string, duration time.Duration)
}

// WorkflowService is the case workflow engine. Every operation reads the case,
// validates, and writes status, slots, audit entry and side records in one
// store transaction.
type WorkflowService struct {
	store      workflowStore
	cases      caseReader
	integrator *DownstreamIntegrator
	notifier   statusNotifier
	metrics    workflowMetrics
	validator  *validator.Validate
	logger     *zap.Logger
	timeout    time.Duration
	now        func() time.Time
}

// WorkflowServiceOption configures the service.
type WorkflowServiceOption func(*WorkflowService)

// WithStatusNotifier sets the post-commit notification dispatcher.
func WithStatusNotifier(n statusNotifier) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithWorkflowMetrics sets the metrics sink.
func WithWorkflowMetrics(m workflowMetrics) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithStoreTimeout bounds each operation, including its transaction.
func WithStoreTimeout(d time.Duration) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides the audit timestamp source.
func WithClock(now func() time.Time) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDownstreamIntegrator overrides the closure integrator.
func WithDownstreamIntegrator(d *DownstreamIntegrator) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if d != nil {
			s.integrator = d
		}
	}
}

// NewWorkflowService constructs the engine with defaults.
func NewWorkflowService(store workflowStore, cases caseReader, validate *validator.Validate, logger *zap.Logger, opts ...WorkflowServiceOption) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	svc := &WorkflowService{
		store:      store,
		cases:      cases,
		integrator: NewDownstreamIntegrator(logger),
		notifier:   nopNotifier{},
		metrics:    (*MetricsService)(nil),
		validator:  validate,
		logger:     logger,
		timeout:    5 * time.Second,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// stepResult is what an operation decides after inspecting the case.
// A non-empty via is recorded as its own audit entry before next.
type stepResult struct {
	via        models.CaseStatus
	viaComment string
	next       models.CaseStatus
	comment    string
	closing    bool
}

type stepFunc func(ctx context.Context, tx repository.CaseTx, c *models.Case) (stepResult, error)

// AssignAnalyst puts an analyst on a phase and starts it.
func (s *WorkflowService) AssignAnalyst(ctx context.Context, caseID string, actor models.Actor, req dto.AssignAnalystRequest) (*dto.TransitionResult, error) {
	if err := s.validate(req, "invalid assignment payload"); err != nil {
		return nil, err
	}
	phase := models.Phase(req.Phase)
	analystID := strings.TrimSpace(req.AnalystID)
	var branch models.ResolutionBranch
	if phase == models.PhaseExecution {
		branch = models.ResolutionBranch(req.Branch)
		if !branch.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "branch MEDIATION or DISCIPLINARY is required for phase 3")
		}
	}

	return s.transition(ctx, "assign", caseID, actor, func(ctx context.Context, tx repository.CaseTx, c *models.Case) (stepResult, error) {
		if !models.StatusIn(c.Status, phase.WaitingStatuses()) || c.PhaseAnalyst(phase) != "" {
			return stepResult{}, invalidTransition(c, fmt.Sprintf("assign phase %d", phase))
		}
		if err := ValidateAssignment(c, phase, analystID); err != nil {
			return stepResult{}, err
		}
		c.SetPhaseAnalyst(phase, analystID)
		comment := fmt.Sprintf("phase %d assigned to %s", phase, analystID)

		switch phase {
		case models.PhaseInvestigation:
			if err := tx.CreateProceeding(ctx, &models.Proceeding{CaseID: c.ID, Kind: models.ProceedingInvestigation, AnalystID: analystID}); err != nil {
				return stepResult{}, err
			}
		case models.PhaseExecution:
			c.ResolutionBranch = &branch
			kind := models.ProceedingMediation
			if branch == models.BranchDisciplinary {
				kind = models.ProceedingDisciplinary
			}
			if err := tx.CreateProceeding(ctx, &models.Proceeding{CaseID: c.ID, Kind: kind, AnalystID: analystID}); err != nil {
				return stepResult{}, err
			}
			comment = fmt.Sprintf("%s (%s)", comment, strings.ToLower(string(branch)))
		}
		return stepResult{next: phase.WorkStatus(c.ResolutionBranch, false), comment: comment}, nil
	})
}

// SubmitReport stores the phase output and sends the phase to director review.
func (s *WorkflowService) SubmitReport(ctx context.Context, caseID string, actor models.Actor, req dto.PhaseReportRequest) (*dto.TransitionResult, error) {
	if err := s.validate(req, "invalid report payload"); err != nil {
		return nil, err
	}
	phase := models.Phase(req.Phase)
	return s.transition(ctx, "submit", caseID, actor, func(ctx context.Context, tx repository.CaseTx, c *models.Case) (stepResult, error) {
		if err := checkPhaseWriter(c, phase, actor); err != nil {
			return stepResult{}, err
		}
		c.SetPhaseOutput(phase, req.Text)
		out := stepResult{next: phase.ReviewStatus(), comment: fmt.Sprintf("phase %d report submitted for review", phase)}
		if c.Status == models.StatusReturned1 {
			out.via = models.StatusAnalysis1
			out.viaComment = "analysis reopened after return"
		}
		return out, nil
	})
}

// SaveDraft overwrites the phase output without submitting it. A draft on a
// returned phase 1 reopens the analysis.
func (s *WorkflowService) SaveDraft(ctx context.Context, caseID string, actor models.Actor, req dto.PhaseReportRequest) (*dto.TransitionResult, error) {
	if err := s.validate(req, "invalid draft payload"); err != nil {
		return nil, err
	}
	phase := models.Phase(req.Phase)
	return s.transition(ctx, "draft", caseID, actor, func(ctx context.Context, tx repository.CaseTx, c *models.Case) (stepResult, error) {
		if err := checkPhaseWriter(c, phase, actor); err != nil {
			return stepResult{}, err
		}
		c.SetPhaseOutput(phase, req.Text)
		if c.Status == models.StatusReturned1 {
			return stepResult{next: models.StatusAnalysis1, comment: "analysis reopened after return"}, nil
		}
		return stepResult{next: c.Status}, nil
	})
}

// ApprovePhase applies the director decision on a review gate. Approving
// phase 3 closes the case and creates the downstream artifacts in the same
// transaction.
func (s *WorkflowService) ApprovePhase(ctx context.Context, caseID string, actor models.Actor, req dto.ReviewRequest) (*dto.TransitionResult, error) {
	if err := s.validate(req, "invalid review payload"); err != nil {
		return nil, err
	}
	phase := models.Phase(req.Phase)
	approved := *req.Approved
	return s.transition(ctx, "review", caseID, actor, func(ctx context.Context, tx repository.CaseTx, c *models.Case) (stepResult, error) {
		if c.Status != phase.ReviewStatus() {
			return stepResult{}, invalidTransition(c, fmt.Sprintf("review phase %d", phase))
		}
		comment := strings.TrimSpace(req.Comment)
		if approved {
			if comment == "" {
				comment = fmt.Sprintf("phase %d approved", phase)
			}
			return stepResult{next: phase.ApprovedStatus(), comment: comment, closing: phase == models.PhaseExecution}, nil
		}
		if comment == "" {
			comment = fmt.Sprintf("phase %d returned for rework", phase)
		}
		return stepResult{next: phase.WorkStatus(c.ResolutionBranch, true), comment: comment}, nil
	})
}

// Archive ends an unsubstantiated case from the first review gate.
func (s *WorkflowService) Archive(ctx context.Context, caseID string, actor models.Actor, req dto.ArchiveRequest) (*dto.TransitionResult, error) {
	if err := s.validate(req, "archive comment is required"); err != nil {
		return nil, err
	}
	return s.transition(ctx, "archive", caseID, actor, func(ctx context.Context, tx repository.CaseTx, c *models.Case) (stepResult, error) {
		if c.Status != models.StatusReview1 {
			return stepResult{}, invalidTransition(c, "archive")
		}
		return stepResult{next: models.StatusArchived, comment: strings.TrimSpace(req.Comment)}, nil
	})
}

// GetCase returns a case. School managers see the narrative only when the
// director made it visible to them.
func (s *WorkflowService) GetCase(ctx context.Context, caseID string, actor models.Actor) (*models.Case, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, mapStoreError(err, "failed to load case")
	}
	if actor.Role == models.RoleSchoolManager && !c.VisibleToSchool {
		c.Description = ""
	}
	return c, nil
}

// ListCases returns the director work queue.
func (s *WorkflowService) ListCases(ctx context.Context, query dto.CaseQuery) ([]models.Case, *models.Pagination, error) {
	for _, status := range query.Status {
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
		}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	filter := models.CaseFilter{
		Status:    query.Status,
		AnalystID: strings.TrimSpace(query.AnalystID),
		Severity:  query.Severity,
		Limit:     query.Limit,
		Offset:    query.Offset,
	}
	cases, total, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, nil, mapStoreError(err, "failed to list cases")
	}
	return cases, &models.Pagination{Limit: filter.Limit, Offset: filter.Offset, TotalCount: total}, nil
}

// SetVisibility toggles whether school management may read the narrative.
// It is not a status transition and leaves no audit entry.
func (s *WorkflowService) SetVisibility(ctx context.Context, caseID string, actor models.Actor, req dto.VisibilityRequest) error {
	if err := s.validate(req, "visible is required"); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.cases.SetVisibility(ctx, caseID, *req.Visible); err != nil {
		return mapStoreError(err, "failed to update case visibility")
	}
	s.logger.Info("case visibility changed",
		zap.String("case_id", caseID),
		zap.String("actor", actor.ID),
		zap.Bool("visible_to_school", *req.Visible),
	)
	return nil
}

func (s *WorkflowService) transition(ctx context.Context, op, caseID string, actor models.Actor, step stepFunc) (*dto.TransitionResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		result *dto.TransitionResult
		events []models.StatusChangedEvent
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.CaseTx) error {
		events = nil
		current, err := tx.GetCase(ctx, caseID)
		if err != nil {
			return err
		}
		next := current.Clone()
		outcome, err := step(ctx, tx, next)
		if err != nil {
			return err
		}

		result = &dto.TransitionResult{CaseID: current.ID, Protocol: current.Protocol, PreviousStatus: current.Status, Status: outcome.next}
		if outcome.next == current.Status {
			return tx.UpdateCase(ctx, next, current.Status, current.Version)
		}

		type hop struct {
			to      models.CaseStatus
			comment string
		}
		hops := []hop{{to: outcome.next, comment: outcome.comment}}
		if outcome.via != "" {
			hops = []hop{{to: outcome.via, comment: outcome.viaComment}, hops[0]}
		}
		from := current.Status
		for _, h := range hops {
			if !models.CanTransition(from, h.to) {
				return invalidTransition(current, op)
			}
			from = h.to
		}

		next.Status = outcome.next
		if err := tx.UpdateCase(ctx, next, current.Status, current.Version); err != nil {
			return err
		}
		from = current.Status
		for _, h := range hops {
			prev := from
			entry := &models.AuditEntry{
				CaseID:         current.ID,
				PreviousStatus: &prev,
				NewStatus:      h.to,
				Actor:          actorRef(actor),
				Comment:        h.comment,
				CreatedAt:      s.now(),
			}
			if err := tx.AppendAudit(ctx, entry); err != nil {
				return err
			}
			events = append(events, models.StatusChangedEvent{
				CaseID:         current.ID,
				Protocol:       current.Protocol,
				PreviousStatus: &prev,
				NewStatus:      h.to,
				Actor:          actor.ID,
				RequestID:      requestid.FromContext(ctx),
				OccurredAt:     entry.CreatedAt,
			})
			from = h.to
		}
		if outcome.closing {
			artifacts, err := s.integrator.OnClose(ctx, tx, next)
			if err != nil {
				return err
			}
			result.Artifacts = artifacts
		}
		return nil
	})
	s.metrics.ObserveOperation(op, time.Since(start))

	if err != nil {
		appErr := mapStoreError(err, "workflow transition failed")
		s.metrics.ObserveTransitionFailure(op, appErr.Code)
		s.logger.Warn("workflow transition failed",
			zap.String("operation", op),
			zap.String("case_id", caseID),
			zap.String("actor", actor.ID),
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
		return nil, appErr
	}

	for _, event := range events {
		s.metrics.ObserveTransition(*event.PreviousStatus, event.NewStatus)
		s.notifier.Notify(context.WithoutCancel(ctx), event)
	}
	return result, nil
}

func (s *WorkflowService) validate(req interface{}, message string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return nil
}

func checkPhaseWriter(c *models.Case, phase models.Phase, actor models.Actor) error {
	if !models.StatusIn(c.Status, phase.WorkingStatuses()) {
		return invalidTransition(c, fmt.Sprintf("write phase %d output", phase))
	}
	if holder := c.PhaseAnalyst(phase); holder == "" || holder != actor.ID {
		return appErrors.Clone(appErrors.ErrNotAssigned, fmt.Sprintf("phase %d of case %s is not assigned to %s", phase, c.Protocol, actor.ID))
	}
	return nil
}

func invalidTransition(c *models.Case, op string) error {
	return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot %s while case %s is %s", op, c.Protocol, c.Status))
}

func actorRef(actor models.Actor) *string {
	if actor.ID == "" {
		return nil
	}
	id := actor.ID
	return &id
}

// mapStoreError turns repository failures into typed engine errors.
func mapStoreError(err error, message string) *appErrors.Error {
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "case not found")
	case errors.Is(err, repository.ErrStaleCase):
		return appErrors.Attach(appErrors.ErrConcurrentModification, err)
	case errors.Is(err, context.Canceled):
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "request cancelled before commit")
	case errors.Is(err, repository.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return appErrors.Attach(appErrors.ErrStoreUnavailable, err)
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, models.StatusChangedEvent) {}
