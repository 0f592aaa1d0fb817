package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/ethics-case-api/internal/models"
	appErrors "github.com/noah-isme/ethics-case-api/pkg/errors"
)

// artifactWriter is satisfied by the workflow transaction so the artifacts
// commit or roll back with the closing transition.
type artifactWriter interface {
	CreateAuditFinding(ctx context.Context, f *models.AuditFinding) error
	CreateRiskEntry(ctx context.Context, e *models.RiskEntry) error
	CreateControlTicket(ctx context.Context, t *models.ControlTicket) error
}

// DownstreamIntegrator opens the compliance follow-ups of a closed case.
type DownstreamIntegrator struct {
	logger *zap.Logger
}

// NewDownstreamIntegrator constructs the integrator.
func NewDownstreamIntegrator(logger *zap.Logger) *DownstreamIntegrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DownstreamIntegrator{logger: logger}
}

// OnClose creates one audit finding, one risk entry and one control ticket
// for c. The first failure aborts the batch; the caller rolls back.
func (d *DownstreamIntegrator) OnClose(ctx context.Context, w artifactWriter, c *models.Case) (*models.ArtifactSet, error) {
	finding := &models.AuditFinding{
		CaseID:   c.ID,
		Title:    fmt.Sprintf("Ethics case %s closed", c.Protocol),
		Severity: models.FindingSeverityPending,
	}
	if err := w.CreateAuditFinding(ctx, finding); err != nil {
		return nil, appErrors.Attach(appErrors.ErrArtifactCreation, fmt.Errorf("audit finding: %w", err))
	}

	risk := &models.RiskEntry{
		CaseID:          c.ID,
		Description:     fmt.Sprintf("Risk raised by ethics case %s (%s)", c.Protocol, c.Severity),
		Probability:     models.RiskLevelHigh,
		Impact:          models.RiskLevelHigh,
		CalculatedLevel: models.RiskLevelCritical,
	}
	if err := w.CreateRiskEntry(ctx, risk); err != nil {
		return nil, appErrors.Attach(appErrors.ErrArtifactCreation, fmt.Errorf("risk entry: %w", err))
	}

	ticket := &models.ControlTicket{
		CaseID: c.ID,
		Title:  fmt.Sprintf("Internal control follow-up for case %s", c.Protocol),
		Status: models.ControlTicketOpen,
	}
	if err := w.CreateControlTicket(ctx, ticket); err != nil {
		return nil, appErrors.Attach(appErrors.ErrArtifactCreation, fmt.Errorf("control ticket: %w", err))
	}

	d.logger.Info("closure artifacts staged",
		zap.String("case_id", c.ID),
		zap.String("audit_finding_id", finding.ID),
		zap.String("risk_entry_id", risk.ID),
		zap.String("control_ticket_id", ticket.ID),
	)
	return &models.ArtifactSet{
		AuditFindingID:  finding.ID,
		RiskEntryID:     risk.ID,
		ControlTicketID: ticket.ID,
	}, nil
}
