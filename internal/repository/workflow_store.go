package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ethics-case-api/internal/models"
)

// CaseTx is the set of writes one workflow transition may perform. All of
// them commit or roll back together.
type CaseTx interface {
	GetCase(ctx context.Context, id string) (*models.Case, error)
	UpdateCase(ctx context.Context, c *models.Case, expected models.CaseStatus, expectedVersion int) error
	AppendAudit(ctx context.Context, entry *models.AuditEntry) error
	CreateProceeding(ctx context.Context, p *models.Proceeding) error
	CreateAuditFinding(ctx context.Context, f *models.AuditFinding) error
	CreateRiskEntry(ctx context.Context, e *models.RiskEntry) error
	CreateControlTicket(ctx context.Context, t *models.ControlTicket) error
}

// WorkflowStore runs workflow transitions as single PostgreSQL transactions.
type WorkflowStore struct {
	db *sqlx.DB
}

// NewWorkflowStore constructs the store.
func NewWorkflowStore(db *sqlx.DB) *WorkflowStore {
	return &WorkflowStore{db: db}
}

// WithinTx runs fn in a REPEATABLE READ transaction. Any error from fn, or a
// cancelled ctx, rolls everything back.
func (s *WorkflowStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx CaseTx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return classify("begin workflow tx", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, newCaseTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify("commit workflow tx", err)
	}
	return nil
}

type caseTx struct {
	cases     *CaseRepository
	audit     *AuditRepository
	artifacts *ArtifactRepository
}

func newCaseTx(tx *sqlx.Tx) *caseTx {
	return &caseTx{
		cases:     NewCaseRepository(tx),
		audit:     NewAuditRepository(tx),
		artifacts: NewArtifactRepository(tx),
	}
}

func (t *caseTx) GetCase(ctx context.Context, id string) (*models.Case, error) {
	c, err := t.cases.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tx: %w", err)
	}
	return c, nil
}

func (t *caseTx) UpdateCase(ctx context.Context, c *models.Case, expected models.CaseStatus, expectedVersion int) error {
	return t.cases.UpdateWorkflow(ctx, c, expected, expectedVersion)
}

func (t *caseTx) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	return t.audit.Append(ctx, entry)
}

func (t *caseTx) CreateProceeding(ctx context.Context, p *models.Proceeding) error {
	return t.artifacts.CreateProceeding(ctx, p)
}

func (t *caseTx) CreateAuditFinding(ctx context.Context, f *models.AuditFinding) error {
	return t.artifacts.CreateAuditFinding(ctx, f)
}

func (t *caseTx) CreateRiskEntry(ctx context.Context, e *models.RiskEntry) error {
	return t.artifacts.CreateRiskEntry(ctx, e)
}

func (t *caseTx) CreateControlTicket(ctx context.Context, ticket *models.ControlTicket) error {
	return t.artifacts.CreateControlTicket(ctx, ticket)
}
