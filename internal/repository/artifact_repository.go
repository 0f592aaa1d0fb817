package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ethics-case-api/internal/models"
)

// ArtifactRepository writes the records other compliance modules own:
// proceedings opened during the workflow and the closure artifacts.
type ArtifactRepository struct {
	db sqlx.ExtContext
}

// NewArtifactRepository constructs the repository.
func NewArtifactRepository(db sqlx.ExtContext) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// CreateProceeding opens an investigation, mediation or disciplinary record.
func (r *ArtifactRepository) CreateProceeding(ctx context.Context, p *models.Proceeding) error {
	stamp(&p.ID, &p.CreatedAt)
	const query = `INSERT INTO case_proceedings (id, case_id, kind, analyst_id, created_at)
	VALUES (:id, :case_id, :kind, :analyst_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, p); err != nil {
		return classify("create proceeding", err)
	}
	return nil
}

// CreateAuditFinding inserts an audit finding stub.
func (r *ArtifactRepository) CreateAuditFinding(ctx context.Context, f *models.AuditFinding) error {
	stamp(&f.ID, &f.CreatedAt)
	const query = `INSERT INTO audit_findings (id, case_id, title, severity, created_at)
	VALUES (:id, :case_id, :title, :severity, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, f); err != nil {
		return classify("create audit finding", err)
	}
	return nil
}

// CreateRiskEntry inserts a risk-matrix entry.
func (r *ArtifactRepository) CreateRiskEntry(ctx context.Context, e *models.RiskEntry) error {
	stamp(&e.ID, &e.CreatedAt)
	const query = `INSERT INTO risk_entries (id, case_id, description, probability, impact, calculated_level, created_at)
	VALUES (:id, :case_id, :description, :probability, :impact, :calculated_level, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, e); err != nil {
		return classify("create risk entry", err)
	}
	return nil
}

// CreateControlTicket inserts an internal-control ticket.
func (r *ArtifactRepository) CreateControlTicket(ctx context.Context, t *models.ControlTicket) error {
	stamp(&t.ID, &t.CreatedAt)
	const query = `INSERT INTO control_tickets (id, case_id, title, status, created_at)
	VALUES (:id, :case_id, :title, :status, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, t); err != nil {
		return classify("create control ticket", err)
	}
	return nil
}

func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}
