package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ethics-case-api/internal/models"
)

// AuditRepository is the append-only store of case status transitions.
type AuditRepository struct {
	db sqlx.ExtContext
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db sqlx.ExtContext) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts one audit entry. There is no update or delete path.
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO case_audit_entries (id, case_id, prev_status, new_status, actor, comment, created_at)
	VALUES (:id, :case_id, :prev_status, :new_status, :actor, :comment, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, entry); err != nil {
		return classify("append audit entry", err)
	}
	return nil
}

// ListByCase returns the entries of a case in the order they were written.
func (r *AuditRepository) ListByCase(ctx context.Context, caseID string) ([]models.AuditEntry, error) {
	const query = `SELECT id, case_id, seq, prev_status, new_status, actor, comment, created_at
	FROM case_audit_entries WHERE case_id = $1 ORDER BY created_at ASC, seq ASC`
	var entries []models.AuditEntry
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, caseID); err != nil {
		return nil, classify("list audit entries", err)
	}
	return entries, nil
}
