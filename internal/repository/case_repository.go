package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ethics-case-api/internal/models"
)

const caseColumns = `id, protocol, status, severity, categories, description,
       phase1_analyst, phase2_analyst, phase3_analyst, resolution_branch,
       opinion1, report2, report3, visible_to_school, version, created_at, updated_at`

// CaseRepository persists cases. It runs against the pool or, inside a
// WorkflowStore transaction, against the transaction.
type CaseRepository struct {
	db sqlx.ExtContext
}

// NewCaseRepository constructs the repository.
func NewCaseRepository(db sqlx.ExtContext) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create inserts a case in REGISTERED status. Used by the intake form and seeding.
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Protocol == "" {
		c.Protocol = NewProtocol(now)
	}
	if c.Status == "" {
		c.Status = models.StatusRegistered
	}
	if c.Severity == "" {
		c.Severity = models.SeverityMedium
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt
	const query = `INSERT INTO cases
	(id, protocol, status, severity, categories, description, visible_to_school, version, created_at, updated_at)
	VALUES (:id, :protocol, :status, :severity, :categories, :description, :visible_to_school, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, c); err != nil {
		return classify("create case", err)
	}
	return nil
}

// GetByID fetches a case by identifier.
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`
	var c models.Case
	if err := sqlx.GetContext(ctx, r.db, &c, query, id); err != nil {
		return nil, classify("get case", err)
	}
	return &c, nil
}

// List returns cases matching the filter, most recently updated first, and the total count.
func (r *CaseRepository) List(ctx context.Context, filter models.CaseFilter) ([]models.Case, int, error) {
	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 3)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AnalystID != "" {
		args = append(args, filter.AnalystID)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(phase1_analyst = $%d OR phase2_analyst = $%d OR phase3_analyst = $%d)", n, n, n))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*) FROM cases"+where, args...); err != nil {
		return nil, 0, classify("count cases", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf("SELECT %s FROM cases%s ORDER BY updated_at DESC LIMIT %d OFFSET %d", caseColumns, where, limit, offset)

	var cases []models.Case
	if err := sqlx.SelectContext(ctx, r.db, &cases, query, args...); err != nil {
		return nil, 0, classify("list cases", err)
	}
	return cases, total, nil
}

// UpdateWorkflow writes the engine-owned columns of c, guarded by the status
// and version the caller read. Slots and branch are never cleared once set.
func (r *CaseRepository) UpdateWorkflow(ctx context.Context, c *models.Case, expected models.CaseStatus, expectedVersion int) error {
	const query = `UPDATE cases SET
	status = :status,
	phase1_analyst = COALESCE(phase1_analyst, :phase1_analyst),
	phase2_analyst = COALESCE(phase2_analyst, :phase2_analyst),
	phase3_analyst = COALESCE(phase3_analyst, :phase3_analyst),
	resolution_branch = COALESCE(resolution_branch, :resolution_branch),
	opinion1 = :opinion1,
	report2 = :report2,
	report3 = :report3,
	version = version + 1,
	updated_at = :updated_at
	WHERE id = :id AND status = :expected_status AND version = :expected_version`
	updatedAt := time.Now().UTC()
	result, err := sqlx.NamedExecContext(ctx, r.db, query, map[string]interface{}{
		"id":                c.ID,
		"status":            c.Status,
		"phase1_analyst":    c.Phase1Analyst,
		"phase2_analyst":    c.Phase2Analyst,
		"phase3_analyst":    c.Phase3Analyst,
		"resolution_branch": c.ResolutionBranch,
		"opinion1":          c.Opinion1,
		"report2":           c.Report2,
		"report3":           c.Report3,
		"updated_at":        updatedAt,
		"expected_status":   expected,
		"expected_version":  expectedVersion,
	})
	if err != nil {
		return classify("update case workflow", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return classify("check case update rows", err)
	}
	if rows == 0 {
		return ErrStaleCase
	}
	c.Version = expectedVersion + 1
	c.UpdatedAt = updatedAt
	return nil
}

// SetVisibility toggles whether school management may read the narrative.
func (r *CaseRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE cases SET visible_to_school = $1, updated_at = $2 WHERE id = $3`, visible, time.Now().UTC(), id)
	if err != nil {
		return classify("set case visibility", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return classify("check visibility rows", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// NewProtocol issues a human-readable protocol: issue date plus a random suffix.
func NewProtocol(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return now.UTC().Format("20060102") + "-" + suffix
}
