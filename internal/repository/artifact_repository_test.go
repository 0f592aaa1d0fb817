package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ethics-case-api/internal/models"
)

func TestArtifactRepositoryCreatesRecords(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewArtifactRepository(db)
	ctx := context.Background()

	for _, table := range []string{"case_proceedings", "audit_findings", "risk_entries", "control_tickets"} {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO " + table)).WillReturnResult(sqlmock.NewResult(1, 1))
	}

	proceeding := &models.Proceeding{CaseID: "case-1", Kind: models.ProceedingInvestigation, AnalystID: "analyst-2"}
	require.NoError(t, repo.CreateProceeding(ctx, proceeding))
	require.NotEmpty(t, proceeding.ID)
	require.False(t, proceeding.CreatedAt.IsZero())

	finding := &models.AuditFinding{CaseID: "case-1", Title: "closed", Severity: models.FindingSeverityPending}
	require.NoError(t, repo.CreateAuditFinding(ctx, finding))
	require.NotEmpty(t, finding.ID)

	risk := &models.RiskEntry{CaseID: "case-1", Probability: models.RiskLevelHigh, Impact: models.RiskLevelHigh, CalculatedLevel: models.RiskLevelCritical}
	require.NoError(t, repo.CreateRiskEntry(ctx, risk))
	require.NotEmpty(t, risk.ID)

	ticket := &models.ControlTicket{ID: "fixed-id", CaseID: "case-1", Title: "follow-up", Status: models.ControlTicketOpen}
	require.NoError(t, repo.CreateControlTicket(ctx, ticket))
	require.Equal(t, "fixed-id", ticket.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArtifactRepositoryClassifiesFailures(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewArtifactRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO control_tickets")).
		WillReturnError(&pq.Error{Code: "40001"})

	err := repo.CreateControlTicket(context.Background(), &models.ControlTicket{CaseID: "case-1"})
	require.True(t, errors.Is(err, ErrStaleCase))
	require.NoError(t, mock.ExpectationsWereMet())
}
