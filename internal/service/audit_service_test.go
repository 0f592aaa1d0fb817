package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ethics-case-api/internal/models"
	appErrors "github.com/noah-isme/ethics-case-api/pkg/errors"
	"github.com/noah-isme/ethics-case-api/pkg/export"
)

func statusPtr(s models.CaseStatus) *models.CaseStatus { return &s }

func entry(from, to models.CaseStatus) models.AuditEntry {
	actor := "director-1"
	return models.AuditEntry{CaseID: "c1", PreviousStatus: statusPtr(from), NewStatus: to, Actor: &actor, CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func TestValidatePath(t *testing.T) {
	require.NoError(t, ValidatePath(nil))
	require.NoError(t, ValidatePath([]models.AuditEntry{
		entry(models.StatusRegistered, models.StatusAnalysis1),
		entry(models.StatusAnalysis1, models.StatusReview1),
		entry(models.StatusReview1, models.StatusArchived),
	}))

	require.NoError(t, ValidatePath([]models.AuditEntry{
		entry(models.StatusWaitingAnalyst1, models.StatusAnalysis1),
		entry(models.StatusAnalysis1, models.StatusReview1),
	}))
	require.NoError(t, ValidatePath([]models.AuditEntry{
		{CaseID: "c1", NewStatus: models.StatusRegistered},
		entry(models.StatusRegistered, models.StatusAnalysis1),
	}))
	require.NoError(t, ValidatePath([]models.AuditEntry{
		entry(models.StatusAnalysis1, models.StatusReview1),
	}))
	require.Error(t, ValidatePath([]models.AuditEntry{
		entry(models.StatusRegistered, models.StatusAnalysis1),
		entry(models.StatusReview1, models.StatusArchived),
	}))
	require.Error(t, ValidatePath([]models.AuditEntry{
		entry(models.StatusRegistered, models.StatusClosed),
	}))
	require.Error(t, ValidatePath([]models.AuditEntry{
		{CaseID: "c1", NewStatus: models.StatusRegistered},
		{CaseID: "c1", NewStatus: models.StatusAnalysis1},
	}))
	require.Error(t, ValidatePath([]models.AuditEntry{{NewStatus: models.CaseStatus("UNKNOWN")}}))
}

func TestAuditServiceHistory(t *testing.T) {
	store := newMemStore(seedCase("c1", models.StatusRegistered))
	svc, _ := newTestWorkflow(store)
	assign(t, svc, "c1", 1, "analyst-a", "")
	submit(t, svc, "c1", 1, "analyst-a")

	audit := NewAuditService(store, store, nil, nil, nil)
	history, err := audit.History(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "c1", history.CaseID)
	require.Len(t, history.Entries, 2)
	require.True(t, history.Consistent)

	_, err = audit.History(context.Background(), "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAuditServiceHistoryFlagsBrokenTrail(t *testing.T) {
	store := newMemStore(seedCase("c1", models.StatusReview1))
	store.audit["c1"] = []models.AuditEntry{
		entry(models.StatusRegistered, models.StatusAnalysis1),
		entry(models.StatusRegistered, models.StatusAnalysis1),
	}

	history, err := NewAuditService(store, store, nil, nil, nil).History(context.Background(), "c1")
	require.NoError(t, err)
	require.False(t, history.Consistent)
	require.Len(t, history.Entries, 2)
}

func TestAuditServiceHistoryFromWaitingAnalyst(t *testing.T) {
	store := newMemStore(seedCase("c1", models.StatusWaitingAnalyst1))
	svc, _ := newTestWorkflow(store)
	assign(t, svc, "c1", 1, "analyst-a", "")
	submit(t, svc, "c1", 1, "analyst-a")

	history, err := NewAuditService(store, store, nil, nil, nil).History(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, history.Entries, 2)
	require.Equal(t, models.StatusWaitingAnalyst1, *history.Entries[0].PreviousStatus)
	require.True(t, history.Consistent)
}

func TestAuditServiceHistoryWithIntakeEntry(t *testing.T) {
	store := newMemStore(seedCase("c1", models.StatusAnalysis1))
	store.audit["c1"] = []models.AuditEntry{
		{CaseID: "c1", NewStatus: models.StatusRegistered, Comment: "registered at intake"},
		entry(models.StatusRegistered, models.StatusAnalysis1),
	}

	history, err := NewAuditService(store, store, nil, nil, nil).History(context.Background(), "c1")
	require.NoError(t, err)
	require.True(t, history.Consistent)
}

func TestAuditServiceHistoryEmpty(t *testing.T) {
	store := newMemStore(seedCase("c1", models.StatusRegistered))
	history, err := NewAuditService(store, store, nil, nil, nil).History(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, history.Entries)
	require.Empty(t, history.Entries)
	require.True(t, history.Consistent)
}

func TestAuditServiceExportCSV(t *testing.T) {
	store := newMemStore(seedCase("c1", models.StatusReview1))
	store.audit["c1"] = []models.AuditEntry{
		entry(models.StatusRegistered, models.StatusAnalysis1),
		entry(models.StatusAnalysis1, models.StatusReview1),
	}
	svc := NewAuditService(store, store, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC) }

	file, err := svc.Export(context.Background(), "c1", "CSV")
	require.NoError(t, err)
	require.Equal(t, "text/csv", file.ContentType)
	require.Equal(t, "case_20260101-c1_history_20260203_100000.csv", file.Filename)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"#", "Timestamp", "From", "To", "Actor", "Comment"}, records[0])
	require.Equal(t, "REGISTERED", records[1][2])
	require.Equal(t, "ANALYSIS_1", records[1][3])
	require.Equal(t, "director-1", records[1][4])
}

func TestAuditServiceExportPDF(t *testing.T) {
	store := newMemStore(seedCase("c1", models.StatusReview1))
	store.audit["c1"] = []models.AuditEntry{entry(models.StatusRegistered, models.StatusAnalysis1)}

	file, err := NewAuditService(store, store, nil, nil, nil).Export(context.Background(), "c1", ExportFormatPDF)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", file.ContentType)
	require.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

type failingPDF struct{}

func (failingPDF) Render(export.Dataset, string, ...string) ([]byte, error) {
	return nil, errors.New("font missing")
}

func TestAuditServiceExportErrors(t *testing.T) {
	store := newMemStore(seedCase("c1", models.StatusReview1))
	svc := NewAuditService(store, store, nil, nil, failingPDF{})

	_, err := svc.Export(context.Background(), "c1", "xlsx")
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Export(context.Background(), "missing", ExportFormatCSV)
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Export(context.Background(), "c1", ExportFormatPDF)
	require.ErrorIs(t, err, appErrors.ErrInternal)
}
