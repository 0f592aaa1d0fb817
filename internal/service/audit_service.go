package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ethics-case-api/internal/dto"
	"github.com/noah-isme/ethics-case-api/internal/models"
	appErrors "github.com/noah-isme/ethics-case-api/pkg/errors"
	"github.com/noah-isme/ethics-case-api/pkg/export"
)

type auditReader interface {
	ListByCase(ctx context.Context, caseID string) ([]models.AuditEntry, error)
}

type caseLookup interface {
	GetByID(ctx context.Context, id string) (*models.Case, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, subtitle ...string) ([]byte, error)
}

// ExportFormat selects the history export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered history export.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// AuditService serves the audit trail of a case.
type AuditService struct {
	audit   auditReader
	cases   caseLookup
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewAuditService constructs an AuditService. Nil renderers fall back to the
// pkg/export implementations.
func NewAuditService(audit auditReader, cases caseLookup, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &AuditService{
		audit:   audit,
		cases:   cases,
		csv:     csv,
		pdf:     pdf,
		logger:  logger,
		timeout: 5 * time.Second,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// History returns the audit entries of a case in commit order, flagged with
// whether they replay as a valid workflow path.
func (s *AuditService) History(ctx context.Context, caseID string) (*dto.HistoryResponse, error) {
	c, entries, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	consistent := true
	if err := ValidatePath(entries); err != nil {
		consistent = false
		s.logger.Error("audit trail does not replay", zap.String("case_id", c.ID), zap.Error(err))
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return &dto.HistoryResponse{CaseID: c.ID, Entries: entries, Consistent: consistent}, nil
}

// Export renders the audit trail as CSV or PDF.
func (s *AuditService) Export(ctx context.Context, caseID string, format ExportFormat) (*ExportFile, error) {
	format = ExportFormat(strings.ToLower(string(format)))
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	c, entries, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	dataset := historyDataset(entries)
	filename := fmt.Sprintf("case_%s_history_%s.%s", sanitizeFilename(c.Protocol), s.now().Format("20060102_150405"), format)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		body, err = s.pdf.Render(dataset, fmt.Sprintf("Case %s history", c.Protocol),
			fmt.Sprintf("Status: %s", c.Status),
			fmt.Sprintf("Generated: %s", s.now().Format(time.RFC3339)),
		)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render history export")
	}
	return &ExportFile{Filename: filename, ContentType: contentType, Body: body}, nil
}

func (s *AuditService) load(ctx context.Context, caseID string) (*models.Case, []models.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, nil, mapStoreError(err, "failed to load case")
	}
	entries, err := s.audit.ListByCase(ctx, c.ID)
	if err != nil {
		return nil, nil, mapStoreError(err, "failed to load case history")
	}
	return c, entries, nil
}

// ValidatePath replays entries against the transition table. Replay starts
// from the first entry, whose previous status may be empty for intake rows.
// Every later entry must start where the previous one ended.
func ValidatePath(entries []models.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	first := entries[0]
	if !first.NewStatus.Valid() {
		return fmt.Errorf("entry 0 has unknown status %s", first.NewStatus)
	}
	if first.PreviousStatus != nil && !models.CanTransition(*first.PreviousStatus, first.NewStatus) {
		return fmt.Errorf("entry 0: %s -> %s is not a workflow edge", *first.PreviousStatus, first.NewStatus)
	}
	current := first.NewStatus
	for i := 1; i < len(entries); i++ {
		entry := entries[i]
		if entry.PreviousStatus == nil {
			return fmt.Errorf("entry %d has no previous status", i)
		}
		if *entry.PreviousStatus != current {
			return fmt.Errorf("entry %d starts at %s, expected %s", i, *entry.PreviousStatus, current)
		}
		if !models.CanTransition(current, entry.NewStatus) {
			return fmt.Errorf("entry %d: %s -> %s is not a workflow edge", i, current, entry.NewStatus)
		}
		current = entry.NewStatus
	}
	return nil
}

func historyDataset(entries []models.AuditEntry) export.Dataset {
	headers := []string{"#", "Timestamp", "From", "To", "Actor", "Comment"}
	rows := make([]map[string]string, 0, len(entries))
	for i, entry := range entries {
		from := ""
		if entry.PreviousStatus != nil {
			from = string(*entry.PreviousStatus)
		}
		actor := "system"
		if entry.Actor != nil {
			actor = *entry.Actor
		}
		rows = append(rows, map[string]string{
			"#":         fmt.Sprintf("%d", i+1),
			"Timestamp": entry.CreatedAt.UTC().Format(time.RFC3339),
			"From":      from,
			"To":        string(entry.NewStatus),
			"Actor":     actor,
			"Comment":   entry.Comment,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows, Widths: []float64{0.5, 2, 2, 2, 2, 5}}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
