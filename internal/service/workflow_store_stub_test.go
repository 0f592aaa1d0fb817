package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/noah-isme/ethics-case-api/internal/models"
	"github.com/noah-isme/ethics-case-api/internal/repository"
)

// memStore is a transactional in-memory case store. WithinTx serialises
// transactions and restores a snapshot when fn fails.
type memStore struct {
	mu          sync.Mutex
	cases       map[string]*models.Case
	audit       map[string][]models.AuditEntry
	proceedings []models.Proceeding
	findings    []models.AuditFinding
	risks       []models.RiskEntry
	tickets     []models.ControlTicket
	seq         int64

	// hooks
	afterRead    func(s *memStore, c *models.Case)
	blockRead    bool
	failFinding  error
	failRisk     error
	failTicket   error
	failAudit    error
	visibleCalls int
}

type memSnapshot struct {
	cases       map[string]*models.Case
	audit       map[string][]models.AuditEntry
	proceedings []models.Proceeding
	findings    []models.AuditFinding
	risks       []models.RiskEntry
	tickets     []models.ControlTicket
	seq         int64
}

func newMemStore(cases ...*models.Case) *memStore {
	s := &memStore{
		cases: make(map[string]*models.Case),
		audit: make(map[string][]models.AuditEntry),
	}
	for _, c := range cases {
		s.cases[c.ID] = c.Clone()
	}
	return s
}

func seedCase(id string, status models.CaseStatus) *models.Case {
	return &models.Case{
		ID:          id,
		Protocol:    "20260101-" + id,
		Status:      status,
		Severity:    models.SeverityHigh,
		Categories:  []string{"harassment"},
		Description: "confidential narrative",
		Version:     1,
	}
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		cases:       make(map[string]*models.Case, len(s.cases)),
		audit:       make(map[string][]models.AuditEntry, len(s.audit)),
		proceedings: append([]models.Proceeding(nil), s.proceedings...),
		findings:    append([]models.AuditFinding(nil), s.findings...),
		risks:       append([]models.RiskEntry(nil), s.risks...),
		tickets:     append([]models.ControlTicket(nil), s.tickets...),
		seq:         s.seq,
	}
	for id, c := range s.cases {
		snap.cases[id] = c.Clone()
	}
	for id, entries := range s.audit {
		snap.audit[id] = append([]models.AuditEntry(nil), entries...)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.cases = snap.cases
	s.audit = snap.audit
	s.proceedings = snap.proceedings
	s.findings = snap.findings
	s.risks = snap.risks
	s.tickets = snap.tickets
	s.seq = snap.seq
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.CaseTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin: %w: %w", repository.ErrUnavailable, err)
	}
	snap := s.snapshot()
	if err := fn(ctx, &memTx{store: s}); err != nil {
		s.restore(snap)
		return err
	}
	if err := ctx.Err(); err != nil {
		s.restore(snap)
		return fmt.Errorf("commit: %w: %w", repository.ErrUnavailable, err)
	}
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*models.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c.Clone(), nil
}

func (s *memStore) List(ctx context.Context, filter models.CaseFilter) ([]models.Case, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Case, 0, len(s.cases))
	for _, c := range s.cases {
		if len(filter.Status) > 0 && !models.StatusIn(c.Status, filter.Status) {
			continue
		}
		out = append(out, *c.Clone())
	}
	return out, len(out), nil
}

func (s *memStore) SetVisibility(ctx context.Context, id string, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibleCalls++
	c, ok := s.cases[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.VisibleToSchool = visible
	return nil
}

func (s *memStore) ListByCase(ctx context.Context, caseID string) ([]models.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEntry(nil), s.audit[caseID]...), nil
}

func (s *memStore) caseStatus(id string) models.CaseStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cases[id].Status
}

func (s *memStore) entries(id string) []models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEntry(nil), s.audit[id]...)
}

type memTx struct {
	store *memStore
}

func (t *memTx) GetCase(ctx context.Context, id string) (*models.Case, error) {
	if t.store.blockRead {
		<-ctx.Done()
		return nil, fmt.Errorf("select case: %w: %w", repository.ErrUnavailable, ctx.Err())
	}
	c, ok := t.store.cases[id]
	if !ok {
		return nil, fmt.Errorf("tx: %w", sql.ErrNoRows)
	}
	out := c.Clone()
	if t.store.afterRead != nil {
		t.store.afterRead(t.store, c)
	}
	return out, nil
}

func (t *memTx) UpdateCase(ctx context.Context, c *models.Case, expected models.CaseStatus, expectedVersion int) error {
	stored, ok := t.store.cases[c.ID]
	if !ok || stored.Status != expected || stored.Version != expectedVersion {
		return fmt.Errorf("update case %s: %w", c.ID, repository.ErrStaleCase)
	}
	next := c.Clone()
	next.Version = expectedVersion + 1
	t.store.cases[c.ID] = next
	return nil
}

func (t *memTx) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	if t.store.failAudit != nil {
		return t.store.failAudit
	}
	t.store.seq++
	entry.Seq = t.store.seq
	entry.ID = fmt.Sprintf("audit-%d", t.store.seq)
	t.store.audit[entry.CaseID] = append(t.store.audit[entry.CaseID], *entry)
	return nil
}

func (t *memTx) CreateProceeding(ctx context.Context, p *models.Proceeding) error {
	p.ID = fmt.Sprintf("proceeding-%d", len(t.store.proceedings)+1)
	t.store.proceedings = append(t.store.proceedings, *p)
	return nil
}

func (t *memTx) CreateAuditFinding(ctx context.Context, f *models.AuditFinding) error {
	if t.store.failFinding != nil {
		return t.store.failFinding
	}
	f.ID = fmt.Sprintf("finding-%d", len(t.store.findings)+1)
	t.store.findings = append(t.store.findings, *f)
	return nil
}

func (t *memTx) CreateRiskEntry(ctx context.Context, e *models.RiskEntry) error {
	if t.store.failRisk != nil {
		return t.store.failRisk
	}
	e.ID = fmt.Sprintf("risk-%d", len(t.store.risks)+1)
	t.store.risks = append(t.store.risks, *e)
	return nil
}

func (t *memTx) CreateControlTicket(ctx context.Context, ticket *models.ControlTicket) error {
	if t.store.failTicket != nil {
		return t.store.failTicket
	}
	ticket.ID = fmt.Sprintf("ticket-%d", len(t.store.tickets)+1)
	t.store.tickets = append(t.store.tickets, *ticket)
	return nil
}

type notifierStub struct {
	mu     sync.Mutex
	events []models.StatusChangedEvent
}

func (n *notifierStub) Notify(ctx context.Context, event models.StatusChangedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *notifierStub) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}
