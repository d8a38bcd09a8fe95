package billing_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

// ── Bitácora ──────────────────────────────────────────────────────────────────

type flowEvent struct {
	Level     entity.LogLevel
	InvoiceID string
	Phase     string
	Msg       string
	Data      map[string]any
}

type recEvents struct {
	mu     sync.Mutex
	flows  []flowEvent
	system []string
}

func (r *recEvents) Flow(_ context.Context, level entity.LogLevel, invoiceID, phase, msg string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows = append(r.flows, flowEvent{level, invoiceID, phase, msg, data})
}

func (r *recEvents) Info(_ context.Context, _, msg string, _ map[string]any) { r.sys("INFO " + msg) }
func (r *recEvents) Warn(_ context.Context, _, msg string, _ error)          { r.sys("WARN " + msg) }
func (r *recEvents) Error(_ context.Context, _, msg string, _ error)         { r.sys("ERROR " + msg) }

func (r *recEvents) sys(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.system = append(r.system, s)
}

func (r *recEvents) phases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.flows))
	for _, f := range r.flows {
		out = append(out, f.Phase)
	}
	return out
}

// ── Folio ─────────────────────────────────────────────────────────────────────

type memCounter struct {
	value   int64
	readErr error
	writes  []int64
}

func (c *memCounter) Read() (int64, error) {
	if c.readErr != nil {
		return 0, c.readErr
	}
	return c.value, nil
}

func (c *memCounter) Write(v int64) error {
	c.value = v
	c.writes = append(c.writes, v)
	return nil
}

type fixedFolios struct {
	max int64
	err error
}

func (f fixedFolios) MaxFolio(context.Context) (int64, error) { return f.max, f.err }

type fakeLocker struct {
	busy     int // intentos que devuelven ocupado antes de conceder
	err      error
	locked   int
	released []string
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if l.busy > 0 {
		l.busy--
		return "", false, nil
	}
	l.locked++
	return fmt.Sprintf("tok-%d", l.locked), true, nil
}

func (l *fakeLocker) Release(_ context.Context, _, token string) error {
	l.released = append(l.released, token)
	return nil
}

// ── Artefactos ────────────────────────────────────────────────────────────────

type memArtifacts struct {
	mu      sync.Mutex
	files   map[entity.ArtifactArea]map[string][]byte
	putErrs map[string]error // por nombre de archivo
	getErr  error
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{files: map[entity.ArtifactArea]map[string][]byte{}, putErrs: map[string]error{}}
}

func (m *memArtifacts) Put(_ context.Context, area entity.ArtifactArea, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.putErrs[name]; err != nil {
		return err
	}
	if m.files[area] == nil {
		m.files[area] = map[string][]byte{}
	}
	m.files[area][name] = append([]byte(nil), data...)
	return nil
}

func (m *memArtifacts) Get(_ context.Context, area entity.ArtifactArea, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.files[area][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	return data, nil
}

func (m *memArtifacts) List(_ context.Context, area entity.ArtifactArea) ([]entity.ArtifactInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ArtifactInfo
	for name, data := range m.files[area] {
		out = append(out, entity.ArtifactInfo{Name: name, Size: int64(len(data))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memArtifacts) has(area entity.ArtifactArea, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[area][name]
	return ok
}

// ── Documentos ────────────────────────────────────────────────────────────────

type memDocs struct {
	mu      sync.Mutex
	rows    map[string]*entity.InvoiceDocument
	err     error
	upserts int
}

func newMemDocs() *memDocs { return &memDocs{rows: map[string]*entity.InvoiceDocument{}} }

// Upsert aplica la misma regla que la tabla: solo los campos provistos sobrescriben.
func (d *memDocs) Upsert(_ context.Context, doc *entity.InvoiceDocument) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.upserts++
	row, ok := d.rows[doc.Identifier]
	if !ok {
		row = &entity.InvoiceDocument{Identifier: doc.Identifier}
		d.rows[doc.Identifier] = row
	}
	if doc.InvoiceID != nil {
		row.InvoiceID = doc.InvoiceID
	}
	if doc.ExchangeText != nil {
		row.ExchangeText = doc.ExchangeText
	}
	if doc.PrintableBlob != nil {
		row.PrintableBlob = doc.PrintableBlob
	}
	if doc.PrintableBase64 != nil {
		row.PrintableBase64 = doc.PrintableBase64
	}
	return nil
}

func (d *memDocs) GetByIdentifier(_ context.Context, identifier string) (*entity.InvoiceDocument, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	row, ok := d.rows[identifier]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (d *memDocs) Counts(context.Context) (*entity.DocumentStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := &entity.DocumentStats{Total: int64(len(d.rows))}
	for _, r := range d.rows {
		if r.ExchangeText != nil {
			s.WithExchange++
		}
		if r.PrintableBlob != nil {
			s.WithBlob++
		}
		if r.PrintableBase64 != nil {
			s.WithBase64++
		}
	}
	return s, nil
}

func (d *memDocs) Recent(_ context.Context, limit int) ([]entity.DocumentSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []entity.DocumentSummary
	for _, r := range d.rows {
		out = append(out, entity.DocumentSummary{
			Identifier:  r.Identifier,
			InvoiceID:   r.InvoiceID,
			HasExchange: r.ExchangeText != nil,
			HasBlob:     r.PrintableBlob != nil,
			HasBase64:   r.PrintableBase64 != nil,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── Base relacional en memoria ────────────────────────────────────────────────

type taxKey struct {
	invoiceID, taxTypeID int64
}

type relState struct {
	parties  map[string]int64
	products map[string]int64
	invoices map[int64]entity.Invoice
	folios   map[entity.Folio]int64
	links    map[[2]int64]bool
	lines    map[int64][]entity.LineItem
	taxTypes map[string]int64
	taxes    map[taxKey]entity.TaxLine
	nextID   int64
	failOn   string
}

func newRelState() *relState {
	return &relState{
		parties:  map[string]int64{},
		products: map[string]int64{},
		invoices: map[int64]entity.Invoice{},
		folios:   map[entity.Folio]int64{},
		links:    map[[2]int64]bool{},
		lines:    map[int64][]entity.LineItem{},
		taxTypes: map[string]int64{},
		taxes:    map[taxKey]entity.TaxLine{},
	}
}

func (s *relState) clone() *relState {
	c := newRelState()
	for k, v := range s.parties {
		c.parties[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	for k, v := range s.folios {
		c.folios[k] = v
	}
	for k, v := range s.links {
		c.links[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]entity.LineItem(nil), v...)
	}
	for k, v := range s.taxTypes {
		c.taxTypes[k] = v
	}
	for k, v := range s.taxes {
		c.taxes[k] = v
	}
	c.nextID = s.nextID
	c.failOn = s.failOn
	return c
}

func (s *relState) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *relState) fail(op string) error {
	if s.failOn == op {
		return errors.New("fallo simulado en " + op)
	}
	return nil
}

// memDB implementa BillingTxRunner: cada RunBilling trabaja sobre una copia que solo se
// confirma si fn no devuelve error.
type memDB struct {
	mu        sync.Mutex
	state     *relState
	failBegin error
	commits   int
	rollbacks int
}

func newMemDB() *memDB { return &memDB{state: newRelState()} }

func (db *memDB) RunBilling(ctx context.Context, fn func(
	repository.PartyRepository, repository.ProductRepository, repository.InvoiceRepository, repository.TaxRepository,
) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.failBegin != nil {
		return db.failBegin
	}
	tx := db.state.clone()
	if err := fn(txParties{tx}, txProducts{tx}, txInvoices{tx}, txTaxes{tx}); err != nil {
		db.rollbacks++
		return err
	}
	db.state = tx
	db.commits++
	return nil
}

func (db *memDB) MaxFolio(context.Context) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var m int64
	for f := range db.state.folios {
		m = max(m, int64(f))
	}
	return m, nil
}

type txParties struct{ s *relState }

func (r txParties) Upsert(_ context.Context, p *entity.Party) (int64, error) {
	if err := r.s.fail("party"); err != nil {
		return 0, err
	}
	if id, ok := r.s.parties[p.TaxID]; ok {
		return id, nil
	}
	id := r.s.id()
	r.s.parties[p.TaxID] = id
	return id, nil
}

type txProducts struct{ s *relState }

func (r txProducts) Upsert(_ context.Context, p *entity.Product) (int64, error) {
	if err := r.s.fail("product"); err != nil {
		return 0, err
	}
	if id, ok := r.s.products[p.Code]; ok {
		return id, nil
	}
	id := r.s.id()
	r.s.products[p.Code] = id
	return id, nil
}

type txInvoices struct{ s *relState }

func (r txInvoices) Create(_ context.Context, inv *entity.Invoice) (int64, error) {
	if err := r.s.fail("invoice"); err != nil {
		return 0, err
	}
	if _, ok := r.s.folios[inv.Folio]; ok {
		return 0, domain.ErrDuplicate
	}
	id := r.s.id()
	r.s.invoices[id] = *inv
	r.s.folios[inv.Folio] = id
	return id, nil
}

func (r txInvoices) LinkParty(_ context.Context, invoiceID, partyID int64) error {
	r.s.links[[2]int64{invoiceID, partyID}] = true
	return nil
}

func (r txInvoices) CreateLine(_ context.Context, invoiceID int64, line *entity.LineItem) error {
	if err := r.s.fail("line"); err != nil {
		return err
	}
	r.s.lines[invoiceID] = append(r.s.lines[invoiceID], *line)
	return nil
}

func (r txInvoices) MaxFolio(context.Context) (int64, error) { return 0, nil }

type txTaxes struct{ s *relState }

func (r txTaxes) UpsertType(_ context.Context, taxType string, rate decimal.Decimal) (int64, error) {
	key := taxType + "|" + rate.String()
	if id, ok := r.s.taxTypes[key]; ok {
		return id, nil
	}
	id := r.s.id()
	r.s.taxTypes[key] = id
	return id, nil
}

func (r txTaxes) LinkInvoice(_ context.Context, invoiceID, taxTypeID int64, line entity.TaxLine) (bool, error) {
	if err := r.s.fail("tax"); err != nil {
		return false, err
	}
	k := taxKey{invoiceID, taxTypeID}
	if _, ok := r.s.taxes[k]; ok {
		return false, nil
	}
	r.s.taxes[k] = line
	return true, nil
}

// ── Render ────────────────────────────────────────────────────────────────────

type fakePrinter struct {
	err   error
	calls int
}

func (p *fakePrinter) Render(_ context.Context, exchange []byte) ([]byte, string, error) {
	p.calls++
	if p.err != nil {
		return nil, "", p.err
	}
	return append([]byte("%PDF-1.7 "), exchange[:min(len(exchange), 16)]...), "", nil
}

type prefixValidator struct{}

func (prefixValidator) Validate(data []byte) error {
	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		return errors.New("pdf inválido")
	}
	return nil
}

type fakeQueue struct {
	err   error
	queue []string
}

func (q *fakeQueue) Enqueue(_ context.Context, identifier string, _ []byte) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.queue = append(q.queue, identifier)
	return "22222222" + identifier + ".zip", nil
}

type countMetrics struct {
	mu      sync.Mutex
	folios  int
	issued  map[string]int
	sources map[entity.RetrievalSource]int
}

func newCountMetrics() *countMetrics {
	return &countMetrics{issued: map[string]int{}, sources: map[entity.RetrievalSource]int{}}
}

func (m *countMetrics) FolioAllocated() { m.mu.Lock(); m.folios++; m.mu.Unlock() }
func (m *countMetrics) InvoiceIssued(o string) {
	m.mu.Lock()
	m.issued[o]++
	m.mu.Unlock()
}
func (m *countMetrics) PrintableServed(s entity.RetrievalSource) {
	m.mu.Lock()
	m.sources[s]++
	m.mu.Unlock()
}

var (
	_ billing.BillingTxRunner       = (*memDB)(nil)
	_ billing.FolioReader           = (*memDB)(nil)
	_ billing.ArtifactStore         = (*memArtifacts)(nil)
	_ billing.PrintableRenderer     = (*fakePrinter)(nil)
	_ billing.PrintableValidator    = prefixValidator{}
	_ billing.SubmissionQueue       = (*fakeQueue)(nil)
	_ billing.EventLogger           = (*recEvents)(nil)
	_ billing.Metrics               = (*countMetrics)(nil)
	_ repository.DocumentRepository = (*memDocs)(nil)
)
