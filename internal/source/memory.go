package source

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Makepad-fr/transmit/internal/listing"
	"github.com/Makepad-fr/transmit/internal/model"
	"github.com/Makepad-fr/transmit/internal/store/jsonstore"
)

// Memory is an in-process Store. It applies the portal's rules locally so the
// CLI and TUI work without a backend. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	items []model.Transmittal
	path  string
	now   func() time.Time
	log   zerolog.Logger
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithFile saves the collection to path after every mutation.
func WithFile(path string) MemoryOption {
	return func(m *Memory) { m.path = path }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithLogger sets the store's logger.
func WithLogger(l zerolog.Logger) MemoryOption {
	return func(m *Memory) { m.log = l }
}

// NewMemory returns a store seeded with a copy of items.
func NewMemory(items []model.Transmittal, opts ...MemoryOption) *Memory {
	m := &Memory{
		items: cloneAll(items),
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// OpenFile loads the store from a JSON file and keeps it in sync with it.
func OpenFile(path string, opts ...MemoryOption) (*Memory, error) {
	items, err := jsonstore.Load(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return NewMemory(items, append(opts, WithFile(path))...), nil
}

func (m *Memory) List(ctx context.Context, req listing.PageRequest) ([]model.Transmittal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	matched := m.byStatus(normStatus(req.Status))
	m.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b model.Transmittal) int {
		return b.CreatedDate.Compare(a.CreatedDate.Time)
	})
	skip := max(req.Skip, 0)
	if skip >= len(matched) {
		return []model.Transmittal{}, nil
	}
	end := len(matched)
	if req.Limit > 0 {
		end = min(end, skip+req.Limit)
	}
	return cloneAll(matched[skip:end]), nil
}

func (m *Memory) Count(ctx context.Context, status string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byStatus(normStatus(status))), nil
}

func (m *Memory) Get(ctx context.Context, id string) (model.Transmittal, error) {
	if err := ctx.Err(); err != nil {
		return model.Transmittal{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.index(id)
	if i < 0 {
		return model.Transmittal{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return m.items[i].Clone(), nil
}

func (m *Memory) Create(ctx context.Context, d model.Draft) (model.Transmittal, error) {
	if err := ctx.Err(); err != nil {
		return model.Transmittal{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Transmittal{}, err
	}
	t := model.Transmittal{
		ID:            uuid.NewString(),
		Draft:         d.Clone(),
		Status:        model.StatusDraft,
		DocumentCount: len(d.Documents),
		CreatedDate:   model.NewTimestamp(m.now()),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.commit(append(slices.Clone(m.items), t)); err != nil {
		return model.Transmittal{}, err
	}
	m.log.Debug().Str("id", t.ID).Msg("transmittal created")
	return t.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, id string, d model.Draft) (model.Transmittal, error) {
	if err := ctx.Err(); err != nil {
		return model.Transmittal{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Transmittal{}, err
	}
	return m.mutate("update", id, func(t *model.Transmittal) error {
		if !t.Editable() {
			return ErrNotDraft
		}
		t.Draft = d
		t.DocumentCount = len(d.Documents)
		return nil
	})
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	if !m.items[i].Editable() {
		return fmt.Errorf("delete %s: %w", id, ErrNotDraft)
	}
	if err := m.commit(slices.Delete(slices.Clone(m.items), i, i+1)); err != nil {
		return err
	}
	m.log.Debug().Str("id", id).Msg("transmittal deleted")
	return nil
}

func (m *Memory) Generate(ctx context.Context, id string) (model.Transmittal, error) {
	if err := ctx.Err(); err != nil {
		return model.Transmittal{}, err
	}
	return m.mutate("generate", id, func(t *model.Transmittal) error {
		if !t.Editable() {
			return ErrNotDraft
		}
		now := m.now()
		ts := model.NewTimestamp(now)
		t.Status = model.StatusGenerated
		t.TransmittalNumber = m.nextNumber(now.Year())
		t.GeneratedDate = &ts
		return nil
	})
}

func (m *Memory) Duplicate(ctx context.Context, id string, mode DuplicateMode) (model.Transmittal, error) {
	if err := ctx.Err(); err != nil {
		return model.Transmittal{}, err
	}
	if mode != DuplicateOpposite && mode != DuplicateSame {
		return model.Transmittal{}, fmt.Errorf("duplicate %q: %w", mode, ErrInvalidMode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return model.Transmittal{}, fmt.Errorf("duplicate %s: %w", id, ErrNotFound)
	}
	d := m.items[i].Draft.Clone()
	if mode == DuplicateOpposite {
		d.SendMode = model.SendModeOpposite(d.SendMode)
	}
	t := model.Transmittal{
		ID:            uuid.NewString(),
		Draft:         d,
		Status:        model.StatusDraft,
		DocumentCount: len(d.Documents),
		CreatedDate:   model.NewTimestamp(m.now()),
	}
	if err := m.commit(append(slices.Clone(m.items), t)); err != nil {
		return model.Transmittal{}, err
	}
	return t.Clone(), nil
}

func (m *Memory) MarkSent(ctx context.Context, id string, d model.SendDetails, sentStatus string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.mutate("send", id, func(t *model.Transmittal) error {
		t.SendDetails = &d
		t.SentStatus = sentStatus
		if sentStatus == model.SentStatusSent {
			t.Status = model.StatusSent
		}
		return nil
	})
	return err
}

func (m *Memory) MarkReceived(ctx context.Context, id string, d model.ReceiveDetails, receivedStatus string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.mutate("receive", id, func(t *model.Transmittal) error {
		t.ReceiveDetails = &d
		t.ReceivedStatus = receivedStatus
		if receivedStatus == model.ReceivedStatusReceived {
			t.Status = model.StatusReceived
		}
		return nil
	})
	return err
}

// UploadReceipt encodes the receipt locally; nothing is stored until
// MarkReceived.
func (m *Memory) UploadReceipt(ctx context.Context, filename string, data []byte) (model.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return model.Receipt{}, err
	}
	r, err := EncodeReceipt(filename, data)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("upload receipt: %w", err)
	}
	m.log.Debug().Str("file", r.Filename).Str("content_type", r.ContentType).Msg("receipt encoded")
	return r, nil
}

// mutate applies fn to a copy of the transmittal and commits a copy of the
// result on success, so neither fn's inputs nor the return value alias the store.
func (m *Memory) mutate(op, id string, fn func(*model.Transmittal) error) (model.Transmittal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return model.Transmittal{}, fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	t := m.items[i].Clone()
	if err := fn(&t); err != nil {
		return model.Transmittal{}, fmt.Errorf("%s %s: %w", op, id, err)
	}
	next := slices.Clone(m.items)
	next[i] = t.Clone()
	if err := m.commit(next); err != nil {
		return model.Transmittal{}, err
	}
	m.log.Debug().Str("op", op).Str("id", id).Str("status", string(t.Status)).Msg("transmittal updated")
	return t, nil
}

// commit swaps in next, saving it first when the store is file-backed.
// Callers hold the write lock.
func (m *Memory) commit(next []model.Transmittal) error {
	if m.path != "" {
		if err := jsonstore.Save(m.path, next); err != nil {
			return fmt.Errorf("save %s: %w", m.path, err)
		}
	}
	m.items = next
	return nil
}

func cloneAll(items []model.Transmittal) []model.Transmittal {
	out := make([]model.Transmittal, len(items))
	for i, t := range items {
		out[i] = t.Clone()
	}
	return out
}

func (m *Memory) index(id string) int {
	return slices.IndexFunc(m.items, func(t model.Transmittal) bool { return t.ID == id })
}

func (m *Memory) byStatus(status string) []model.Transmittal {
	out := make([]model.Transmittal, 0, len(m.items))
	for _, t := range m.items {
		if status == "" || string(t.Status) == status {
			out = append(out, t)
		}
	}
	return out
}

// nextNumber returns TRN-<year>-<NNN>, one past the highest number issued
// that year.
func (m *Memory) nextNumber(year int) string {
	prefix := fmt.Sprintf("TRN-%d-", year)
	last := 0
	for _, t := range m.items {
		rest, ok := strings.CutPrefix(t.TransmittalNumber, prefix)
		if !ok {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(rest, "%d", &n); err == nil {
			last = max(last, n)
		}
	}
	return fmt.Sprintf("%s%03d", prefix, last+1)
}
