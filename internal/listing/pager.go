package listing

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadKind distinguishes the initial fetch from "load more".
type LoadKind int

const (
	LoadInitial LoadKind = iota
	LoadMore
)

func (k LoadKind) String() string {
	if k == LoadMore {
		return "more"
	}
	return "initial"
}

// PageRequest is what a data source is asked for. An empty Status means every
// status and a zero Limit means no limit.
type PageRequest struct {
	Status string
	Skip   int
	Limit  int
}

// Ticket identifies one in-flight load. It must be handed back to Finish.
type Ticket struct {
	Gen     uint64
	Kind    LoadKind
	Request PageRequest
}

// Fetcher loads one page.
type Fetcher[T any] func(ctx context.Context, req PageRequest) ([]T, error)

// Pager accumulates offset-paginated results for one status selector.
//
// A zero limit turns it into a single-shot loader: the initial load fetches
// the whole collection and HasMore is false afterwards.
type Pager[T any] struct {
	mu       sync.Mutex
	limit    int
	status   string
	gen      uint64
	items    []T
	loaded   bool
	hasMore  bool
	inflight [2]bool

	group singleflight.Group
}

// NewPager returns a pager fetching limit items per page for status.
func NewPager[T any](limit int, status string) *Pager[T] {
	if limit < 0 {
		limit = 0
	}
	return &Pager[T]{limit: limit, status: status}
}

// Begin reserves a load of the given kind. It refuses when the same kind is
// already in flight, and refuses LoadMore before the first page or after the
// last one. LoadInitial always starts a new generation, so a "load more" still
// in flight from before is discarded when it lands.
func (p *Pager[T]) Begin(kind LoadKind) (Ticket, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inflight[kind] {
		return Ticket{}, false
	}

	req := PageRequest{Status: p.status, Limit: p.limit}
	switch kind {
	case LoadInitial:
		p.gen++
		p.inflight = [2]bool{}
	case LoadMore:
		if !p.loaded || !p.hasMore || p.inflight[LoadInitial] {
			return Ticket{}, false
		}
		req.Skip = len(p.items)
	}
	p.inflight[kind] = true
	return Ticket{Gen: p.gen, Kind: kind, Request: req}, true
}

// Finish applies the outcome of a load started with Begin.
//
// Stale tickets are dropped and report applied=false with no error. On error the
// accumulated items and HasMore are left as they were and the error is returned.
func (p *Pager[T]) Finish(t Ticket, page []T, err error) (applied bool, _ error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t.Gen != p.gen {
		return false, nil
	}
	p.inflight[t.Kind] = false
	if err != nil {
		return false, err
	}

	switch t.Kind {
	case LoadInitial:
		p.items = slices.Clone(page)
		p.loaded = true
	case LoadMore:
		p.items = append(p.items, page...)
	}
	p.hasMore = p.limit > 0 && len(page) == p.limit
	return true, nil
}

// Load runs Begin, fetch and Finish in one call. Concurrent calls for the same
// generation and kind share a single fetch. A load that Begin refuses is a no-op.
func (p *Pager[T]) Load(ctx context.Context, fetch Fetcher[T], kind LoadKind) error {
	p.mu.Lock()
	key := fmt.Sprintf("%d/%s", p.gen, kind)
	p.mu.Unlock()

	_, err, _ := p.group.Do(key, func() (any, error) {
		t, ok := p.Begin(kind)
		if !ok {
			return nil, nil
		}
		page, err := fetch(ctx, t.Request)
		_, err = p.Finish(t, page, err)
		return nil, err
	})
	return err
}

// Reset discards accumulated pages and in-flight loads and switches status.
func (p *Pager[T]) Reset(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	p.status = status
	p.items = nil
	p.loaded = false
	p.hasMore = false
	p.inflight = [2]bool{}
}

// Items returns a copy of the accumulated items.
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.items)
}

func (p *Pager[T]) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

func (p *Pager[T]) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Loading reports whether a load of kind is in flight.
func (p *Pager[T]) Loading(kind LoadKind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflight[kind]
}
