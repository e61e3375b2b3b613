package listing

import "context"

// Mode says where "load more" gets its data from.
type Mode int

const (
	// ModeClient fetches a tab once and grows a local window.
	ModeClient Mode = iota
	// ModeServer fetches the next skip/limit page on every "load more".
	ModeServer
)

func (m Mode) String() string {
	if m == ModeServer {
		return "server"
	}
	return "client"
}

// Page is the pipeline's output for one render.
type Page[T any] struct {
	Items   []T  // visible items
	Matched int  // items passing the filter
	Loaded  int  // items held before filtering
	HasMore bool // whether "load more" can produce anything
}

// Feed is the view state a list screen owns: query, sort key, window and the
// pager holding fetched items. It is not safe for concurrent use; the screen
// drives it from its event loop.
type Feed[T Item] struct {
	mode   Mode
	query  Query
	sort   SortKey
	window *Window
	pager  *Pager[T]
}

// NewClientFeed loads whole tabs and windows them locally.
func NewClientFeed[T Item](initial, step int) *Feed[T] {
	return &Feed[T]{
		mode:   ModeClient,
		query:  Query{Tab: TabAll},
		sort:   DefaultSortKey,
		window: NewWindow(initial, step),
		pager:  NewPager[T](0, ""),
	}
}

// NewServerFeed loads pageSize items at a time from the source.
func NewServerFeed[T Item](pageSize int) *Feed[T] {
	if pageSize <= 0 {
		pageSize = DefaultStep
	}
	return &Feed[T]{
		mode:  ModeServer,
		query: Query{Tab: TabAll},
		sort:  DefaultSortKey,
		pager: NewPager[T](pageSize, ""),
	}
}

func (f *Feed[T]) Mode() Mode        { return f.mode }
func (f *Feed[T]) Query() Query      { return f.query }
func (f *Feed[T]) SortKey() SortKey  { return f.sort }
func (f *Feed[T]) Pager() *Pager[T]  { return f.pager }
func (f *Feed[T]) NeedsFetch() bool  { return f.mode == ModeServer }
func (f *Feed[T]) SetText(s string)  { f.query.Text = s }
func (f *Feed[T]) SetSort(k SortKey) { f.sort = k }

// Shown is the window size in client mode and the loaded count in server mode.
func (f *Feed[T]) Shown() int {
	if f.window != nil {
		return f.window.Shown()
	}
	return len(f.pager.Items())
}

// SetTab switches the tab selector. A change resets the window and drops every
// fetched page; the caller must start a new initial load.
func (f *Feed[T]) SetTab(tab string) (changed bool, err error) {
	tab, err = ParseTab(tab)
	if err != nil {
		return false, err
	}
	if tab == f.query.Tab {
		return false, nil
	}
	f.query.Tab = tab
	if f.window != nil {
		f.window.Reset()
	}
	f.pager.Reset(statusParam(tab))
	return true, nil
}

// Grow applies "load more" to the client window. It is a no-op in server mode,
// where the caller fetches through the pager instead.
func (f *Feed[T]) Grow() {
	if f.window != nil {
		f.window.Grow()
	}
}

// Fetch loads a page synchronously; see Pager.Load.
func (f *Feed[T]) Fetch(ctx context.Context, fetch Fetcher[T], kind LoadKind) error {
	return f.pager.Load(ctx, fetch, kind)
}

// Page runs filter, sort and window over what has been fetched.
func (f *Feed[T]) Page() Page[T] {
	loaded := f.pager.Items()
	matched := Sort(Filter(loaded, f.query), f.sort)

	p := Page[T]{Matched: len(matched), Loaded: len(loaded)}
	if f.mode == ModeServer {
		p.Items = matched
		p.HasMore = f.pager.HasMore()
		return p
	}
	p.Items = Visible(matched, f.window.Shown())
	p.HasMore = f.window.HasMore(len(matched))
	return p
}

// statusParam maps a tab to the source's status filter.
func statusParam(tab string) string {
	if tab == TabAll {
		return ""
	}
	return tab
}
