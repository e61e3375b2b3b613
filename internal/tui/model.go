// Package tui is the interactive transmittal browser.
//
// Everything runs on Bubble Tea's event loop. Fetches are tea.Cmds that carry
// the pager ticket they were started with; results land back on the loop as
// pageMsg values and are applied there, so late answers from a previous tab are
// recognised by their generation and dropped.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/Makepad-fr/transmit/internal/listing"
	"github.com/Makepad-fr/transmit/internal/model"
	"github.com/Makepad-fr/transmit/internal/source"
	"github.com/Makepad-fr/transmit/internal/ui"
)

const (
	defaultWidth     = 100
	defaultHeight    = 30
	defaultNoticeTTL = 4 * time.Second
	cardHeight       = 4 // three card lines plus a gap
	chromeHeight     = 10
)

// Options configure the browser.
type Options struct {
	Source source.Source
	// ServerPaged makes "load more" fetch the next page from Source instead of
	// growing a local window over one whole-tab fetch.
	ServerPaged    bool
	PageSize       int
	PageStep       int
	ServerPageSize int
	Sort           listing.SortKey
	// LoadDelay simulates latency for locally windowed sources.
	LoadDelay time.Duration
	NoticeTTL time.Duration
	Logger    zerolog.Logger
}

type (
	// pageMsg is the outcome of one fetch.
	pageMsg struct {
		ticket listing.Ticket
		items  []model.Transmittal
		err    error
	}
	// growMsg ends a simulated client-side "load more".
	growMsg struct{ seq int }
	// noticeExpiredMsg clears the notice it was scheduled for.
	noticeExpiredMsg struct{ id int }
)

// Model is the Bubble Tea model for the browser.
type Model struct {
	ctx  context.Context
	src  source.Source
	feed *listing.Feed[model.Transmittal]
	log  zerolog.Logger

	delay     time.Duration
	noticeTTL time.Duration

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	search  textinput.Model

	searching bool
	detail    bool
	cursor    int
	offset    int
	tab       int

	// client-side "load more" in progress; seq invalidates it on tab change
	growing bool
	growSeq int

	notice   string
	noticeID int

	width, height int
}

// New builds the browser model. ctx bounds every fetch it starts.
func New(ctx context.Context, opts Options) *Model {
	var feed *listing.Feed[model.Transmittal]
	if opts.ServerPaged {
		feed = listing.NewServerFeed[model.Transmittal](opts.ServerPageSize)
	} else {
		feed = listing.NewClientFeed[model.Transmittal](opts.PageSize, opts.PageStep)
	}
	if opts.Sort != "" {
		feed.SetSort(opts.Sort)
	}
	ttl := opts.NoticeTTL
	if ttl <= 0 {
		ttl = defaultNoticeTTL
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search title, number or recipient..."
	ti.CharLimit = 120

	w, h := defaultWidth, defaultHeight
	if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw > 0 {
		w, h = tw, th
	}

	return &Model{
		ctx:       ctx,
		src:       opts.Source,
		feed:      feed,
		log:       opts.Logger,
		delay:     opts.LoadDelay,
		noticeTTL: ttl,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		search:    ti,
		width:     w,
		height:    h,
	}
}

// Run starts the browser on the alternate screen and blocks until it quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(listing.LoadInitial))
}

// load reserves a pager ticket and returns the command that fetches it, or nil
// when the pager refuses (already loading, or nothing more to load).
func (m *Model) load(kind listing.LoadKind) tea.Cmd {
	t, ok := m.feed.Pager().Begin(kind)
	if !ok {
		return nil
	}
	m.log.Debug().Stringer("kind", kind).Uint64("gen", t.Gen).
		Str("status", t.Request.Status).Int("skip", t.Request.Skip).Int("limit", t.Request.Limit).
		Msg("fetch started")

	ctx, fetch := m.ctx, source.Fetcher(m.src)
	run := func() tea.Msg {
		items, err := fetch(ctx, t.Request)
		return pageMsg{ticket: t, items: items, err: err}
	}
	if m.delay > 0 && !m.feed.NeedsFetch() {
		return tea.Tick(m.delay, func(time.Time) tea.Msg { return run() })
	}
	return run
}

func (m *Model) setNotice(s string) tea.Cmd {
	m.noticeID++
	m.notice = s
	id := m.noticeID
	return tea.Tick(m.noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{id: id} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case pageMsg:
		return m, m.applyPage(msg)

	case growMsg:
		if msg.seq == m.growSeq && m.growing {
			m.growing = false
			m.feed.Grow()
		}
		return m, nil

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		if m.detail {
			return m, m.updateDetail(msg)
		}
		return m, m.updateList(msg)
	}
	return m, nil
}

func (m *Model) applyPage(msg pageMsg) tea.Cmd {
	applied, err := m.feed.Pager().Finish(msg.ticket, msg.items, msg.err)
	if err != nil {
		m.log.Warn().Err(err).Stringer("kind", msg.ticket.Kind).Msg("fetch failed")
		return m.setNotice("Could not load transmittals: " + err.Error())
	}
	if !applied {
		m.log.Debug().Uint64("gen", msg.ticket.Gen).Msg("stale page dropped")
		return nil
	}
	m.log.Debug().Stringer("kind", msg.ticket.Kind).Int("items", len(msg.items)).Msg("page applied")
	m.clampCursor()
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.feed.SetText("")
		m.clampCursor()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.feed.SetText(m.search.Value())
	m.cursor, m.offset = 0, 0
	return cmd
}

func (m *Model) updateDetail(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Open):
		m.detail = false
	}
	return nil
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.feed.Page().Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % len(listing.Tabs()))
	case key.Matches(msg, m.keys.PrevTab):
		n := len(listing.Tabs())
		return m.switchTab((m.tab + n - 1) % n)
	case key.Matches(msg, m.keys.Tab):
		return m.switchTab(int(msg.Runes[0] - '1'))
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.Focus()
		return textinput.Blink
	case key.Matches(msg, m.keys.Sort):
		m.feed.SetSort(m.feed.SortKey().Next())
		m.cursor, m.offset = 0, 0
	case key.Matches(msg, m.keys.More):
		return m.loadMore()
	case key.Matches(msg, m.keys.Reload):
		m.growing = false
		m.growSeq++
		return m.load(listing.LoadInitial)
	case key.Matches(msg, m.keys.Open):
		if len(m.feed.Page().Items) > 0 {
			m.detail = true
		}
	case key.Matches(msg, m.keys.Back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.feed.SetText("")
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.ShowHelp):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) switchTab(i int) tea.Cmd {
	tabs := listing.Tabs()
	if i < 0 || i >= len(tabs) {
		return nil
	}
	changed, err := m.feed.SetTab(tabs[i])
	if err != nil || !changed {
		return nil
	}
	m.tab = i
	m.cursor, m.offset = 0, 0
	m.growing = false
	m.growSeq++
	m.log.Debug().Str("tab", tabs[i]).Msg("tab switched")
	return m.load(listing.LoadInitial)
}

// loadMore is ignored unless more items exist and no "load more" is pending.
func (m *Model) loadMore() tea.Cmd {
	if !m.feed.Page().HasMore {
		return nil
	}
	if m.feed.NeedsFetch() {
		return m.load(listing.LoadMore)
	}
	if m.growing {
		return nil
	}
	if m.delay <= 0 {
		m.feed.Grow()
		return nil
	}
	m.growing = true
	seq := m.growSeq
	return tea.Tick(m.delay, func(time.Time) tea.Msg { return growMsg{seq: seq} })
}

// loadingMore reports whether a "load more" of either kind is pending.
func (m *Model) loadingMore() bool {
	return m.growing || m.feed.Pager().Loading(listing.LoadMore)
}

func (m *Model) clampCursor() {
	n := len(m.feed.Page().Items)
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

func (m *Model) selected() (model.Transmittal, bool) {
	items := m.feed.Page().Items
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.Transmittal{}, false
	}
	return items[m.cursor], true
}

func (m *Model) View() string {
	if m.detail {
		if t, ok := m.selected(); ok {
			body := strings.Join(ui.Detail(t), "\n")
			return frameStyle.Render(body) + "\n" + mutedStyle.Render("esc back · q quit")
		}
	}

	var b strings.Builder
	b.WriteString(m.viewTabs() + "\n")
	b.WriteString(m.viewSearch() + "\n\n")

	page := m.feed.Page()
	pager := m.feed.Pager()
	switch {
	case !pager.Loaded() && pager.Loading(listing.LoadInitial):
		b.WriteString(m.spinner.View() + " Loading transmittals...\n")
	case len(page.Items) == 0:
		b.WriteString(mutedStyle.Render(m.emptyText()) + "\n")
	default:
		b.WriteString(m.viewCards(page.Items))
	}

	b.WriteString("\n" + ui.Showing(len(page.Items), page.Matched, page.HasMore))
	switch {
	case pager.Loaded() && pager.Loading(listing.LoadInitial):
		b.WriteString("  " + m.spinner.View() + pendingStyle.Render(" Refreshing..."))
	case m.loadingMore():
		b.WriteString("  " + m.spinner.View() + pendingStyle.Render(" Loading more..."))
	case page.HasMore:
		b.WriteString("  " + accentStyle.Render("[m] Load more"))
	}
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(errorStyle.Render("✖ "+m.notice) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return frameStyle.Render(b.String())
}

func (m *Model) emptyText() string {
	if m.feed.Query().Text != "" {
		return "No transmittals match your search."
	}
	return "No transmittals found."
}

func (m *Model) viewTabs() string {
	parts := []string{titleStyle.Render("Transmittals")}
	for i, tab := range listing.Tabs() {
		label := fmt.Sprintf("%d %s", i+1, model.Status(tab).Label())
		if i == m.tab {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) viewSearch() string {
	sortLabel := mutedStyle.Render("Sort: " + m.feed.SortKey().Label())
	if m.searching {
		return m.search.View() + "  " + sortLabel
	}
	if q := m.feed.Query().Text; q != "" {
		return accentStyle.Render("Search: "+q) + "  " + sortLabel
	}
	return mutedStyle.Render("/ to search") + "  " + sortLabel
}

// viewCards renders the slice of cards that fits, keeping the cursor visible.
func (m *Model) viewCards(items []model.Transmittal) string {
	fit := max((m.height-chromeHeight)/cardHeight, 1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+fit {
		m.offset = m.cursor - fit + 1
	}
	end := min(m.offset+fit, len(items))

	var b strings.Builder
	for i := m.offset; i < end; i++ {
		lines := ui.Card(items[i])
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render("> ")
		}
		for j, ln := range lines {
			if j == 0 {
				b.WriteString(prefix + ln + "\n")
				continue
			}
			b.WriteString("  " + ln + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
