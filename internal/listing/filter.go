package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/Makepad-fr/transmit/internal/model"
)

// TabAll is the wildcard tab.
const TabAll = "all"

// ErrInvalidTab is returned for a tab that is neither "all" nor a declared status.
var ErrInvalidTab = errors.New("invalid tab")

// Item is anything the pipeline can list.
type Item interface {
	ItemID() string
	ItemStatus() model.Status
	ItemDate() time.Time
	ItemTitle() string
	SearchFields() []string
}

// Tabs returns the tab selectors in display order, wildcard first.
func Tabs() []string {
	tabs := []string{TabAll}
	for _, s := range model.Statuses {
		tabs = append(tabs, string(s))
	}
	return tabs
}

// ParseTab normalises a tab selector. Empty means all.
func ParseTab(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == TabAll {
		return TabAll, nil
	}
	if model.Status(s).Valid() {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrInvalidTab, s, strings.Join(Tabs(), ", "))
}

// Query is the filter stage's input.
type Query struct {
	Text string
	Tab  string
}

// IsWildcard reports whether the tab selector matches every status.
func (q Query) IsWildcard() bool { return q.Tab == "" || q.Tab == TabAll }

// matcher holds the folded query. A cases.Caser is stateful, so one per Filter call.
type matcher struct {
	q      Query
	folder cases.Caser
	needle string
}

func newMatcher(q Query) *matcher {
	m := &matcher{q: q, folder: cases.Fold()}
	m.needle = m.folder.String(q.Text)
	return m
}

func (m *matcher) match(it Item) bool {
	if !m.q.IsWildcard() && string(it.ItemStatus()) != m.q.Tab {
		return false
	}
	if m.needle == "" {
		return true
	}
	for _, f := range it.SearchFields() {
		if f == "" {
			continue
		}
		if strings.Contains(m.folder.String(f), m.needle) {
			return true
		}
	}
	return false
}

// Matches reports whether a single item passes q.
func (q Query) Matches(it Item) bool { return newMatcher(q).match(it) }

// Filter returns the items that pass q, in input order. items is not modified.
func Filter[T Item](items []T, q Query) []T {
	m := newMatcher(q)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if m.match(it) {
			out = append(out, it)
		}
	}
	return out
}
