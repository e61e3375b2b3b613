package listing

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the sort stage's comparator.
type SortKey string

const (
	SortDateDesc SortKey = "date-desc"
	SortDateAsc  SortKey = "date-asc"
	SortName     SortKey = "name"

	DefaultSortKey = SortDateDesc
)

// ErrInvalidSortKey is returned by ParseSortKey.
var ErrInvalidSortKey = errors.New("invalid sort key")

// SortKeys lists the keys in the order the UI cycles through them.
var SortKeys = []SortKey{SortDateDesc, SortDateAsc, SortName}

// ParseSortKey validates s. Empty yields the default.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSortKey, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want date-desc, date-asc or name)", ErrInvalidSortKey, s)
}

// Next returns the key after k in SortKeys, wrapping around.
func (k SortKey) Next() SortKey {
	i := slices.Index(SortKeys, k)
	return SortKeys[(i+1)%len(SortKeys)]
}

// Label is the human name of the key.
func (k SortKey) Label() string {
	switch k {
	case SortDateDesc:
		return "Newest first"
	case SortDateAsc:
		return "Oldest first"
	case SortName:
		return "Name (A-Z)"
	}
	return string(k)
}

// Sort returns a stably sorted copy of items. Unknown keys keep input order.
func Sort[T Item](items []T, key SortKey) []T {
	sorted := slices.Clone(items)
	if sorted == nil {
		sorted = []T{}
	}

	switch key {
	case SortDateDesc:
		slices.SortStableFunc(sorted, func(a, b T) int {
			return b.ItemDate().Compare(a.ItemDate())
		})
	case SortDateAsc:
		slices.SortStableFunc(sorted, func(a, b T) int {
			return a.ItemDate().Compare(b.ItemDate())
		})
	case SortName:
		// Collators are not safe for concurrent use.
		c := collate.New(language.English)
		slices.SortStableFunc(sorted, func(a, b T) int {
			return c.CompareString(a.ItemTitle(), b.ItemTitle())
		})
	}
	return sorted
}
