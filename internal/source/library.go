package source

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/Makepad-fr/transmit/internal/listing"
	"github.com/Makepad-fr/transmit/internal/model"
)

//go:embed fixtures/library.json
var libraryJSON []byte

// Library is the read-only catalogue of project documents a draft can pick
// its document lines from.
type Library struct {
	docs []model.LibraryDocument
}

// NewLibrary returns a library over a copy of docs.
func NewLibrary(docs []model.LibraryDocument) *Library {
	return &Library{docs: slices.Clone(docs)}
}

// DefaultLibrary returns the embedded project library.
func DefaultLibrary() *Library {
	var docs []model.LibraryDocument
	if err := json.Unmarshal(libraryJSON, &docs); err != nil {
		panic(fmt.Sprintf("source: embedded library: %v", err))
	}
	return &Library{docs: docs}
}

// Documents returns every document in catalogue order.
func (l *Library) Documents() []model.LibraryDocument {
	return slices.Clone(l.docs)
}

// Categories returns the distinct categories, sorted.
func (l *Library) Categories() []string {
	var out []string
	for _, d := range l.docs {
		if !slices.Contains(out, d.Category) {
			out = append(out, d.Category)
		}
	}
	slices.Sort(out)
	return out
}

// Search matches text against name, revision, category and number, and
// narrows to category when it is set. Results are sorted by name.
func (l *Library) Search(text, category string) []model.LibraryDocument {
	docs := listing.Filter(l.docs, listing.Query{Text: text, Tab: listing.TabAll})
	if category != "" {
		docs = slices.DeleteFunc(docs, func(d model.LibraryDocument) bool {
			return !strings.EqualFold(d.Category, category)
		})
	}
	return listing.Sort(docs, listing.SortName)
}

// Resolve turns picks (ids or document numbers, any case) into document lines
// in the order given. Repeated picks are dropped.
func (l *Library) Resolve(picks []string) ([]model.DocumentItem, error) {
	out := make([]model.DocumentItem, 0, len(picks))
	seen := make(map[string]bool, len(picks))
	for _, p := range picks {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		i := slices.IndexFunc(l.docs, func(d model.LibraryDocument) bool {
			return d.ID == p || strings.EqualFold(d.DocumentNo, p)
		})
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDocument, p)
		}
		d := l.docs[i]
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		out = append(out, d.DocumentItem())
	}
	return out, nil
}
