package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/transmit/internal/model"
)

func names(docs []model.LibraryDocument) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Name
	}
	return out
}

func TestDefaultLibrary(t *testing.T) {
	lib := DefaultLibrary()
	docs := lib.Documents()
	require.Len(t, docs, 8)
	assert.Equal(t, "Architectural Floor Plan - Level 1", docs[0].Name)
	assert.Equal(t, []string{"Architecture", "Interior", "MEP", "Structural"}, lib.Categories())

	docs[0].Name = "changed"
	assert.Equal(t, "Architectural Floor Plan - Level 1", lib.Documents()[0].Name)
}

func TestLibrary_Search(t *testing.T) {
	lib := DefaultLibrary()
	tests := []struct {
		name     string
		text     string
		category string
		want     []string
	}{
		{name: "everything sorted by name", want: []string{
			"Architectural Floor Plan - Level 1",
			"Architectural Floor Plan - Level 2",
			"Electrical Distribution Plan",
			"Interior Design - Reception Area",
			"MEP - HVAC Layout",
			"Plumbing Schematic",
			"Site Plan",
			"Structural Foundation Plan",
		}},
		{name: "name is case-insensitive", text: "FLOOR", want: []string{
			"Architectural Floor Plan - Level 1",
			"Architectural Floor Plan - Level 2",
		}},
		{name: "category text", text: "mep", want: []string{
			"Electrical Distribution Plan",
			"MEP - HVAC Layout",
			"Plumbing Schematic",
		}},
		{name: "revision", text: "d", category: "architecture", want: []string{"Site Plan"}},
		{name: "document number", text: "s-601", want: []string{"Structural Foundation Plan"}},
		{name: "category filter", category: "Interior", want: []string{"Interior Design - Reception Area"}},
		{name: "no match", text: "zzz", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(lib.Search(tt.text, tt.category)))
		})
	}
}

func TestLibrary_Resolve(t *testing.T) {
	lib := DefaultLibrary()

	docs, err := lib.Resolve([]string{"e-301", "7", " A-101 ", "E-301", ""})
	require.NoError(t, err)
	assert.Equal(t, []model.DocumentItem{
		{DocumentNo: "E-301", Title: "Electrical Distribution Plan", Revision: 2, Copies: 1, Action: model.DefaultAction},
		{DocumentNo: "S-601", Title: "Structural Foundation Plan", Revision: 0, Copies: 1, Action: model.DefaultAction},
		{DocumentNo: "A-101", Title: "Architectural Floor Plan - Level 1", Revision: 0, Copies: 1, Action: model.DefaultAction},
	}, docs)

	_, err = lib.Resolve([]string{"A-101", "X-999"})
	require.ErrorIs(t, err, ErrUnknownDocument)
	assert.Contains(t, err.Error(), "X-999")

	docs, err = lib.Resolve(nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
