package model

import (
	"strconv"
	"strings"
	"time"
)

// LibraryDocument is a drawing or document in the project library that
// drafts pick their document lines from.
type LibraryDocument struct {
	ID         string `json:"id"`
	DocumentNo string `json:"document_no"`
	Name       string `json:"name"`
	Revision   string `json:"revision"` // letter (A, B, ...) or number
	Category   string `json:"category"`
}

func (d LibraryDocument) ItemID() string { return d.ID }

// ItemStatus is empty: library documents have no workflow state and only
// show under the all tab.
func (d LibraryDocument) ItemStatus() Status { return "" }

func (d LibraryDocument) ItemDate() time.Time { return time.Time{} }
func (d LibraryDocument) ItemTitle() string { return d.Name }
func (d LibraryDocument) SearchFields() []string {
	return []string{d.Name, d.Revision, d.Category, d.DocumentNo}
}

// RevisionNumber maps a revision letter to a number, A being 0. Numeric
// revisions are taken as they are; anything else is 0.
func (d LibraryDocument) RevisionNumber() int {
	rev := strings.ToUpper(strings.TrimSpace(d.Revision))
	if n, err := strconv.Atoi(rev); err == nil && n >= 0 {
		return n
	}
	if len(rev) == 1 && rev[0] >= 'A' && rev[0] <= 'Z' {
		return int(rev[0] - 'A')
	}
	return 0
}

// DocumentItem is the document line a draft gets when d is picked: one copy,
// for approval.
func (d LibraryDocument) DocumentItem() DocumentItem {
	return DocumentItem{
		DocumentNo: d.DocumentNo,
		Title:      d.Name,
		Revision:   d.RevisionNumber(),
		Copies:     1,
		Action:     DefaultAction,
	}
}
