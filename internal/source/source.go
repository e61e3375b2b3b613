// Package source provides the data sources the list pipeline reads from: an
// in-memory mock store and an HTTP client for the transmittal portal API.
package source

import (
	"context"

	"github.com/Makepad-fr/transmit/internal/listing"
	"github.com/Makepad-fr/transmit/internal/model"
)

// Source lists transmittals. Status "" or "all" returns every status; a zero
// Limit returns everything from Skip on. A short page means end of collection.
type Source interface {
	List(ctx context.Context, req listing.PageRequest) ([]model.Transmittal, error)
}

// DuplicateMode chooses the send mode of a duplicated transmittal.
type DuplicateMode string

const (
	DuplicateOpposite DuplicateMode = "opposite"
	DuplicateSame     DuplicateMode = "same"
)

// Store is the full CRUD surface behind the list screens.
type Store interface {
	Source
	Get(ctx context.Context, id string) (model.Transmittal, error)
	Count(ctx context.Context, status string) (int, error)
	Create(ctx context.Context, d model.Draft) (model.Transmittal, error)
	Update(ctx context.Context, id string, d model.Draft) (model.Transmittal, error)
	Delete(ctx context.Context, id string) error
	Generate(ctx context.Context, id string) (model.Transmittal, error)
	Duplicate(ctx context.Context, id string, mode DuplicateMode) (model.Transmittal, error)
	MarkSent(ctx context.Context, id string, d model.SendDetails, sentStatus string) error
	MarkReceived(ctx context.Context, id string, d model.ReceiveDetails, receivedStatus string) error
	UploadReceipt(ctx context.Context, filename string, data []byte) (model.Receipt, error)
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Remote)(nil)
)

// Fetcher adapts s to the pipeline's Fetcher signature.
func Fetcher(s Source) listing.Fetcher[model.Transmittal] {
	return s.List
}

func normStatus(s string) string {
	if s == listing.TabAll {
		return ""
	}
	return s
}
