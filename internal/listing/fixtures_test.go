package listing

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Makepad-fr/transmit/internal/model"
)

var projectTitles = []string{
	"Architectural Drawings",
	"MEP Systems - HVAC & Electrical",
	"Interior Design Package",
	"Structural Drawings",
	"Site Plan Updates",
	"Floor Plans",
	"Elevation Drawings",
	"Plumbing Systems",
}

var assignees = []string{"John Smith", "Sarah Johnson", "Mike Chen", "Emma Davis", "Alex Kumar"}

// genProjects builds n projects with cyclic statuses and seeded random dates
// in October 2024.
func genProjects(seed uint64, n int) []model.Project {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	statuses := []model.Status{model.StatusReceived, model.StatusSent, model.StatusGenerated, model.StatusDraft}
	out := make([]model.Project, n)
	for i := range out {
		day := r.IntN(30) + 1
		out[i] = model.Project{
			ID:        fmt.Sprintf("TRN-2024-%03d", i+1),
			Title:     projectTitles[i%len(projectTitles)],
			Status:    statuses[i%len(statuses)],
			Documents: r.IntN(15) + 2,
			Assignee:  assignees[i%len(assignees)],
			Date:      model.NewTimestamp(time.Date(2024, time.October, day, 0, 0, 0, 0, time.UTC)),
		}
	}
	return out
}

// distinctDates builds n projects whose dates are all different.
func distinctDates(n int) []model.Project {
	out := genProjects(7, n)
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	perm := rand.New(rand.NewPCG(3, 5)).Perm(n)
	for i := range out {
		out[i].Date = model.NewTimestamp(base.AddDate(0, 0, perm[i]))
	}
	return out
}

func transmittal(id, number, title string, status model.Status, recipient, created string) model.Transmittal {
	t := model.Transmittal{
		ID:                id,
		TransmittalNumber: number,
		Status:            status,
		CreatedDate:       model.MustDate(created),
	}
	t.Title = title
	t.RecipientName = recipient
	return t
}

// tenTransmittals has exactly three drafts.
func tenTransmittals() []model.Transmittal {
	return []model.Transmittal{
		transmittal("1", "TRN-2024-001", "Architectural Drawings - Level 1 & 2", model.StatusReceived, "John Smith", "2024-10-01"),
		transmittal("2", "TRN-2024-002", "MEP Systems - HVAC & Electrical", model.StatusSent, "Sarah Johnson", "2024-10-05"),
		transmittal("3", "TRN-2024-003", "Interior Design Package", model.StatusGenerated, "Mike Chen", "2024-10-07"),
		transmittal("4", "", "Structural Drawings - Draft", model.StatusDraft, "", "2024-10-09"),
		transmittal("5", "", "Site Plan Updates", model.StatusDraft, "", "2024-10-09"),
		transmittal("6", "TRN-2024-004", "Foundation Details", model.StatusGenerated, "Alex Brown", "2024-10-08"),
		transmittal("7", "TRN-2024-005", "Electrical Layout", model.StatusSent, "Lisa Wang", "2024-10-06"),
		transmittal("8", "", "Plumbing Drawings - Draft", model.StatusDraft, "", "2024-10-08"),
		transmittal("9", "TRN-2024-006", "Landscape Plan", model.StatusReceived, "Tom Wilson", "2024-10-04"),
		transmittal("10", "TRN-2024-007", "Fire Safety Plan", model.StatusGenerated, "Nina Patel", "2024-10-07"),
	}
}

// pagedSource serves items with skip/limit semantics and counts calls.
type pagedSource[T Item] struct {
	mu    sync.Mutex
	items []T
	calls []PageRequest
	fail  error
	gate  chan struct{}
}

func (s *pagedSource[T]) fetch(ctx context.Context, req PageRequest) ([]T, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.fail != nil {
		return nil, s.fail
	}
	var matched []T
	for _, it := range s.items {
		if req.Status == "" || string(it.ItemStatus()) == req.Status {
			matched = append(matched, it)
		}
	}
	if req.Skip >= len(matched) {
		return []T{}, nil
	}
	end := len(matched)
	if req.Limit > 0 && req.Skip+req.Limit < end {
		end = req.Skip + req.Limit
	}
	return append([]T(nil), matched[req.Skip:end]...), nil
}

func (s *pagedSource[T]) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
