package model

import "time"

// Project is a card on the project documents screen.
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	Documents int       `json:"documents"`
	Assignee  string    `json:"assignee"`
	Date      Timestamp `json:"date"`
}

func (p Project) ItemID() string { return p.ID }
func (p Project) ItemStatus() Status { return p.Status }
func (p Project) ItemDate() time.Time { return p.Date.Time }
func (p Project) ItemTitle() string { return p.Title }
func (p Project) SearchFields() []string { return []string{p.Title, p.ID} }
