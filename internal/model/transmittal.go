package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DocumentItem is one line of a transmittal's document schedule.
type DocumentItem struct {
	DocumentNo string `json:"document_no"`
	Title      string `json:"title"`
	Revision   int    `json:"revision"`
	Copies     int    `json:"copies"`
	Action     string `json:"action"` // for approval, for construction, ...
}

// DefaultAction is the action of a document line when none is given.
const DefaultAction = "For approval"

// SendDetails is recorded when a transmittal goes out.
type SendDetails struct {
	DeliveryPerson string     `json:"delivery_person,omitempty"` // Receptionist, Me, Other
	SendDate       *Timestamp `json:"send_date,omitempty"`
}

// ReceiveDetails is recorded when the recipient acknowledges receipt.
type ReceiveDetails struct {
	ReceiptFile  string     `json:"receipt_file,omitempty"` // base64
	ReceivedDate *Timestamp `json:"received_date,omitempty"`
	ReceivedTime string     `json:"received_time,omitempty"` // HH:MM
}

// Draft is the editable part of a transmittal, used for create and update.
type Draft struct {
	TransmittalType   string         `json:"transmittal_type"` // Drawing, Documents
	Department        string         `json:"department"`
	DesignStage       string         `json:"design_stage,omitempty"`
	TransmittalDate   Timestamp      `json:"transmittal_date"`
	SendTo            string         `json:"send_to"` // Client, Contractor, ...
	Salutation        string         `json:"salutation"`
	RecipientName     string         `json:"recipient_name"`
	SenderName        string         `json:"sender_name"`
	SenderDesignation string         `json:"sender_designation"`
	SendMode          string         `json:"send_mode"`
	Documents         []DocumentItem `json:"documents"`
	Title             string         `json:"title"`
	ProjectName       string         `json:"project_name,omitempty"`
	Purpose           string         `json:"purpose,omitempty"`
	Remarks           string         `json:"remarks,omitempty"`
}

// Transmittal is a batch of drawings or documents sent to a recipient.
type Transmittal struct {
	ID                string `json:"id"`
	TransmittalNumber string `json:"transmittal_number,omitempty"`
	Draft
	Status         Status          `json:"status"`
	DocumentCount  int             `json:"document_count"`
	CreatedDate    Timestamp       `json:"created_date"`
	GeneratedDate  *Timestamp      `json:"generated_date,omitempty"`
	SendDetails    *SendDetails    `json:"send_details,omitempty"`
	ReceiveDetails *ReceiveDetails `json:"receive_details,omitempty"`
	SentStatus     string          `json:"sent_status,omitempty"`
	ReceivedStatus string          `json:"received_status,omitempty"`
}

func (t Transmittal) ItemID() string { return t.ID }
func (t Transmittal) ItemStatus() Status { return t.Status }
func (t Transmittal) ItemDate() time.Time { return t.CreatedDate.Time }
func (t Transmittal) ItemTitle() string { return t.Title }

// SearchFields are the fields free-text search looks at.
func (t Transmittal) SearchFields() []string {
	return []string{t.Title, t.TransmittalNumber, t.RecipientName}
}

// Clone returns a copy of d that shares no memory with it.
func (d Draft) Clone() Draft {
	d.Documents = slices.Clone(d.Documents)
	return d
}

// Clone returns a deep copy of t.
func (t Transmittal) Clone() Transmittal {
	t.Draft = t.Draft.Clone()
	t.GeneratedDate = clonePtr(t.GeneratedDate)
	if t.SendDetails != nil {
		sd := *t.SendDetails
		sd.SendDate = clonePtr(sd.SendDate)
		t.SendDetails = &sd
	}
	if t.ReceiveDetails != nil {
		rd := *t.ReceiveDetails
		rd.ReceivedDate = clonePtr(rd.ReceivedDate)
		t.ReceiveDetails = &rd
	}
	return t
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Editable reports whether the portal still accepts edits and deletes.
func (t Transmittal) Editable() bool { return t.Status == StatusDraft }

// ValidationError lists the fields a draft is missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Validate checks the fields the create form requires.
func (d Draft) Validate() error {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("title", d.Title)
	check("transmittal_type", d.TransmittalType)
	check("department", d.Department)
	check("recipient_name", d.RecipientName)
	check("sender_name", d.SenderName)
	check("send_mode", d.SendMode)
	if len(d.Documents) == 0 {
		missing = append(missing, "documents")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
