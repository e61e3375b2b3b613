package model

import (
	"unicode"
	"unicode/utf8"
)

// Status is the workflow state of a transmittal.
// Values coming off the wire are kept verbatim, even unknown ones.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusGenerated Status = "generated"
	StatusSent      Status = "sent"
	StatusReceived  Status = "received"
)

// Statuses lists the declared statuses in tab order.
var Statuses = []Status{StatusDraft, StatusGenerated, StatusSent, StatusReceived}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusGenerated, StatusSent, StatusReceived:
		return true
	}
	return false
}

// Label is the capitalised form used on badges and tabs.
func (s Status) Label() string {
	if s == "" {
		return "Unknown"
	}
	r, n := utf8.DecodeRuneInString(string(s))
	return string(unicode.ToUpper(r)) + string(s[n:])
}

// Sent / received sub-states as recorded by the portal.
const (
	SentStatusSent         = "Sent"
	SentStatusNotSent      = "Not Sent"
	ReceivedStatusReceived = "Received"
	ReceivedStatusNot      = "Not Received"
)

// Send modes.
const (
	SendModeSoftcopy = "Softcopy"
	SendModeHardcopy = "Hardcopy"
)

// SendModeOpposite flips Softcopy and Hardcopy. Anything else is returned as is.
func SendModeOpposite(mode string) string {
	switch mode {
	case SendModeSoftcopy:
		return SendModeHardcopy
	case SendModeHardcopy:
		return SendModeSoftcopy
	}
	return mode
}
