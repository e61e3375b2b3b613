package ui

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/transmit/internal/model"
)

const maxTitle = 72

// Badge is the coloured status label.
func Badge(s model.Status) string {
	return C(current.StatusColor(s), "["+s.Label()+"]")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// Card renders one transmittal as the two or three lines the list shows.
func Card(t model.Transmittal) []string {
	number := t.TransmittalNumber
	if number == "" {
		number = "No number yet"
	}
	head := fmt.Sprintf("%s %s", Badge(t.Status), C(current.Title, truncate(t.Title, maxTitle)))

	meta := []string{
		C(current.Accent, number),
		"To: " + orDash(t.RecipientName),
		fmt.Sprintf("%d docs", t.DocumentCount),
		t.CreatedDate.String(),
	}
	if t.SendMode != "" {
		meta = append(meta, t.SendMode)
	}
	lines := []string{head, "  " + strings.Join(meta, current.Sep)}

	var sub []string
	if t.SentStatus != "" {
		sub = append(sub, "Sent: "+t.SentStatus)
	}
	if t.ReceivedStatus != "" {
		sub = append(sub, "Received: "+t.ReceivedStatus)
	}
	if len(sub) > 0 {
		lines = append(lines, "  "+C(current.Muted, strings.Join(sub, current.Sep)))
	}
	return lines
}

// Detail renders every field of a transmittal, for `show` and the TUI detail view.
func Detail(t model.Transmittal) []string {
	field := func(k, v string) string {
		return fmt.Sprintf("%s %s", C(current.Muted, fmt.Sprintf("%-16s", k+":")), orDash(v))
	}
	lines := []string{
		fmt.Sprintf("%s %s", Badge(t.Status), C(current.Title, t.Title)),
		"",
		field("ID", t.ID),
		field("Number", t.TransmittalNumber),
		field("Type", t.TransmittalType),
		field("Department", t.Department),
		field("Design stage", t.DesignStage),
		field("Project", t.ProjectName),
		field("Date", t.TransmittalDate.String()),
		field("Send to", t.SendTo),
		field("Recipient", strings.TrimSpace(t.Salutation+" "+t.RecipientName)),
		field("Sender", strings.TrimSpace(t.SenderName+" "+designation(t.SenderDesignation))),
		field("Send mode", t.SendMode),
		field("Purpose", t.Purpose),
		field("Remarks", t.Remarks),
		field("Created", t.CreatedDate.String()),
	}
	if t.GeneratedDate != nil {
		lines = append(lines, field("Generated", t.GeneratedDate.String()))
	}
	if d := t.SendDetails; d != nil {
		sent := d.DeliveryPerson
		if d.SendDate != nil {
			sent += " on " + d.SendDate.String()
		}
		lines = append(lines, field("Sent", strings.TrimSpace(t.SentStatus+" "+paren(sent))))
	}
	if d := t.ReceiveDetails; d != nil {
		recv := ""
		if d.ReceivedDate != nil {
			recv = strings.TrimSpace(d.ReceivedDate.String() + " " + d.ReceivedTime)
		}
		lines = append(lines, field("Received", strings.TrimSpace(t.ReceivedStatus+" "+paren(recv))))
	}

	lines = append(lines, "", C(current.Accent, fmt.Sprintf("Documents (%d)", len(t.Documents))))
	if len(t.Documents) == 0 {
		lines = append(lines, C(current.Muted, "  (none listed)"))
	}
	for i, d := range t.Documents {
		lines = append(lines, fmt.Sprintf("  %2d. %-12s %s  rev %d  x%d  %s",
			i+1, orDash(d.DocumentNo), truncate(d.Title, 40), d.Revision, d.Copies, C(current.Muted, d.Action)))
	}
	return lines
}

func designation(s string) string {
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

func paren(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return "(" + strings.TrimSpace(s) + ")"
}

// StatusCounts maps a status (or "all") to its number of transmittals.
type StatusCounts map[string]int

// Header is the summary line above the list.
func Header(counts StatusCounts) string {
	parts := []string{C(current.Title, "Transmittals")}
	for _, s := range model.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", C(current.StatusColor(s), s.Label()), counts[string(s)]))
	}
	parts = append(parts, fmt.Sprintf("%s %d", C(current.Accent, "Total"), counts["all"]))
	return strings.Join(parts, "  ")
}

// Showing is the footer under a list.
func Showing(shown, total int, hasMore bool) string {
	s := fmt.Sprintf("Showing %d of %d", shown, total)
	if hasMore {
		s += current.Sep + "more available"
	}
	return C(current.Muted, s)
}
