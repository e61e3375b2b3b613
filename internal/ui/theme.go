package ui

import (
	"strings"

	"github.com/Makepad-fr/transmit/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name                                          string
	Title, Muted, Accent, Success, Error, Pending string
	Draft, Generated, Sent, Received              string
	CornerTL, CornerTR, CornerBL, CornerBR        string
	H, V                                          string
	SymOK, SymFail, SymDot, Sep                   string
}

// Themes lists the names SetTheme understands.
var Themes = []string{"classic", "neon", "mono"}

var current Theme

func init() { SetTheme("classic") }

// SetTheme switches the palette. Unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Name:  "neon",
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Pending: "\033[93m",
			Draft: "\033[93m", Generated: "\033[96m", Sent: "\033[95m", Received: "\033[92m",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			SymOK: symCheck, SymFail: symCross, SymDot: "•", Sep: " · ",
		}
	case "mono":
		current = Theme{
			Name:     "mono",
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			SymOK: "ok", SymFail: "error:", SymDot: "-", Sep: " | ",
		}
	default: // classic
		current = Theme{
			Name:  "classic",
			Title: bold, Muted: fgGray, Accent: fgBlue,
			Success: fgGreen, Error: fgRed, Pending: fgYellow,
			Draft: fgYellow, Generated: fgCyan, Sent: fgMagenta, Received: fgGreen,
			CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
			H: "─", V: "│",
			SymOK: symCheck, SymFail: symCross, SymDot: "•", Sep: " · ",
		}
	}
}

// Current exposes what renderers need.
func Current() Theme { return current }

// StatusColor is the badge colour for s. Unknown statuses are muted.
func (t Theme) StatusColor(s model.Status) string {
	switch s {
	case model.StatusDraft:
		return t.Draft
	case model.StatusGenerated:
		return t.Generated
	case model.StatusSent:
		return t.Sent
	case model.StatusReceived:
		return t.Received
	}
	return t.Muted
}
