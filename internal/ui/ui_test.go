package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/transmit/internal/model"
)

func plain(t *testing.T) {
	t.Helper()
	SetColorForcing(false, true)
	SetTheme("classic")
	t.Cleanup(func() { SetColorForcing(false, false) })
}

func TestC(t *testing.T) {
	SetTheme("classic")
	t.Cleanup(func() { SetColorForcing(false, false) })

	SetColorForcing(true, false)
	assert.Equal(t, fgRed+"x"+reset, C(fgRed, "x"))
	assert.Equal(t, "x", C("", "x"))

	SetColorForcing(true, true)
	assert.Equal(t, "x", C(fgRed, "x"))
}

func TestOKFail(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	OK(&buf, "generated")
	Fail(&buf, "not found")
	assert.Equal(t, "✔ generated\n✖ not found\n", buf.String())
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 10, 10, "░░░░░░░░░░   0%"},
		{5, 10, 10, "█████░░░░░  50%"},
		{10, 10, 10, "██████████ 100%"},
		{3, 0, 2, "█████ 300%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProgressBar(tt.done, tt.total, tt.width))
	}
}

func TestPanelString_AlignsColouredLines(t *testing.T) {
	SetTheme("classic")
	SetColorForcing(true, false)
	t.Cleanup(func() { SetColorForcing(false, false) })

	out := PanelString([]string{C(fgGreen, "ok"), "longer line", "█░"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	w := lipgloss.Width(lines[0])
	for _, ln := range lines {
		assert.Equal(t, w, lipgloss.Width(ln), "line %q", ln)
	}
}

func TestPanel_Mono(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })
	var buf bytes.Buffer
	Panel(&buf, []string{"a"})
	assert.Equal(t, "+---+\n| a |\n+---+\n", buf.String())
}

func TestCard(t *testing.T) {
	plain(t)
	tr := model.Transmittal{
		ID:                "2",
		TransmittalNumber: "TRN-2024-002",
		Status:            model.StatusSent,
		DocumentCount:     8,
		CreatedDate:       model.MustDate("2024-10-05"),
		SentStatus:        model.SentStatusSent,
	}
	tr.Title = "MEP Systems - HVAC & Electrical"
	tr.RecipientName = "Sarah Johnson"
	tr.SendMode = model.SendModeHardcopy

	lines := Card(tr)
	require.Len(t, lines, 3)
	assert.Equal(t, "[Sent] MEP Systems - HVAC & Electrical", lines[0])
	assert.Equal(t, "  TRN-2024-002 · To: Sarah Johnson · 8 docs · 2024-10-05 · Hardcopy", lines[1])
	assert.Equal(t, "  Sent: Sent", lines[2])
}

func TestCard_DraftAndUnknownStatus(t *testing.T) {
	plain(t)
	tr := model.Transmittal{ID: "4", Status: "archived", CreatedDate: model.MustDate("2024-10-09")}
	tr.Title = strings.Repeat("x", 100)

	lines := Card(tr)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[Archived] "))
	assert.True(t, strings.HasSuffix(lines[0], "..."))
	assert.Contains(t, lines[1], "No number yet")
	assert.Contains(t, lines[1], "To: -")
}

func TestDetail(t *testing.T) {
	plain(t)
	sent := model.MustDate("2024-10-06")
	tr := model.Transmittal{
		ID:          "7",
		Status:      model.StatusSent,
		CreatedDate: model.MustDate("2024-10-06"),
		SendDetails: &model.SendDetails{DeliveryPerson: "Me", SendDate: &sent},
		SentStatus:  model.SentStatusSent,
	}
	tr.Title = "Electrical Layout"
	tr.Documents = []model.DocumentItem{{DocumentNo: "E-001", Title: "Lighting", Revision: 2, Copies: 1, Action: "For review"}}

	out := strings.Join(Detail(tr), "\n")
	assert.Contains(t, out, "Sent (Me on 2024-10-06)")
	assert.Contains(t, out, "Documents (1)")
	assert.Contains(t, out, "E-001")
}

func TestHeaderAndShowing(t *testing.T) {
	plain(t)
	h := Header(StatusCounts{"draft": 4, "generated": 2, "sent": 2, "received": 2, "all": 10})
	assert.Equal(t, "Transmittals  Draft 4  Generated 2  Sent 2  Received 2  Total 10", h)
	assert.Equal(t, "Showing 9 of 10 · more available", Showing(9, 10, true))
	assert.Equal(t, "Showing 3 of 3", Showing(3, 3, false))
}
