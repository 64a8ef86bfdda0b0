package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agalitsyn/progress-bot/internal/model"
)

func TestFormatDelayAhead(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-15 days", "🔴 <b>-15 days</b>"},
		{"+5 days", "🟢 <b>+5 days</b>"},
		{"5 days", "🟢 <b>5 days</b>"},
		// The sign test is a literal minus character, negative zero stays
		// non-negative.
		{"-0 days", "🟢 <b>-0 days</b>"},
		{"N/A", "<b>N/A</b>"},
		{"", "<b></b>"},
		{"on track", "<b>on track</b>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDelayAhead(tt.in), "input %q", tt.in)
	}
}

func TestFormatUpdateDate(t *testing.T) {
	assert.Equal(t, "01 Mar 2025", formatUpdateDate("2025-03-01 10:00:00"))
	// Unparseable timestamps pass through unchanged.
	assert.Equal(t, "yesterday", formatUpdateDate("yesterday"))
	assert.Equal(t, "N/A", formatUpdateDate(""))
}

func TestFormatAttachment(t *testing.T) {
	assert.Equal(t, `<a href="https://example.com/r.pdf">View Report</a>`, formatAttachment("https://example.com/r.pdf"))
	assert.Equal(t, "N/A", formatAttachment(""))
	assert.Equal(t, "N/A", formatAttachment("see email"))
}

func TestFormatStatusList(t *testing.T) {
	projects := []model.Project{
		{
			Row:        2,
			Name:       "Alpha",
			Actual:     "75%",
			Planned:    "80%",
			Status:     "In Progress",
			Increment:  "5%",
			DelayAhead: "-15 days",
			UpdatedAt:  "2025-03-01 10:00:00",
			Attachment: "https://example.com/report",
		},
		// Malformed row: everything empty or junk must not abort the block
		// for the row after it.
		{Row: 3, UpdatedAt: "not a date", DelayAhead: "??"},
		{Row: 4, Name: "Beta", DelayAhead: "+5 days"},
	}

	out := formatStatusList(projects)

	assert.True(t, strings.HasPrefix(out, "📊 Current Project Status:"))
	assert.Contains(t, out, "▫️ <b>Alpha</b>")
	assert.Contains(t, out, "🔴 <b>-15 days</b>")
	assert.Contains(t, out, "01 Mar 2025")
	assert.Contains(t, out, `<a href="https://example.com/report">View Report</a>`)

	assert.Contains(t, out, "not a date")
	assert.Contains(t, out, "<b>??</b>")

	assert.Contains(t, out, "▫️ <b>Beta</b>")
	assert.Contains(t, out, "🟢 <b>+5 days</b>")
	assert.Equal(t, 3, strings.Count(out, "▫️"))
}
