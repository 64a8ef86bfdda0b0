package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agalitsyn/progress-bot/internal/model"
)

// Sheet timestamps come in this fixed pattern; anything else is shown as-is.
const sheetTimeLayout = "2006-01-02 15:04:05"
const displayTimeLayout = "02 Jan 2006"

func formatStatusList(projects []model.Project) string {
	var b strings.Builder
	b.WriteString("📊 Current Project Status:\n\n")
	for _, p := range projects {
		fmt.Fprintf(&b,
			"▫️ <b>%s</b>\n"+
				"   • Actual: <b>%s</b>\n"+
				"   • Planned: <b>%s</b>\n"+
				"   • Status: <b>%s</b>\n"+
				"   • Increment: <b>%s</b>\n"+
				"   • Delay/Ahead: %s\n"+
				"   • Last Updated: <b>%s</b>\n"+
				"   • Attachment: %s\n\n",
			orNA(p.Name),
			orNA(p.Actual),
			orNA(p.Planned),
			orNA(p.Status),
			orNA(p.Increment),
			formatDelayAhead(p.DelayAhead),
			formatUpdateDate(p.UpdatedAt),
			formatAttachment(p.Attachment),
		)
	}
	return b.String()
}

// formatDelayAhead marks a negative delay with a red glyph and a non-negative
// one with a green glyph. The magnitude is whatever digits the string
// contains and the sign is a literal minus test, so "N/A" or an empty cell
// carry no glyph at all.
func formatDelayAhead(s string) string {
	digits := keepDigits(s)
	if digits == "" {
		return fmt.Sprintf("<b>%s</b>", s)
	}
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return fmt.Sprintf("<b>%s</b>", s)
	}
	if strings.Contains(s, "-") {
		value = -value
	}
	if value < 0 {
		return fmt.Sprintf("🔴 <b>%s</b>", s)
	}
	return fmt.Sprintf("🟢 <b>%s</b>", s)
}

func formatUpdateDate(s string) string {
	if s == "" {
		return "N/A"
	}
	t, err := time.Parse(sheetTimeLayout, s)
	if err != nil {
		return s
	}
	return t.Format(displayTimeLayout)
}

func formatAttachment(s string) string {
	if strings.HasPrefix(s, "http") {
		return fmt.Sprintf(`<a href="%s">View Report</a>`, s)
	}
	return "N/A"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
