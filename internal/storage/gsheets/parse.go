package gsheets

import (
	"fmt"
	"strings"

	"github.com/agalitsyn/progress-bot/internal/model"
)

// Header names as they appear in row 1 of the sheet.
const (
	headerName       = "Project Name"
	headerActual     = "Actual"
	headerPlanned    = "Planned"
	headerStatus     = "Status"
	headerIncrement  = "Increment"
	headerDelayAhead = "Delay/Ahead"
	headerUpdatedAt  = "Update Progress"
	headerAttachment = "Attachment"
)

// projectsFromRows maps sheet values onto projects by header name, the way
// the sheet renders them. Rows shorter than the header are padded with empty
// fields rather than dropped.
func projectsFromRows(rows [][]interface{}) []model.Project {
	if len(rows) < 2 {
		return nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.TrimSpace(cellString(h))] = i
	}

	projects := make([]model.Project, 0, len(rows)-1)
	for i, row := range rows[1:] {
		projects = append(projects, model.Project{
			Row:        i + 2, // data starts below the header at sheet row 2
			Name:       cellAt(row, idx, headerName),
			Actual:     cellAt(row, idx, headerActual),
			Planned:    cellAt(row, idx, headerPlanned),
			Status:     cellAt(row, idx, headerStatus),
			Increment:  cellAt(row, idx, headerIncrement),
			DelayAhead: cellAt(row, idx, headerDelayAhead),
			UpdatedAt:  cellAt(row, idx, headerUpdatedAt),
			Attachment: cellAt(row, idx, headerAttachment),
		})
	}
	return projects
}

func cellAt(row []interface{}, idx map[string]int, header string) string {
	i, ok := idx[header]
	if !ok || i >= len(row) {
		return ""
	}
	return cellString(row[i])
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// colLetter converts a 1-based column number to its A1 notation letter.
func colLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}
