package gsheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectsFromRows(t *testing.T) {
	rows := [][]interface{}{
		{"ID", "Project Name", "Status", "Actual", "Planned", "Increment", "Delay/Ahead", "Update Progress", "Attachment"},
		{"1", "Alpha", "In Progress", "75%", "80%", "5%", "-15 days", "2025-03-01 10:00:00", "https://example.com/r"},
		{"2", "Beta", "Done"}, // short row, trailing cells missing
	}

	projects := projectsFromRows(rows)
	require.Len(t, projects, 2)

	assert.Equal(t, 2, projects[0].Row)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, "75%", projects[0].Actual)
	assert.Equal(t, "80%", projects[0].Planned)
	assert.Equal(t, "In Progress", projects[0].Status)
	assert.Equal(t, "-15 days", projects[0].DelayAhead)
	assert.Equal(t, "2025-03-01 10:00:00", projects[0].UpdatedAt)
	assert.Equal(t, "https://example.com/r", projects[0].Attachment)

	assert.Equal(t, 3, projects[1].Row)
	assert.Equal(t, "Beta", projects[1].Name)
	assert.Equal(t, "", projects[1].Actual)
	assert.Equal(t, "", projects[1].Attachment)
}

func TestProjectsFromRowsEmpty(t *testing.T) {
	assert.Nil(t, projectsFromRows(nil))
	// Header only, no data rows.
	assert.Nil(t, projectsFromRows([][]interface{}{{"Project Name"}}))
}

func TestCellStringNonString(t *testing.T) {
	// The Sheets API may return numbers as float64.
	assert.Equal(t, "0.75", cellString(0.75))
	assert.Equal(t, "", cellString(nil))
}

func TestColLetter(t *testing.T) {
	assert.Equal(t, "B", colLetter(colName))
	assert.Equal(t, "I", colLetter(colActual))
	assert.Equal(t, "J", colLetter(colPlanned))
	assert.Equal(t, "R", colLetter(colUpdated))
	assert.Equal(t, "AA", colLetter(27))
}
