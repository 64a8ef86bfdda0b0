package model

import (
	"context"
	"errors"
)

// Project is one tracked row of the progress sheet. Values are kept as the
// raw sheet strings because the status listing renders them verbatim.
type Project struct {
	// Row is the absolute 1-based sheet row, the header occupies row 1.
	Row int

	Name       string
	Actual     string
	Planned    string
	Status     string
	Increment  string
	DelayAhead string
	UpdatedAt  string
	Attachment string
}

var ErrProjectNotFound = errors.New("project not found")

type ProjectRepository interface {
	FetchProjects(ctx context.Context) ([]Project, error)
	FetchProjectNames(ctx context.Context) ([]string, error)
	FetchProjectName(ctx context.Context, row int) (string, error)
	// UpdateProgress writes the actual and planned fractions plus a
	// server-side "updated now" marker into the given row.
	UpdateProgress(ctx context.Context, row int, actual float64, planned float64) error
}
