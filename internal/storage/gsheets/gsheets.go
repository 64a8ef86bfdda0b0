// Package gsheets implements the project repository over a Google Sheets
// spreadsheet accessed with a service account.
package gsheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/agalitsyn/progress-bot/internal/model"
)

// Column layout of the progress sheet (1-based).
const (
	colName    = 2  // B
	colActual  = 9  // I
	colPlanned = 10 // J
	colUpdated = 18 // R
)

type Storage struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

func New(ctx context.Context, credsJSON []byte, spreadsheetID string, sheetName string) (*Storage, error) {
	conf, err := google.JWTConfigFromJSON(credsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("could not parse service account credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("could not create sheets client: %w", err)
	}

	return &Storage{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func (s *Storage) FetchProjects(ctx context.Context) ([]model.Project, error) {
	// Sheet names are quoted, the default one contains a space.
	rng := fmt.Sprintf("'%s'!A1:Z", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", s.sheetName, err)
	}
	return projectsFromRows(resp.Values), nil
}

func (s *Storage) FetchProjectNames(ctx context.Context) ([]string, error) {
	// Name column without the header row.
	rng := fmt.Sprintf("'%s'!%s2:%s", s.sheetName, colLetter(colName), colLetter(colName))
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("could not read project names: %w", err)
	}

	names := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			names = append(names, "")
			continue
		}
		names = append(names, cellString(row[0]))
	}
	return names, nil
}

func (s *Storage) FetchProjectName(ctx context.Context, row int) (string, error) {
	rng := fmt.Sprintf("'%s'!%s%d", s.sheetName, colLetter(colName), row)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("could not read project name: %w", err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", model.ErrProjectNotFound
	}
	return cellString(resp.Values[0][0]), nil
}

func (s *Storage) UpdateProgress(ctx context.Context, row int, actual float64, planned float64) error {
	if err := s.updateCell(ctx, row, colActual, actual); err != nil {
		return fmt.Errorf("could not write actual: %w", err)
	}
	if err := s.updateCell(ctx, row, colPlanned, planned); err != nil {
		return fmt.Errorf("could not write planned: %w", err)
	}
	// The timestamp is evaluated server-side, not computed by the client.
	if err := s.updateCell(ctx, row, colUpdated, "=NOW()"); err != nil {
		return fmt.Errorf("could not write update marker: %w", err)
	}
	return nil
}

func (s *Storage) updateCell(ctx context.Context, row int, col int, value interface{}) error {
	rng := fmt.Sprintf("'%s'!%s%d", s.sheetName, colLetter(col), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}
