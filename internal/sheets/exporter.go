// Package sheets copies poll data into an external spreadsheet. One-shot,
// no retry: the whole named range is cleared and rewritten on every run.
package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pollboard/pollboard/internal/entity"
	"github.com/pollboard/pollboard/internal/tally"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const exportRange = "Sheet1!A:Z"

type Exporter struct {
	log           *slog.Logger
	service       *sheetsapi.Service
	spreadsheetID string
}

func New(ctx context.Context, log *slog.Logger, credentialsFile, spreadsheetID string) (*Exporter, error) {
	const op = "sheets.New"

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Exporter{log: log, service: service, spreadsheetID: spreadsheetID}, nil
}

// Export overwrites the sheet with one row per (option, response) pair.
// Options nobody voted for still get a row with blank response columns.
func (e *Exporter) Export(ctx context.Context, polls []entity.Poll, responses []entity.Response) error {
	const op = "sheets.Export"

	rows := BuildRows(polls, responses)

	_, err := e.service.Spreadsheets.Values.Clear(e.spreadsheetID, exportRange, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: clear: %w", op, err)
	}

	_, err = e.service.Spreadsheets.Values.Update(e.spreadsheetID, "Sheet1!A1", &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: update: %w", op, err)
	}

	e.log.Info("spreadsheet export finished",
		slog.String("op", op), slog.Int("polls", len(polls)), slog.Int("rows", len(rows)-1))

	return nil
}

// BuildRows lays out the export: a header, then per poll and option either one
// row per matching response or a single row with blank response columns.
func BuildRows(polls []entity.Poll, responses []entity.Response) [][]interface{} {
	rows := [][]interface{}{{
		"Poll ID", "Poll Title", "Option Text", "Votes", "Percentage",
		"Response User ID", "Response Selected Option", "Response Voted At",
	}}

	for _, poll := range polls {
		results := tally.Results(poll.Options)
		for _, result := range results {
			matched := false
			for _, response := range responses {
				if response.PollID != poll.ID || response.SelectedOption != result.Text {
					continue
				}
				matched = true
				rows = append(rows, []interface{}{
					poll.ID.String(), poll.Title, result.Text, result.Votes,
					fmt.Sprintf("%.2f", result.Percentage),
					response.UserID, response.SelectedOption, response.VotedAt.Format("2006-01-02 15:04:05"),
				})
			}
			if !matched {
				rows = append(rows, []interface{}{
					poll.ID.String(), poll.Title, result.Text, result.Votes,
					fmt.Sprintf("%.2f", result.Percentage),
					"", "", "",
				})
			}
		}
	}

	return rows
}
