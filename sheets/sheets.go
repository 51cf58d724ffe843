package sheets

import (
	"context"
	"fmt"

	"github.com/jaipkapoor99/GamingLog/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetTitle is the spreadsheet tab session records are appended to.
const SheetTitle = "Gaming"

var headerRow = []any{"Logged At", "Game", "Started At", "Ended At", "Duration (min)"}

// Client appends finalized session records to one tab of one spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	title         string
}

// New builds a Sheets client authenticated with a service account key
// file.
func New(ctx context.Context, credentialsFile, spreadsheetID string) (*Client, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		title:         SheetTitle,
	}, nil
}

// EnsureSheet creates the target tab with its header row if it does not
// exist yet. Idempotent; called once at startup.
func (c *Client) EnsureSheet(ctx context.Context) error {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == c.title {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: c.title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", c.title, err)
	}

	header := &sheets.ValueRange{Values: [][]any{headerRow}}
	_, err = c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.title+"!A1:E1", header).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	return nil
}

// Append writes exactly one row for the record.
func (c *Client) Append(ctx context.Context, rec models.SessionRecord) error {
	vals := &sheets.ValueRange{Values: [][]any{RowFor(rec)}}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.title+"!A:E", vals).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append session row: %w", err)
	}
	return nil
}

// RowFor maps a record onto the sheet's column order. The end timestamp
// appears in both the first and fourth columns; the downstream sheet has
// always had that layout and its consumers expect it.
func RowFor(rec models.SessionRecord) []any {
	return []any{rec.EndISO, rec.Game, rec.StartISO, rec.EndISO, rec.DurationMinutes}
}
