package audit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

const DefaultSheetRange = "Sheet1!A:F"

// SheetsSink appends audit rows to a Google spreadsheet.
type SheetsSink struct {
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
}

// NewSheetsSink creates a spreadsheet sink. Client options carry credentials,
// for example option.WithCredentialsFile.
func NewSheetsSink(ctx context.Context, spreadsheetID, writeRange string, opts ...option.ClientOption) (*SheetsSink, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if writeRange == "" {
		writeRange = DefaultSheetRange
	}

	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sheets service")
	}

	return &SheetsSink{service: service, spreadsheetID: spreadsheetID, writeRange: writeRange}, nil
}

// Record appends one row: timestamp, ticker, action, quantity, price, notes.
func (s *SheetsSink) Record(ctx context.Context, record domain.AuditRecord) error {
	row := []interface{}{
		record.Timestamp.UTC().Format(time.RFC3339),
		record.Ticker,
		record.Action.String(),
		record.Quantity,
		record.Price.String(),
		record.Notes,
	}

	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.writeRange, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return errors.Wrap(err, "failed to append audit row")
	}
	return nil
}
