package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"anggaran/internal/core"
	ports "anggaran/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID string
	// SheetName is the journal tab; defaults to "Jurnal".
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// valuesAPI is the slice of the Sheets values API the journal needs.
type valuesAPI interface {
	get(ctx context.Context, rng string) ([][]any, error)
	update(ctx context.Context, rng string, rows [][]any) error
	clear(ctx context.Context, rng string) error
}

type Client struct {
	values valuesAPI
	sheet  string
}

// Ensure interface conformance
var _ ports.Journal = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&sheetsValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg.SheetName), nil
}

func newClient(values valuesAPI, sheet string) *Client {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		sheet = "Jurnal"
	}
	return &Client{values: values, sheet: sheet}
}

// newSheetsService initializes a Sheets Service using Service Account credentials,
// falling back to GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client with connection pooling and
// bounded timeouts for the Sheets API.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// UpsertRow writes tx over the row whose column A holds tx.ID. A new row goes
// after the last used one; an empty sheet gets the header first.
func (c *Client) UpsertRow(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	ids, err := c.values.get(ctx, fmt.Sprintf("%s!A:A", c.sheet))
	if err != nil {
		return "", fmt.Errorf("read journal ids in %s: %w", c.sheet, err)
	}

	row := findRow(ids, tx.ID)
	if row == 0 {
		if len(ids) == 0 {
			if err := c.values.update(ctx, rowRange(c.sheet, 1), [][]any{headerRow()}); err != nil {
				return "", fmt.Errorf("write journal header: %w", err)
			}
			ids = [][]any{headerRow()}
		}
		row = len(ids) + 1
	}

	ref := rowRange(c.sheet, row)
	if err := c.values.update(ctx, ref, [][]any{journalRow(tx)}); err != nil {
		return "", fmt.Errorf("write journal row %s: %w", ref, err)
	}
	return ref, nil
}

func (c *Client) DeleteRow(ctx context.Context, id string) error {
	ids, err := c.values.get(ctx, fmt.Sprintf("%s!A:A", c.sheet))
	if err != nil {
		return fmt.Errorf("read journal ids in %s: %w", c.sheet, err)
	}
	row := findRow(ids, id)
	if row == 0 {
		slog.InfoContext(ctx, "Journal row already absent", "id", id, "sheet", c.sheet)
		return nil
	}
	ref := rowRange(c.sheet, row)
	if err := c.values.clear(ctx, ref); err != nil {
		return fmt.Errorf("clear journal row %s: %w", ref, err)
	}
	return nil
}

// ListRows reads the journal back, skipping the header and cleared rows.
func (c *Client) ListRows(ctx context.Context) ([]core.Transaction, error) {
	rng := fmt.Sprintf("%s!A:F", c.sheet)
	values, err := c.values.get(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]core.Transaction, 0, len(values))
	for i, row := range values {
		if i == 0 && isHeader(row) {
			continue
		}
		tx, ok := parseRow(row)
		if !ok {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

type sheetsValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (v *sheetsValues) get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := v.svc.Spreadsheets.Values.Get(v.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (v *sheetsValues) update(ctx context.Context, rng string, rows [][]any) error {
	_, err := v.svc.Spreadsheets.Values.Update(v.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (v *sheetsValues) clear(ctx context.Context, rng string) error {
	_, err := v.svc.Spreadsheets.Values.Clear(v.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	return err
}
