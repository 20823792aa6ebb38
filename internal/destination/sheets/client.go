// Package sheets is a destination.Client for Google Sheets, built on the
// Sheets v4 API client with service-account credentials.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/roach88/ordersync/internal/destination"
	"github.com/roach88/ordersync/internal/table"
)

// Scope grants read and write access to spreadsheets.
const Scope = sheetsapi.SpreadsheetsScope

// valueInputOption makes the destination parse values as if typed by a user.
const valueInputOption = "USER_ENTERED"

// Client calls the Sheets API.
type Client struct {
	svc *sheetsapi.Service
}

var _ destination.Client = (*Client)(nil)

// New creates a client. opts select the transport; pass
// option.WithHTTPClient with an authenticated client, and option.WithEndpoint
// to talk to something other than the public API.
func New(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewFromCredentials creates an authenticated client from a service-account
// key file. An empty path uses application default credentials.
func NewFromCredentials(ctx context.Context, credentialsFile string) (*Client, error) {
	var creds *google.Credentials
	if credentialsFile == "" {
		c, err := google.FindDefaultCredentials(ctx, Scope)
		if err != nil {
			return nil, fmt.Errorf("sheets credentials: %w", err)
		}
		creds = c
	} else {
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("sheets credentials: %w", err)
		}
		c, err := google.CredentialsFromJSON(ctx, data, Scope)
		if err != nil {
			return nil, fmt.Errorf("sheets credentials %s: %w", credentialsFile, err)
		}
		creds = c
	}
	hc := oauth2.NewClient(context.WithoutCancel(ctx), creds.TokenSource)
	return New(ctx, option.WithHTTPClient(hc))
}

// SubResources lists the sheet titles in tab order.
func (c *Client) SubResources(ctx context.Context, spreadsheetID string) ([]string, error) {
	id, err := checkID(spreadsheetID)
	if err != nil {
		return nil, err
	}
	resp, err := c.svc.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets get spreadsheet: %w", err)
	}
	names := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			names = append(names, s.Properties.Title)
		}
	}
	return names, nil
}

// AddSubResource adds an empty sheet titled name.
func (c *Client) AddSubResource(ctx context.Context, spreadsheetID, name string) error {
	id, err := checkID(spreadsheetID)
	if err != nil {
		return err
	}
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{Properties: &sheetsapi.SheetProperties{Title: name}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets add sheet: %w", err)
	}
	return nil
}

// ReadRows returns the formatted values inside r.
func (c *Client) ReadRows(ctx context.Context, spreadsheetID string, r table.Range) ([][]string, error) {
	id, err := checkID(spreadsheetID)
	if err != nil {
		return nil, err
	}
	resp, err := c.svc.Spreadsheets.Values.Get(id, r.String()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets get values: %w", err)
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellText(v)
		}
		out[i] = cells
	}
	return out, nil
}

// Clear empties the values inside r.
func (c *Client) Clear(ctx context.Context, spreadsheetID string, r table.Range) error {
	id, err := checkID(spreadsheetID)
	if err != nil {
		return err
	}
	if _, err := c.svc.Spreadsheets.Values.Clear(id, r.String(), &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets clear values: %w", err)
	}
	return nil
}

// WriteRows writes rows at r's anchor (Overwrite) or after the sheet's
// last row (Append) and returns the row count the API reports.
func (c *Client) WriteRows(ctx context.Context, spreadsheetID string, r table.Range, rows [][]string, mode destination.WriteMode) (int, error) {
	id, err := checkID(spreadsheetID)
	if err != nil {
		return 0, err
	}
	body := &sheetsapi.ValueRange{Range: r.String(), MajorDimension: "ROWS", Values: toValues(rows)}

	switch mode {
	case destination.Overwrite:
		resp, err := c.svc.Spreadsheets.Values.Update(id, r.String(), body).
			ValueInputOption(valueInputOption).Context(ctx).Do()
		if err != nil {
			return 0, fmt.Errorf("sheets update values: %w", err)
		}
		return int(resp.UpdatedRows), nil
	case destination.Append:
		resp, err := c.svc.Spreadsheets.Values.Append(id, r.String(), body).
			ValueInputOption(valueInputOption).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		if err != nil {
			return 0, fmt.Errorf("sheets append values: %w", err)
		}
		if resp.Updates == nil {
			return 0, nil
		}
		return int(resp.Updates.UpdatedRows), nil
	default:
		return 0, fmt.Errorf("sheets: unknown write mode %q", mode)
	}
}

func checkID(spreadsheetID string) (string, error) {
	id := strings.TrimSpace(spreadsheetID)
	if id == "" {
		return "", fmt.Errorf("sheets spreadsheet id is required")
	}
	return id, nil
}

func toValues(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

// cellText renders a value returned by the API. Formatted reads return
// strings; other JSON scalars are rendered as text.
func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
