// Package warehouse streams normalized order batches into a BigQuery table.
//
// It is a secondary sink next to the spreadsheet destination: rows are
// inserted as they are, with no reconciliation. Each row carries an insert
// id built from its run date and order id, so BigQuery drops a row retried
// within its deduplication window.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/bigquery"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/roach88/ordersync/internal/config"
	"github.com/roach88/ordersync/internal/ir"
	"github.com/roach88/ordersync/internal/normalize"
	"github.com/roach88/ordersync/internal/syncerr"
	"github.com/roach88/ordersync/internal/table"
)

// maxRowsPerRequest bounds one insertAll request.
const maxRowsPerRequest = 500

// ErrNoRows is returned by Insert for an empty batch.
var ErrNoRows = errors.New("no rows to insert")

// Sink inserts batches into one table.
type Sink struct {
	client  *bigquery.Client
	dataset string
	table   string
	logger  *slog.Logger
}

// New connects to the table named by cfg. With no opts, credentials come
// from cfg.CredentialsFile, or application default credentials when it is
// empty. A nil logger uses slog.Default().
func New(ctx context.Context, cfg config.BigQuery, logger *slog.Logger, opts ...option.ClientOption) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts) == 0 && cfg.CredentialsFile != "" {
		creds, err := credentials(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return &Sink{
		client:  client,
		dataset: cfg.Dataset,
		table:   cfg.Table,
		logger:  logger.With("table", cfg.Dataset+"."+cfg.Table),
	}, nil
}

func credentials(ctx context.Context, path string) (*google.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bigquery credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, bigquery.Scope)
	if err != nil {
		return nil, fmt.Errorf("bigquery credentials %s: %w", path, err)
	}
	return creds, nil
}

// Close releases the client.
func (s *Sink) Close() error {
	return s.client.Close()
}

// Table returns the "dataset.table" name rows are inserted into.
func (s *Sink) Table() string {
	return s.dataset + "." + s.table
}

// Insert streams every row of batch and returns how many were accepted.
// Rows go out in requests of at most 500; the first rejected request stops
// the insert and its error is a DESTINATION_UNAVAILABLE.
func (s *Sink) Insert(ctx context.Context, batch table.Batch) (int, error) {
	if len(batch.Rows) == 0 {
		return 0, ErrNoRows
	}

	ins := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	inserted := 0
	for start := 0; start < len(batch.Rows); start += maxRowsPerRequest {
		end := min(start+maxRowsPerRequest, len(batch.Rows))
		chunk := make([]bigquery.ValueSaver, 0, end-start)
		for _, r := range batch.Rows[start:end] {
			chunk = append(chunk, record{fields: batch.Fields, row: r})
		}

		if err := ins.Put(ctx, chunk); err != nil {
			s.logRejected(err)
			return inserted, syncerr.Wrap(syncerr.CodeDestinationUnavailable, "bigquery insert", err)
		}
		inserted += len(chunk)
	}

	s.logger.Info("rows inserted", "rows", inserted)
	return inserted, nil
}

func (s *Sink) logRejected(err error) {
	var multi bigquery.PutMultiError
	if !errors.As(err, &multi) {
		return
	}
	for _, rowErr := range multi {
		s.logger.Warn("row rejected", "index", rowErr.RowIndex, "insert_id", rowErr.InsertID, "error", rowErr.Errors.Error())
	}
}

// record adapts a row to bigquery.ValueSaver.
type record struct {
	fields []string
	row    table.Row
}

// Save renders the row under Column names. Null becomes NULL; composites
// are canonical JSON text, as in the spreadsheet.
func (r record) Save() (map[string]bigquery.Value, string, error) {
	out := make(map[string]bigquery.Value, len(r.fields))
	for _, f := range r.fields {
		out[Column(f)] = value(r.row[f])
	}
	return out, insertID(r.row), nil
}

// Column maps a field name to a BigQuery column name. Dotted names such as
// shippingData.logisticsInfo.deliveryIds.courierId use underscores instead.
func Column(field string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, field)
}

func insertID(r table.Row) string {
	key := r.Key(normalize.KeyField)
	if key == "" {
		// The client generates a random id.
		return ""
	}
	return r.Key(normalize.DateField) + "/" + key
}

func value(v ir.IRValue) bigquery.Value {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return nil
	case ir.IRString:
		return string(val)
	case ir.IRInt:
		return int64(val)
	case ir.IRBool:
		return bool(val)
	default:
		return table.Cell(val)
	}
}
