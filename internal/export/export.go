// Package export renders normalized batches as delimited text.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/ordersync/internal/table"
)

// Options controls the output format.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// CRLF ends records with \r\n instead of \n.
	CRLF bool
}

// Write renders batch as delimited text: the header record first, then one
// record per row in the batch's field order. Fields containing the
// delimiter, a quote or a line break are quoted with internal quotes
// doubled.
func Write(w io.Writer, batch table.Batch, opts Options) error {
	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}
	cw.UseCRLF = opts.CRLF

	if err := cw.WriteAll(batch.Records()); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// FileName returns the export file name for a tenant's run,
// e.g. "vtex-orders-acme-2024-05-03.csv".
func FileName(tenant, runDate string) string {
	return fmt.Sprintf("vtex-orders-%s-%s.csv", sanitize(tenant), runDate)
}

// WriteFile writes batch to path, replacing any existing file.
func WriteFile(path string, batch table.Batch, opts Options) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := Write(f, batch, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// sanitize keeps a tenant name usable as a file name component.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
