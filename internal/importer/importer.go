// Package importer is the spreadsheet adapter: it turns .xlsx sheets into
// raw row maps with their original (inconsistent) header casing, feeding
// the normalizer and, for privileged imports, the primary datastore.
package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/craftline/pricedeskgo/internal/models"
	"github.com/craftline/pricedeskgo/internal/normalize"
	"github.com/craftline/pricedeskgo/internal/store"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Result summarizes one import run.
type Result struct {
	Collection string
	Rows       int
	Imported   int
	Skipped    int
}

// ReadSheet extracts raw row maps from one sheet of an .xlsx stream. The
// first row is taken as headers, kept verbatim; empty header cells drop
// their column. Sheet "" means the first sheet in the workbook.
func ReadSheet(r io.Reader, sheet string) ([]map[string]interface{}, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	headers := rows[0]
	raws := make([]map[string]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raw := make(map[string]interface{}, len(headers))
		empty := true
		for i, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" || i >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[i])
			raw[header] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// Import normalizes sheet rows and writes them to the primary datastore as
// documents of the target collection. Degenerate rows are skipped with a
// count, never aborting the run; a row without an ID gets a generated one.
func Import(ctx context.Context, ds store.Datastore, collection string, raws []map[string]interface{}) (*Result, error) {
	kind, ok := models.KindFor(collection)
	if !ok {
		return nil, fmt.Errorf("cannot import into %q: not a primary collection", collection)
	}

	result := &Result{Collection: collection, Rows: len(raws)}
	for _, raw := range raws {
		record := normalize.Normalize(kind, raw)
		if record.IsDegenerate() {
			result.Skipped++
			continue
		}

		id := record.ID()
		if id == "" {
			id = uuid.New().String()
		}

		fields := make(map[string]interface{}, len(record))
		for k, v := range record {
			fields[k] = v
		}
		fields["ID"] = id

		if err := ds.WriteDocument(ctx, collection, id, fields); err != nil {
			return result, fmt.Errorf("import %s/%s: %w", collection, id, err)
		}
		result.Imported++
	}

	log.Printf("✅ Imported %d/%d rows into %s (%d skipped)", result.Imported, result.Rows, collection, result.Skipped)
	return result, nil
}
