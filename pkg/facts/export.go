package facts

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ExportResult describes a finished CSV export.
type ExportResult struct {
	Rows    int
	Columns []string
}

// Export writes a list-shaped category as CSV to outputPath.
func (d *Document) Export(category, outputPath string) (*ExportResult, error) {
	items, err := d.items(category)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w from '%s'", ErrNoItems, category)
	}

	var res *ExportResult
	err = writeFile(outputPath, func(w io.Writer) error {
		var werr error
		res, werr = WriteCSV(w, items)
		return werr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Columns returns the sorted union of keys across all object items.
func Columns(items []any) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for k := range obj {
			seen[k] = struct{}{}
		}
	}

	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// WriteCSV writes a header row and one row per item. Items that are not
// objects produce a row of empty cells.
func WriteCSV(w io.Writer, items []any) (*ExportResult, error) {
	cols := Columns(items)
	cw := csv.NewWriter(w)

	if err := cw.Write(cols); err != nil {
		return nil, err
	}

	row := make([]string, len(cols))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		for i, col := range cols {
			cell, err := formatCell(obj[col])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			row[i] = cell
		}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return &ExportResult{Rows: len(items), Columns: cols}, nil
}

func formatCell(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(val); err != nil {
			return "", err
		}
		return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
	}
}
