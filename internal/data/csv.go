package data

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"stochastic-dispatch/internal/model"
)

// table is a CSV file read whole: a header row plus records.
type table struct {
	name   string
	header []string
	rows   [][]string
}

func readTable(path, name string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, model.NewDataError(name, "malformed csv: %v", err)
	}
	if len(records) == 0 {
		return nil, model.NewDataError(name, "file has no header row")
	}
	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	// Excel-style exports carry a BOM in front of the first header cell.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	return &table{name: name, header: header, rows: records[1:]}, nil
}

// column returns the position of the named column.
func (t *table) column(name string) (int, error) {
	for i, h := range t.header {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return 0, model.NewDataError(t.name, "missing column %q", name)
}

func (t *table) float(row, col int) (float64, error) {
	raw := strings.TrimSpace(t.rows[row][col])
	if raw == "" {
		return 0, model.NewDataError(t.name, "row %d: empty value in column %q", row+2, t.header[col])
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, model.NewDataError(t.name, "row %d: column %q: %q is not a number", row+2, t.header[col], raw)
	}
	return v, nil
}

func (t *table) text(row, col int) string {
	return strings.TrimSpace(t.rows[row][col])
}
