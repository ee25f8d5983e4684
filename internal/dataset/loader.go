// Package dataset loads numeric columns from CSV, Excel and JSON files so the
// CLI and web handlers can run the textbook calculations on real data.
package dataset

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"statbook/internal/errors"
)

// Format identifies a supported file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DetectFormat picks the format from the file extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.InvalidInput("unsupported file type %q", filepath.Ext(path))
	}
}

// LoadColumn reads one numeric column. Blank cells are skipped.
func LoadColumn(path, column string) ([]float64, error) {
	cols, err := LoadColumns(path, column)
	if err != nil {
		return nil, err
	}
	return cols[0], nil
}

// LoadPairs reads two aligned numeric columns, typically x and y for a regression
func LoadPairs(path, xColumn, yColumn string) ([]float64, []float64, error) {
	cols, err := LoadColumns(path, xColumn, yColumn)
	if err != nil {
		return nil, nil, err
	}
	return cols[0], cols[1], nil
}

// LoadColumns reads the named columns row by row. A row with a blank cell in
// any requested column is dropped from every column so the results stay aligned.
// For CSV and Excel files names are header cells; for JSON they are gjson paths,
// and a bare field name also matches an array of records ("#.field").
func LoadColumns(path string, names ...string) ([][]float64, error) {
	if len(names) == 0 {
		return nil, errors.InvalidInput("no columns requested")
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound("data file " + path)
	}

	var cells [][]string
	switch format {
	case FormatCSV:
		cells, err = readCSV(path, names)
	case FormatXLSX:
		cells, err = readExcel(path, names)
	case FormatJSON:
		cells, err = readJSON(path, names)
	}
	if err != nil {
		return nil, err
	}

	out, err := parseRows(cells, names)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", filepath.Base(path))
	}
	slog.Debug("dataset loaded", "path", path, "format", format, "columns", names, "rows", len(out[0]))
	return out, nil
}

// parseRows converts row-major cells into column-major floats
func parseRows(rows [][]string, names []string) ([][]float64, error) {
	out := make([][]float64, len(names))
	for i := range out {
		out[i] = make([]float64, 0, len(rows))
	}

rows:
	for r, row := range rows {
		values := make([]float64, len(names))
		for c, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue rows
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.InvalidInput("row %d column %q: %q is not a number", r+1, names[c], cell)
			}
			values[c] = v
		}
		for c, v := range values {
			out[c] = append(out[c], v)
		}
	}
	if len(out[0]) == 0 {
		return nil, errors.DegenerateData("no complete numeric rows for %v", names)
	}
	return out, nil
}

// selectColumns maps a header row plus body rows to just the requested columns
func selectColumns(header []string, body [][]string, names []string) ([][]string, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	positions := make([]int, len(names))
	for i, name := range names {
		pos, ok := index[name]
		if !ok {
			return nil, errors.NotFound("column " + name)
		}
		positions[i] = pos
	}

	out := make([][]string, 0, len(body))
	for _, row := range body {
		picked := make([]string, len(names))
		for i, pos := range positions {
			if pos < len(row) {
				picked[i] = row[pos]
			}
		}
		out = append(out, picked)
	}
	return out, nil
}

func readCSV(path string, names []string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.DegenerateData("CSV file %s is empty", filepath.Base(path))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}
	body, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV rows")
	}
	return selectColumns(header, body, names)
}

// readExcel uses the first sheet in the workbook
func readExcel(path string, names []string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.DegenerateData("workbook %s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheets[0])
	}
	if len(rows) == 0 {
		return nil, errors.DegenerateData("sheet %s is empty", sheets[0])
	}
	return selectColumns(rows[0], rows[1:], names)
}

func readJSON(path string, names []string) ([][]string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read JSON file")
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.InvalidInput("%s is not valid JSON", filepath.Base(path))
	}

	columns := make([][]gjson.Result, len(names))
	for i, name := range names {
		result := gjson.GetBytes(body, name)
		if !result.IsArray() {
			result = gjson.GetBytes(body, "#."+name)
		}
		if !result.IsArray() {
			return nil, errors.NotFound("column " + name)
		}
		columns[i] = result.Array()
		if i > 0 && len(columns[i]) != len(columns[0]) {
			return nil, errors.InvalidInput("column %q has %d values, %q has %d",
				name, len(columns[i]), names[0], len(columns[0]))
		}
	}

	rows := make([][]string, len(columns[0]))
	for r := range rows {
		rows[r] = make([]string, len(names))
		for c := range names {
			v := columns[c][r]
			switch v.Type {
			case gjson.Null:
				rows[r][c] = ""
			case gjson.Number, gjson.String:
				rows[r][c] = v.String()
			default:
				rows[r][c] = v.Raw
			}
		}
	}
	return rows, nil
}
