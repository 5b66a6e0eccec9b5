package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/storeplan-api/pkg/models"
)

var (
	// ErrRead marks failures of the underlying file read
	ErrRead = errors.New("read failure")
	// ErrParse marks malformed spreadsheet content
	ErrParse = errors.New("parse failure")
)

// Format is the spreadsheet flavour picked from a file name
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// maxXLSRows caps legacy workbooks the same way ReadAllCells callers do
const maxXLSRows = 100000

// DetectFormat picks the parser from the lower-cased file extension.
// Unknown extensions are handed to the xlsx reader.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".xls":
		return FormatXLS
	case ".pdf":
		return FormatPDF
	default:
		return FormatXLSX
	}
}

// BaseName strips directories and the last extension from a file name
func BaseName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Read converts the first sheet of a CSV, XLS or XLSX file into rows.
// The first non-blank line is the header.
func Read(name string, r io.Reader) ([]models.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, name, err)
	}

	var grid [][]string
	switch DetectFormat(name) {
	case FormatCSV:
		grid, err = readCSV(data)
	case FormatXLS:
		grid, err = readXLS(data)
	case FormatPDF:
		err = errors.New("pdf files carry no tabular data")
	default:
		grid, err = readXLSX(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, name, err)
	}

	return RowsFromGrid(grid), nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

func readXLS(data []byte) (grid [][]string, err error) {
	// extrame/xls panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			grid, err = nil, fmt.Errorf("corrupt xls workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no worksheet found")
	}

	last := int(sheet.MaxRow)
	if last >= maxXLSRows {
		last = maxXLSRows - 1
	}
	for i := 0; i <= last; i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no worksheet found")
	}
	return file.GetRows(sheetName)
}

// RowsFromGrid turns raw cells into rows keyed by the header line.
// Empty cells are left out of a row and blank lines are dropped.
func RowsFromGrid(grid [][]string) []models.Row {
	start := -1
	for i, line := range grid {
		if !blank(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return []models.Row{}
	}

	headers := Headers(grid[start])
	rows := make([]models.Row, 0, len(grid)-start-1)
	for _, line := range grid[start+1:] {
		r := models.NewRow()
		for i, h := range headers {
			if i >= len(line) {
				break
			}
			if v := models.ParseValue(line[i]); !v.IsEmpty() {
				r.Set(h, v)
			}
		}
		if r.Len() > 0 {
			rows = append(rows, r)
		}
	}
	return rows
}

// Headers normalizes a header line: names are trimmed, blanks become
// "__EMPTY" and repeats get "_1", "_2"... suffixes.
func Headers(line []string) []string {
	seen := make(map[string]int, len(line))
	out := make([]string, len(line))
	for i, h := range line {
		base := strings.TrimSpace(h)
		if base == "" {
			base = "__EMPTY"
		}
		name := base
		if n := seen[base]; n > 0 {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[base]++
		out[i] = name
	}
	return out
}

func blank(line []string) bool {
	for _, c := range line {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
