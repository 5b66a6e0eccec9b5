package workbook

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/storeplan-api/pkg/models"
)

const (
	defaultSheet = "Sheet1"
	minColWidth  = 10
	maxColWidth  = 60
)

// ContentType is the MIME type of the files produced by Write
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is a named list of flat records
type Sheet struct {
	Name string       `json:"name"`
	Rows []models.Row `json:"rows"`
}

// Headers returns the union of row keys in first-seen order
func Headers(rows []models.Row) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// Build lays the sheets out in a new workbook, one header line per sheet
func Build(sheets ...Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, errors.New("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				_ = f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and streams it to w
func Write(w io.Writer, sheets ...Sheet) error {
	f, err := Build(sheets...)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	headers := Headers(s.Rows)
	if len(headers) == 0 {
		return nil
	}

	widths := make([]int, len(headers))
	for j, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(s.Name, cell, h); err != nil {
			return err
		}
		widths[j] = utf8.RuneCountInString(h)
	}
	if err := f.SetRowStyle(s.Name, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, r := range s.Rows {
		for j, h := range headers {
			v, ok := r.Get(h)
			if !ok || v.IsEmpty() {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(s.Name, cell, v.Interface()); err != nil {
				return err
			}
			if n := utf8.RuneCountInString(v.String()); n > widths[j] {
				widths[j] = n
			}
		}
	}

	for j, w := range widths {
		w += 2
		if w < minColWidth {
			w = minColWidth
		}
		if w > maxColWidth {
			w = maxColWidth
		}
		col, _ := excelize.ColumnNumberToName(j + 1)
		if err := f.SetColWidth(s.Name, col, col, float64(w)); err != nil {
			return err
		}
	}
	return nil
}
