package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// StudentRow is one student read from an import sheet.
type StudentRow struct {
	Line  int // 1-based spreadsheet row, for error messages
	Name  string
	Email string
	Phone string
	Goal  string
	Notes string
}

var ErrNoSheet = errors.New("excel file does not contain any sheets")

// ReadStudents parses the first sheet of an xlsx file. The first row is a header; columns are
// matched by name (case-insensitive), "name" is required. Rows with an empty name are skipped.
func ReadStudents(r io.Reader) ([]StudentRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			zap.L().Warn("error closing excel file", zap.Error(err))
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []StudentRow{}, nil
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, errors.New(`student sheet needs a "name" column`)
	}
	cell := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := []StudentRow{}
	for i, row := range rows[1:] {
		name := cell(row, "name")
		if name == "" {
			continue
		}
		out = append(out, StudentRow{
			Line:  i + 2,
			Name:  name,
			Email: cell(row, "email"),
			Phone: cell(row, "phone"),
			Goal:  cell(row, "goal"),
			Notes: cell(row, "notes"),
		})
	}
	return out, nil
}
