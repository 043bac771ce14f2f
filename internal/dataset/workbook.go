package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// LoadSurveillanceWorkbook reads the surveillance table from an Excel
// workbook. The sheet must carry a header row with Category, Year and
// the twelve month columns; header matching is case-insensitive. When
// sheet is empty the first sheet of the workbook is used.
func LoadSurveillanceWorkbook(path, sheet string, logger *zap.Logger) ([]SurveillanceRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	columns, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var loaded []SurveillanceRow
	for i, cells := range rows[1:] {
		row, err := parseSurveillanceCells(cells, columns)
		if err != nil {
			logger.Warn("workbook row skipped",
				zap.Int("row", i+2),
				zap.Error(err))
			continue
		}
		loaded = append(loaded, row)
	}
	if len(loaded) == 0 {
		return nil, ErrNoRows
	}
	return loaded, nil
}

// mapHeader resolves Category, Year and month column positions from the
// header row.
func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, 14)
	for i, cell := range header {
		columns[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	required := []string{"category", "year"}
	for _, m := range monthColumns {
		required = append(required, strings.ToLower(m))
	}
	for _, name := range required {
		if _, found := columns[name]; !found {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadHeader, name)
		}
	}
	return columns, nil
}

func parseSurveillanceCells(cells []string, columns map[string]int) (SurveillanceRow, error) {
	cell := func(name string) string {
		idx := columns[name]
		if idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	var row SurveillanceRow
	row.Category = cell("category")

	year, err := strconv.Atoi(cell("year"))
	if err != nil {
		return row, fmt.Errorf("bad year %q", cell("year"))
	}
	row.Year = year

	for i, m := range monthColumns {
		raw := cell(strings.ToLower(m))
		if raw == "" {
			return row, fmt.Errorf("missing %s count", m)
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return row, fmt.Errorf("bad %s count %q", m, raw)
		}
		row.Months[i] = v
	}
	if err := row.validate(); err != nil {
		return row, err
	}
	return row, nil
}
