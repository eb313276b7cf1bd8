package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/school-discipline/internal/ranking"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]any
	// Totals: последняя строка содержит суммы.
	Totals bool
}

// GradeSheet is one grade's ranking for the workbook.
type GradeSheet struct {
	Grade     int
	Locked    bool
	Standings []ranking.Standing
}

// NewWorkbook builds one sheet per SheetSpec, in order, formatted for reading.
func NewWorkbook(sheets []SheetSpec) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			// переименовываем стандартный Sheet1
			if err := f.SetSheetName("Sheet1", s.Title); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Title); err != nil {
			return nil, fmt.Errorf("new sheet: %w", err)
		}
		if err := f.SetSheetRow(s.Title, "A1", &s.Header); err != nil {
			return nil, fmt.Errorf("%s header: %w", s.Title, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(s.Title, cell, &row); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", s.Title, r+2, err)
			}
		}
		if err := formatSheet(f, s); err != nil {
			return nil, fmt.Errorf("%s format: %w", s.Title, err)
		}
	}
	return f, nil
}

var rankingHeader = []string{"Rank", "Class", "Merit", "Demerit", "Total"}

// RankingWorkbook builds a summary sheet followed by one sheet per grade. The last row of each
// grade sheet holds the column sums.
func RankingWorkbook(weekKey, period string, grades []GradeSheet) (*excelize.File, error) {
	summary := SheetSpec{
		Title:  "Summary",
		Header: []string{"Week", "Period", "Grade", "Status", "Classes", "Merit", "Demerit", "Total"},
	}
	sheets := []SheetSpec{summary}
	for _, g := range grades {
		status := "live"
		if g.Locked {
			status = "finalized"
		}
		t := ranking.Sum(g.Standings)
		sheets[0].Rows = append(sheets[0].Rows, []any{weekKey, period, g.Grade, status, len(g.Standings), t.Merit, t.Demerit, t.Total})

		sh := SheetSpec{Title: fmt.Sprintf("Grade %d", g.Grade), Header: rankingHeader, Totals: true}
		for _, s := range g.Standings {
			sh.Rows = append(sh.Rows, []any{s.Rank, s.ClassName, s.Merit, s.Demerit, s.Total})
		}
		sh.Rows = append(sh.Rows, []any{"", "Σ", t.Merit, t.Demerit, t.Total})
		sheets = append(sheets, sh)
	}
	return NewWorkbook(sheets)
}

// Bytes serialises the workbook for an HTTP response.
func Bytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
