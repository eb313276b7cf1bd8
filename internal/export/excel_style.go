package export

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	minColWidth = 10
	maxColWidth = 60
)

// formatSheet: жирная шапка с заливкой, закреплённая первая строка, фильтр,
// ширина колонок по содержимому. Строка итогов (Totals) тоже жирная.
func formatSheet(f *excelize.File, sh SheetSpec) error {
	cols := len(sh.Header)
	for _, r := range sh.Rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}

	head, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(sh.Title, "A1", last+"1", head); err != nil {
		return err
	}
	if sh.Totals && len(sh.Rows) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("totals style: %w", err)
		}
		row := len(sh.Rows) + 1
		if err := f.SetCellStyle(sh.Title, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", last, row), bold); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sh.Title, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if err := f.AutoFilter(sh.Title, "A1:"+last+"1", nil); err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	for c, w := range columnWidths(sh, cols) {
		name, _ := excelize.ColumnNumberToName(c + 1)
		if err := f.SetColWidth(sh.Title, name, name, w); err != nil {
			return err
		}
	}
	return nil
}

// columnWidths считает ширину по самой длинной ячейке, в пределах [minColWidth, maxColWidth].
func columnWidths(sh SheetSpec, cols int) []float64 {
	out := make([]float64, cols)
	for c := range out {
		out[c] = minColWidth
	}
	fit := func(c int, s string, pad float64) {
		// вьетнамские диакритики рисуются шире
		w := float64(utf8.RuneCountInString(s))*1.1 + pad
		out[c] = min(max(out[c], w), maxColWidth)
	}
	for c, h := range sh.Header {
		fit(c, h, 1.5)
	}
	for _, r := range sh.Rows {
		for c, v := range r {
			fit(c, fmt.Sprint(v), 0)
		}
	}
	return out
}

// BuildRankingFilename: человекочитаемое имя файла выгрузки. grade 0 = все параллели.
func BuildRankingFilename(schoolName, weekKey string, grade int) string {
	scope := "all grades"
	if grade > 0 {
		scope = fmt.Sprintf("grade %d", grade)
	}
	base := fmt.Sprintf("Ranking — %s — %s — %s.xlsx", orDash(schoolName), orDash(weekKey), scope)
	return sanitizeFileName(base)
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return invalidFileRe.ReplaceAllString(s, "_")
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "—"
	}
	return s
}
