package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"call-insights-go/internal/eval"
)

// WriteEvaluation writes classification evaluation results into a workbook:
// a summary sheet with one row per dimension, then a per-class detail sheet
// for each dimension.
func WriteEvaluation(path string, results map[string]eval.Metrics) error {
	f := excelize.NewFile()
	defer f.Close()

	dims := make([]string, 0, len(results))
	for d := range results {
		dims = append(dims, d)
	}
	sort.Strings(dims)

	const summary = "Summary"
	f.SetSheetName("Sheet1", summary)
	rows := [][]any{{"Dimension", "N", "Accuracy", "Precision", "Recall", "F1-Score", "Matches", "Classes"}}
	for _, d := range dims {
		m := results[d]
		rows = append(rows, []any{
			d, m.TotalSamples,
			m.Accuracy, m.PrecisionMacro, m.RecallMacro, m.F1Macro,
			fmt.Sprintf("%d/%d", m.ExactMatches, m.TotalSamples),
			len(m.Classes),
		})
	}
	if err := writeRows(f, summary, rows); err != nil {
		return err
	}

	for _, d := range dims {
		m := results[d]
		sheet := sheetName(d)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		detail := [][]any{{"Class", "Precision", "Recall", "F1-Score", "Support"}}
		for _, c := range m.Classes {
			cm := m.PerClass[c]
			detail = append(detail, []any{c, cm.Precision, cm.Recall, cm.F1, cm.Support})
		}
		if err := writeRows(f, sheet, detail); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save evaluation workbook: %w", err)
	}
	return nil
}

// sheet names cap at 31 chars in xlsx
func sheetName(dimension string) string {
	s := strings.ReplaceAll(dimension, " ", "_")
	if len(s) > 31 {
		s = s[:31]
	}
	return s
}
