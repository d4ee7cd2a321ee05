package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"call-insights-go/internal/eval"
)

// WERRow is one call's transcript quality score.
type WERRow struct {
	CallID string
	Result eval.WERResult
}

// WriteWERReport writes transcript quality scores into a workbook: an
// averages sheet and one row per call.
func WriteWERReport(path string, rows []WERRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no scores to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	f.SetSheetName("Sheet1", summary)

	var wer, mer, wil float64
	for _, r := range rows {
		wer += r.Result.WER
		mer += r.Result.MER
		wil += r.Result.WIL
	}
	n := float64(len(rows))
	sumRows := [][]any{
		{"Transcripts", len(rows)},
		{"Average WER", wer / n},
		{"Average MER", mer / n},
		{"Average WIL", wil / n},
	}
	if err := writeRows(f, summary, sumRows); err != nil {
		return err
	}

	const detail = "Calls"
	if _, err := f.NewSheet(detail); err != nil {
		return err
	}
	detailRows := [][]any{{
		"Call ID", "WER", "MER", "WIL",
		"Substitutions", "Deletions", "Insertions", "Hits",
		"Reference Words", "Hypothesis Words",
	}}
	for _, r := range rows {
		detailRows = append(detailRows, []any{
			r.CallID, r.Result.WER, r.Result.MER, r.Result.WIL,
			r.Result.Substitutions, r.Result.Deletions, r.Result.Insertions, r.Result.Hits,
			r.Result.RefWords, r.Result.HypWords,
		})
	}
	if err := writeRows(f, detail, detailRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save wer workbook: %w", err)
	}
	return nil
}
