package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"call-insights-go/internal/eval"
)

// TranscriptPair couples a manually reviewed transcript with the automatic
// one produced for the same call.
type TranscriptPair struct {
	CallID     string
	Reference  string
	Hypothesis string
}

// LoadLabels reads a review workbook where each labeled dimension carries a
// human column and a model column, e.g. "Overall Sentiment (Human)" and
// "Overall Sentiment (Model)". Only dimensions with both columns present are
// returned.
func LoadLabels(path string) (map[string]eval.LabelPairs, error) {
	header, rows, err := readSheet(path)
	if err != nil {
		return nil, err
	}

	out := map[string]eval.LabelPairs{}
	for _, dim := range eval.Dimensions {
		d := strings.ToLower(dim)
		humanIdx, modelIdx := -1, -1
		for i, h := range header {
			l := strings.ToLower(strings.TrimSpace(h))
			if !strings.Contains(l, d) {
				continue
			}
			switch {
			case strings.Contains(l, "human") || strings.Contains(l, "manual"):
				humanIdx = i
			case strings.Contains(l, "model") || strings.Contains(l, "auto"):
				modelIdx = i
			}
		}
		if humanIdx == -1 || modelIdx == -1 {
			continue
		}
		var p eval.LabelPairs
		for _, r := range rows {
			p.Human = append(p.Human, cellAt(r, humanIdx))
			p.Model = append(p.Model, cellAt(r, modelIdx))
		}
		out[dim] = p
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no labeled dimension columns detected in header %v", header)
	}
	return out, nil
}

// LoadTranscriptPairs reads a workbook with a manual reference transcript
// column and an automatic transcript column.
func LoadTranscriptPairs(path string) ([]TranscriptPair, error) {
	header, rows, err := readSheet(path)
	if err != nil {
		return nil, err
	}

	callIDIdx, refIdx, hypIdx := -1, -1, -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "reference") || strings.Contains(l, "manual"):
			if refIdx == -1 {
				refIdx = i
			}
		case strings.Contains(l, "hypothesis") || strings.Contains(l, "auto") || strings.Contains(l, "generated"):
			if hypIdx == -1 {
				hypIdx = i
			}
		case strings.Contains(l, "id"):
			if callIDIdx == -1 {
				callIDIdx = i
			}
		}
	}
	if refIdx == -1 || hypIdx == -1 {
		return nil, fmt.Errorf("no reference and hypothesis transcript columns detected in header %v", header)
	}

	var out []TranscriptPair
	for i, r := range rows {
		p := TranscriptPair{
			CallID:     cellAt(r, callIDIdx),
			Reference:  cellAt(r, refIdx),
			Hypothesis: cellAt(r, hypIdx),
		}
		if p.CallID == "" {
			p.CallID = fmt.Sprintf("row-%d", i+2)
		}
		if p.Reference == "" && p.Hypothesis == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no transcript rows")
	}
	return out, nil
}

func readSheet(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil, fmt.Errorf("no data rows")
	}
	return rows[0], rows[1:], nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
