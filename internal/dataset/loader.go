package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"call-insights-go/internal/types"
)

// Load reads a call batch spreadsheet. Column positions are detected from
// header names; spreadsheets exported by the recording platform vary, so the
// match is by substring.
func Load(path string) ([]types.CallRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	callIDIdx := -1
	audioIdx := -1
	transcriptIdx := -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "transcript"):
			if transcriptIdx == -1 {
				transcriptIdx = i
			}
		case strings.Contains(l, "audio") || strings.Contains(l, "record") || strings.Contains(l, "url") || strings.Contains(l, "link"):
			if audioIdx == -1 {
				audioIdx = i
			}
		case strings.Contains(l, "id"):
			if callIDIdx == -1 {
				callIDIdx = i
			}
		}
	}
	if audioIdx == -1 && transcriptIdx == -1 {
		return nil, fmt.Errorf("no audio or transcript column detected in header %v", header)
	}

	var out []types.CallRecord
	for i, r := range rows {
		if i == 0 {
			continue
		}
		rec := types.CallRecord{}
		if callIDIdx >= 0 && callIDIdx < len(r) {
			rec.CallID = strings.TrimSpace(r[callIDIdx])
		}
		if audioIdx >= 0 && audioIdx < len(r) {
			rec.AudioURL = strings.TrimSpace(r[audioIdx])
		}
		if transcriptIdx >= 0 && transcriptIdx < len(r) {
			rec.Transcript = strings.TrimSpace(r[transcriptIdx])
		}
		// rows without a usable source are skipped quietly
		if rec.Transcript == "" && !isURL(rec.AudioURL) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func isURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
