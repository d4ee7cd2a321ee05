package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"call-insights-go/internal/insights"
	"call-insights-go/internal/types"
)

// WriteWorkbook writes the analyses into an xlsx workbook the dashboard
// reads: one row per call on each task sheet, plus an aggregate summary.
func WriteWorkbook(path string, analyses []types.CallAnalysis) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, analyses); err != nil {
		return err
	}
	if err := writeSentiment(f, analyses); err != nil {
		return err
	}
	if err := writeTopics(f, analyses); err != nil {
		return err
	}
	if err := writeImprovements(f, analyses); err != nil {
		return err
	}

	// excelize creates "Sheet1" by default; the summary replaces it
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, analyses []types.CallAnalysis) error {
	const sheet = "Summary"
	f.SetSheetName("Sheet1", sheet)

	sum := insights.Aggregate(analyses)
	card := insights.GenerateCard(sum)

	rows := [][]any{
		{"Total Calls", sum.TotalCalls},
		{"Negative Share", sum.NegativeShare},
		{"High Interest Share", sum.HighInterestShare},
		{"Enrollment Intent Yes Share", sum.IntentYesShare},
		{"Top Topics", strings.Join(sum.TopTopics, ", ")},
		{},
		{"Insight", card.Insight},
		{"Action", card.Action},
		{"Impact", card.Impact},
	}
	return writeRows(f, sheet, rows)
}

func writeSentiment(f *excelize.File, analyses []types.CallAnalysis) error {
	const sheet = "Sentiment"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{{"Call ID", "Overall Sentiment", "Prospect Emotion", "Agent Emotion", "Interest Level"}}
	for _, a := range analyses {
		rows = append(rows, []any{
			a.Call.CallID,
			a.Sentiment.OverallSentiment,
			a.Sentiment.ProspectEmotion,
			a.Sentiment.AgentEmotion,
			a.Sentiment.InterestLevel,
		})
	}
	return writeRows(f, sheet, rows)
}

func writeTopics(f *excelize.File, analyses []types.CallAnalysis) error {
	const sheet = "Topics"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{{"Call ID", "Topics", "Enrollment Intent", "Keywords", "Questions"}}
	for _, a := range analyses {
		rows = append(rows, []any{
			a.Call.CallID,
			strings.Join(a.TopicIntent.Topics, "; "),
			a.TopicIntent.EnrollmentIntent,
			strings.Join(a.TopicIntent.Keywords, "; "),
			strings.Join(a.TopicIntent.Questions, " | "),
		})
	}
	return writeRows(f, sheet, rows)
}

func writeImprovements(f *excelize.File, analyses []types.CallAnalysis) error {
	const sheet = "Improvements"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{{"Call ID", "Justification", "Improvement Action"}}
	for _, a := range analyses {
		rows = append(rows, []any{
			a.Call.CallID,
			a.Improvement.Justification,
			a.Improvement.ImprovementAction,
		})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
