package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"call-insights-go/internal/eval"
	"call-insights-go/internal/types"
)

func sampleAnalyses() []types.CallAnalysis {
	return []types.CallAnalysis{
		{
			Call: types.CallRecord{CallID: "call-1", Transcript: "t1"},
			Sentiment: types.SentimentResult{
				OverallSentiment: types.SentimentPositive,
				ProspectEmotion:  "enthusiasm",
				AgentEmotion:     "empathy",
				InterestLevel:    types.InterestHigh,
			},
			TopicIntent: types.TopicIntentResult{
				Topics:           []string{"Costs", "Schedules"},
				EnrollmentIntent: types.IntentYes,
				Keywords:         []string{"tuition", "deadline"},
				Questions:        []string{"When is the tuition payment deadline?"},
			},
			Improvement: types.ImprovementResult{
				Justification:     "Clear enthusiasm throughout.",
				ImprovementAction: "Confirm deadline in writing.",
			},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteWorkbook(path, sampleAnalyses()); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	for _, sheet := range []string{"Summary", "Sentiment", "Topics", "Improvements"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("sheet %s missing", sheet)
		}
	}

	got, err := f.GetCellValue("Sentiment", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if got != types.SentimentPositive {
		t.Errorf("Sentiment!B2 = %q, want Positive", got)
	}

	got, err = f.GetCellValue("Topics", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Costs; Schedules" {
		t.Errorf("Topics!B2 = %q", got)
	}
}

func TestWriteEvaluation(t *testing.T) {
	results := map[string]eval.Metrics{
		"Overall Sentiment": {
			Accuracy:       0.9,
			PrecisionMacro: 0.8,
			RecallMacro:    0.85,
			F1Macro:        0.82,
			ExactMatches:   9,
			TotalSamples:   10,
			Classes:        []string{"negative", "positive"},
			PerClass: map[string]eval.ClassMetrics{
				"negative": {Precision: 0.7, Recall: 0.8, F1: 0.75, Support: 4},
				"positive": {Precision: 0.9, Recall: 0.9, F1: 0.9, Support: 6},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "eval.xlsx")
	if err := WriteEvaluation(path, results); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Summary", "A2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Overall Sentiment" {
		t.Errorf("Summary!A2 = %q", got)
	}

	got, err = f.GetCellValue("Overall_Sentiment", "A2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "negative" {
		t.Errorf("detail A2 = %q, want negative (classes are sorted)", got)
	}
}
