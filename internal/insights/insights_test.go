package insights

import (
	"math"
	"strings"
	"testing"

	"call-insights-go/internal/types"
)

func analysis(sentiment, interest, intent string, topics ...string) types.CallAnalysis {
	return types.CallAnalysis{
		Sentiment: types.SentimentResult{
			OverallSentiment: sentiment,
			InterestLevel:    interest,
		},
		TopicIntent: types.TopicIntentResult{
			Topics:           topics,
			EnrollmentIntent: intent,
		},
	}
}

func TestAggregate(t *testing.T) {
	batch := []types.CallAnalysis{
		analysis(types.SentimentPositive, types.InterestHigh, types.IntentYes, "Costs"),
		analysis(types.SentimentNegative, types.InterestLow, types.IntentNo, "Costs", "Schedules"),
		analysis(types.SentimentNegative, types.InterestMedium, types.IntentYes, "Scholarships"),
		analysis(types.SentimentNeutral, types.InterestHigh, types.IntentYes, "Costs"),
	}
	s := Aggregate(batch)

	if s.TotalCalls != 4 {
		t.Fatalf("total = %d, want 4", s.TotalCalls)
	}
	if math.Abs(s.NegativeShare-0.5) > 1e-9 {
		t.Errorf("negative share = %v, want 0.5", s.NegativeShare)
	}
	if math.Abs(s.HighInterestShare-0.5) > 1e-9 {
		t.Errorf("high interest share = %v, want 0.5", s.HighInterestShare)
	}
	if math.Abs(s.IntentYesShare-0.75) > 1e-9 {
		t.Errorf("intent yes share = %v, want 0.75", s.IntentYesShare)
	}
	if len(s.TopTopics) == 0 || s.TopTopics[0] != "Costs" {
		t.Errorf("top topics = %v, want Costs first", s.TopTopics)
	}
}

func TestGenerateCardNegativePattern(t *testing.T) {
	batch := []types.CallAnalysis{
		analysis(types.SentimentNegative, types.InterestLow, types.IntentNo, "Costs"),
		analysis(types.SentimentNegative, types.InterestLow, types.IntentNo, "Costs"),
		analysis(types.SentimentPositive, types.InterestHigh, types.IntentYes, "Schedules"),
	}
	card := GenerateCard(Aggregate(batch))
	if !strings.Contains(card.Insight, "Negative sentiment") {
		t.Errorf("card insight = %q, want negative pattern", card.Insight)
	}
	if !strings.Contains(card.Insight, "Costs") {
		t.Errorf("card insight = %q, want dominant topic named", card.Insight)
	}
}

func TestGenerateCardEmpty(t *testing.T) {
	card := GenerateCard(Aggregate(nil))
	if !strings.Contains(card.Insight, "No calls") {
		t.Errorf("card insight = %q", card.Insight)
	}
}
