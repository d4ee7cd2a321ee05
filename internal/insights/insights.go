package insights

import (
	"fmt"
	"sort"

	"call-insights-go/internal/types"
)

// Summary aggregates a batch of call analyses for the dashboard.
type Summary struct {
	TotalCalls        int            `json:"total_calls"`
	SentimentCounts   map[string]int `json:"sentiment_counts"`
	InterestCounts    map[string]int `json:"interest_counts"`
	EnrollmentIntent  map[string]int `json:"enrollment_intent_counts"`
	TopicCounts       map[string]int `json:"topic_counts"`
	NegativeShare     float64        `json:"negative_share"`
	HighInterestShare float64        `json:"high_interest_share"`
	IntentYesShare    float64        `json:"intent_yes_share"`
	TopTopics         []string       `json:"top_topics"`
}

// ActionCard is the one-line takeaway shown at the top of the dashboard.
type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Aggregate computes batch-level distributions from per-call analyses.
func Aggregate(analyses []types.CallAnalysis) Summary {
	s := Summary{
		SentimentCounts:  map[string]int{},
		InterestCounts:   map[string]int{},
		EnrollmentIntent: map[string]int{},
		TopicCounts:      map[string]int{},
	}
	for _, a := range analyses {
		s.TotalCalls++
		s.SentimentCounts[a.Sentiment.OverallSentiment]++
		s.InterestCounts[a.Sentiment.InterestLevel]++
		s.EnrollmentIntent[a.TopicIntent.EnrollmentIntent]++
		for _, t := range a.TopicIntent.Topics {
			s.TopicCounts[t]++
		}
	}
	if s.TotalCalls > 0 {
		n := float64(s.TotalCalls)
		s.NegativeShare = float64(s.SentimentCounts[types.SentimentNegative]) / n
		s.HighInterestShare = float64(s.InterestCounts[types.InterestHigh]) / n
		s.IntentYesShare = float64(s.EnrollmentIntent[types.IntentYes]) / n
	}
	s.TopTopics = topN(s.TopicCounts, 3)
	return s
}

// GenerateCard turns a summary into a headline finding.
func GenerateCard(s Summary) ActionCard {
	if s.TotalCalls == 0 {
		return ActionCard{
			Insight: "No calls analyzed yet",
			Action:  "Process a batch or wire the recording feed",
			Impact:  "None",
		}
	}
	if s.NegativeShare >= 0.35 {
		topic := "recent calls"
		if len(s.TopTopics) > 0 {
			topic = s.TopTopics[0]
		}
		return ActionCard{
			Insight: fmt.Sprintf("Negative sentiment in %.0f%% of calls, concentrated around %s", s.NegativeShare*100, topic),
			Action:  "Review agent scripts for that topic and schedule coaching this week",
			Impact:  "Recover at-risk prospects before enrollment deadlines",
		}
	}
	if s.IntentYesShare >= 0.5 {
		return ActionCard{
			Insight: fmt.Sprintf("Enrollment intent is Yes on %.0f%% of calls", s.IntentYesShare*100),
			Action:  "Prioritize follow-up outreach for high-interest prospects",
			Impact:  "Convert expressed intent into completed applications",
		}
	}
	return ActionCard{
		Insight: "No strong pattern in the current batch",
		Action:  "Monitor and collect more calls",
		Impact:  "Low immediate intervention",
	}
}

func topN(counts map[string]int, n int) []string {
	type kv struct {
		k string
		c int
	}
	arr := make([]kv, 0, len(counts))
	for k, c := range counts {
		arr = append(arr, kv{k, c})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].c != arr[j].c {
			return arr[i].c > arr[j].c
		}
		return arr[i].k < arr[j].k
	})
	out := []string{}
	for i := 0; i < len(arr) && i < n; i++ {
		out = append(out, arr[i].k)
	}
	return out
}
