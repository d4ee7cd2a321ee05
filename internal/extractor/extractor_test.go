package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"call-insights-go/internal/types"
)

// chatReply wraps content in an OpenAI-style chat completion body.
func chatReply(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func newTestClient(url string) *Client {
	return NewClient(url, "test-key", "test-model",
		WithTimeout(2*time.Second),
		WithMaxRetry(2*time.Second),
		WithMaxInvalid(1),
	)
}

func TestAnalyzeSentimentSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		w.Write(chatReply(t, `{"overall_sentiment":"Positive","prospect_emotion":"enthusiasm","agent_emotion":"empathy","interest_level":"High"}`))
	}))
	defer ts.Close()

	res, err := newTestClient(ts.URL).AnalyzeSentiment(context.Background(), "some transcript")
	if err != nil {
		t.Fatal(err)
	}
	if res.OverallSentiment != types.SentimentPositive || res.InterestLevel != types.InterestHigh {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestAnalyzeSentimentFencedJSON(t *testing.T) {
	content := "Here is the analysis:\n```json\n{\"overall_sentiment\":\"Neutral\",\"prospect_emotion\":\"calm\",\"agent_emotion\":\"professionalism\",\"interest_level\":\"Medium\"}\n```"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply(t, content))
	}))
	defer ts.Close()

	res, err := newTestClient(ts.URL).AnalyzeSentiment(context.Background(), "t")
	if err != nil {
		t.Fatal(err)
	}
	if res.OverallSentiment != types.SentimentNeutral {
		t.Errorf("sentiment = %q, want Neutral", res.OverallSentiment)
	}
}

func TestAnalyzeSentimentRejectsBadEnum(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write(chatReply(t, `{"overall_sentiment":"Ecstatic","prospect_emotion":"joy","agent_emotion":"calm","interest_level":"High"}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).AnalyzeSentiment(context.Background(), "t")
	if err == nil {
		t.Fatal("enum violation accepted")
	}
	var ire *InvalidResponseError
	if !errors.As(err, &ire) {
		t.Fatalf("error %T %v, want InvalidResponseError", err, err)
	}
	// initial attempt plus one re-ask
	if calls != 2 {
		t.Errorf("llm called %d times, want 2", calls)
	}
}

func TestAnalyzeSentimentRejectsMissingField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply(t, `{"overall_sentiment":"Positive","agent_emotion":"calm","interest_level":"High"}`))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts.URL).AnalyzeSentiment(context.Background(), "t"); err == nil {
		t.Error("missing required field accepted")
	}
}

func TestAnalyzeTopicsTruncatesKeywords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply(t, `{"topics":["Costs"],"enrollment_intent":"Yes","keywords":["a","b","c","d","e","f","g"],"questions":[]}`))
	}))
	defer ts.Close()

	res, err := newTestClient(ts.URL).AnalyzeTopics(context.Background(), "t")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Keywords) != types.MaxKeywords {
		t.Errorf("keywords = %d, want %d", len(res.Keywords), types.MaxKeywords)
	}
	if res.Keywords[4] != "e" {
		t.Errorf("truncation changed order: %v", res.Keywords)
	}
}

func TestSuggestImprovementRequiresValidSentiment(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).SuggestImprovement(context.Background(), "t", types.SentimentResult{})
	if err == nil {
		t.Fatal("improvement ran without a valid sentiment result")
	}
	if calls != 0 {
		t.Errorf("llm was called %d times before the sentiment check", calls)
	}
}

func TestSuggestImprovementIncludesSentimentInPrompt(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "Negative") {
			t.Error("prompt does not carry the prior sentiment")
		}
		w.Write(chatReply(t, `{"justification":"Frustration over fees.","improvement_action":"Explain the fee breakdown earlier."}`))
	}))
	defer ts.Close()

	sent := types.SentimentResult{
		OverallSentiment: types.SentimentNegative,
		ProspectEmotion:  "frustration",
		AgentEmotion:     "defensiveness",
		InterestLevel:    types.InterestLow,
	}
	res, err := newTestClient(ts.URL).SuggestImprovement(context.Background(), "t", sent)
	if err != nil {
		t.Fatal(err)
	}
	if res.ImprovementAction == "" {
		t.Error("empty improvement action")
	}
}

func TestCompleteRetriesOn5xx(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(chatReply(t, `{"overall_sentiment":"Negative","prospect_emotion":"doubt","agent_emotion":"calm","interest_level":"Low"}`))
	}))
	defer ts.Close()

	res, err := newTestClient(ts.URL).AnalyzeSentiment(context.Background(), "t")
	if err != nil {
		t.Fatal(err)
	}
	if res.OverallSentiment != types.SentimentNegative {
		t.Errorf("sentiment = %q, want Negative", res.OverallSentiment)
	}
	if calls < 2 {
		t.Errorf("llm called %d times, want a retry", calls)
	}
}

func TestCompleteNoRetryOn4xx(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("unauthorized"))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts.URL).AnalyzeSentiment(context.Background(), "t"); err == nil {
		t.Fatal("expected error on 401")
	}
	if calls != 1 {
		t.Errorf("llm called %d times, want 1 (no retry on client error)", calls)
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{`noise before {"a":{"b":2}} noise after`, `{"a":{"b":2}}`},
		{"no json here", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := extractJSON(c.in); got != c.want {
			t.Errorf("extractJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
