package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"call-insights-go/internal/transcription"
	"call-insights-go/internal/types"
)

type stubAnalyzer struct {
	mu             sync.Mutex
	calls          []string
	sentimentErr   error
	topicsErr      error
	improveErr     error
	seenTranscript string
	seenSentiment  types.SentimentResult
}

func (s *stubAnalyzer) record(task string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, task)
}

func (s *stubAnalyzer) AnalyzeSentiment(ctx context.Context, transcript string) (types.SentimentResult, error) {
	s.record("sentiment")
	s.mu.Lock()
	s.seenTranscript = transcript
	s.mu.Unlock()
	if s.sentimentErr != nil {
		return types.SentimentResult{}, s.sentimentErr
	}
	return types.SentimentResult{
		OverallSentiment: types.SentimentPositive,
		ProspectEmotion:  "enthusiasm",
		AgentEmotion:     "empathy",
		InterestLevel:    types.InterestHigh,
	}, nil
}

func (s *stubAnalyzer) AnalyzeTopics(ctx context.Context, transcript string) (types.TopicIntentResult, error) {
	s.record("topics")
	if s.topicsErr != nil {
		return types.TopicIntentResult{}, s.topicsErr
	}
	return types.TopicIntentResult{
		Topics:           []string{"Costs"},
		EnrollmentIntent: types.IntentYes,
		Keywords:         []string{"tuition"},
		Questions:        []string{"When is the tuition deadline?"},
	}, nil
}

func (s *stubAnalyzer) SuggestImprovement(ctx context.Context, transcript string, sentiment types.SentimentResult) (types.ImprovementResult, error) {
	s.record("improvement")
	s.mu.Lock()
	s.seenSentiment = sentiment
	s.mu.Unlock()
	if s.improveErr != nil {
		return types.ImprovementResult{}, s.improveErr
	}
	return types.ImprovementResult{
		Justification:     "Positive tone.",
		ImprovementAction: "Send written follow-up.",
	}, nil
}

func TestProcessHappyPath(t *testing.T) {
	an := &stubAnalyzer{}
	p := New(transcription.Mock{Text: "prospect asks about tuition"}, an, 5*time.Second)

	got, err := p.Process(context.Background(), types.CallRecord{AudioURL: "https://example.com/call.mp3"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Call.CallID == "" {
		t.Error("call ID not assigned")
	}
	if got.Call.Transcript != "prospect asks about tuition" {
		t.Errorf("transcript = %q", got.Call.Transcript)
	}
	if an.seenTranscript != "prospect asks about tuition" {
		t.Errorf("analyzer saw transcript %q", an.seenTranscript)
	}
	if got.Sentiment.OverallSentiment != types.SentimentPositive {
		t.Errorf("sentiment = %q", got.Sentiment.OverallSentiment)
	}
	if got.TopicIntent.EnrollmentIntent != types.IntentYes {
		t.Errorf("intent = %q", got.TopicIntent.EnrollmentIntent)
	}
	if got.Improvement.ImprovementAction == "" {
		t.Error("improvement missing")
	}
}

func TestProcessImprovementSeesSentiment(t *testing.T) {
	an := &stubAnalyzer{}
	p := New(transcription.Mock{}, an, 5*time.Second)

	if _, err := p.Process(context.Background(), types.CallRecord{AudioURL: "https://example.com/a.mp3"}); err != nil {
		t.Fatal(err)
	}
	if an.seenSentiment.OverallSentiment != types.SentimentPositive {
		t.Errorf("improvement task saw sentiment %+v", an.seenSentiment)
	}

	// improvement never starts before sentiment finishes
	sentIdx, impIdx := -1, -1
	for i, c := range an.calls {
		switch c {
		case "sentiment":
			sentIdx = i
		case "improvement":
			impIdx = i
		}
	}
	if impIdx < sentIdx {
		t.Errorf("improvement at %d ran before sentiment at %d", impIdx, sentIdx)
	}
}

func TestProcessSentimentFailureSkipsImprovement(t *testing.T) {
	an := &stubAnalyzer{sentimentErr: fmt.Errorf("boom")}
	p := New(transcription.Mock{}, an, 5*time.Second)

	if _, err := p.Process(context.Background(), types.CallRecord{AudioURL: "https://example.com/a.mp3"}); err == nil {
		t.Fatal("expected sentiment failure to surface")
	}
	// the topics goroutine may still be finishing; snapshot under the lock
	an.mu.Lock()
	calls := append([]string(nil), an.calls...)
	an.mu.Unlock()
	for _, c := range calls {
		if c == "improvement" {
			t.Error("improvement ran despite failed sentiment task")
		}
	}
}

func TestProcessUsesProvidedTranscript(t *testing.T) {
	an := &stubAnalyzer{}
	// transcriber that must not be called
	p := New(failingTranscriber{}, an, 5*time.Second)

	rec := types.CallRecord{CallID: "call-7", Transcript: "already transcribed"}
	got, err := p.Process(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if got.Call.CallID != "call-7" {
		t.Errorf("call ID = %q, want call-7", got.Call.CallID)
	}
	if an.seenTranscript != "already transcribed" {
		t.Errorf("analyzer saw %q", an.seenTranscript)
	}
}

func TestProcessRequiresSource(t *testing.T) {
	p := New(transcription.Mock{}, &stubAnalyzer{}, time.Second)
	if _, err := p.Process(context.Background(), types.CallRecord{}); err == nil {
		t.Error("record without transcript or audio accepted")
	}
}

type failingTranscriber struct{}

func (failingTranscriber) GetTranscript(ctx context.Context, audioURL string) (string, error) {
	return "", fmt.Errorf("transcriber must not be called")
}
