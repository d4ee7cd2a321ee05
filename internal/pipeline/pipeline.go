package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"call-insights-go/internal/logger"
	"call-insights-go/internal/transcription"
	"call-insights-go/internal/types"
)

// Analyzer is the three-task extraction contract the pipeline drives.
type Analyzer interface {
	AnalyzeSentiment(ctx context.Context, transcript string) (types.SentimentResult, error)
	AnalyzeTopics(ctx context.Context, transcript string) (types.TopicIntentResult, error)
	SuggestImprovement(ctx context.Context, transcript string, sentiment types.SentimentResult) (types.ImprovementResult, error)
}

type Pipeline struct {
	transcriber transcription.Provider
	analyzer    Analyzer
	timeout     time.Duration
	log         *logger.Logger
}

func New(transcriber transcription.Provider, analyzer Analyzer, timeout time.Duration) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		analyzer:    analyzer,
		timeout:     timeout,
		log:         logger.New(),
	}
}

// Process runs one call end to end: transcription (skipped when the record
// already carries a transcript), then the three extraction tasks. Tasks 1
// and 2 run concurrently; task 3 starts only once task 1's result is valid.
func (p *Pipeline) Process(ctx context.Context, rec types.CallRecord) (types.CallAnalysis, error) {
	start := time.Now()

	if rec.CallID == "" {
		rec.CallID = uuid.New().String()
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = start.UTC()
	}
	log := p.log.WithCall(rec.CallID)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if rec.Transcript == "" {
		if rec.AudioURL == "" {
			return types.CallAnalysis{}, fmt.Errorf("call %s has neither transcript nor audio_url", rec.CallID)
		}
		tr, err := p.transcriber.GetTranscript(ctx, rec.AudioURL)
		if err != nil {
			return types.CallAnalysis{}, fmt.Errorf("transcription: %w", err)
		}
		rec.Transcript = tr
		log.WithField("chars", len(tr)).Info("transcript ready")
	}

	type sentimentOut struct {
		res types.SentimentResult
		err error
	}
	type topicsOut struct {
		res types.TopicIntentResult
		err error
	}
	sentCh := make(chan sentimentOut, 1)
	topCh := make(chan topicsOut, 1)

	go func() {
		r, err := p.analyzer.AnalyzeSentiment(ctx, rec.Transcript)
		sentCh <- sentimentOut{r, err}
	}()
	go func() {
		r, err := p.analyzer.AnalyzeTopics(ctx, rec.Transcript)
		topCh <- topicsOut{r, err}
	}()

	sent := <-sentCh
	if sent.err != nil {
		return types.CallAnalysis{}, fmt.Errorf("sentiment task: %w", sent.err)
	}
	log.WithField("sentiment", sent.res.OverallSentiment).
		WithField("interest", sent.res.InterestLevel).
		Info("sentiment task done")

	// Task 3 depends only on task 1; it can overlap with task 2.
	impCh := make(chan struct {
		res types.ImprovementResult
		err error
	}, 1)
	go func() {
		r, err := p.analyzer.SuggestImprovement(ctx, rec.Transcript, sent.res)
		impCh <- struct {
			res types.ImprovementResult
			err error
		}{r, err}
	}()

	top := <-topCh
	if top.err != nil {
		return types.CallAnalysis{}, fmt.Errorf("topics task: %w", top.err)
	}
	log.WithField("topics", len(top.res.Topics)).
		WithField("intent", top.res.EnrollmentIntent).
		Info("topics task done")

	imp := <-impCh
	if imp.err != nil {
		return types.CallAnalysis{}, fmt.Errorf("improvement task: %w", imp.err)
	}

	analysis := types.CallAnalysis{
		Call:        rec,
		Sentiment:   sent.res,
		TopicIntent: top.res,
		Improvement: imp.res,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	log.WithField("duration_ms", analysis.DurationMs).Info("call analysis complete")
	return analysis, nil
}
