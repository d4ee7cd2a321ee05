package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"call-insights-go/internal/types"
)

// InvalidResponseError marks a model payload that was rejected by the task
// schema after the re-ask budget was spent.
type InvalidResponseError struct {
	Task   string
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s: invalid model response: %s", e.Task, e.Reason)
}

// AnalyzeSentiment runs task 1 for a transcript.
func (c *Client) AnalyzeSentiment(ctx context.Context, transcript string) (types.SentimentResult, error) {
	if c.mock {
		return types.SentimentResult{
			OverallSentiment: types.SentimentPositive,
			ProspectEmotion:  "enthusiasm",
			AgentEmotion:     "professionalism",
			InterestLevel:    types.InterestHigh,
		}, nil
	}

	var out types.SentimentResult
	prompt := fmt.Sprintf(sentimentPrompt, transcript)
	err := c.askValidated(ctx, "sentiment", prompt, func(raw []byte) error {
		var r types.SentimentResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("malformed JSON: %v", err)
		}
		if err := types.Validate(&r); err != nil {
			return err
		}
		out = r
		return nil
	})
	return out, err
}

// AnalyzeTopics runs task 2 for a transcript.
func (c *Client) AnalyzeTopics(ctx context.Context, transcript string) (types.TopicIntentResult, error) {
	if c.mock {
		return types.TopicIntentResult{
			Topics:           []string{"Costs", "Enrollment Process"},
			EnrollmentIntent: types.IntentYes,
			Keywords:         []string{"tuition", "deadline", "enrollment"},
			Questions:        []string{"When is the tuition payment deadline?"},
		}, nil
	}

	var out types.TopicIntentResult
	prompt := fmt.Sprintf(topicIntentPrompt, transcript)
	err := c.askValidated(ctx, "topics", prompt, func(raw []byte) error {
		var r types.TopicIntentResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("malformed JSON: %v", err)
		}
		if len(r.Keywords) > types.MaxKeywords {
			c.log.WithField("task", "topics").
				WithField("keywords", len(r.Keywords)).
				Warn("truncating keyword list")
			r.Keywords = r.Keywords[:types.MaxKeywords]
		}
		if err := types.Validate(&r); err != nil {
			return err
		}
		out = r
		return nil
	})
	return out, err
}

// SuggestImprovement runs task 3. It requires task 1's validated result;
// calling it is only legal once a SentimentResult exists for the call.
func (c *Client) SuggestImprovement(ctx context.Context, transcript string, sentiment types.SentimentResult) (types.ImprovementResult, error) {
	if err := types.Validate(&sentiment); err != nil {
		return types.ImprovementResult{}, fmt.Errorf("improvement requires a valid sentiment result: %w", err)
	}

	if c.mock {
		return types.ImprovementResult{
			Justification:     "The prospect sounded enthusiastic throughout and asked about next steps.",
			ImprovementAction: "Confirm the tuition deadline in writing after the call.",
		}, nil
	}

	var out types.ImprovementResult
	prompt := fmt.Sprintf(improvementPrompt,
		sentiment.OverallSentiment,
		sentiment.ProspectEmotion,
		sentiment.AgentEmotion,
		sentiment.InterestLevel,
		transcript,
	)
	err := c.askValidated(ctx, "improvement", prompt, func(raw []byte) error {
		var r types.ImprovementResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("malformed JSON: %v", err)
		}
		if err := types.Validate(&r); err != nil {
			return err
		}
		out = r
		return nil
	})
	return out, err
}

// askValidated sends the prompt and hands the raw JSON object to the task's
// parse function, which decodes into a fresh struct and validates. Rejected
// payloads are re-asked with the same prompt up to maxInvalid extra attempts,
// then surfaced as a task-level error. Invalid payloads never leave this
// package.
func (c *Client) askValidated(ctx context.Context, task, prompt string, parse func(raw []byte) error) error {
	attempts := 1 + c.maxInvalid
	var reason string
	for i := 0; i < attempts; i++ {
		raw, err := c.complete(ctx, prompt)
		if err != nil && !errors.Is(err, errNoJSON) {
			return fmt.Errorf("%s: %w", task, err)
		}
		perr := err
		if perr == nil {
			perr = parse([]byte(raw))
		}
		if perr == nil {
			return nil
		}
		reason = perr.Error()
		c.log.WithField("task", task).
			WithField("attempt", i+1).
			WithField("reason", reason).
			Warn("rejected model response")
	}
	return &InvalidResponseError{Task: task, Reason: reason}
}
