package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"call-insights-go/internal/logger"
)

// errNoJSON marks a well-formed gateway reply whose content carried no
// JSON object at all.
var errNoJSON = fmt.Errorf("no JSON object in llm output")

// Client talks to an OpenAI-style chat completions gateway.
type Client struct {
	gatewayURL string
	apiKey     string
	model      string
	timeout    time.Duration
	maxRetry   time.Duration
	// maxInvalid bounds how many times an unparseable or schema-invalid
	// payload is re-asked with the same prompt before the task fails.
	maxInvalid int
	mock       bool
	httpClient *http.Client
	log        *logger.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option  { return func(c *Client) { c.timeout = d } }
func WithMaxRetry(d time.Duration) Option { return func(c *Client) { c.maxRetry = d } }
func WithMaxInvalid(n int) Option         { return func(c *Client) { c.maxInvalid = n } }
func WithMock() Option                    { return func(c *Client) { c.mock = true } }

func NewClient(gatewayURL, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		model:      model,
		timeout:    25 * time.Second,
		maxRetry:   45 * time.Second,
		maxInvalid: 2,
		log:        logger.New(),
	}
	for _, o := range opts {
		o(c)
	}
	c.httpClient = &http.Client{Timeout: c.timeout}
	return c
}

// complete sends one prompt and returns the raw JSON object found in the
// model's reply. Transport-level failures and 5xx are retried with backoff;
// 4xx are permanent.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if c.gatewayURL == "" || c.apiKey == "" {
		return "", fmt.Errorf("llm gateway not configured")
	}

	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.0,
	}
	data, _ := json.Marshal(reqBody)

	log := c.log.WithField("component", "extractor")

	var raw string
	var lastErr error
	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, "POST", c.gatewayURL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("llm gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			if resp.StatusCode < 500 {
				return backoff.Permanent(lastErr)
			}
			log.WithError(lastErr).Warn("llm request failed")
			return lastErr
		}

		if inner := extractContentFromChoices(body); inner != "" {
			raw = inner
			lastErr = nil
			return nil
		}
		// Some gateways return the object directly rather than wrapped in
		// a choices array.
		if fallback := extractJSON(string(body)); fallback != "" {
			raw = fallback
			lastErr = nil
			return nil
		}

		// A 2xx reply with no JSON object is a model problem, not a
		// transport one: hand it to the re-ask loop instead of retrying
		// the same request here.
		lastErr = errNoJSON
		return backoff.Permanent(lastErr)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.maxRetry
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return "", fmt.Errorf("llm request failed: %w", lastErr)
	}
	return raw, nil
}

// extractContentFromChoices reads openai-style choices[0].message.content
// and returns the first JSON object found inside it.
func extractContentFromChoices(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	c0, _ := choices[0].(map[string]any)
	if c0 == nil {
		return ""
	}
	msg, _ := c0["message"].(map[string]any)
	if msg == nil {
		return ""
	}
	content, _ := msg["content"].(string)
	return extractJSON(content)
}

// extractJSON finds the first balanced JSON object in a string, stripping
// common markdown fences first.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, fence := range []string{"```json", "```yaml", "```text", "```", "`json", "`"} {
		s = strings.ReplaceAll(s, fence, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}
