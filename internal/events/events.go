package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"call-insights-go/internal/logger"
	"call-insights-go/internal/types"
)

// Subjects used by the recording platform and downstream consumers.
const (
	SubjectRecordingReady    = "calls.recording.ready"
	SubjectAnalysisCompleted = "calls.analysis.completed"
	SubjectAnalysisFailed    = "calls.analysis.failed"
)

// RecordingReadyEvent is published by the recording platform when a call
// recording becomes available.
type RecordingReadyEvent struct {
	CallID   string `json:"call_id"`
	AudioURL string `json:"audio_url"`
	// RFC3339; when the recording finished.
	RecordedAt string `json:"recorded_at,omitempty"`
}

// AnalysisFailedEvent surfaces a task-level failure without blocking other
// calls.
type AnalysisFailedEvent struct {
	CallID string `json:"call_id"`
	Reason string `json:"reason"`
}

type Client struct {
	conn *nats.Conn
	subs []*nats.Subscription
	log  *logger.Logger
}

func NewClient(url string) (*Client, error) {
	log := logger.New()
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("nats reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Client{conn: nc, log: log}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

// PublishCompleted emits a finished analysis for downstream dashboards.
func (c *Client) PublishCompleted(a types.CallAnalysis) error {
	return c.Publish(SubjectAnalysisCompleted, a)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.log.WithField("subject", subject).Info("subscribed")
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
