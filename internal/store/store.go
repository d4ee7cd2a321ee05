package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"call-insights-go/internal/types"
)

// ErrNotFound is returned when no analysis exists for a call ID.
var ErrNotFound = errors.New("call analysis not found")

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the analysis table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS call_analyses (
			call_id            text PRIMARY KEY,
			audio_url          text,
			transcript         text NOT NULL,
			received_at        timestamptz NOT NULL,
			overall_sentiment  text NOT NULL,
			prospect_emotion   text NOT NULL,
			agent_emotion      text NOT NULL,
			interest_level     text NOT NULL,
			topics             jsonb NOT NULL,
			enrollment_intent  text NOT NULL,
			keywords           jsonb NOT NULL,
			questions          jsonb NOT NULL,
			justification      text NOT NULL,
			improvement_action text NOT NULL,
			duration_ms        bigint NOT NULL,
			created_at         timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveAnalysis upserts the full analysis for a call. Only validated results
// reach this point; reprocessing a call replaces its previous results.
func (s *Store) SaveAnalysis(ctx context.Context, a types.CallAnalysis) error {
	topics, _ := json.Marshal(a.TopicIntent.Topics)
	keywords, _ := json.Marshal(a.TopicIntent.Keywords)
	questions, _ := json.Marshal(a.TopicIntent.Questions)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO call_analyses (
			call_id, audio_url, transcript, received_at,
			overall_sentiment, prospect_emotion, agent_emotion, interest_level,
			topics, enrollment_intent, keywords, questions,
			justification, improvement_action, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (call_id)
		DO UPDATE SET
			audio_url = $2,
			transcript = $3,
			received_at = $4,
			overall_sentiment = $5,
			prospect_emotion = $6,
			agent_emotion = $7,
			interest_level = $8,
			topics = $9,
			enrollment_intent = $10,
			keywords = $11,
			questions = $12,
			justification = $13,
			improvement_action = $14,
			duration_ms = $15`,
		a.Call.CallID, a.Call.AudioURL, a.Call.Transcript, a.Call.ReceivedAt,
		a.Sentiment.OverallSentiment, a.Sentiment.ProspectEmotion, a.Sentiment.AgentEmotion, a.Sentiment.InterestLevel,
		topics, a.TopicIntent.EnrollmentIntent, keywords, questions,
		a.Improvement.Justification, a.Improvement.ImprovementAction, a.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// GetAnalysis fetches the analysis stored for one call.
func (s *Store) GetAnalysis(ctx context.Context, callID string) (types.CallAnalysis, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT call_id, audio_url, transcript, received_at,
			overall_sentiment, prospect_emotion, agent_emotion, interest_level,
			topics, enrollment_intent, keywords, questions,
			justification, improvement_action, duration_ms
		FROM call_analyses
		WHERE call_id = $1`,
		callID,
	)
	a, err := scanAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.CallAnalysis{}, ErrNotFound
	}
	return a, err
}

// ListRecent returns the most recently stored analyses, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]types.CallAnalysis, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT call_id, audio_url, transcript, received_at,
			overall_sentiment, prospect_emotion, agent_emotion, interest_level,
			topics, enrollment_intent, keywords, questions,
			justification, improvement_action, duration_ms
		FROM call_analyses
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []types.CallAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnalysis(row pgx.Row) (types.CallAnalysis, error) {
	var a types.CallAnalysis
	var receivedAt time.Time
	var topics, keywords, questions []byte
	err := row.Scan(
		&a.Call.CallID, &a.Call.AudioURL, &a.Call.Transcript, &receivedAt,
		&a.Sentiment.OverallSentiment, &a.Sentiment.ProspectEmotion, &a.Sentiment.AgentEmotion, &a.Sentiment.InterestLevel,
		&topics, &a.TopicIntent.EnrollmentIntent, &keywords, &questions,
		&a.Improvement.Justification, &a.Improvement.ImprovementAction, &a.DurationMs,
	)
	if err != nil {
		return types.CallAnalysis{}, err
	}
	a.Call.ReceivedAt = receivedAt
	if err := json.Unmarshal(topics, &a.TopicIntent.Topics); err != nil {
		return types.CallAnalysis{}, fmt.Errorf("decode topics: %w", err)
	}
	if err := json.Unmarshal(keywords, &a.TopicIntent.Keywords); err != nil {
		return types.CallAnalysis{}, fmt.Errorf("decode keywords: %w", err)
	}
	if err := json.Unmarshal(questions, &a.TopicIntent.Questions); err != nil {
		return types.CallAnalysis{}, fmt.Errorf("decode questions: %w", err)
	}
	return a, nil
}
