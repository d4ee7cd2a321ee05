package types

import "time"

// Sentiment labels produced by the sentiment task.
const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

// Interest levels produced by the sentiment task.
const (
	InterestHigh   = "High"
	InterestMedium = "Medium"
	InterestLow    = "Low"
)

// Enrollment intent values produced by the topic task.
const (
	IntentYes = "Yes"
	IntentNo  = "No"
)

// MaxKeywords bounds the keyword list of a TopicIntentResult.
const MaxKeywords = 5

// TopicVocabulary is the controlled set of topic labels. The model may add
// free-text topics beyond these; these are the ones the dashboard pivots on.
var TopicVocabulary = []string{
	"Admission Requirements",
	"Costs",
	"Scholarships",
	"Schedules",
	"Program Curriculum",
	"Enrollment Process",
	"Other",
}

// CallRecord identifies one processed recording. Immutable once created.
type CallRecord struct {
	CallID     string    `json:"call_id"`
	AudioURL   string    `json:"audio_url,omitempty"`
	Transcript string    `json:"transcript,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// SentimentResult is the task 1 output.
type SentimentResult struct {
	OverallSentiment string `json:"overall_sentiment" validate:"required,oneof=Positive Neutral Negative"`
	ProspectEmotion  string `json:"prospect_emotion" validate:"required"`
	AgentEmotion     string `json:"agent_emotion" validate:"required"`
	InterestLevel    string `json:"interest_level" validate:"required,oneof=High Medium Low"`
}

// TopicIntentResult is the task 2 output.
type TopicIntentResult struct {
	Topics           []string `json:"topics" validate:"required,min=1"`
	EnrollmentIntent string   `json:"enrollment_intent" validate:"required,oneof=Yes No"`
	Keywords         []string `json:"keywords" validate:"max=5"`
	Questions        []string `json:"questions"`
}

// ImprovementResult is the task 3 output. Task 3 consumes task 1's result,
// so an ImprovementResult only exists after a valid SentimentResult.
type ImprovementResult struct {
	Justification     string `json:"justification" validate:"required"`
	ImprovementAction string `json:"improvement_action" validate:"required"`
}

// CallAnalysis bundles everything produced for one call.
type CallAnalysis struct {
	Call        CallRecord        `json:"call"`
	Sentiment   SentimentResult   `json:"sentiment"`
	TopicIntent TopicIntentResult `json:"topic_intent"`
	Improvement ImprovementResult `json:"improvement"`
	DurationMs  int64             `json:"duration_ms"`
}
