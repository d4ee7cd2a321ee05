package transcription

import "context"

// Provider converts a call recording into transcript text.
type Provider interface {
	GetTranscript(ctx context.Context, audioURL string) (string, error)
}

// Mock returns a fixed transcript; used for offline demos and tests.
type Mock struct {
	Text string
}

func (m Mock) GetTranscript(ctx context.Context, audioURL string) (string, error) {
	if m.Text != "" {
		return m.Text, nil
	}
	return "MOCK TRANSCRIPT: Prospect asks about tuition costs and the enrollment deadline.", nil
}
