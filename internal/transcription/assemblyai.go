package transcription

import (
	"context"
	"fmt"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"call-insights-go/internal/logger"
)

// AssemblyAI transcribes through the official SDK. TranscribeFromURL blocks
// until the transcript reaches a terminal status.
type AssemblyAI struct {
	client   *aai.Client
	language string
	log      *logger.Logger
}

func NewAssemblyAI(apiKey, language string) *AssemblyAI {
	return &AssemblyAI{
		client:   aai.NewClient(apiKey),
		language: language,
		log:      logger.New(),
	}
}

func (a *AssemblyAI) GetTranscript(ctx context.Context, audioURL string) (string, error) {
	log := a.log.WithField("module", "transcription").WithField("provider", "assemblyai")

	params := &aai.TranscriptOptionalParams{
		LanguageCode:  aai.TranscriptLanguageCode(a.language),
		SpeakerLabels: aai.Bool(true),
	}
	transcript, err := a.client.Transcripts.TranscribeFromURL(ctx, audioURL, params)
	if err != nil {
		return "", fmt.Errorf("assemblyai transcribe: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		reason := ""
		if transcript.Error != nil {
			reason = *transcript.Error
		}
		return "", fmt.Errorf("assemblyai transcription failed: %s", reason)
	}
	if transcript.Text == nil || *transcript.Text == "" {
		return "", fmt.Errorf("assemblyai returned empty transcript")
	}
	log.WithField("chars", len(*transcript.Text)).Info("transcript received")
	return *transcript.Text, nil
}
