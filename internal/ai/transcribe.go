package ai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"

	"viral-clip-gen/internal/logging"
)

// AudioTranscriber is the surface the transcriber needs from the model
// client.
type AudioTranscriber interface {
	TranscribeAudio(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
}

func (c *Client) TranscribeAudio(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(data, mimeType),
	}
	return c.generate(ctx, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)})
}

// Transcriber produces plain-text transcriptions of audio files. A
// failed transcription is reported to the caller, which proceeds
// without one.
type Transcriber struct {
	gen   AudioTranscriber
	retry RetryPolicy
	log   *logging.Logger
}

func NewTranscriber(gen AudioTranscriber, retry RetryPolicy, log *logging.Logger) *Transcriber {
	return &Transcriber{gen: gen, retry: retry, log: log}
}

const transcribePrompt = "Transcribe this audio. Respond with the spoken words as plain text only, no commentary."

func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio for transcription: %w", err)
	}
	var text string
	err = t.retry.Do(ctx, "transcribe audio", t.log, func() error {
		var err error
		text, err = t.gen.TranscribeAudio(ctx, transcribePrompt, data, audioMIME(audioPath))
		return err
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func audioMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	default:
		return "audio/mp3"
	}
}
