package application

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoTranscript means the service answered but recognised nothing.
var ErrNoTranscript = errors.New("no transcript")

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// NoopSTT is used when no transcription provider is configured. Text
// utterances still work; audio ones fail.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	return "", fmt.Errorf("speech-to-text not configured: set transcriber.provider to enable audio transcription")
}
