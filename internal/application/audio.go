package application

import (
	"context"
	"errors"

	"voice-scene/internal/domain"
)

// ErrSourceClosed is returned by NextUtterance once a source has been
// stopped and will not produce anything else.
var ErrSourceClosed = errors.New("audio source closed")

type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextUtterance(ctx context.Context) (domain.Utterance, error)
	Name() string
}

// AudioFormat describes the PCM layout sources record and transcribers
// declare.
type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultAudioFormat is LINEAR16 mono at 16 kHz, the format the
// transcription request declares.
func DefaultAudioFormat() AudioFormat {
	return AudioFormat{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}
