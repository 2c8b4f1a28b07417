package domain

import (
	"time"

	"github.com/google/uuid"
)

// Utterance is one recorded phrase waiting to be processed. Sources that
// already have text (typed commands, tests) set Text and leave Audio empty
// so transcription is skipped.
type Utterance struct {
	ID         string
	Audio      []byte
	Text       string
	ReceivedAt time.Time
}

func NewAudioUtterance(audio []byte) Utterance {
	return Utterance{ID: uuid.NewString(), Audio: audio, ReceivedAt: time.Now()}
}

func NewTextUtterance(text string) Utterance {
	return Utterance{ID: uuid.NewString(), Text: text, ReceivedAt: time.Now()}
}

// Latency is the time between the utterance arriving and now. It is zero
// for utterances built without a timestamp.
func (u Utterance) Latency(now time.Time) time.Duration {
	if u.ReceivedAt.IsZero() {
		return 0
	}
	return now.Sub(u.ReceivedAt)
}

// IsText reports whether the utterance bypasses transcription.
func (u Utterance) IsText() bool {
	return len(u.Audio) == 0 && u.Text != ""
}

// Empty reports whether there is nothing to process.
func (u Utterance) Empty() bool {
	return len(u.Audio) == 0 && u.Text == ""
}
