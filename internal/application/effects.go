package application

import "voice-scene/internal/domain"

// SpatialEffect applies a transform to a scene target. Implementations must
// not block; the dispatcher does not wait for the animation.
type SpatialEffect interface {
	Apply(t domain.Transform)
}

// NotifyEffect forwards a phrase to the notification channel without
// blocking the caller.
type NotifyEffect interface {
	Send(text string)
}

// ResultDisplay shows the outcome of a recognition cycle to the user.
type ResultDisplay interface {
	ShowTranscript(text string)
	ShowUnrecognized()
}

// Interpreter maps a transcript onto a Decision.
type Interpreter interface {
	Interpret(transcript string) domain.Decision
}

type NoopDisplay struct{}

func (NoopDisplay) ShowTranscript(string) {}
func (NoopDisplay) ShowUnrecognized()     {}
