// Package interpret turns a transcript into a Decision by keyword matching.
//
// Matching is ordered substring containment: the first keyword found wins,
// both for the command and for the target. A phrase mentioning two colors
// resolves to whichever color is declared first (red, green, blue).
package interpret

import (
	"strings"
	"sync/atomic"

	"voice-scene/internal/domain"
)

// Normalize returns the canonical form used by the matchers. Content is
// left as is; matchers that need case folding do it themselves.
func Normalize(transcript string) string {
	return transcript
}

// Classify maps text onto a Command.
func Classify(text string, kw domain.Keywords) domain.Command {
	switch {
	case contains(text, kw.Rotate):
		return domain.CommandRotate
	case contains(text, kw.Move):
		return domain.CommandMove
	case contains(text, kw.Enlarge):
		return domain.CommandScaleUp
	case contains(text, kw.Shrink):
		return domain.CommandScaleDown
	case contains(strings.ToLower(text), strings.ToLower(kw.Notify)):
		return domain.CommandNotify
	}
	return domain.CommandNoMatch
}

// ResolveTarget returns the first color mentioned in text, in red, green,
// blue order, or TargetNone.
func ResolveTarget(text string, kw domain.Keywords) domain.TargetRef {
	switch {
	case contains(text, kw.Red):
		return domain.TargetRed
	case contains(text, kw.Green):
		return domain.TargetGreen
	case contains(text, kw.Blue):
		return domain.TargetBlue
	}
	return domain.TargetNone
}

// ResolveDirection returns DirectionDown when the down keyword is present,
// DirectionUp otherwise.
func ResolveDirection(text string, kw domain.Keywords) domain.Direction {
	if contains(text, kw.Down) {
		return domain.DirectionDown
	}
	return domain.DirectionUp
}

// An empty keyword never matches, so a partially configured table cannot
// turn every phrase into a command.
func contains(text, keyword string) bool {
	return keyword != "" && strings.Contains(text, keyword)
}

// Interpreter holds the active keyword table. The table can be swapped at
// runtime; each Interpret call sees one consistent table.
type Interpreter struct {
	keywords atomic.Pointer[domain.Keywords]
}

func NewInterpreter(kw domain.Keywords) *Interpreter {
	in := &Interpreter{}
	in.SetKeywords(kw)
	return in
}

func (in *Interpreter) SetKeywords(kw domain.Keywords) {
	in.keywords.Store(&kw)
}

func (in *Interpreter) Keywords() domain.Keywords {
	return *in.keywords.Load()
}

// Interpret is total over all strings and never fails. The resolvers are
// independent of each other; Direction is only set for CommandMove.
func (in *Interpreter) Interpret(transcript string) domain.Decision {
	kw := in.Keywords()
	text := Normalize(transcript)

	d := domain.Decision{
		Command: Classify(text, kw),
		Target:  ResolveTarget(text, kw),
		RawText: transcript,
	}
	if d.Command == domain.CommandMove {
		d.Direction = ResolveDirection(text, kw)
	}
	return d
}
