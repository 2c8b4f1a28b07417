package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"voice-scene/internal/domain"
)

// Assistant pulls utterances from the source one at a time, transcribes
// them and dispatches the resulting Decision. A new utterance is not read
// until the previous one has been fully dispatched.
type Assistant struct {
	audio       AudioSource
	stt         SpeechToText
	interpreter Interpreter
	dispatcher  *Dispatcher
	display     ResultDisplay
	logger      *slog.Logger
}

func NewAssistant(
	audio AudioSource,
	stt SpeechToText,
	interpreter Interpreter,
	dispatcher *Dispatcher,
	display ResultDisplay,
	logger *slog.Logger,
) *Assistant {
	if display == nil {
		display = NoopDisplay{}
	}
	return &Assistant{
		audio:       audio,
		stt:         stt,
		interpreter: interpreter,
		dispatcher:  dispatcher,
		display:     display,
		logger:      logger,
	}
}

func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("starting audio source", "source", a.audio.Name())
	if err := a.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer a.audio.Stop()

	a.logger.Info("assistant ready, listening for commands")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := a.processOne(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrSourceClosed):
			return err
		default:
			a.logger.Error("processing utterance", "error", err)
		}
	}
}

func (a *Assistant) processOne(ctx context.Context) error {
	u, err := a.audio.NextUtterance(ctx)
	if err != nil {
		return fmt.Errorf("getting utterance: %w", err)
	}

	if u.Empty() {
		return nil
	}

	_, err = a.Handle(ctx, u)
	return err
}

// Handle runs one utterance through transcription, interpretation and
// dispatch. An utterance with no recognisable speech is reported on the
// display and is not an error.
func (a *Assistant) Handle(ctx context.Context, u domain.Utterance) (domain.Decision, error) {
	logger := a.logger.With("utterance", u.ID)

	text := u.Text
	if u.IsText() {
		logger.Info("received text command directly", "text", text)
	} else {
		logger.Info("received audio", "bytes", len(u.Audio))

		var err error
		text, err = a.stt.Transcribe(ctx, u.Audio)
		if errors.Is(err, ErrNoTranscript) {
			logger.Warn("could not recognize speech")
			a.display.ShowUnrecognized()
			return domain.Decision{Command: domain.CommandNoMatch}, nil
		}
		if err != nil {
			return domain.Decision{}, fmt.Errorf("transcribing: %w", err)
		}

		logger.Info("transcribed", "text", text)
	}

	a.display.ShowTranscript(text)

	dec := a.interpreter.Interpret(text)
	logger.Info("interpreted",
		"command", dec.Command,
		"target", dec.Target,
		"direction", dec.Direction,
		"latency", u.Latency(time.Now()),
	)

	if dec.Command == domain.CommandNoMatch {
		logger.Warn("unknown command, skipping", "text", text)
		return dec, nil
	}

	if !a.dispatcher.Dispatch(dec) {
		logger.Info("no target resolved, skipping", "command", dec.Command)
	}

	return dec, nil
}
