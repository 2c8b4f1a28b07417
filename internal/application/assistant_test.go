package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"voice-scene/internal/application"
	"voice-scene/internal/domain"
	"voice-scene/internal/interpret"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockAudioSource struct {
	mu         sync.Mutex
	utterances []domain.Utterance
	index      int
	stopped    bool
}

func (m *mockAudioSource) Start(_ context.Context) error { return nil }
func (m *mockAudioSource) Name() string                  { return "mock" }

func (m *mockAudioSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockAudioSource) NextUtterance(_ context.Context) (domain.Utterance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index >= len(m.utterances) {
		return domain.Utterance{}, application.ErrSourceClosed
	}
	u := m.utterances[m.index]
	m.index++
	return u, nil
}

type mockSTT struct {
	mu             sync.Mutex
	transcriptions map[string]string
	calls          int
}

func (m *mockSTT) Transcribe(_ context.Context, audio []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if text, ok := m.transcriptions[string(audio)]; ok {
		return text, nil
	}
	return "", application.ErrNoTranscript
}

type recordingDisplay struct {
	mu           sync.Mutex
	transcripts  []string
	unrecognized int
}

func (r *recordingDisplay) ShowTranscript(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcripts = append(r.transcripts, text)
}

func (r *recordingDisplay) ShowUnrecognized() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unrecognized++
}

func TestAssistant_ProcessUtterances(t *testing.T) {
	source := &mockAudioSource{
		utterances: []domain.Utterance{
			domain.NewAudioUtterance([]byte("audio-rotate")),
			domain.NewAudioUtterance([]byte("audio-move")),
			domain.NewTextUtterance("Slackにテスト送信"),
			{},
		},
	}
	stt := &mockSTT{
		transcriptions: map[string]string{
			"audio-rotate": "青いターゲットを回転",
			"audio-move":   "赤いターゲットを下に移動",
		},
	}
	display := &recordingDisplay{}
	dispatcher, spatial, notify := newDispatcher()

	assistant := application.NewAssistant(
		source,
		stt,
		interpret.NewInterpreter(domain.DefaultKeywords()),
		dispatcher,
		display,
		discardLogger(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := assistant.Run(ctx)
	require.ErrorIs(t, err, application.ErrSourceClosed)

	applied := spatial.Applied()
	require.Len(t, applied, 2)
	assert.Equal(t, domain.CommandRotate, applied[0].Kind)
	assert.Equal(t, domain.TargetBlue, applied[0].Target)
	assert.Equal(t, domain.CommandMove, applied[1].Kind)
	assert.Equal(t, domain.TargetRed, applied[1].Target)
	assert.Equal(t, domain.DirectionDown, applied[1].Direction)

	assert.Equal(t, []string{"Slackにテスト送信"}, notify.Sent())
	assert.Equal(t, 2, stt.calls, "text utterances must not be transcribed")
	assert.Len(t, display.transcripts, 3)
	assert.True(t, source.stopped)
}

func TestAssistant_UnrecognizedSpeech(t *testing.T) {
	display := &recordingDisplay{}
	dispatcher, spatial, notify := newDispatcher()

	assistant := application.NewAssistant(
		&mockAudioSource{},
		&mockSTT{},
		interpret.NewInterpreter(domain.DefaultKeywords()),
		dispatcher,
		display,
		discardLogger(),
	)

	dec, err := assistant.Handle(context.Background(), domain.NewAudioUtterance([]byte("noise")))
	require.NoError(t, err)

	assert.Equal(t, domain.CommandNoMatch, dec.Command)
	assert.Equal(t, 1, display.unrecognized)
	assert.Empty(t, display.transcripts)
	assert.Empty(t, spatial.Applied())
	assert.Empty(t, notify.Sent())
}

type failingSTT struct{}

func (failingSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	return "", errors.New("service unavailable")
}

func TestAssistant_TranscriptionErrorDoesNotDispatch(t *testing.T) {
	dispatcher, spatial, notify := newDispatcher()

	assistant := application.NewAssistant(
		&mockAudioSource{},
		failingSTT{},
		interpret.NewInterpreter(domain.DefaultKeywords()),
		dispatcher,
		nil,
		discardLogger(),
	)

	_, err := assistant.Handle(context.Background(), domain.NewAudioUtterance([]byte("audio")))
	require.Error(t, err)
	assert.Empty(t, spatial.Applied())
	assert.Empty(t, notify.Sent())
}

func TestAssistant_StopsOnCancel(t *testing.T) {
	dispatcher, _, _ := newDispatcher()
	source := &blockingSource{}

	assistant := application.NewAssistant(
		source,
		&application.NoopSTT{},
		interpret.NewInterpreter(domain.DefaultKeywords()),
		dispatcher,
		nil,
		discardLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- assistant.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for assistant to stop")
	}
}

type blockingSource struct{}

func (blockingSource) Start(_ context.Context) error { return nil }
func (blockingSource) Stop() error                   { return nil }
func (blockingSource) Name() string                  { return "blocking" }

func (blockingSource) NextUtterance(ctx context.Context) (domain.Utterance, error) {
	<-ctx.Done()
	return domain.Utterance{}, ctx.Err()
}
