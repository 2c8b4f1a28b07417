package application_test

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-scene/internal/application"
	"voice-scene/internal/domain"
	"voice-scene/internal/interpret"
)

type recordingSpatial struct {
	mu      sync.Mutex
	applied []domain.Transform
}

func (r *recordingSpatial) Apply(t domain.Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, t)
}

func (r *recordingSpatial) Applied() []domain.Transform {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Transform(nil), r.applied...)
}

type recordingNotify struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingNotify) Send(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
}

func (r *recordingNotify) Sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDispatcher() (*application.Dispatcher, *recordingSpatial, *recordingNotify) {
	spatial := &recordingSpatial{}
	notify := &recordingNotify{}
	return application.NewDispatcher(spatial, notify, discardLogger()), spatial, notify
}

func TestDispatcher_SpatialCommands(t *testing.T) {
	tests := []struct {
		name     string
		decision domain.Decision
		want     domain.Transform
	}{
		{
			name:     "rotate",
			decision: domain.Decision{Command: domain.CommandRotate, Target: domain.TargetRed},
			want: domain.Transform{
				Kind:     domain.CommandRotate,
				Target:   domain.TargetRed,
				RotateY:  2 * math.Pi,
				Duration: 3 * time.Second,
			},
		},
		{
			name:     "move down",
			decision: domain.Decision{Command: domain.CommandMove, Target: domain.TargetGreen, Direction: domain.DirectionDown},
			want: domain.Transform{
				Kind:      domain.CommandMove,
				Target:    domain.TargetGreen,
				Direction: domain.DirectionDown,
				MoveY:     -0.08,
				Duration:  300 * time.Millisecond,
			},
		},
		{
			name:     "move up",
			decision: domain.Decision{Command: domain.CommandMove, Target: domain.TargetBlue, Direction: domain.DirectionUp},
			want: domain.Transform{
				Kind:      domain.CommandMove,
				Target:    domain.TargetBlue,
				Direction: domain.DirectionUp,
				MoveY:     0.08,
				Duration:  300 * time.Millisecond,
			},
		},
		{
			name:     "scale up",
			decision: domain.Decision{Command: domain.CommandScaleUp, Target: domain.TargetGreen},
			want: domain.Transform{
				Kind:     domain.CommandScaleUp,
				Target:   domain.TargetGreen,
				Scale:    2.0,
				Duration: 300 * time.Millisecond,
			},
		},
		{
			name:     "scale down",
			decision: domain.Decision{Command: domain.CommandScaleDown, Target: domain.TargetBlue},
			want: domain.Transform{
				Kind:     domain.CommandScaleDown,
				Target:   domain.TargetBlue,
				Scale:    0.5,
				Duration: 300 * time.Millisecond,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, spatial, notify := newDispatcher()

			assert.True(t, d.Dispatch(tt.decision))

			applied := spatial.Applied()
			require.Len(t, applied, 1)
			assert.Equal(t, tt.want, applied[0])
			assert.Empty(t, notify.Sent())
		})
	}
}

func TestDispatcher_NoTargetIsNoop(t *testing.T) {
	for _, cmd := range []domain.Command{
		domain.CommandRotate,
		domain.CommandMove,
		domain.CommandScaleUp,
		domain.CommandScaleDown,
	} {
		d, spatial, notify := newDispatcher()

		assert.False(t, d.Dispatch(domain.Decision{Command: cmd}), "command %s", cmd)
		assert.Empty(t, spatial.Applied())
		assert.Empty(t, notify.Sent())
	}
}

func TestDispatcher_NoMatchIsNoop(t *testing.T) {
	d, spatial, notify := newDispatcher()

	assert.False(t, d.Dispatch(domain.Decision{Command: domain.CommandNoMatch, Target: domain.TargetRed}))
	assert.Empty(t, spatial.Applied())
	assert.Empty(t, notify.Sent())
}

func TestDispatcher_NotifyIgnoresTarget(t *testing.T) {
	d, spatial, notify := newDispatcher()

	in := interpret.NewInterpreter(domain.DefaultKeywords())
	dec := in.Interpret("Slackで赤を送信")

	assert.True(t, d.Dispatch(dec))
	assert.Equal(t, []string{"Slackで赤を送信"}, notify.Sent())
	assert.Empty(t, spatial.Applied())
}

func TestDispatcher_InterpretedPhrases(t *testing.T) {
	in := interpret.NewInterpreter(domain.DefaultKeywords())

	t.Run("rotate red exactly once", func(t *testing.T) {
		d, spatial, notify := newDispatcher()
		d.Dispatch(in.Interpret("赤いターゲットを回転"))

		applied := spatial.Applied()
		require.Len(t, applied, 1)
		assert.Equal(t, domain.TargetRed, applied[0].Target)
		assert.Equal(t, domain.CommandRotate, applied[0].Kind)
		assert.Empty(t, notify.Sent())
	})

	t.Run("move green down", func(t *testing.T) {
		d, spatial, _ := newDispatcher()
		d.Dispatch(in.Interpret("緑のターゲットを下に移動"))

		applied := spatial.Applied()
		require.Len(t, applied, 1)
		assert.Equal(t, domain.TargetGreen, applied[0].Target)
		assert.Equal(t, domain.DirectionDown, applied[0].Direction)
	})

	t.Run("move blue defaults up", func(t *testing.T) {
		d, spatial, _ := newDispatcher()
		d.Dispatch(in.Interpret("青いターゲットを移動"))

		applied := spatial.Applied()
		require.Len(t, applied, 1)
		assert.Equal(t, domain.DirectionUp, applied[0].Direction)
		assert.InDelta(t, 0.08, applied[0].MoveY, 1e-9)
	})

	t.Run("no color keyword", func(t *testing.T) {
		d, spatial, notify := newDispatcher()
		d.Dispatch(in.Interpret("ターゲットを拡大"))

		assert.Empty(t, spatial.Applied())
		assert.Empty(t, notify.Sent())
	})
}
