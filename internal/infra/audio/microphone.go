//go:build portaudio
// +build portaudio

package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"

	"voice-scene/internal/domain"
)

const framesPerBuffer = 1024

// MicrophoneSource records one phrase per NextUtterance call. Recording
// starts at the first frame above the silence threshold and stops after a
// second of silence or maxDuration, whichever comes first.
type MicrophoneSource struct {
	stream      *portaudio.Stream
	frame       []int16
	sampleRate  int
	maxDuration time.Duration
	logger      *slog.Logger
}

func NewMicrophoneSource(sampleRate int, maxDuration time.Duration, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		sampleRate:  sampleRate,
		maxDuration: maxDuration,
		logger:      logger,
		frame:       make([]int16, framesPerBuffer),
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(m.frame), m.frame)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}
	m.stream = stream

	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}

	m.logger.Info("microphone started", "sample_rate", m.sampleRate, "max_duration", m.maxDuration)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
	}
	return portaudio.Terminate()
}

func (m *MicrophoneSource) NextUtterance(ctx context.Context) (domain.Utterance, error) {
	const silenceThreshold = int16(500)

	maxSamples := int(m.maxDuration.Seconds() * float64(m.sampleRate))
	samples := make([]int16, 0, maxSamples)
	silentSamples := 0
	speaking := false

	for {
		select {
		case <-ctx.Done():
			return domain.Utterance{}, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return domain.Utterance{}, fmt.Errorf("reading from stream: %w", err)
		}

		loud := false
		for _, s := range m.frame {
			if s > silenceThreshold || s < -silenceThreshold {
				loud = true
				break
			}
		}

		if !speaking {
			if !loud {
				continue
			}
			speaking = true
			m.logger.Debug("recording")
		}

		samples = append(samples, m.frame...)

		if loud {
			silentSamples = 0
		} else {
			silentSamples += len(m.frame)
		}

		if silentSamples > m.sampleRate || len(samples) >= maxSamples {
			break
		}
	}

	return domain.NewAudioUtterance(samplesToWav(samples, m.sampleRate)), nil
}

func samplesToWav(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer

	dataSize := len(samples) * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, int16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, int16(2))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}
