package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"voice-scene/internal/application"
	"voice-scene/internal/infra"
)

type WhisperClient struct {
	client   *goopenai.Client
	language string
}

func NewWhisperClient(apiKey, language string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, "")
}

// NewWhisperClientWithURL points the client at baseURL, which must include
// the /v1 suffix. An empty baseURL keeps the library default.
func NewWhisperClientWithURL(apiKey, language, baseURL string) *WhisperClient {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &WhisperClient{
		client:   goopenai.NewClientWithConfig(cfg),
		language: isoLanguage(language),
	}
}

// Whisper takes ISO-639-1 codes, so "ja-JP" becomes "ja".
func isoLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var text string

	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		resp, err := c.client.CreateTranscription(ctx, goopenai.AudioRequest{
			Model:    goopenai.Whisper1,
			FilePath: "audio.wav",
			Reader:   bytes.NewReader(audio),
			Language: c.language,
		})
		if err != nil {
			var apiErr *goopenai.APIError
			if errors.As(err, &apiErr) && !infra.IsRetryableHTTPStatus(apiErr.HTTPStatusCode) {
				return infra.Permanent(fmt.Errorf("whisper: %w", err))
			}
			return fmt.Errorf("whisper: %w", err)
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", application.ErrNoTranscript
	}
	return text, nil
}
