package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voice-scene/internal/application"
	"voice-scene/internal/infra"
)

const defaultBaseURL = "https://speech.googleapis.com/v1"

// SpeechClient calls the synchronous speech:recognize endpoint.
type SpeechClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	language   string
	sampleRate int
}

func NewSpeechClient(apiKey, language string, sampleRate int) *SpeechClient {
	return NewSpeechClientWithURL(apiKey, language, sampleRate, defaultBaseURL)
}

func NewSpeechClientWithURL(apiKey, language string, sampleRate int, baseURL string) *SpeechClient {
	if language == "" {
		language = "ja-JP"
	}
	if sampleRate == 0 {
		sampleRate = application.DefaultAudioFormat().SampleRate
	}
	return &SpeechClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		language:   language,
		sampleRate: sampleRate,
	}
}

type recognitionConfig struct {
	Encoding        string `json:"encoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	LanguageCode    string `json:"languageCode"`
	MaxAlternatives int    `json:"maxAlternatives"`
}

type recognitionAudio struct {
	Content string `json:"content"`
}

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  recognitionAudio  `json:"audio"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Transcribe returns the top alternative of the first result, or
// application.ErrNoTranscript when nothing was recognised.
func (c *SpeechClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	body, err := json.Marshal(recognizeRequest{
		Config: recognitionConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: c.sampleRate,
			LanguageCode:    c.language,
			MaxAlternatives: 1,
		},
		Audio: recognitionAudio{Content: base64.StdEncoding.EncodeToString(audio)},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := c.baseURL + "/speech:recognize?key=" + url.QueryEscape(c.apiKey)

	var result recognizeResponse
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return infra.StatusError("speech", resp.StatusCode, respBody)
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return infra.Permanent(fmt.Errorf("decoding response: %w", err))
		}

		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	if len(result.Results) == 0 || len(result.Results[0].Alternatives) == 0 {
		return "", application.ErrNoTranscript
	}

	return result.Results[0].Alternatives[0].Transcript, nil
}
