package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-scene/internal/infra/slack"
)

func TestClient_Notify(t *testing.T) {
	var got map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := slack.NewClient(server.URL, slack.Options{
		Channel:  "#bots",
		Username: "webhookbot",
		Prefix:   "VUI Demo: ",
	})

	err := client.Notify(context.Background(), "Slackにテスト送信")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"channel":  "#bots",
		"username": "webhookbot",
		"text":     "VUI Demo: Slackにテスト送信",
	}, got)
}

func TestClient_NotifyPermanentError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer server.Close()

	client := slack.NewClient(server.URL, slack.Options{})

	err := client.Notify(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack API error 403")
	assert.Equal(t, 1, calls)
}

func TestClient_NotifyWithoutWebhook(t *testing.T) {
	client := slack.NewClient("", slack.Options{})
	assert.NoError(t, client.Notify(context.Background(), "hello"))
}
