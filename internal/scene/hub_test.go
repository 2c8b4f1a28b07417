package scene_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-scene/internal/domain"
	"voice-scene/internal/scene"
)

func newHubServer(t *testing.T) (*scene.Hub, *httptest.Server) {
	t.Helper()

	hub := scene.NewHub(scene.New(), 8, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	hub.Routes(func(pattern string, handler http.Handler) { mux.Handle(pattern, handler) })

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/scene/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) scene.Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg scene.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitForClients(t *testing.T, hub *scene.Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 5*time.Second, 10*time.Millisecond)
}

func TestHub_StreamsEffects(t *testing.T) {
	hub, server := newHubServer(t)
	conn := dial(t, server)

	state := readMessage(t, conn)
	assert.Equal(t, "state", state.Type)
	assert.Len(t, state.Nodes, 3)

	waitForClients(t, hub, 1)

	hub.ShowTranscript("緑のターゲットを拡大")
	hub.Apply(domain.ScaleTransform(domain.CommandScaleUp, domain.TargetGreen, domain.ScaleUpFactor))

	transcript := readMessage(t, conn)
	assert.Equal(t, "transcript", transcript.Type)
	assert.Equal(t, "緑のターゲットを拡大", transcript.Text)

	effect := readMessage(t, conn)
	assert.Equal(t, "effect", effect.Type)
	require.NotNil(t, effect.Transform)
	assert.Equal(t, domain.TargetGreen, effect.Transform.Target)
	assert.InDelta(t, 0.3, effect.Seconds, 1e-9)
	require.NotNil(t, effect.Node)
	assert.InDelta(t, 2.0, effect.Node.Scale, 1e-9)
}

func TestHub_Unrecognized(t *testing.T) {
	hub, server := newHubServer(t)
	conn := dial(t, server)
	readMessage(t, conn)
	waitForClients(t, hub, 1)

	hub.ShowUnrecognized()

	msg := readMessage(t, conn)
	assert.Equal(t, "unrecognized", msg.Type)
	assert.Equal(t, scene.UnrecognizedText, msg.Text)
}

func TestHub_StateEndpoint(t *testing.T) {
	hub, server := newHubServer(t)
	hub.Apply(domain.MoveTransform(domain.TargetBlue, domain.DirectionDown))

	resp, err := http.Get(server.URL + "/scene")
	require.NoError(t, err)
	defer resp.Body.Close()

	var msg scene.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	require.Len(t, msg.Nodes, 3)
	assert.InDelta(t, -0.08, msg.Nodes[2].Position.Y, 1e-9)
}

func TestHub_ApplyWithoutClients(t *testing.T) {
	hub, _ := newHubServer(t)

	assert.NotPanics(t, func() {
		hub.Apply(domain.RotateTransform(domain.TargetRed))
	})
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, server := newHubServer(t)
	conn := dial(t, server)
	readMessage(t, conn)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}
