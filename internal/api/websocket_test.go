package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"orb-arena/internal/game"
	"orb-arena/internal/protocol"
)

// readFrameOfType reads frames until one of the wanted type arrives.
func readFrameOfType(t *testing.T, conn *websocket.Conn, wantType string) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("reading for %q: %v", wantType, err)
		}
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if env.Type == wantType {
			return raw
		}
	}
}

// TestWebSocketSessionLifecycle drives a full client session end to end:
// pending frames ignored, join → welcome, input → echoed seq in gameState,
// ping → pong, disconnect → player removed.
func TestWebSocketSessionLifecycle(t *testing.T) {
	engine := game.NewEngine(game.EngineConfig{Seed: 1, TickRate: 120})
	server := NewServer(engine)
	defer server.Stop()

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// A ping before joining is ignored; join must answer with welcome, not
	// a stray pong.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping","time":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","name":"tester","race":"elf"}`)); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading welcome: %v", err)
	}
	var welcome protocol.Welcome
	if err := json.Unmarshal(raw, &welcome); err != nil || welcome.Type != protocol.TypeWelcome {
		t.Fatalf("first frame should be welcome, got %s", raw)
	}
	if welcome.PlayerID == "" || welcome.MapWidth != 2000 {
		t.Errorf("welcome = %+v", welcome)
	}

	// Malformed frames must not kill the connection.
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":`))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport"}`))

	engine.Start()
	defer engine.Stop()

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"input","input":{"right":true,"seq":9}}`))

	deadline := time.Now().Add(3 * time.Second)
	acked := false
	for !acked && time.Now().Before(deadline) {
		raw := readFrameOfType(t, conn, protocol.TypeGameState)
		var snap protocol.GameState
		if err := json.Unmarshal(raw, &snap); err != nil {
			t.Fatalf("bad gameState: %v", err)
		}
		for _, pv := range snap.Players {
			if pv.ID == welcome.PlayerID && pv.LastProcessedInputSeq == 9 {
				acked = true
			}
		}
	}
	if !acked {
		t.Fatal("input seq never echoed in gameState")
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping","time":123.5}`))
	var pong protocol.Pong
	if err := json.Unmarshal(readFrameOfType(t, conn, protocol.TypePong), &pong); err != nil {
		t.Fatal(err)
	}
	if pong.ClientTime != 123.5 {
		t.Errorf("pong clientTime = %v, want 123.5", pong.ClientTime)
	}

	conn.Close()
	deadline = time.Now().Add(3 * time.Second)
	for engine.Stats().Players != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if engine.Stats().Players != 0 {
		t.Error("player should be removed on disconnect")
	}
}
