// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/campaignwatch/internal/campaign"
)

type wireMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// dialHub serves hub over a test server and returns a connected client.
func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		NewClient(hub, conn).Start()
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readWire(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var m wireMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return m
}

func TestClient_PingPong(t *testing.T) {
	hub := startHub(t)
	conn := dialHub(t, hub)

	if err := conn.WriteJSON(map[string]string{"type": MessageTypePing}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if m := readWire(t, conn); m.Type != MessageTypePong {
		t.Errorf("reply type = %q, want pong", m.Type)
	}
}

func TestClient_SubscribeFiltersAlerts(t *testing.T) {
	hub := startHub(t)
	conn := dialHub(t, hub)

	subscribe := map[string]interface{}{
		"type": MessageTypeSubscribe,
		"data": map[string]string{"min_severity": "critical"},
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	// The pong arrives after the subscribe message has been handled.
	if err := conn.WriteJSON(map[string]string{"type": MessageTypePing}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	readWire(t, conn)
	waitFor(t, "registration", func() bool { return hub.GetClientCount() == 1 })

	hub.BroadcastAlert(alert(campaign.SeverityHigh))
	hub.BroadcastAlert(alert(campaign.SeverityCritical))

	m := readWire(t, conn)
	if m.Type != MessageTypeAlert {
		t.Fatalf("type = %q, want campaign_alert", m.Type)
	}
	var got campaign.Alert
	if err := json.Unmarshal(m.Data, &got); err != nil {
		t.Fatalf("decode alert: %v", err)
	}
	if got.Severity != campaign.SeverityCritical {
		t.Errorf("first delivered severity = %q, want critical", got.Severity)
	}
}

func TestClient_InvalidSubscribeIgnored(t *testing.T) {
	c := &Client{hub: NewHub(Config{}), send: make(chan Message, 1)}
	c.SetMinSeverity(campaign.SeverityHigh)
	c.handle(Message{Type: MessageTypeSubscribe, Data: map[string]string{"min_severity": "extreme"}})
	if !c.accepts(Message{rank: campaign.SeverityHigh.Rank()}) || c.accepts(Message{rank: 0}) {
		t.Error("invalid subscribe changed the filter")
	}
	c.handle(Message{Type: MessageTypeSubscribe, Data: map[string]string{"min_severity": "low"}})
	if !c.accepts(Message{rank: 0}) {
		t.Error("valid subscribe did not lower the filter")
	}
}

func TestClientIDsIncrease(t *testing.T) {
	hub := NewHub(Config{})
	a, b := NewClient(hub, nil), NewClient(hub, nil)
	if b.ID() <= a.ID() {
		t.Errorf("IDs %d, %d not increasing", a.ID(), b.ID())
	}
	if cap(a.send) != hub.clientBuffer {
		t.Errorf("send buffer = %d, want %d", cap(a.send), hub.clientBuffer)
	}
}
