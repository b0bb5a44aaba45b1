// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication
const (
	MessageTypeAlert     = "campaign_alert"
	MessageTypeScored    = "campaign_scored"
	MessageTypeSubscribe = "subscribe"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
)

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`

	// rank is the severity rank used for per-client filtering; -1 always passes.
	rank int
}

// Config sizes the hub's buffers.
type Config struct {
	BroadcastBuffer int
	ClientBuffer    int
}

// DefaultConfig returns the default buffer sizes.
func DefaultConfig() Config {
	return Config{BroadcastBuffer: 256, ClientBuffer: 64}
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	clients      map[*Client]bool
	broadcast    chan Message
	Register     chan *Client
	Unregister   chan *Client
	clientBuffer int
	mu           sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(cfg Config) *Hub {
	def := DefaultConfig()
	if cfg.BroadcastBuffer <= 0 {
		cfg.BroadcastBuffer = def.BroadcastBuffer
	}
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = def.ClientBuffer
	}
	return &Hub{
		broadcast:    make(chan Message, cfg.BroadcastBuffer),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		clients:      make(map[*Client]bool),
		clientBuffer: cfg.ClientBuffer,
	}
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// client and returns ctx.Err(). Shutdown is checked first, then client
// lifecycle events, then broadcasts, so client state is settled before a
// message is delivered.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))
	logging.Info().Int("total_clients", n).Msg("websocket client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))
	logging.Info().Int("total_clients", n).Msg("websocket client disconnected")
}

// logGracefulShutdown closes all clients and logs the shutdown without an
// error field; cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients must be called with mu held. Clients are ordered by ID so
// delivery order is stable.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients delivers message to every client whose severity filter
// accepts it. Clients with a full send buffer are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range h.sortedClients() {
		if !client.accepts(message) {
			continue
		}
		select {
		case client.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			metrics.WSErrors.WithLabelValues("client_buffer_full").Inc()
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// enqueue queues message for broadcast. It never blocks; a full queue drops
// the message and returns false.
func (h *Hub) enqueue(message Message) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		metrics.WSErrors.WithLabelValues("broadcast_buffer_full").Inc()
		logging.Warn().Str("message_type", message.Type).Msg("broadcast channel full, dropping message")
		return false
	}
}

// BroadcastJSON sends a message to all connected clients regardless of
// their severity filter.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) bool {
	return h.enqueue(Message{Type: messageType, Data: data, rank: -1})
}

// BroadcastAlert sends an alert to clients subscribed at or below its severity.
func (h *Hub) BroadcastAlert(alert campaign.Alert) bool {
	return h.enqueue(Message{Type: MessageTypeAlert, Data: alert, rank: alert.Severity.Rank()})
}

// ScoredData is the campaign_scored payload.
type ScoredData struct {
	CampaignID          string             `json:"campaign_id"`
	Score               float64            `json:"score"`
	Severity            campaign.Severity  `json:"severity"`
	ComponentScores     map[string]float64 `json:"component_scores"`
	AlertCount          int                `json:"alert_count"`
	HumanReviewRequired bool               `json:"human_review_required"`
	PostCount           int                `json:"post_count"`
	ScoredAt            string             `json:"scored_at"`
}

// NewScoredData summarises res for dashboards.
func NewScoredData(res *campaign.Result) ScoredData {
	return ScoredData{
		CampaignID:          res.CampaignID,
		Score:               res.Score,
		Severity:            res.Severity,
		ComponentScores:     res.ComponentScores,
		AlertCount:          len(res.Alerts),
		HumanReviewRequired: res.HumanReviewRequired,
		PostCount:           res.PostCount,
		ScoredAt:            res.ScoredAt.UTC().Format(time.RFC3339),
	}
}

// BroadcastScored sends a scored-campaign summary.
func (h *Hub) BroadcastScored(data ScoredData) bool {
	return h.enqueue(Message{Type: MessageTypeScored, Data: data, rank: data.Severity.Rank()})
}

// Record implements campaign.Sink: it broadcasts the summary followed by
// each alert.
func (h *Hub) Record(_ context.Context, res campaign.Result) error {
	h.BroadcastScored(NewScoredData(&res))
	for _, a := range res.Alerts {
		h.BroadcastAlert(a)
	}
	return nil
}

// BroadcastRawAlert decodes an alert published by another instance and
// broadcasts it.
func (h *Hub) BroadcastRawAlert(data []byte) error {
	var alert campaign.Alert
	if err := json.Unmarshal(data, &alert); err != nil {
		return err
	}
	h.BroadcastAlert(alert)
	return nil
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
