package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type SSEEvent string

const (
	SSEEventProgressUpdated         SSEEvent = "ProgressUpdated"
	SSEEventQuizSubmitted           SSEEvent = "QuizSubmitted"
	SSEEventStudyMaterialsGenerated SSEEvent = "StudyMaterialsGenerated"
	SSEEventChatSessionCreated      SSEEvent = "ChatSessionCreated"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

const outboundBuffer = 16

type SSEHub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*SSEClient]bool
	heartbeat     time.Duration
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	return &SSEHub{
		logger:        log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*SSEClient]bool),
		heartbeat:     15 * time.Second,
	}
}

func (hub *SSEHub) NewSSEClient(userID uint) *SSEClient {
	id := uuid.New()
	return &SSEClient{
		ID:       id,
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan SSEMessage, outboundBuffer),
		done:     make(chan struct{}),
		Logger:   hub.logger.With("client_id", id.String()),
	}
}

func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	client.Channels[channel] = true

	clients, ok := hub.subscriptions[channel]
	if !ok {
		clients = make(map[*SSEClient]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true
	hub.logger.Debug("SSE client subscribed", "client_id", client.ID, "channel", channel)
}

func (hub *SSEHub) RemoveChannel(client *SSEClient, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	delete(client.Channels, channel)
	hub.unsubscribeLocked(client, channel)
}

func (hub *SSEHub) removeClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for ch := range client.Channels {
		hub.unsubscribeLocked(client, ch)
	}
	client.Channels = make(map[string]bool)
}

func (hub *SSEHub) unsubscribeLocked(client *SSEClient, channel string) {
	if subMap, ok := hub.subscriptions[channel]; ok {
		delete(subMap, client)
		if len(subMap) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
}

// Broadcast never blocks; a client whose buffer is full misses the message.
func (hub *SSEHub) Broadcast(msg SSEMessage) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if msg.Channel == "" {
		return
	}
	for c := range hub.subscriptions[msg.Channel] {
		select {
		case c.Outbound <- msg:
		default:
			hub.logger.Warn("Dropping SSE message; outbound buffer full", "client_id", c.ID, "event", msg.Event)
		}
	}
}

// ServeHTTP writes the client's messages until the request ends or the client is closed.
func (hub *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *SSEClient) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	flusher.Flush()
	ctx := r.Context()

	heartbeat := time.NewTicker(hub.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			hub.logger.Debug("SSE client context done", "client_id", client.ID, "err", ctx.Err())
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			raw, err := json.Marshal(msg)
			if err != nil {
				hub.logger.Warn("Failed to marshal SSE message", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, raw)
			flusher.Flush()
		}
	}
}

// CloseClient unsubscribes the client and closes its outbound channel. Safe to call twice.
func (hub *SSEHub) CloseClient(client *SSEClient) {
	client.once.Do(func() {
		close(client.done)
		hub.removeClient(client)
		hub.mu.Lock()
		close(client.Outbound)
		hub.mu.Unlock()
	})
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
