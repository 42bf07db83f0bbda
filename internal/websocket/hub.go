package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	module         = "Hub"
	clusterChannel = "cluster_events"

	MessageDocumentStatus = "document_status"
	MessageUploadProgress = "upload_progress"
)

// envelope is what travels between instances over redis.
type envelope struct {
	Origin string          `json:"origin"`
	TabID  string          `json:"target_tab_id"`
	Data   json.RawMessage `json:"message"`
}

// Hub fans messages out to the websocket clients of each console tab. With
// redis configured every instance also relays what the others publish, so a
// tab connected elsewhere still receives its updates.
type Hub struct {
	id string

	// tab id -> connections (one tab may reconnect before the old socket dies)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		id:         uuid.NewString(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.TabID] = append(h.clients[client.TabID], client)
			h.mu.Unlock()
			h.logger.Info(module, "Client registered", map[string]interface{}{"tab_id": client.TabID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.TabID]
	for i, c := range clients {
		if c == client {
			h.clients[client.TabID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.TabID]) == 0 {
		delete(h.clients, client.TabID)
		h.logger.Info(module, "Tab has no connections left", map[string]interface{}{"tab_id": client.TabID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for tabID, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, tabID)
	}
}

// Send delivers {type, data} to every connection of tabID, locally and on
// the other instances.
func (h *Hub) Send(tabID, msgType string, data interface{}) {
	payload := Message(msgType, data)
	if payload == nil {
		h.logger.Error(module, "Failed to encode message", map[string]interface{}{"type": msgType})
		return
	}

	h.deliver(tabID, payload)

	if h.rdb != nil {
		raw, _ := json.Marshal(envelope{Origin: h.id, TabID: tabID, Data: payload})
		if err := h.rdb.Publish(context.Background(), clusterChannel, raw).Err(); err != nil {
			h.logger.Warn(module, "Failed to relay message to cluster", map[string]interface{}{"tab_id": tabID, "error": err.Error()})
		}
	}
}

// Message encodes the {type, data} frame clients receive. It returns nil
// when data cannot be encoded.
func Message(msgType string, data interface{}) []byte {
	payload, err := json.Marshal(map[string]interface{}{
		"type": msgType,
		"data": data,
	})
	if err != nil {
		return nil
	}
	return payload
}

// Connected reports how many local sockets tabID has.
func (h *Hub) Connected(tabID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tabID])
}

func (h *Hub) deliver(tabID string, payload []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients[tabID] {
		select {
		case client.Send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn(module, "Client send buffer full, dropping connection", map[string]interface{}{"tab_id": tabID})
		go h.leave(client)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn(module, "Cluster message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if env.Origin == h.id || env.TabID == "" {
				continue
			}
			h.deliver(env.TabID, env.Data)
		}
	}
}
