package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Advansoftware/m3utostrm/internal/broadcast"
	"github.com/Advansoftware/m3utostrm/internal/queue"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is already open to the configured frontend via CORS; the
	// websocket follows the same policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans events out to connected websocket clients. It implements
// broadcast.Sink; delivery is fire-and-forget and a client that fails a write
// is dropped rather than retried.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	queue   *queue.Queue
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// Bind attaches the queue used for initial payloads and client-driven cancels.
func (h *Hub) Bind(q *queue.Queue) {
	h.queue = q
}

// Notify broadcasts one event to every connected client, pruning clients whose
// send fails.
func (h *Hub) Notify(event broadcast.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Str("op", "server/hub").Msgf("Error encoding event: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Debug().Str("op", "server/hub").Msgf("Dropping client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// clientMessage is what subscribers may send back over the socket.
type clientMessage struct {
	Type   string `json:"type"`
	ItemID string `json:"item_id"`
}

// Handle upgrades the request and serves the subscriber until it disconnects.
// New subscribers immediately receive the current queue status.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Str("op", "server/hub").Msgf("Error upgrading websocket: %v", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	log.Info().Str("op", "server/hub").Msg("New websocket subscriber")

	h.sendStatus(conn)
	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Str("op", "server/hub").Msgf("Websocket read error: %v", err)
			}
			break
		}
		switch msg.Type {
		case "get_status":
			h.sendStatus(conn)
		case "cancel_item":
			if msg.ItemID != "" && h.queue != nil {
				h.queue.Cancel(msg.ItemID)
			}
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
	log.Info().Str("op", "server/hub").Msg("Websocket subscriber disconnected")
}

func (h *Hub) sendStatus(conn *websocket.Conn) {
	if h.queue == nil {
		return
	}
	event := broadcast.Event{Type: broadcast.EventQueueStatus, Data: h.queue.Status()}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(event); err != nil {
		log.Debug().Str("op", "server/hub").Msgf("Error sending initial status: %v", err)
	}
}
