package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"stylelab-server/modules/common/metrics"
	"stylelab-server/modules/common/model"
)

// Event types
const (
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventProjectUpdated = "project_updated"
	EventProjectDeleted = "project_deleted"
)

const (
	sendBuffer    = 256
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxMessageLen = 64 << 10
)

// Event is the JSON frame exchanged with gallery clients.
type Event struct {
	Type      string                 `json:"type"`
	ProjectID string                 `json:"projectId"`
	UserID    string                 `json:"userId,omitempty"`
	Project   *model.Project         `json:"project,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

type client struct {
	conn      *websocket.Conn
	projectID string
	userID    string
	send      chan []byte
}

// room - 프로젝트별 구독자 묶음
type room struct {
	id           string
	mu           sync.Mutex
	clients      map[string]*client
	createdAt    time.Time
	lastActivity time.Time
}

// Hub fans project changes out to websocket subscribers.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]*room
	upgrader websocket.Upgrader
}

// NewHub - allowedOrigin "*"이면 모든 origin 허용
func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		rooms: make(map[string]*room),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// RegisterRoutes - 라우트 등록
func (h *Hub) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws", h.HandleWebSocket)
	r.HandleFunc("/realtime/projects/{projectId}", h.HandleRoomInfo).Methods("GET")
	r.HandleFunc("/api/realtime/projects/{projectId}", h.HandleRoomInfo).Methods("GET")
}

// join registers c under the hub lock so cleanup never drops the room between lookup and insert.
func (h *Hub) join(c *client) *room {
	h.mu.Lock()
	rm, ok := h.rooms[c.projectID]
	if !ok {
		now := time.Now()
		rm = &room{id: c.projectID, clients: make(map[string]*client), createdAt: now, lastActivity: now}
		h.rooms[c.projectID] = rm
		log.Debug().Msgf("✅ [Realtime] Room opened: %s (active: %d)", c.projectID, len(h.rooms))
	}
	count := rm.insert(c)
	h.mu.Unlock()

	metrics.WebsocketClients.Inc()
	log.Info().Msgf("👤 [Realtime] %s joined %s (clients: %d)", c.userID, rm.id, count)
	rm.broadcast("", Event{Type: EventUserJoined, ProjectID: rm.id, UserID: c.userID, Timestamp: time.Now()})
	return rm
}

func (h *Hub) lookupRoom(projectID string) *room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[projectID]
}

// ProjectUpdated broadcasts the stored project to its subscribers.
func (h *Hub) ProjectUpdated(p *model.Project) {
	if rm := h.lookupRoom(p.ID); rm != nil {
		rm.broadcast("", Event{Type: EventProjectUpdated, ProjectID: p.ID, Project: p, Timestamp: time.Now()})
	}
}

// ProjectDeleted tells subscribers the project is gone.
func (h *Hub) ProjectDeleted(id string) {
	if rm := h.lookupRoom(id); rm != nil {
		rm.broadcast("", Event{Type: EventProjectDeleted, ProjectID: id, Timestamp: time.Now()})
	}
}

// HandleWebSocket - GET /ws?project=<id>&user=<id>
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project")
	userID := r.URL.Query().Get("user")
	if projectID == "" || userID == "" {
		http.Error(w, "project and user parameters are required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ [Realtime] WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, projectID: projectID, userID: userID, send: make(chan []byte, sendBuffer)}
	rm := h.join(c)

	go c.writePump()
	go c.readPump(rm)
}

// HandleRoomInfo - 프로젝트 구독자 정보
func (h *Hub) HandleRoomInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	projectID := mux.Vars(r)["projectId"]

	rm := h.lookupRoom(projectID)
	if rm == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "No subscribers for project"})
		return
	}

	rm.mu.Lock()
	users := make([]string, 0, len(rm.clients))
	for id := range rm.clients {
		users = append(users, id)
	}
	info := map[string]interface{}{
		"projectId":    projectID,
		"clientCount":  len(users),
		"clients":      users,
		"createdAt":    rm.createdAt,
		"lastActivity": rm.lastActivity,
	}
	rm.mu.Unlock()

	json.NewEncoder(w).Encode(info)
}

// StartCleanup removes empty rooms every interval until ctx is done.
func (h *Hub) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupEmptyRooms()
			}
		}
	}()
	log.Info().Msgf("🔄 [Realtime] Room cleanup every %s", interval)
}

func (h *Hub) cleanupEmptyRooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cleaned := 0
	for id, rm := range h.rooms {
		rm.mu.Lock()
		empty := len(rm.clients) == 0
		rm.mu.Unlock()
		if empty {
			delete(h.rooms, id)
			cleaned++
		}
	}
	if cleaned > 0 {
		log.Debug().Msgf("🧹 [Realtime] Cleaned up %d empty rooms (active: %d)", cleaned, len(h.rooms))
	}
	return cleaned
}

// insert replaces any earlier connection of the same user and returns the client count.
func (rm *room) insert(c *client) int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if old, ok := rm.clients[c.userID]; ok {
		close(old.send)
		metrics.WebsocketClients.Dec()
	}
	rm.clients[c.userID] = c
	rm.lastActivity = time.Now()
	return len(rm.clients)
}

// remove drops c unless a newer connection for the same user replaced it.
func (rm *room) remove(c *client) {
	rm.mu.Lock()
	current, ok := rm.clients[c.userID]
	if !ok || current != c {
		rm.mu.Unlock()
		return
	}
	close(c.send)
	delete(rm.clients, c.userID)
	rm.lastActivity = time.Now()
	remaining := len(rm.clients)
	rm.mu.Unlock()

	metrics.WebsocketClients.Dec()
	log.Info().Msgf("👋 [Realtime] %s left %s (remaining: %d)", c.userID, rm.id, remaining)
	rm.broadcast(c.userID, Event{Type: EventUserLeft, ProjectID: rm.id, UserID: c.userID, Timestamp: time.Now()})
}

// broadcast sends ev to every client except skipUser. Clients with a full buffer are dropped.
func (rm *room) broadcast(skipUser string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("❌ [Realtime] Failed to marshal event")
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	for userID, c := range rm.clients {
		if userID == skipUser {
			continue
		}
		select {
		case c.send <- data:
		default:
			close(c.send)
			delete(rm.clients, userID)
			metrics.WebsocketClients.Dec()
			log.Warn().Msgf("⚠️ [Realtime] Dropped slow client %s from %s", userID, rm.id)
		}
	}
}

// readPump relays client frames to the other subscribers of the room.
func (c *client) readPump(rm *room) {
	defer func() {
		rm.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageLen)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var ev Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("⚠️ [Realtime] WebSocket error")
			}
			return
		}

		switch ev.Type {
		case EventProjectUpdated, EventProjectDeleted, EventUserJoined, EventUserLeft:
			// server-only events
			continue
		}
		ev.ProjectID = c.projectID
		ev.UserID = c.userID
		ev.Timestamp = time.Now()
		rm.broadcast(c.userID, ev)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Warn().Err(err).Msg("⚠️ [Realtime] WebSocket write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
