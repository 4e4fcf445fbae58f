package websocket

import (
	"log"
	"net/http"
	"sync"
	"time"

	"debatebot/models"
	"debatebot/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The service serves a public demo; origins are not restricted.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const spectatorWriteWait = 10 * time.Second

// spectator is one connected viewer. Delivery is pull-based: the writer
// goroutine copies the session history from the spectator's own cursor, so
// every append is delivered exactly once and in order no matter how connect
// and broadcast interleave.
type spectator struct {
	conn *websocket.Conn
	sess *store.Session
	wake chan struct{}
	next int
}

// writeLoop delivers history entries past the cursor each time the spectator
// is woken. Writes carry a deadline; a failed write drops the spectator.
func (sp *spectator) writeLoop(hub *Hub, sessionID string) {
	defer sp.conn.Close()
	for range sp.wake {
		history := sp.sess.Snapshot()
		for sp.next < len(history) {
			sp.conn.SetWriteDeadline(time.Now().Add(spectatorWriteWait))
			if err := sp.conn.WriteJSON(history[sp.next]); err != nil {
				log.Printf("Spectator write failed, dropping connection: %v", err)
				hub.remove(sessionID, sp)
				return
			}
			sp.next++
		}
	}
}

// Hub wakes the spectators of a session when its history grows.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*spectator]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*spectator]bool)}
}

// register subscribes a connection to a session. The wakeup is primed so the
// writer replays the existing history immediately; appends that race with
// registration are covered either by that replay or by their own broadcast.
func (h *Hub) register(sessionID string, sess *store.Session, conn *websocket.Conn) *spectator {
	sp := &spectator{
		conn: conn,
		sess: sess,
		wake: make(chan struct{}, 1),
	}
	sp.wake <- struct{}{}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[*spectator]bool)
	}
	h.rooms[sessionID][sp] = true
	return sp
}

func (h *Hub) remove(sessionID string, sp *spectator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(sessionID, sp)
}

// dropLocked unsubscribes a spectator and closes its wake channel exactly
// once. Callers must hold h.mu.
func (h *Hub) dropLocked(sessionID string, sp *spectator) {
	if !h.rooms[sessionID][sp] {
		return
	}
	delete(h.rooms[sessionID], sp)
	close(sp.wake)
	if len(h.rooms[sessionID]) == 0 {
		delete(h.rooms, sessionID)
	}
}

// Broadcast wakes every spectator of the session after an append. It never
// blocks: a wakeup already pending covers the new entry, and delivery happens
// on each spectator's own writer goroutine, so a stalled connection cannot
// stall the debate. The message itself is pulled from the session history by
// the writers; the argument only matches the service's notify callback shape.
func (h *Hub) Broadcast(sessionID string, _ models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sp := range h.rooms[sessionID] {
		select {
		case sp.wake <- struct{}{}:
		default:
		}
	}
}

// SpectateHandler upgrades the connection and streams the session's messages:
// the existing history first, then each appended message as it happens.
func SpectateHandler(hub *Hub, st store.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		sess, ok := st.Get(sessionID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid session_id."})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		sp := hub.register(sessionID, sess, conn)
		go sp.writeLoop(hub, sessionID)

		// Reader loop only detects disconnects; spectators never send.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.remove(sessionID, sp)
					return
				}
			}
		}()
	}
}
