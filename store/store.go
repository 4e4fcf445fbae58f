package store

import (
	"sync"

	"debatebot/models"

	"github.com/google/uuid"
)

// Session holds the state of one ongoing debate. History is append-only and
// strictly alternates bot/user entries starting with the bot's opening.
// Callers mutate it while holding the embedded mutex.
type Session struct {
	sync.Mutex
	ID      string
	Topic   string
	BotSide string
	History []models.Message
}

// Snapshot returns a copy of the history at this moment.
func (s *Session) Snapshot() []models.Message {
	s.Lock()
	defer s.Unlock()
	return append([]models.Message(nil), s.History...)
}

// SessionStore maps session ids to debate state. Implementations must be safe
// for concurrent use.
type SessionStore interface {
	Create(topic, botSide string) *Session
	Get(id string) (*Session, bool)
}

// MemoryStore keeps sessions in process memory for their whole lifetime.
// Sessions are never evicted; this is a known limitation of the demo.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create registers a new session with an empty history.
func (ms *MemoryStore) Create(topic, botSide string) *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		Topic:   topic,
		BotSide: botSide,
	}

	ms.mu.Lock()
	ms.sessions[sess.ID] = sess
	ms.mu.Unlock()

	return sess
}

// Get looks up a session by id.
func (ms *MemoryStore) Get(id string) (*Session, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	sess, ok := ms.sessions[id]
	return sess, ok
}
