package services

import (
	"errors"
	"strings"
	"time"

	"debatebot/models"
	"debatebot/store"
)

// Service-boundary error kinds. The HTTP layer maps these to status codes.
var (
	ErrInvalidTopicOrSide = errors.New("invalid topic or bot_side")
	ErrSessionNotFound    = errors.New("invalid session_id")
	ErrWordCount          = errors.New("human_message must be between 120 and 180 words")
	ErrNotUsersTurn       = errors.New("it is not the user's turn")
)

const (
	minTurnWords = 120
	maxTurnWords = 180
)

// switchTriggers are matched case-insensitively anywhere in the message.
var switchTriggers = []string{"[switch]", "switch sides", "switch your side"}

// DebateService orchestrates session state, prompt construction, and
// generation for the start and turn operations.
type DebateService struct {
	Store     store.SessionStore
	Generator Generator

	// Notify, when set, receives each appended message for spectator fanout.
	Notify func(sessionID string, msg models.Message)
	// Archive, when set, receives a transcript snapshot after each operation.
	// It runs on its own goroutine and never affects the HTTP result.
	Archive func(t models.DebateTranscript)
}

func NewDebateService(st store.SessionStore, gen Generator) *DebateService {
	return &DebateService{Store: st, Generator: gen}
}

// StartDebate validates the topic and side, creates a session, and appends
// the bot's opening argument. A generation failure still produces a valid
// bot turn carrying the fallback message; the session is not rolled back.
func (ds *DebateService) StartDebate(topic, botSide string) (string, string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" || !models.ValidSide(botSide) {
		return "", "", ErrInvalidTopicOrSide
	}

	sess := ds.Store.Create(topic, botSide)

	ok, botMessage := ds.Generator.Generate(RenderOpeningPrompt(topic, botSide))
	if !ok || botMessage == "" {
		botMessage = FallbackMessage
	}

	opening := models.Message{Role: models.RoleBot, Text: botMessage}
	sess.Lock()
	sess.History = append(sess.History, opening)
	sess.Unlock()

	ds.publish(sess, opening)
	return sess.ID, botMessage, nil
}

// TakeTurn appends the human message and the generated bot reply to the
// session. The session lock is held for the whole turn, so concurrent turns
// on one session serialize instead of racing.
func (ds *DebateService) TakeTurn(sessionID, humanMessage string) (string, error) {
	sess, found := ds.Store.Get(sessionID)
	if !found {
		return "", ErrSessionNotFound
	}

	humanMessage = strings.TrimSpace(humanMessage)
	if words := len(strings.Fields(humanMessage)); words < minTurnWords || words > maxTurnWords {
		return "", ErrWordCount
	}

	sess.Lock()
	if len(sess.History) == 0 || sess.History[len(sess.History)-1].Role != models.RoleBot {
		sess.Unlock()
		return "", ErrNotUsersTurn
	}

	switchRequested := detectSwitchRequest(humanMessage)
	if switchRequested {
		sess.BotSide = models.OppositeSide(sess.BotSide)
	}

	userMsg := models.Message{Role: models.RoleUser, Text: humanMessage}
	sess.History = append(sess.History, userMsg)

	prompt := RenderTurnPrompt(sess.Topic, sess.BotSide, RenderHistory(sess.History), humanMessage, switchRequested)
	ok, botMessage := ds.Generator.Generate(prompt)
	if !ok || botMessage == "" {
		botMessage = FallbackMessage
	}

	botMsg := models.Message{Role: models.RoleBot, Text: botMessage}
	sess.History = append(sess.History, botMsg)
	sess.Unlock()

	ds.publish(sess, userMsg, botMsg)
	return botMessage, nil
}

// detectSwitchRequest reports whether the message contains any switch trigger.
func detectSwitchRequest(message string) bool {
	lowered := strings.ToLower(message)
	for _, trigger := range switchTriggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}

// publish fans appended messages out to spectators and hands a transcript
// snapshot to the archive sink. Both run on their own goroutines so neither
// sink can delay the HTTP response. Must be called without holding the
// session lock.
func (ds *DebateService) publish(sess *store.Session, appended ...models.Message) {
	if ds.Notify != nil {
		go func() {
			for _, msg := range appended {
				ds.Notify(sess.ID, msg)
			}
		}()
	}
	if ds.Archive != nil {
		sess.Lock()
		snapshot := models.DebateTranscript{
			SessionID: sess.ID,
			Topic:     sess.Topic,
			BotSide:   sess.BotSide,
			History:   append([]models.Message(nil), sess.History...),
			UpdatedAt: time.Now().Unix(),
		}
		sess.Unlock()
		go ds.Archive(snapshot)
	}
}
