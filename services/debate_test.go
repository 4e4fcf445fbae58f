package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"debatebot/models"
	"debatebot/store"
)

type stubGenerator struct {
	ok      bool
	text    string
	prompts []string
}

func (s *stubGenerator) Generate(prompt string) (bool, string) {
	s.prompts = append(s.prompts, prompt)
	return s.ok, s.text
}

func newTestService(gen *stubGenerator) (*DebateService, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewDebateService(st, gen), st
}

// wordsOf builds a message with exactly n words.
func wordsOf(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func TestStartDebateCreatesSessionWithOpening(t *testing.T) {
	gen := &stubGenerator{ok: true, text: "I open for the motion."}
	svc, st := newTestService(gen)

	sessionID, botMessage, err := svc.StartDebate("Pineapple on pizza", models.SidePro)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected a session id")
	}
	if botMessage != "I open for the motion." {
		t.Errorf("unexpected opening message %q", botMessage)
	}

	sess, ok := st.Get(sessionID)
	if !ok {
		t.Fatal("session not stored")
	}
	history := sess.Snapshot()
	if len(history) != 1 || history[0].Role != models.RoleBot {
		t.Errorf("expected a single bot-authored opening, got %+v", history)
	}
	if !strings.Contains(gen.prompts[0], "Topic: Pineapple on pizza") {
		t.Errorf("opening prompt missing topic: %q", gen.prompts[0])
	}
}

func TestStartDebateValidation(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{ok: true, text: "x"})

	if _, _, err := svc.StartDebate("   ", models.SidePro); !errors.Is(err, ErrInvalidTopicOrSide) {
		t.Errorf("empty topic: got %v, want ErrInvalidTopicOrSide", err)
	}
	if _, _, err := svc.StartDebate("Topic", "MAYBE"); !errors.Is(err, ErrInvalidTopicOrSide) {
		t.Errorf("bad side: got %v, want ErrInvalidTopicOrSide", err)
	}
}

func TestStartDebateFallbackStillOpensSession(t *testing.T) {
	svc, st := newTestService(&stubGenerator{ok: false, text: FallbackMessage})

	sessionID, botMessage, err := svc.StartDebate("Topic", models.SideCon)
	if err != nil {
		t.Fatalf("generation failure must not fail the operation: %v", err)
	}
	if botMessage != FallbackMessage {
		t.Errorf("expected fallback opening, got %q", botMessage)
	}

	sess, _ := st.Get(sessionID)
	if history := sess.Snapshot(); len(history) != 1 || history[0].Text != FallbackMessage {
		t.Errorf("fallback must be appended as a bot turn, got %+v", history)
	}
}

func TestTakeTurnUnknownSession(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{ok: true, text: "x"})

	if _, err := svc.TakeTurn("missing", wordsOf(150)); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}

func TestTakeTurnWordCountBoundaries(t *testing.T) {
	gen := &stubGenerator{ok: true, text: "counter argument"}
	svc, st := newTestService(gen)
	sessionID, _, _ := svc.StartDebate("Topic", models.SidePro)

	for _, n := range []int{119, 181} {
		if _, err := svc.TakeTurn(sessionID, wordsOf(n)); !errors.Is(err, ErrWordCount) {
			t.Errorf("%d words: got %v, want ErrWordCount", n, err)
		}
	}
	sess, _ := st.Get(sessionID)
	if got := len(sess.Snapshot()); got != 1 {
		t.Fatalf("rejected turns must not mutate history, got %d entries", got)
	}

	for _, n := range []int{120, 180} {
		if _, err := svc.TakeTurn(sessionID, wordsOf(n)); err != nil {
			t.Errorf("%d words: unexpected error %v", n, err)
		}
	}
}

func TestTakeTurnRejectsOutOfOrder(t *testing.T) {
	gen := &stubGenerator{ok: true, text: "reply"}
	svc, st := newTestService(gen)
	sessionID, _, _ := svc.StartDebate("Topic", models.SidePro)

	// Force the waiting-for-bot state: last entry authored by the user.
	sess, _ := st.Get(sessionID)
	sess.Lock()
	sess.History = append(sess.History, models.Message{Role: models.RoleUser, Text: "pending"})
	sess.Unlock()
	before := len(sess.Snapshot())

	if _, err := svc.TakeTurn(sessionID, wordsOf(150)); !errors.Is(err, ErrNotUsersTurn) {
		t.Fatalf("got %v, want ErrNotUsersTurn", err)
	}
	if after := len(sess.Snapshot()); after != before {
		t.Errorf("turn-order rejection must not mutate history: %d -> %d", before, after)
	}
}

func TestTakeTurnAppendsAlternatingHistory(t *testing.T) {
	gen := &stubGenerator{ok: true, text: "bot reply"}
	svc, st := newTestService(gen)
	sessionID, _, _ := svc.StartDebate("Topic", models.SidePro)

	const turns = 3
	for i := 0; i < turns; i++ {
		if _, err := svc.TakeTurn(sessionID, wordsOf(150)); err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
	}

	sess, _ := st.Get(sessionID)
	history := sess.Snapshot()
	if len(history) != 2*turns+1 {
		t.Fatalf("expected %d history entries after %d turns, got %d", 2*turns+1, turns, len(history))
	}
	for i, msg := range history {
		want := models.RoleBot
		if i%2 == 1 {
			want = models.RoleUser
		}
		if msg.Role != want {
			t.Errorf("entry %d: got role %s, want %s", i, msg.Role, want)
		}
	}
	if sess.BotSide != models.SidePro {
		t.Errorf("side must not change without a switch request, got %s", sess.BotSide)
	}
}

func TestTakeTurnSwitchTriggers(t *testing.T) {
	triggers := []string{"[SWITCH]", "please Switch Sides now", "you should switch YOUR side here"}

	for _, trigger := range triggers {
		gen := &stubGenerator{ok: true, text: "switched reply"}
		svc, st := newTestService(gen)
		sessionID, _, _ := svc.StartDebate("Topic", models.SidePro)

		message := strings.TrimSpace(wordsOf(140) + " " + trigger)
		if _, err := svc.TakeTurn(sessionID, message); err != nil {
			t.Fatalf("trigger %q: %v", trigger, err)
		}

		sess, _ := st.Get(sessionID)
		if sess.BotSide != models.SideCon {
			t.Errorf("trigger %q: expected side CON after switch, got %s", trigger, sess.BotSide)
		}

		prompt := gen.prompts[len(gen.prompts)-1]
		if !strings.Contains(prompt, "DebateBot side: CON.") {
			t.Errorf("trigger %q: prompt must reflect the flipped side", trigger)
		}
		if !strings.HasSuffix(prompt, "SWITCH_REQUESTED=true") {
			t.Errorf("trigger %q: prompt must flag the switch request", trigger)
		}
	}
}

func TestTakeTurnSwitchTwiceRestoresSide(t *testing.T) {
	gen := &stubGenerator{ok: true, text: "reply"}
	svc, st := newTestService(gen)
	sessionID, _, _ := svc.StartDebate("Topic", models.SideCon)

	msg := wordsOf(149) + " [switch]"
	svc.TakeTurn(sessionID, msg)
	svc.TakeTurn(sessionID, msg)

	sess, _ := st.Get(sessionID)
	if sess.BotSide != models.SideCon {
		t.Errorf("two switches should restore the original side, got %s", sess.BotSide)
	}
}

func TestTakeTurnFallbackCountsAsBotTurn(t *testing.T) {
	gen := &stubGenerator{ok: false, text: FallbackMessage}
	svc, st := newTestService(gen)

	sessionID, _, _ := svc.StartDebate("Topic", models.SidePro)
	botMessage, err := svc.TakeTurn(sessionID, wordsOf(150))
	if err != nil {
		t.Fatalf("generation failure must not fail the turn: %v", err)
	}
	if botMessage != FallbackMessage {
		t.Errorf("expected fallback reply, got %q", botMessage)
	}

	sess, _ := st.Get(sessionID)
	history := sess.Snapshot()
	if last := history[len(history)-1]; last.Role != models.RoleBot || last.Text != FallbackMessage {
		t.Errorf("fallback must be recorded as the bot turn, got %+v", last)
	}
	// The next turn is allowed because the fallback ended on a bot entry.
	if _, err := svc.TakeTurn(sessionID, wordsOf(150)); err != nil {
		t.Errorf("expected debate to continue after a fallback turn: %v", err)
	}
}

func TestPublishNotifiesAppendedMessages(t *testing.T) {
	gen := &stubGenerator{ok: true, text: "reply"}
	svc, _ := newTestService(gen)

	ch := make(chan models.Message, 3)
	svc.Notify = func(sessionID string, msg models.Message) {
		ch <- msg
	}

	sessionID, _, _ := svc.StartDebate("Topic", models.SidePro)
	svc.TakeTurn(sessionID, wordsOf(150))

	var notified []models.Message
	for i := 0; i < 3; i++ {
		select {
		case msg := <-ch:
			notified = append(notified, msg)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected 3 notifications (opening, user, bot), got %d", len(notified))
		}
	}
	if notified[0].Role != models.RoleBot || notified[1].Role != models.RoleUser || notified[2].Role != models.RoleBot {
		t.Errorf("unexpected notification order: %+v", notified)
	}
}

func TestTakeTurnDoesNotWaitForNotifySink(t *testing.T) {
	gen := &stubGenerator{ok: true, text: "reply"}
	svc, _ := newTestService(gen)

	// A pathologically slow spectator sink must not hold up the turn.
	svc.Notify = func(sessionID string, msg models.Message) {
		time.Sleep(2 * time.Second)
	}

	sessionID, _, _ := svc.StartDebate("Topic", models.SidePro)

	start := time.Now()
	if _, err := svc.TakeTurn(sessionID, wordsOf(150)); err != nil {
		t.Fatalf("TakeTurn: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("turn waited %v on the notify sink", elapsed)
	}
}
