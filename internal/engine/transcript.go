package engine

import (
	"sync"

	"github.com/cvety-kz/cvety-chat-service/internal/models"
)

// transcriptCap bounds the in-memory history kept per session. The upstream
// chat service only ever sees the trailing window, so older messages can go.
const transcriptCap = 100

// transcriptStore holds per-session conversation history. Each session also
// carries a mutex so turns within one session are processed strictly in
// order.
type transcriptStore struct {
	mu       sync.Mutex
	sessions map[string]*transcript
}

type transcript struct {
	mu       sync.Mutex
	messages []models.Message
}

func newTranscriptStore() *transcriptStore {
	return &transcriptStore{
		sessions: make(map[string]*transcript),
	}
}

func (s *transcriptStore) get(sessionID string) *transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.sessions[sessionID]
	if !ok {
		t = &transcript{}
		s.sessions[sessionID] = t
	}
	return t
}

func (t *transcript) append(msg models.Message) {
	t.messages = append(t.messages, msg)
	if len(t.messages) > transcriptCap {
		t.messages = t.messages[len(t.messages)-transcriptCap:]
	}
}

// lastN returns up to n trailing messages as history entries.
func (t *transcript) lastN(n int) []models.HistoryEntry {
	start := len(t.messages) - n
	if start < 0 {
		start = 0
	}

	out := make([]models.HistoryEntry, 0, len(t.messages)-start)
	for _, m := range t.messages[start:] {
		out = append(out, models.HistoryEntry{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}

func (t *transcript) history() []models.Message {
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}
