// Package session holds per-session state: the chat transcript and document
// counters. State lives for the process lifetime and is never persisted.
package session

// Role identifies who produced a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message in the transcript.
type ChatTurn struct {
	Role    Role
	Content string
}

// Stats counts what the last successful ingest produced.
type Stats struct {
	DocumentsProcessed int
	Chunks             int
}

// Session is the explicit session object handlers share. It is created at
// startup and torn down with the process.
type Session struct {
	History []ChatTurn
	Stats   Stats
}

// New creates an empty session.
func New() *Session {
	return &Session{}
}

// Append adds a turn to the transcript.
func (s *Session) Append(role Role, content string) {
	s.History = append(s.History, ChatTurn{Role: role, Content: content})
}

// ClearHistory drops the transcript. Document stats and the store survive.
func (s *Session) ClearHistory() {
	s.History = nil
}

// SetStats records the counters from a successful ingest.
func (s *Session) SetStats(documents, chunks int) {
	s.Stats = Stats{DocumentsProcessed: documents, Chunks: chunks}
}
