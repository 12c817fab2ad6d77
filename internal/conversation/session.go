package conversation

import (
	"sync"
	"time"
)

// Session is the handle of one conversation. Its mutex serializes user actions
// so each one runs to completion before the next is accepted.
type Session struct {
	mu         sync.Mutex
	id         int64
	state      State
	transcript []Message
	updatedAt  time.Time
}

// ID returns the chat the session belongs to.
func (s *Session) ID() int64 {
	return s.id
}

// State returns a copy of the current state machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.clone()
}

// Transcript returns a copy of all messages exchanged so far.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Message(nil), s.transcript...)
}

// UpdatedAt returns when the session last handled an event.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updatedAt
}

func (s *Session) append(msgs ...Message) {
	s.transcript = append(s.transcript, msgs...)
}

// Store manages the sessions of all chats.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns the session for the chat, creating a fresh one on first contact.
func (st *Store) Get(id int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		sess = &Session{id: id, state: NewState()}
		st.sessions[id] = sess
	}
	return sess
}

// acquire returns the chat's session locked. A handle pruned while the caller waited
// for its lock is dropped in favor of the stored one.
func (st *Store) acquire(id int64) *Session {
	for {
		sess := st.Get(id)
		sess.mu.Lock()
		if st.holds(id, sess) {
			return sess
		}
		sess.mu.Unlock()
	}
}

func (st *Store) holds(id int64, sess *Session) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.sessions[id] == sess
}

// Len returns how many sessions are held.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}

// Prune drops sessions idle since before cutoff and returns how many were removed.
// Sessions busy with an event are kept.
func (st *Store) Prune(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		idle := sess.updatedAt.Before(cutoff)
		sess.mu.Unlock()

		if idle {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
