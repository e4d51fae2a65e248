package memory

import (
	"sync"
	"time"

	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

type session struct {
	mode    model.Mode
	queue   []model.QueuedMessage
	pending []string
	touched time.Time
}

// SessionStore keeps interaction state per user in process memory.
// A session untouched for ttl reads as Idle with an empty queue; staged
// deletions are kept until consumed or cleared.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// get returns the live session, expiring it first if stale. Caller holds mu.
func (s *SessionStore) get(userID int64) *session {
	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	if s.ttl > 0 && s.now().Sub(sess.touched) > s.ttl {
		sess.mode = model.ModeIdle
		sess.queue = nil
	}
	return sess
}

func (s *SessionStore) getOrCreate(userID int64) *session {
	sess := s.get(userID)
	if sess == nil {
		sess = &session{}
		s.sessions[userID] = sess
	}
	sess.touched = s.now()
	return sess
}

// gc drops sessions that carry no state. Caller holds mu.
func (s *SessionStore) gc(userID int64, sess *session) {
	if sess.mode == model.ModeIdle && len(sess.queue) == 0 && len(sess.pending) == 0 {
		delete(s.sessions, userID)
	}
}

func (s *SessionStore) Mode(userID int64) model.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.get(userID); sess != nil {
		return sess.mode
	}
	return model.ModeIdle
}

// SetMode replaces any active mode. Leaving Broadcasting drops the queue.
func (s *SessionStore) SetMode(userID int64, m model.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreate(userID)
	if sess.mode == model.ModeBroadcasting && m != model.ModeBroadcasting {
		sess.queue = nil
	}
	sess.mode = m
	s.gc(userID, sess)
}

func (s *SessionStore) ClearMode(userID int64) { s.SetMode(userID, model.ModeIdle) }

func (s *SessionStore) Enqueue(userID int64, msg model.QueuedMessage) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreate(userID)
	sess.queue = append(sess.queue, msg)
	return len(sess.queue)
}

func (s *SessionStore) Queue(userID int64) []model.QueuedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	if sess == nil {
		return nil
	}
	out := make([]model.QueuedMessage, len(sess.queue))
	copy(out, sess.queue)
	return out
}

func (s *SessionStore) ClearQueue(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.get(userID); sess != nil {
		sess.queue = nil
		s.gc(userID, sess)
	}
}

func (s *SessionStore) StageDeletions(userID int64, fileIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreate(userID)
	sess.pending = append([]string(nil), fileIDs...)
	s.gc(userID, sess)
}

func (s *SessionStore) PendingDeletions(userID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	if sess == nil {
		return nil
	}
	return append([]string(nil), sess.pending...)
}

func (s *SessionStore) ClearDeletions(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.get(userID); sess != nil {
		sess.pending = nil
		s.gc(userID, sess)
	}
}
