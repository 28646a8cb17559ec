package feed

import "sync"

// subscriberSet is the set of sessions subscribed to one topic. Closed
// sessions may linger until the next mutation or iteration touches them;
// they are never delivered to.
type subscriberSet struct {
	mu   sync.RWMutex
	subs map[uint64]Session
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{subs: make(map[uint64]Session)}
}

// Add registers a session. It returns false when the session was already
// subscribed.
func (s *subscriberSet) Add(sess Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sess.ID()]; ok {
		return false
	}
	s.subs[sess.ID()] = sess
	return true
}

// Remove unregisters a session. It returns false when the session was not
// subscribed.
func (s *subscriberSet) Remove(sess Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sess.ID()]; !ok {
		return false
	}
	delete(s.subs, sess.ID())
	return true
}

// ForEachLive invokes fn for every live session. The lock is not held while
// fn runs. Closed sessions encountered along the way are pruned.
func (s *subscriberSet) ForEachLive(fn func(Session)) {
	s.mu.RLock()
	snapshot := make([]Session, 0, len(s.subs))
	for _, sess := range s.subs {
		snapshot = append(snapshot, sess)
	}
	s.mu.RUnlock()

	var dead []uint64
	for _, sess := range snapshot {
		if sess.Closed() {
			dead = append(dead, sess.ID())
			continue
		}
		fn(sess)
	}

	if len(dead) > 0 {
		s.mu.Lock()
		for _, id := range dead {
			if sess, ok := s.subs[id]; ok && sess.Closed() {
				delete(s.subs, id)
			}
		}
		s.mu.Unlock()
	}
}

// LiveCount returns the number of live sessions in the set.
func (s *subscriberSet) LiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sess := range s.subs {
		if !sess.Closed() {
			n++
		}
	}
	return n
}

// Empty reports whether the set holds no live sessions.
func (s *subscriberSet) Empty() bool {
	return s.LiveCount() == 0
}

// Clear drops every subscription.
func (s *subscriberSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = make(map[uint64]Session)
}
