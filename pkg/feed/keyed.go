package feed

import "sync"

// keyedSubscribers maps a topic key (account, book) to its subscriber set.
// The outer lock guards only map structure; per-set locking is the set's own.
// A key is present iff its set became non-empty at some point and has not
// been cleaned up since; empty sets are removed on unsubscribe.
type keyedSubscribers[K comparable] struct {
	mu   sync.Mutex
	sets map[K]*subscriberSet
}

func newKeyedSubscribers[K comparable]() *keyedSubscribers[K] {
	return &keyedSubscribers[K]{sets: make(map[K]*subscriberSet)}
}

// Sub subscribes a session under key, creating the set on demand. It returns
// false when the session was already subscribed to that key.
func (m *keyedSubscribers[K]) Sub(key K, sess Session) bool {
	m.mu.Lock()
	set, ok := m.sets[key]
	if !ok {
		set = newSubscriberSet()
		m.sets[key] = set
	}
	m.mu.Unlock()
	return set.Add(sess)
}

// Unsub removes a session from key's set, deleting the set once empty.
func (m *keyedSubscribers[K]) Unsub(key K, sess Session) bool {
	m.mu.Lock()
	set, ok := m.sets[key]
	m.mu.Unlock()
	if !ok {
		return false
	}

	removed := set.Remove(sess)

	if set.Empty() {
		m.mu.Lock()
		if cur, ok := m.sets[key]; ok && cur == set && cur.Empty() {
			delete(m.sets, key)
		}
		m.mu.Unlock()
	}
	return removed
}

// ForEachLive iterates the live sessions subscribed under key, if any.
func (m *keyedSubscribers[K]) ForEachLive(key K, fn func(Session)) {
	m.mu.Lock()
	set, ok := m.sets[key]
	m.mu.Unlock()
	if !ok {
		return
	}
	set.ForEachLive(fn)
}

// LiveCount sums the live counts across all keys.
func (m *keyedSubscribers[K]) LiveCount() int {
	m.mu.Lock()
	sets := make([]*subscriberSet, 0, len(m.sets))
	for _, set := range m.sets {
		sets = append(sets, set)
	}
	m.mu.Unlock()

	n := 0
	for _, set := range sets {
		n += set.LiveCount()
	}
	return n
}

// Clear drops every key and subscription.
func (m *keyedSubscribers[K]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = make(map[K]*subscriberSet)
}
