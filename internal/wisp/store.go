package wisp

import "sync"

// notificationStore is the generation-tagged id -> notification map shared
// by every engine operation. All mutation happens under mu; callers never
// run user code while holding it.
type notificationStore struct {
	mu    sync.RWMutex
	byID  map[uint32]storedNotification
}

func newNotificationStore() *notificationStore {
	return &notificationStore{byID: make(map[uint32]storedNotification)}
}

// insert stores notification under id at generation 0, as happens on a
// fresh Notify (no live replaces_id).
func (s *notificationStore) insert(id uint32, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = storedNotification{notification: n, generation: 0}
}

// replaceInPlace overwrites the notification at id, bumping its generation,
// and returns the previous notification plus the new generation. ok is
// false if id was not present.
func (s *notificationStore) replaceInPlace(id uint32, n Notification) (previous Notification, generation uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.byID[id]
	if !exists {
		return Notification{}, 0, false
	}

	previous = entry.notification
	entry.notification = n
	if entry.generation != ^uint64(0) {
		entry.generation++
	}
	s.byID[id] = entry
	return previous, entry.generation, true
}

// remove deletes id unconditionally and reports whether it was present.
func (s *notificationStore) remove(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.byID[id]
	delete(s.byID, id)
	return exists
}

// getGeneration reports the current generation for id. The expiration
// timer does not call it; it checks and removes in one step through
// removeIfGeneration.
func (s *notificationStore) getGeneration(id uint32) (generation uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.byID[id]
	return entry.generation, exists
}

// removeIfGeneration deletes id only if its current generation still
// matches generation, preventing a stale timer from expiring a
// since-replaced notification. Reports whether it removed the entry.
func (s *notificationStore) removeIfGeneration(id uint32, generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, exists := s.byID[id]
	if !exists || entry.generation != generation {
		return false
	}
	delete(s.byID, id)
	return true
}

// get returns a copy of the stored notification, if present.
func (s *notificationStore) get(id uint32) (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.byID[id]
	return entry.notification, exists
}

// removeIfActionPresent removes id only if it has an action with the given
// key, leaving the entry untouched (same generation) when the key is absent.
// Returns the removed notification and true on success.
func (s *notificationStore) removeIfActionPresent(id uint32, actionKey string) (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.byID[id]
	if !exists {
		return Notification{}, false
	}

	hasAction := false
	for _, a := range entry.notification.Actions {
		if a.Key == actionKey {
			hasAction = true
			break
		}
	}
	if !hasAction {
		return Notification{}, false
	}

	delete(s.byID, id)
	return entry.notification, true
}

// snapshot returns a point-in-time copy of every live id/notification pair.
func (s *notificationStore) snapshot() map[uint32]Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uint32]Notification, len(s.byID))
	for id, entry := range s.byID {
		out[id] = entry.notification
	}
	return out
}
