package client

import (
	"sync"

	"github.com/septivank/earthquake-catalog/internal/earthquake"
)

// Observer is called with a private copy of a page after it changes.
// Observers must not call back into the Synchronizer's write methods.
type Observer func(signature string, result earthquake.PagedResult)

// Synchronizer holds the last known page per query signature and patches it
// after successful mutations so the view reflects a write without a round
// trip. Patches never fail: anything that cannot be reconciled is dropped
// and a fresh query restores ground truth.
//
// A new record is prepended regardless of the active sort, so the page can
// disagree with server order until the next query.
type Synchronizer struct {
	// writeMu serializes patch-then-notify so observers see changes in order.
	writeMu sync.Mutex

	mu        sync.RWMutex
	entries   map[string]earthquake.PagedResult
	active    string
	observers map[int]Observer
	nextID    int
}

// NewSynchronizer creates an empty synchronizer.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{
		entries:   map[string]earthquake.PagedResult{},
		observers: map[int]Observer{},
	}
}

// Activate marks signature as the page currently on screen.
func (s *Synchronizer) Activate(signature string) {
	s.mu.Lock()
	s.active = signature
	s.mu.Unlock()
}

// Active returns the signature currently on screen.
func (s *Synchronizer) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Store records a fresh query result, replacing any earlier one for the
// same signature.
func (s *Synchronizer) Store(signature string, result earthquake.PagedResult) {
	s.write(signature, func() (earthquake.PagedResult, bool) {
		s.entries[signature] = result.Clone()
		return s.entries[signature], true
	})
}

// Forget drops the page held for signature.
func (s *Synchronizer) Forget(signature string) {
	s.mu.Lock()
	delete(s.entries, signature)
	s.mu.Unlock()
}

// Snapshot returns a copy of the page held for signature.
func (s *Synchronizer) Snapshot(signature string) (earthquake.PagedResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.entries[signature]
	if !ok {
		return earthquake.PagedResult{}, false
	}
	return result.Clone(), true
}

// ApplyCreate prepends rec and increments the count. It reports whether the
// page was patched.
func (s *Synchronizer) ApplyCreate(signature string, rec earthquake.Record) bool {
	return s.patch(signature, func(p *earthquake.PagedResult) bool {
		data := make([]earthquake.Record, 0, len(p.Data)+1)
		data = append(data, rec)
		p.Data = append(data, p.Data...)
		p.Count++
		return true
	})
}

// ApplyUpdate replaces the record with rec.ID in place. It returns false
// when the record is not in the held page; the caller should refetch to see
// the record in its new position.
func (s *Synchronizer) ApplyUpdate(signature string, rec earthquake.Record) bool {
	return s.patch(signature, func(p *earthquake.PagedResult) bool {
		for i := range p.Data {
			if p.Data[i].ID == rec.ID {
				p.Data[i] = rec
				return true
			}
		}
		return false
	})
}

// ApplyDelete removes the record with id and decrements the count.
func (s *Synchronizer) ApplyDelete(signature, id string) bool {
	return s.patch(signature, func(p *earthquake.PagedResult) bool {
		data := p.Data[:0:0]
		for _, r := range p.Data {
			if r.ID != id {
				data = append(data, r)
			}
		}
		p.Data = data
		if p.Count > 0 {
			p.Count--
		}
		return true
	})
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Synchronizer) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// patch applies fn to the page held for signature, but only while
// signature is still active. A page issued under an older filter, sort or
// page is never touched.
func (s *Synchronizer) patch(signature string, fn func(*earthquake.PagedResult) bool) bool {
	return s.write(signature, func() (earthquake.PagedResult, bool) {
		if signature != s.active {
			return earthquake.PagedResult{}, false
		}
		current, ok := s.entries[signature]
		if !ok {
			return earthquake.PagedResult{}, false
		}
		next := current.Clone()
		if !fn(&next) {
			return earthquake.PagedResult{}, false
		}
		s.entries[signature] = next
		return next, true
	})
}

func (s *Synchronizer) write(signature string, apply func() (earthquake.PagedResult, bool)) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	result, changed := apply()
	var observers []Observer
	if changed {
		observers = make([]Observer, 0, len(s.observers))
		for _, o := range s.observers {
			observers = append(observers, o)
		}
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(signature, result.Clone())
	}
	return changed
}
