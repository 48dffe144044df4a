package app

import (
	"context"
	"sync"
	"time"

	"gymsync/internal/domain"
)

type loadState int

const (
	stateIdle loadState = iota
	stateLoading
	stateReady
)

// ProfileStore owns the local profile of the active user. It is the only
// place the profile is mutated; readers get deep copies and may subscribe to
// changes.
type ProfileStore struct {
	mu      sync.RWMutex
	userID  string
	gen     uint64
	state   loadState
	loaded  *pendingLoad
	profile domain.Profile

	nextSub int
	subs    map[int]func(domain.Profile)

	now func() time.Time
}

// NewProfileStore returns an empty store with no active user.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		subs: make(map[int]func(domain.Profile)),
		now:  time.Now,
	}
}

// Profile returns a copy of the current local profile.
func (s *ProfileStore) Profile() domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// UserID returns the active identifier, or "" when nobody is signed in.
func (s *ProfileStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Ready reports whether the active user finished bootstrapping.
func (s *ProfileStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == stateReady
}

// Subscribe registers fn to receive a copy of the profile after every
// mutation. The returned func removes the subscription.
func (s *ProfileStore) Subscribe(fn func(domain.Profile)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// pendingLoad is one in-flight bootstrap. err is written before done closes.
type pendingLoad struct {
	done chan struct{}
	err  error
}

// Reset clears the profile and the active identifier if userID is the active
// identifier. Any bootstrap still in flight for it becomes stale.
func (s *ProfileStore) Reset(userID string) bool {
	s.mu.Lock()
	if userID == "" || s.userID != userID {
		s.mu.Unlock()
		return false
	}
	s.clearLocked()
	out := s.profile.Clone()
	subs := s.subscribers()
	s.mu.Unlock()
	notify(subs, out)
	return true
}

// caller holds s.mu.
func (s *ProfileStore) clearLocked() {
	s.gen++
	s.userID = ""
	s.state = stateIdle
	s.closeLoaded(nil)
	s.profile = domain.Profile{}
}

// begin marks userID as the active identifier. It returns start=false when
// userID is already loaded or loading; the caller then waits on load, which
// is nil when nothing is pending.
//
// Switching from one signed-in identifier to another drops the previous
// profile before the load starts. A retry for the same identifier, or the
// first sign-in over signed-out local state, keeps the local profile.
func (s *ProfileStore) begin(userID string) (gen uint64, start bool, load *pendingLoad) {
	s.mu.Lock()
	if s.userID == userID && s.state != stateIdle {
		defer s.mu.Unlock()
		if s.state == stateLoading {
			return s.gen, false, s.loaded
		}
		return s.gen, false, nil
	}
	switched := s.userID != "" && s.userID != userID
	s.closeLoaded(nil)
	s.gen++
	s.userID = userID
	s.state = stateLoading
	s.loaded = &pendingLoad{done: make(chan struct{})}
	gen, load = s.gen, s.loaded
	if !switched {
		s.mu.Unlock()
		return gen, true, load
	}
	s.profile = domain.Profile{}
	out := s.profile.Clone()
	subs := s.subscribers()
	s.mu.Unlock()
	notify(subs, out)
	return gen, true, load
}

// adopt replaces the whole profile with remote. Routine and schedule pass
// through the normalizer and the defaults provider before assignment.
func (s *ProfileStore) adopt(gen uint64, remote domain.Profile) bool {
	next := remote.Clone()
	next.Routine = domain.NormalizeRoutine(remote.Routine)
	next.Schedule = domain.EnsureScheduleDays(remote.Schedule)
	return s.settle(gen, func(p *domain.Profile) { *p = next })
}

// seedName sets only the display name, leaving every other field as is.
func (s *ProfileStore) seedName(gen uint64, name string) bool {
	return s.settle(gen, func(p *domain.Profile) { p.PersonalData.Name = name })
}

// fail ends a load without mutating the profile and hands err to anyone
// waiting on it. A later begin for the same identifier retries.
func (s *ProfileStore) fail(gen uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.state = stateIdle
	s.closeLoaded(err)
	return true
}

func (s *ProfileStore) settle(gen uint64, apply func(p *domain.Profile)) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	next := s.profile.Clone()
	apply(&next)
	s.profile = next
	s.state = stateReady
	s.closeLoaded(nil)
	out := next.Clone()
	subs := s.subscribers()
	s.mu.Unlock()
	notify(subs, out)
	return true
}

// update applies an edit for userID, which must be the active, bootstrapped
// user. fn receives a copy; the result is assigned in one step so readers
// never observe a partial edit. It returns the previous and the new profile.
func (s *ProfileStore) update(userID string, fn func(p *domain.Profile) error) (prev, next domain.Profile, err error) {
	s.mu.Lock()
	if !s.activeLocked(userID) {
		s.mu.Unlock()
		return prev, next, ErrNoActiveUser
	}
	prev = s.profile.Clone()
	next = s.profile.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return prev, next, err
	}
	next.UserID = userID
	next.UpdatedAt = s.now().UTC()
	s.profile = next
	out := next.Clone()
	subs := s.subscribers()
	s.mu.Unlock()
	notify(subs, out)
	return prev, out, nil
}

// restore puts prev back if the profile is still the one written as
// expected for userID. Used to undo a local edit whose upload failed.
func (s *ProfileStore) restore(userID string, expected, prev domain.Profile) bool {
	s.mu.Lock()
	if s.userID != userID || !s.profile.UpdatedAt.Equal(expected.UpdatedAt) {
		s.mu.Unlock()
		return false
	}
	s.profile = prev.Clone()
	out := prev.Clone()
	subs := s.subscribers()
	s.mu.Unlock()
	notify(subs, out)
	return true
}

// current returns a copy of userID's profile if userID is the active,
// bootstrapped user.
func (s *ProfileStore) current(userID string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.activeLocked(userID) {
		return domain.Profile{}, ErrNoActiveUser
	}
	return s.profile.Clone(), nil
}

// caller holds s.mu.
func (s *ProfileStore) activeLocked(userID string) bool {
	return userID != "" && s.userID == userID && s.state == stateReady
}

// waitLoaded blocks until load settles or ctx ends and returns the error the
// load failed with, if any.
func waitLoaded(ctx context.Context, load *pendingLoad) error {
	if load == nil {
		return nil
	}
	select {
	case <-load.done:
		return load.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// caller holds s.mu.
func (s *ProfileStore) closeLoaded(err error) {
	if s.loaded != nil {
		s.loaded.err = err
		close(s.loaded.done)
		s.loaded = nil
	}
}

// caller holds s.mu.
func (s *ProfileStore) subscribers() []func(domain.Profile) {
	out := make([]func(domain.Profile), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(domain.Profile), p domain.Profile) {
	for _, fn := range subs {
		fn(p.Clone())
	}
}
