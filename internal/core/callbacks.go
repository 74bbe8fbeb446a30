package core

import "sync"

// Callback slots hold at most one handler each, behind their own lock.
// Registering swaps the handler; firing copies it out and invokes it
// unlocked, so a handler can re-register itself or any other slot without
// deadlocking. No slot replays events fired before registration.

type eventSlot struct {
	mu sync.Mutex
	fn func()
}

func (s *eventSlot) set(fn func()) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

func (s *eventSlot) fire() {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type sdpSlot struct {
	mu sync.Mutex
	fn func(kind, sdp string)
}

func (s *sdpSlot) set(fn func(kind, sdp string)) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

func (s *sdpSlot) fire(kind, sdp string) {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn(kind, sdp)
	}
}

type candidateSlot struct {
	mu sync.Mutex
	fn func(c Candidate)
}

func (s *candidateSlot) set(fn func(c Candidate)) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

func (s *candidateSlot) fire(c Candidate) {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn(c)
	}
}

type failureSlot struct {
	mu sync.Mutex
	fn func(err error)
}

func (s *failureSlot) set(fn func(err error)) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

// fire reports whether a handler consumed the error.
func (s *failureSlot) fire(err error) bool {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(err)
	return true
}

type channelSlot struct {
	mu sync.Mutex
	fn func(ch *Channel)
}

func (s *channelSlot) set(fn func(ch *Channel)) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

func (s *channelSlot) fire(ch *Channel) {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn(ch)
	}
}
