package app

import (
	"sync"

	"github.com/peerline/peerline/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropEnvelope
	KickPeer
)

// Policy decides what the relay does with a peer whose outbound queue
// overflowed.
type Policy interface {
	OnBackPressure(peer domain.PeerID) BackpressureAction
}

// SimplePolicy kicks on the first overflow.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.PeerID) BackpressureAction {
	return KickPeer
}

// StrictPolicy tolerates a number of dropped envelopes per peer before
// kicking.
type StrictPolicy struct {
	limit int

	mu      sync.Mutex
	strikes map[domain.PeerID]int
}

func NewStrictPolicy(limit int) *StrictPolicy {
	return &StrictPolicy{
		limit:   limit,
		strikes: make(map[domain.PeerID]int),
	}
}

func (p *StrictPolicy) OnBackPressure(peer domain.PeerID) BackpressureAction {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.strikes[peer]++
	if p.strikes[peer] >= p.limit {
		delete(p.strikes, peer)
		return KickPeer
	}
	return DropEnvelope
}
