// Package domain contains the signaling-plane identities, just meta-data
// without transport or lifecycle logic.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxPeerIDLen = 64

var (
	ErrPeerIDEmpty   = errors.New("peer id empty")
	ErrPeerIDTooLong = errors.New("peer id too long")
)

// PeerID names one signaling client. Clients that reconnect keep their id
// via the client token cookie.
type PeerID string

func NewPeerID() PeerID {
	return PeerID(uuid.NewString())
}

func (id PeerID) Validate() error {
	if len(id) == 0 {
		return ErrPeerIDEmpty
	}
	if len(id) > MaxPeerIDLen {
		return ErrPeerIDTooLong
	}
	return nil
}
