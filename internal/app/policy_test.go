package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/peerline/peerline/internal/domain"
)

func TestStrictPolicyEscalates(t *testing.T) {
	p := NewStrictPolicy(3)
	peer := domain.PeerID("slow")

	assert.Equal(t, DropEnvelope, p.OnBackPressure(peer))
	assert.Equal(t, DropEnvelope, p.OnBackPressure(peer))
	assert.Equal(t, KickPeer, p.OnBackPressure(peer))

	// counter resets after the kick
	assert.Equal(t, DropEnvelope, p.OnBackPressure(peer))
}

func TestSimplePolicyKicksImmediately(t *testing.T) {
	assert.Equal(t, KickPeer, SimplePolicy{}.OnBackPressure("any"))
}
