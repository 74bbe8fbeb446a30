package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRoomName(t *testing.T) {
	name, err := NewRoomName("standup")
	require.NoError(t, err)
	require.Equal(t, RoomName("standup"), name)

	_, err = NewRoomName("")
	require.ErrorIs(t, err, ErrRoomNameEmpty)

	_, err = NewRoomName(strings.Repeat("x", MaxRoomNameLen+1))
	require.ErrorIs(t, err, ErrRoomNameTooLong)
}

func TestPeerIDValidate(t *testing.T) {
	require.NoError(t, NewPeerID().Validate())
	require.ErrorIs(t, PeerID("").Validate(), ErrPeerIDEmpty)
	require.ErrorIs(t, PeerID(strings.Repeat("x", MaxPeerIDLen+1)).Validate(), ErrPeerIDTooLong)
}
