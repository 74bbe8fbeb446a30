package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDataChannel(t *testing.T) {
	sess, eng := newTestSession(t)

	var messages [][]byte
	var states []ChannelState
	ch, err := sess.AddDataChannel(ChannelConfig{
		ID:        1,
		Label:     "chat",
		Ordered:   true,
		Reliable:  true,
		OnMessage: func(p []byte) { messages = append(messages, p) },
		OnState:   func(s ChannelState) { states = append(states, s) },
	})
	require.NoError(t, err)
	require.Equal(t, 1, ch.ID())
	require.Equal(t, "chat", ch.Label())

	// Both indexes answer immediately.
	byID, ok := sess.ChannelByID(1)
	require.True(t, ok)
	require.Same(t, ch, byID)
	require.Equal(t, []*Channel{ch}, sess.ChannelsByLabel("chat"))

	// The engine got the creation parameters.
	dc := eng.channels[1]
	require.NotNil(t, dc)
	require.True(t, dc.ordered)
	require.True(t, dc.reliable)

	// Engine-side traffic reaches the configured handlers.
	dc.observer().OnChannelState(ChannelOpen)
	dc.observer().OnChannelMessage([]byte("hi"))
	require.Equal(t, []ChannelState{ChannelOpen}, states)
	require.Equal(t, [][]byte{[]byte("hi")}, messages)
}

func TestAddDataChannelRejectsBadIDs(t *testing.T) {
	sess, eng := newTestSession(t)

	_, err := sess.AddDataChannel(ChannelConfig{ID: -1, Label: "chat"})
	require.ErrorIs(t, err, ErrChannelIDNegative)
	assert.Empty(t, eng.calls)

	first, err := sess.AddDataChannel(ChannelConfig{ID: 3, Label: "chat"})
	require.NoError(t, err)

	_, err = sess.AddDataChannel(ChannelConfig{ID: 3, Label: "other"})
	require.ErrorIs(t, err, ErrChannelIDInUse)

	// The original mapping is untouched.
	got, ok := sess.ChannelByID(3)
	require.True(t, ok)
	require.Same(t, first, got)
	require.NoError(t, sess.SendMessage(3, []byte("still here")))
	require.Equal(t, 1, eng.channels[3].sentCount())
}

func TestSendMessage(t *testing.T) {
	sess, eng := newTestSession(t)

	require.ErrorIs(t, sess.SendMessage(9, []byte("nobody")), ErrChannelNotFound)

	_, err := sess.AddDataChannel(ChannelConfig{ID: 9, Label: "telemetry"})
	require.NoError(t, err)
	require.NoError(t, sess.SendMessage(9, []byte("ping")))
	require.Equal(t, 1, eng.channels[9].sentCount())
}

func TestRemoveDataChannel(t *testing.T) {
	sess, eng := newTestSession(t)

	_, err := sess.AddDataChannel(ChannelConfig{ID: 1, Label: "chat"})
	require.NoError(t, err)

	sess.RemoveDataChannel(1)
	require.True(t, eng.channels[1].isClosed())
	require.ErrorIs(t, sess.SendMessage(1, []byte("x")), ErrChannelNotFound)
	_, ok := sess.ChannelByID(1)
	require.False(t, ok)
	require.Empty(t, sess.ChannelsByLabel("chat"))

	// Unknown ids are a silent no-op.
	sess.RemoveDataChannel(1)
	sess.RemoveDataChannel(42)
}

func TestRemoveDataChannelsByLabel(t *testing.T) {
	sess, eng := newTestSession(t)

	_, err := sess.AddDataChannel(ChannelConfig{ID: 1, Label: "chat"})
	require.NoError(t, err)
	_, err = sess.AddDataChannel(ChannelConfig{ID: 2, Label: "chat"})
	require.NoError(t, err)
	_, err = sess.AddDataChannel(ChannelConfig{ID: 3, Label: "control"})
	require.NoError(t, err)

	require.Len(t, sess.ChannelsByLabel("chat"), 2)

	sess.RemoveDataChannelsByLabel("chat")
	require.True(t, eng.channels[1].isClosed())
	require.True(t, eng.channels[2].isClosed())
	require.False(t, eng.channels[3].isClosed())

	require.ErrorIs(t, sess.SendMessage(1, nil), ErrChannelNotFound)
	require.ErrorIs(t, sess.SendMessage(2, nil), ErrChannelNotFound)
	require.NoError(t, sess.SendMessage(3, []byte("survivor")))

	// Unknown labels are a silent no-op.
	sess.RemoveDataChannelsByLabel("chat")
	sess.RemoveDataChannelsByLabel("")
}

func TestLabelIndexFollowsIDRemoval(t *testing.T) {
	sess, _ := newTestSession(t)

	a, err := sess.AddDataChannel(ChannelConfig{ID: 1, Label: "chat"})
	require.NoError(t, err)
	b, err := sess.AddDataChannel(ChannelConfig{ID: 2, Label: "chat"})
	require.NoError(t, err)
	require.ElementsMatch(t, []*Channel{a, b}, sess.ChannelsByLabel("chat"))

	sess.RemoveDataChannel(1)
	require.Equal(t, []*Channel{b}, sess.ChannelsByLabel("chat"))

	sess.RemoveDataChannel(2)
	require.Empty(t, sess.ChannelsByLabel("chat"))
}

func TestUnlabeledChannels(t *testing.T) {
	sess, _ := newTestSession(t)

	_, err := sess.AddDataChannel(ChannelConfig{ID: 1})
	require.NoError(t, err)
	_, err = sess.AddDataChannel(ChannelConfig{ID: 2})
	require.NoError(t, err)

	// Empty labels never enter the label index.
	require.Empty(t, sess.ChannelsByLabel(""))

	_, ok := sess.ChannelByID(1)
	require.True(t, ok)
	_, ok = sess.ChannelByID(2)
	require.True(t, ok)
}

func TestChannelBufferedCallback(t *testing.T) {
	sess, eng := newTestSession(t)

	var amounts []uint64
	_, err := sess.AddDataChannel(ChannelConfig{
		ID:         4,
		Label:      "bulk",
		OnBuffered: func(a uint64) { amounts = append(amounts, a) },
	})
	require.NoError(t, err)

	eng.channels[4].observer().OnChannelBuffered(1024)
	eng.channels[4].observer().OnChannelBuffered(0)
	require.Equal(t, []uint64{1024, 0}, amounts)
}
