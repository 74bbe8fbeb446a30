package rtc

import (
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerline/peerline/internal/core"
)

func TestChannelInitNegotiated(t *testing.T) {
	init := channelInit(core.ChannelConfig{ID: 7, Label: "chat", Ordered: true, Reliable: true})

	require.NotNil(t, init.Ordered)
	assert.True(t, *init.Ordered)
	assert.Nil(t, init.MaxRetransmits)
	require.NotNil(t, init.Negotiated)
	assert.True(t, *init.Negotiated)
	require.NotNil(t, init.ID)
	assert.Equal(t, uint16(7), *init.ID)
}

func TestChannelInitUnreliable(t *testing.T) {
	init := channelInit(core.ChannelConfig{ID: 0, Ordered: false, Reliable: false})

	require.NotNil(t, init.Ordered)
	assert.False(t, *init.Ordered)
	require.NotNil(t, init.MaxRetransmits)
	assert.Equal(t, uint16(0), *init.MaxRetransmits)
	require.NotNil(t, init.ID)
	assert.Equal(t, uint16(0), *init.ID)
}

func TestCandidateInit(t *testing.T) {
	init := candidateInit(core.Candidate{Mid: "0", MLineIndex: 1, Candidate: "candidate:foo"})

	assert.Equal(t, "candidate:foo", init.Candidate)
	require.NotNil(t, init.SDPMid)
	assert.Equal(t, "0", *init.SDPMid)
	require.NotNil(t, init.SDPMLineIndex)
	assert.Equal(t, uint16(1), *init.SDPMLineIndex)
}

func TestStateMappings(t *testing.T) {
	assert.Equal(t, core.SignalingStable, signalingState(webrtc.SignalingStateStable))
	assert.Equal(t, core.SignalingHaveLocalOffer, signalingState(webrtc.SignalingStateHaveLocalOffer))
	assert.Equal(t, core.SignalingHaveRemotePranswer, signalingState(webrtc.SignalingStateHaveRemotePranswer))
	assert.Equal(t, core.SignalingClosed, signalingState(webrtc.SignalingStateClosed))

	assert.Equal(t, core.ICEConnectionChecking, iceConnectionState(webrtc.ICEConnectionStateChecking))
	assert.Equal(t, core.ICEConnectionFailed, iceConnectionState(webrtc.ICEConnectionStateFailed))

	assert.Equal(t, core.ICEGatheringNew, gatheringState(webrtc.ICEGatheringStateNew))
	assert.Equal(t, core.ICEGatheringInProgress, gatheringState(webrtc.ICEGatheringStateGathering))
	assert.Equal(t, core.ICEGatheringComplete, gatheringState(webrtc.ICEGatheringStateComplete))
}

func TestAudioFrameFromPacket(t *testing.T) {
	decode := g711Decoder(webrtc.MimeTypePCMU)
	require.NotNil(t, decode)

	frame := audioFrame(make([]byte, 160), decode, 8000, 1, 4000)

	assert.Equal(t, 160, frame.Samples)
	assert.Equal(t, 8000, frame.SampleRate)
	assert.Equal(t, 1, frame.Channels)
	assert.Equal(t, 16, frame.BitsPerSample)
	assert.Len(t, frame.Data, 320)
	assert.Equal(t, 500*time.Millisecond, frame.Timestamp)
}
