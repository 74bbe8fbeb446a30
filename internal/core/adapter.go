package core

import (
	"github.com/rs/zerolog/log"
)

// observer receives engine events and republishes them through the
// session's slots. The engine flushes callbacks on its own goroutines, so
// every entry point checks the closed gate first and drops the event when
// the session is already torn down.
type observer struct {
	s *Session
}

var _ PeerObserver = (*observer)(nil)

func (o *observer) OnSignalingChange(st SignalingState) {
	if o.s.closed.Load() {
		return
	}
	log.Debug().Str("module", "core.session").Str("sid", o.s.id).Stringer("state", st).Msg("signaling change")
	switch st {
	case SignalingStable:
		// A transition back to stable is a completed negotiation round.
		o.s.state.Store(int32(SessionConnected))
		o.s.connected.fire()
	case SignalingHaveLocalOffer, SignalingHaveRemoteOffer:
		o.s.state.Store(int32(SessionNegotiating))
	case SignalingClosed:
		o.s.state.Store(int32(SessionClosed))
	}
}

// ICE transport progress is not resurfaced; consumers act on negotiation
// callbacks and the connected slot.
func (o *observer) OnICEConnectionChange(ICEConnectionState) {}

func (o *observer) OnICEGatheringChange(ICEGatheringState) {}

func (o *observer) OnICECandidate(c Candidate) {
	if o.s.closed.Load() {
		return
	}
	o.s.candidate.fire(c)
}

func (o *observer) OnRenegotiationNeeded() {
	if o.s.closed.Load() {
		return
	}
	o.s.state.Store(int32(SessionNegotiating))
	o.s.renegotiation.fire()
}

func (o *observer) OnLocalDescription(d Description) {
	if o.s.closed.Load() {
		d.Release()
		return
	}
	kind, sdp := d.Kind(), d.SDP()
	d.Release()
	o.s.localDesc.fire(kind, sdp)
}

func (o *observer) OnDescriptionFailure(err error) {
	if o.s.closed.Load() {
		return
	}
	if !o.s.failure.fire(err) {
		log.Warn().Str("module", "core.session").Str("sid", o.s.id).Err(err).Msg("negotiation failed, no handler registered")
	}
}

func (o *observer) OnDataChannel(dc DataChannel) {
	if o.s.closed.Load() {
		return
	}
	ch := newChannel(dc)
	dc.Subscribe(ch)
	if err := o.s.channels.add(ch); err != nil {
		// Announce it anyway; the handle still works, it just can't be
		// addressed by id.
		log.Warn().Str("module", "core.session").Str("sid", o.s.id).Int("id", ch.id).Msg("remote channel id collides, not indexed")
	}
	o.s.channelOpened.fire(ch)
}

func (o *observer) OnAddStream(st RemoteStream) {
	if o.s.closed.Load() {
		return
	}
	o.s.mu.Lock()
	o.s.streams[st.ID()] = st
	o.s.mu.Unlock()
	log.Info().Str("module", "core.session").Str("sid", o.s.id).Str("stream", st.ID()).Msg("remote stream added")
}

func (o *observer) OnRemoveStream(st RemoteStream) {
	if o.s.closed.Load() {
		return
	}
	o.s.mu.Lock()
	delete(o.s.streams, st.ID())
	o.s.mu.Unlock()
	for _, t := range st.AudioTracks() {
		if src, ok := t.(AudioFrameSource); ok {
			src.RemoveAudioSink(&o.s.remoteAudioTap)
		}
	}
	for _, t := range st.VideoTracks() {
		if src, ok := t.(VideoFrameSource); ok {
			src.RemoveVideoSink(&o.s.remoteVideoTap)
		}
	}
	log.Info().Str("module", "core.session").Str("sid", o.s.id).Str("stream", st.ID()).Msg("remote stream removed")
}

func (o *observer) OnRemoteTrack(t MediaTrack) {
	if o.s.closed.Load() {
		return
	}
	switch t.Kind() {
	case KindAudio:
		if src, ok := t.(AudioFrameSource); ok {
			src.AddAudioSink(&o.s.remoteAudioTap)
		}
	case KindVideo:
		if src, ok := t.(VideoFrameSource); ok {
			src.AddVideoSink(&o.s.remoteVideoTap)
		}
	}
}
