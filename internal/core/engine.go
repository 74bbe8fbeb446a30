package core

// Candidate is one trickled ICE candidate in wire form: the candidate
// line plus the m-line it belongs to.
type Candidate struct {
	Mid        string
	MLineIndex int
	Candidate  string
}

// ChannelConfig describes a data channel to open. ID must be unique per
// session and non-negative; both sides of a pre-negotiated channel use the
// same one. Unreliable channels get no retransmissions at all.
//
// The handler fields are optional and may also be attached later through
// the Channel setters.
type ChannelConfig struct {
	ID       int
	Label    string
	Ordered  bool
	Reliable bool

	OnMessage  func(payload []byte)
	OnBuffered func(amount uint64)
	OnState    func(s ChannelState)
}

// Engine is the negotiation machinery behind a session: ICE, DTLS, SDP and
// the actual sockets live on its side of the boundary. A session shares
// ownership of the handle with the engine's own internals; Session.Close
// drops only the session's reference.
//
// Implementations deliver results and remote activity through the
// PeerObserver they were constructed with, on their own goroutines, and
// must deliver nothing after Close returns.
type Engine interface {
	// CreateOffer requests async SDP creation; the result arrives at the
	// observer as OnLocalDescription or OnDescriptionFailure.
	CreateOffer() error
	// CreateAnswer is CreateOffer for the answering side.
	CreateAnswer() error
	SetRemoteDescription(kind, sdp string) error
	AddICECandidate(c Candidate) error

	// AddTrack attaches an outbound track. The returned Sender is the
	// handle to detach it again.
	AddTrack(t MediaTrack) (Sender, error)
	RemoveTrack(s Sender) error

	CreateDataChannel(cfg ChannelConfig) (DataChannel, error)

	Close() error
}

// Description is an engine-owned SDP result. Ownership transfers to the
// receiver of OnLocalDescription, which must Release it after use; for
// engines fronting foreign allocations that is what frees the backing
// memory.
type Description interface {
	Kind() string
	SDP() string
	Release()
}

// DataChannel is the engine half of a channel. At most one observer is
// subscribed at a time.
type DataChannel interface {
	ID() int
	Label() string
	Send(payload []byte) error
	Close() error
	Subscribe(obs ChannelObserver)
}

// MediaTrack identifies one directionally-typed media source or sink.
// Tracks that can fan decoded frames out additionally implement
// VideoFrameSource or AudioFrameSource.
type MediaTrack interface {
	ID() string
	Kind() MediaKind
}

// Sender is the engine-side binding of one attached local track.
type Sender interface {
	Track() MediaTrack
}

// RemoteStream groups the remote peer's tracks the way the peer bundled
// them.
type RemoteStream interface {
	ID() string
	AudioTracks() []MediaTrack
	VideoTracks() []MediaTrack
}

// VideoFrameSource is implemented by tracks able to deliver decoded video.
type VideoFrameSource interface {
	AddVideoSink(s VideoSink)
	RemoveVideoSink(s VideoSink)
}

// AudioFrameSource is implemented by tracks able to deliver raw PCM.
type AudioFrameSource interface {
	AddAudioSink(s AudioSink)
	RemoveAudioSink(s AudioSink)
}

type VideoSink interface {
	OnVideoFrame(f VideoFrame)
}

type AudioSink interface {
	OnAudioFrame(f AudioFrame)
}

// PeerObserver receives everything an engine reports about one peer
// connection. Calls arrive on engine goroutines, possibly concurrently
// with consumer calls into the session; implementations must not block.
type PeerObserver interface {
	OnSignalingChange(s SignalingState)
	OnICEConnectionChange(s ICEConnectionState)
	OnICEGatheringChange(s ICEGatheringState)
	OnICECandidate(c Candidate)
	OnRenegotiationNeeded()

	// OnLocalDescription hands over an owned Description; the observer
	// releases it.
	OnLocalDescription(d Description)
	OnDescriptionFailure(err error)

	// OnDataChannel announces a channel the remote peer opened.
	OnDataChannel(dc DataChannel)

	OnAddStream(st RemoteStream)
	OnRemoveStream(st RemoteStream)
	// OnRemoteTrack fires once per inbound track, after the track's stream
	// was announced.
	OnRemoteTrack(t MediaTrack)
}

// ChannelObserver receives one data channel's events.
type ChannelObserver interface {
	OnChannelMessage(payload []byte)
	OnChannelBuffered(amount uint64)
	OnChannelState(s ChannelState)
}
