package core

// SignalingState mirrors the engine's SDP negotiation state machine.
type SignalingState int

const (
	SignalingStable SignalingState = iota
	SignalingHaveLocalOffer
	SignalingHaveRemoteOffer
	SignalingHaveLocalPranswer
	SignalingHaveRemotePranswer
	SignalingClosed
)

func (s SignalingState) String() string {
	switch s {
	case SignalingStable:
		return "stable"
	case SignalingHaveLocalOffer:
		return "have-local-offer"
	case SignalingHaveRemoteOffer:
		return "have-remote-offer"
	case SignalingHaveLocalPranswer:
		return "have-local-pranswer"
	case SignalingHaveRemotePranswer:
		return "have-remote-pranswer"
	case SignalingClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type ICEConnectionState int

const (
	ICEConnectionNew ICEConnectionState = iota
	ICEConnectionChecking
	ICEConnectionConnected
	ICEConnectionCompleted
	ICEConnectionDisconnected
	ICEConnectionFailed
	ICEConnectionClosed
)

func (s ICEConnectionState) String() string {
	switch s {
	case ICEConnectionNew:
		return "new"
	case ICEConnectionChecking:
		return "checking"
	case ICEConnectionConnected:
		return "connected"
	case ICEConnectionCompleted:
		return "completed"
	case ICEConnectionDisconnected:
		return "disconnected"
	case ICEConnectionFailed:
		return "failed"
	case ICEConnectionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type ICEGatheringState int

const (
	ICEGatheringNew ICEGatheringState = iota
	ICEGatheringInProgress
	ICEGatheringComplete
)

func (s ICEGatheringState) String() string {
	switch s {
	case ICEGatheringNew:
		return "new"
	case ICEGatheringInProgress:
		return "gathering"
	case ICEGatheringComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ChannelState tracks one data channel through its SCTP lifecycle.
type ChannelState int

const (
	ChannelConnecting ChannelState = iota
	ChannelOpen
	ChannelClosing
	ChannelClosed
)

func (s ChannelState) String() string {
	switch s {
	case ChannelConnecting:
		return "connecting"
	case ChannelOpen:
		return "open"
	case ChannelClosing:
		return "closing"
	case ChannelClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SessionState is the coarse consumer-facing lifecycle of a Session.
// SessionConnected means the last negotiation round settled; media and
// data transport readiness is the engine's business.
type SessionState int

const (
	SessionNew SessionState = iota
	SessionNegotiating
	SessionConnected
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionNew:
		return "new"
	case SessionNegotiating:
		return "negotiating"
	case SessionConnected:
		return "connected"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}
