// Package signal is the websocket signaling plane: a JSON envelope codec,
// a relay server that pairs peers per room and forwards their negotiation
// traffic, and a client for the program side.
package signal

// Envelope kinds. Offer, answer and candidate envelopes are relayed to
// roommates verbatim; the rest address the relay itself.
const (
	KindJoin       = "join"
	KindJoined     = "joined"
	KindLeave      = "leave"
	KindLeft       = "left"
	KindPeerJoined = "peer_joined"
	KindPeerLeft   = "peer_left"
	KindOffer      = "offer"
	KindAnswer     = "answer"
	KindCandidate  = "candidate"
	KindPing       = "ping"
	KindPong       = "pong"
	KindError      = "error"
)

// Envelope is the one wire shape every signaling message uses. Type
// decides which of the optional fields carry meaning.
type Envelope struct {
	Type          string `json:"type"`
	Room          string `json:"room,omitempty"`
	Peer          string `json:"peer,omitempty"`
	Count         int    `json:"count,omitempty"`
	SDP           string `json:"sdp,omitempty"`
	Candidate     string `json:"candidate,omitempty"`
	SDPMid        string `json:"sdpMid,omitempty"`
	SDPMLineIndex int    `json:"sdpMLineIndex,omitempty"`
	Error         string `json:"error,omitempty"`
}
