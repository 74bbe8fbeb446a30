// Package rtc binds the session core to pion/webrtc. Decoded frame
// delivery covers G.711 audio only; tracks carrying anything else still
// flow end to end, their frame callbacks just never fire.
package rtc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v4"

	"github.com/peerline/peerline/internal/core"
)

var (
	ErrNilObserver    = errors.New("rtc: nil observer")
	ErrPeerClosed     = errors.New("rtc: peer closed")
	ErrForeignTrack   = errors.New("rtc: track was not built by this package")
	ErrForeignSender  = errors.New("rtc: sender belongs to another engine")
	ErrUnknownSDPKind = errors.New("rtc: unknown sdp kind")
)

// Config carries what the engine needs to reach the outside world.
type Config struct {
	ICEServers []string
}

// DefaultConfig uses a public STUN server, enough for the demo relay and
// for two peers on one host.
func DefaultConfig() Config {
	return Config{ICEServers: []string{"stun:stun.l.google.com:19302"}}
}

// Peer implements the engine boundary over one pion PeerConnection. All
// results and remote activity land on the observer passed to NewPeer.
type Peer struct {
	pc  *webrtc.PeerConnection
	obs core.PeerObserver

	mu      sync.Mutex
	closed  bool
	streams map[string]*remoteStream
	wg      sync.WaitGroup
}

var _ core.Engine = (*Peer)(nil)

// NewPeer wires a PeerConnection and hooks every engine event up to obs
// before returning, so nothing is missed between construction and the
// first negotiation.
func NewPeer(cfg Config, obs core.PeerObserver) (*Peer, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	me := &webrtc.MediaEngine{}
	if err := me.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register codecs: %w", err)
	}

	reg := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(me, reg); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}

	se := webrtc.SettingEngine{LoggerFactory: loggerFactory{}}

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(me),
		webrtc.WithInterceptorRegistry(reg),
		webrtc.WithSettingEngine(se),
	)

	var pcCfg webrtc.Configuration
	if len(cfg.ICEServers) > 0 {
		pcCfg.ICEServers = []webrtc.ICEServer{{URLs: cfg.ICEServers}}
	}

	pc, err := api.NewPeerConnection(pcCfg)
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	p := &Peer{
		pc:      pc,
		obs:     obs,
		streams: make(map[string]*remoteStream),
	}

	pc.OnSignalingStateChange(func(s webrtc.SignalingState) {
		obs.OnSignalingChange(signalingState(s))
	})
	pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		obs.OnICEConnectionChange(iceConnectionState(s))
	})
	pc.OnICEGatheringStateChange(func(s webrtc.ICEGatheringState) {
		obs.OnICEGatheringChange(gatheringState(s))
	})
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			// End-of-gathering marker.
			return
		}
		obs.OnICECandidate(candidateFrom(c))
	})
	pc.OnNegotiationNeeded(func() {
		obs.OnRenegotiationNeeded()
	})
	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		obs.OnDataChannel(newDataChannel(dc))
	})
	pc.OnTrack(func(tr *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		p.handleTrack(tr)
	})

	return p, nil
}

func (p *Peer) CreateOffer() error  { return p.spawn(func() { p.negotiate(false) }) }
func (p *Peer) CreateAnswer() error { return p.spawn(func() { p.negotiate(true) }) }

// negotiate runs pion's blocking SDP calls off the caller's goroutine and
// reports through the observer, either direction.
func (p *Peer) negotiate(answer bool) {
	var (
		desc webrtc.SessionDescription
		err  error
	)
	if answer {
		desc, err = p.pc.CreateAnswer(nil)
	} else {
		desc, err = p.pc.CreateOffer(nil)
	}
	if err == nil {
		err = p.pc.SetLocalDescription(desc)
	}

	if p.isClosed() {
		return
	}
	if err != nil {
		p.obs.OnDescriptionFailure(fmt.Errorf("negotiate: %w", err))
		return
	}
	p.obs.OnLocalDescription(description{kind: desc.Type.String(), sdp: desc.SDP})
}

func (p *Peer) SetRemoteDescription(kind, sdp string) error {
	t := webrtc.NewSDPType(kind)
	if t == webrtc.SDPTypeUnknown {
		return fmt.Errorf("%w: %q", ErrUnknownSDPKind, kind)
	}
	if err := p.pc.SetRemoteDescription(webrtc.SessionDescription{Type: t, SDP: sdp}); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return nil
}

func (p *Peer) AddICECandidate(c core.Candidate) error {
	if err := p.pc.AddICECandidate(candidateInit(c)); err != nil {
		return fmt.Errorf("add ice candidate: %w", err)
	}
	return nil
}

func (p *Peer) AddTrack(t core.MediaTrack) (core.Sender, error) {
	lt, ok := t.(localTrack)
	if !ok {
		return nil, ErrForeignTrack
	}
	sender, err := p.pc.AddTrack(lt.rtpTrack())
	if err != nil {
		return nil, fmt.Errorf("add track: %w", err)
	}
	return &rtpSender{sender: sender, track: t}, nil
}

func (p *Peer) RemoveTrack(s core.Sender) error {
	rs, ok := s.(*rtpSender)
	if !ok {
		return ErrForeignSender
	}
	if err := p.pc.RemoveTrack(rs.sender); err != nil {
		return fmt.Errorf("remove track: %w", err)
	}
	return nil
}

func (p *Peer) CreateDataChannel(cfg core.ChannelConfig) (core.DataChannel, error) {
	dc, err := p.pc.CreateDataChannel(cfg.Label, channelInit(cfg))
	if err != nil {
		return nil, fmt.Errorf("create data channel: %w", err)
	}
	return newDataChannel(dc), nil
}

// Close tears the connection down and waits for the worker goroutines, so
// nothing reaches the observer after it returns.
func (p *Peer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.pc.Close()
	p.wg.Wait()
	if err != nil {
		return fmt.Errorf("close peer connection: %w", err)
	}
	return nil
}

func (p *Peer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// spawn runs fn on a tracked goroutine; Close waits for all of them.
func (p *Peer) spawn(fn func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPeerClosed
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fn()
	}()
	return nil
}

// handleTrack registers one inbound track under its stream, announces
// both, and starts the read loop.
func (p *Peer) handleTrack(tr *webrtc.TrackRemote) {
	streamID := tr.StreamID()
	if streamID == "" {
		streamID = tr.ID()
	}

	rt := newRemoteTrack(tr)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	st, ok := p.streams[streamID]
	if !ok {
		st = newRemoteStream(streamID)
		p.streams[streamID] = st
	}
	st.addTrack(rt)
	p.wg.Add(1)
	p.mu.Unlock()

	// The latch keeps the stream announcement ahead of any of its tracks
	// when several arrive at once.
	st.announced.Do(func() { p.obs.OnAddStream(st) })
	p.obs.OnRemoteTrack(rt)

	go func() {
		defer p.wg.Done()
		rt.readLoop(func() { p.retireTrack(st) })
	}()
}

// retireTrack drops the stream once its last read loop ended.
func (p *Peer) retireTrack(st *remoteStream) {
	if !st.trackEnded() {
		return
	}

	p.mu.Lock()
	delete(p.streams, st.id)
	closed := p.closed
	p.mu.Unlock()

	if !closed {
		p.obs.OnRemoveStream(st)
	}
}

// description is an SDP result already on this side of the boundary, so
// Release has nothing to free.
type description struct {
	kind string
	sdp  string
}

func (d description) Kind() string { return d.kind }
func (d description) SDP() string  { return d.sdp }
func (d description) Release()     {}

// rtpSender pairs the pion sender with the track it carries.
type rtpSender struct {
	sender *webrtc.RTPSender
	track  core.MediaTrack
}

func (s *rtpSender) Track() core.MediaTrack { return s.track }

func signalingState(s webrtc.SignalingState) core.SignalingState {
	switch s {
	case webrtc.SignalingStateHaveLocalOffer:
		return core.SignalingHaveLocalOffer
	case webrtc.SignalingStateHaveRemoteOffer:
		return core.SignalingHaveRemoteOffer
	case webrtc.SignalingStateHaveLocalPranswer:
		return core.SignalingHaveLocalPranswer
	case webrtc.SignalingStateHaveRemotePranswer:
		return core.SignalingHaveRemotePranswer
	case webrtc.SignalingStateClosed:
		return core.SignalingClosed
	default:
		return core.SignalingStable
	}
}

func iceConnectionState(s webrtc.ICEConnectionState) core.ICEConnectionState {
	switch s {
	case webrtc.ICEConnectionStateChecking:
		return core.ICEConnectionChecking
	case webrtc.ICEConnectionStateConnected:
		return core.ICEConnectionConnected
	case webrtc.ICEConnectionStateCompleted:
		return core.ICEConnectionCompleted
	case webrtc.ICEConnectionStateDisconnected:
		return core.ICEConnectionDisconnected
	case webrtc.ICEConnectionStateFailed:
		return core.ICEConnectionFailed
	case webrtc.ICEConnectionStateClosed:
		return core.ICEConnectionClosed
	default:
		return core.ICEConnectionNew
	}
}

func gatheringState(s webrtc.ICEGatheringState) core.ICEGatheringState {
	switch s {
	case webrtc.ICEGatheringStateGathering:
		return core.ICEGatheringInProgress
	case webrtc.ICEGatheringStateComplete:
		return core.ICEGatheringComplete
	default:
		return core.ICEGatheringNew
	}
}

func candidateFrom(ic *webrtc.ICECandidate) core.Candidate {
	init := ic.ToJSON()
	out := core.Candidate{Candidate: init.Candidate}
	if init.SDPMid != nil {
		out.Mid = *init.SDPMid
	}
	if init.SDPMLineIndex != nil {
		out.MLineIndex = int(*init.SDPMLineIndex)
	}
	return out
}

func candidateInit(c core.Candidate) webrtc.ICECandidateInit {
	mid := c.Mid
	mline := uint16(c.MLineIndex)
	return webrtc.ICECandidateInit{
		Candidate:     c.Candidate,
		SDPMid:        &mid,
		SDPMLineIndex: &mline,
	}
}

func channelInit(cfg core.ChannelConfig) *webrtc.DataChannelInit {
	init := &webrtc.DataChannelInit{}

	ordered := cfg.Ordered
	init.Ordered = &ordered

	if !cfg.Reliable {
		var zero uint16
		init.MaxRetransmits = &zero
	}
	if cfg.ID >= 0 {
		negotiated := true
		id := uint16(cfg.ID)
		init.Negotiated = &negotiated
		init.ID = &id
	}
	return init
}
