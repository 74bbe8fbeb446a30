package core

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session fronts one peer-to-peer connection. It owns the bookkeeping the
// engine does not: the callback slots, the data channel index, the local
// track bindings and the remote stream set. Every method is safe from any
// goroutine and none of them blocks on the network; engine results come
// back through the observer.
//
// Construction order matters: NewSession first, hand Observer() to the
// engine constructor, then Attach the engine. Events the engine emits
// before Attach still reach the slots; events after Close reach nothing.
type Session struct {
	id  string
	obs *observer

	closed atomic.Bool
	state  atomic.Int32

	mu         sync.RWMutex
	engine     Engine
	localAudio *localBinding
	localVideo *localBinding
	streams    map[string]RemoteStream

	channels *channelRegistry

	connected     eventSlot
	renegotiation eventSlot
	localDesc     sdpSlot
	candidate     candidateSlot
	failure       failureSlot
	channelOpened channelSlot

	localVideoTap  videoTap
	remoteVideoTap videoTap
	localAudioTap  audioTap
	remoteAudioTap audioTap
}

// localBinding pairs an attached track with the sender that detaches it.
type localBinding struct {
	track  MediaTrack
	sender Sender
}

func NewSession() *Session {
	s := &Session{
		id:       uuid.NewString(),
		channels: newChannelRegistry(),
		streams:  make(map[string]RemoteStream),
	}
	s.obs = &observer{s: s}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

// Observer is the engine-facing event surface. Hand it to the engine
// constructor before Attach.
func (s *Session) Observer() PeerObserver { return s.obs }

// Attach binds the engine handle, exactly once per session.
func (s *Session) Attach(e Engine) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		return ErrAlreadyAttached
	}
	s.engine = e
	log.Debug().Str("module", "core.session").Str("sid", s.id).Msg("engine attached")
	return nil
}

func (s *Session) engineHandle() (Engine, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return nil, ErrNotAttached
	}
	return s.engine, nil
}

// CreateOffer asks the engine to produce a local offer. The SDP itself
// arrives at the local-description callback.
func (s *Session) CreateOffer() error {
	e, err := s.engineHandle()
	if err != nil {
		return err
	}
	return e.CreateOffer()
}

// CreateAnswer is the answering side of CreateOffer; a remote offer must
// have been applied first.
func (s *Session) CreateAnswer() error {
	e, err := s.engineHandle()
	if err != nil {
		return err
	}
	return e.CreateAnswer()
}

func (s *Session) SetRemoteDescription(kind, sdp string) error {
	if kind == "" || sdp == "" {
		return ErrEmptyDescription
	}
	e, err := s.engineHandle()
	if err != nil {
		return err
	}
	return e.SetRemoteDescription(kind, sdp)
}

func (s *Session) AddICECandidate(c Candidate) error {
	if c.Candidate == "" {
		return ErrEmptyCandidate
	}
	e, err := s.engineHandle()
	if err != nil {
		return err
	}
	return e.AddICECandidate(c)
}

// OnConnected registers fn for the moment a negotiation round settles.
// The previous handler, if any, is replaced; rounds that settled earlier
// are not replayed.
func (s *Session) OnConnected(fn func()) { s.connected.set(fn) }

// OnLocalDescription delivers every locally created offer or answer,
// ready to forward to the remote peer.
func (s *Session) OnLocalDescription(fn func(kind, sdp string)) { s.localDesc.set(fn) }

// OnICECandidate delivers locally gathered candidates as they trickle.
func (s *Session) OnICECandidate(fn func(c Candidate)) { s.candidate.set(fn) }

// OnRenegotiationNeeded fires when the engine wants a fresh offer, for
// example after a track was added mid-session.
func (s *Session) OnRenegotiationNeeded(fn func()) { s.renegotiation.set(fn) }

// OnNegotiationFailed surfaces async SDP failures. Without a handler they
// are logged and dropped.
func (s *Session) OnNegotiationFailed(fn func(err error)) { s.failure.set(fn) }

// OnDataChannelOpened announces channels the remote peer opened; attach
// per-channel handlers inside fn before returning to avoid missing early
// messages.
func (s *Session) OnDataChannelOpened(fn func(ch *Channel)) { s.channelOpened.set(fn) }

func (s *Session) OnLocalVideoFrame(fn func(f VideoFrame)) { s.localVideoTap.set(fn) }

func (s *Session) OnRemoteVideoFrame(fn func(f VideoFrame)) { s.remoteVideoTap.set(fn) }

func (s *Session) OnLocalAudioFrame(fn func(f AudioFrame)) { s.localAudioTap.set(fn) }

func (s *Session) OnRemoteAudioFrame(fn func(f AudioFrame)) { s.remoteAudioTap.set(fn) }

// AddDataChannel opens a channel and indexes it under its id and label.
// The id is caller-assigned so the channel is addressable immediately;
// use matching ids on both peers.
func (s *Session) AddDataChannel(cfg ChannelConfig) (*Channel, error) {
	if cfg.ID < 0 {
		return nil, ErrChannelIDNegative
	}
	e, err := s.engineHandle()
	if err != nil {
		return nil, err
	}
	if _, ok := s.channels.get(cfg.ID); ok {
		return nil, ErrChannelIDInUse
	}
	dc, err := e.CreateDataChannel(cfg)
	if err != nil {
		return nil, fmt.Errorf("create data channel: %w", err)
	}
	ch := newChannel(dc)
	ch.OnMessage(cfg.OnMessage)
	ch.OnBuffered(cfg.OnBuffered)
	ch.OnState(cfg.OnState)
	dc.Subscribe(ch)
	if err := s.channels.add(ch); err != nil {
		_ = dc.Close()
		return nil, err
	}
	log.Info().Str("module", "core.session").Str("sid", s.id).Int("id", ch.id).Str("label", ch.label).Msg("data channel added")
	return ch, nil
}

func (s *Session) ChannelByID(id int) (*Channel, bool) {
	return s.channels.get(id)
}

func (s *Session) ChannelsByLabel(label string) []*Channel {
	return s.channels.labelSnapshot(label)
}

// RemoveDataChannel unregisters the channel with this id and closes it on
// the engine. Unknown ids are a no-op.
func (s *Session) RemoveDataChannel(id int) {
	ch := s.channels.removeByID(id)
	if ch == nil {
		return
	}
	if err := ch.dc.Close(); err != nil {
		log.Warn().Str("module", "core.session").Str("sid", s.id).Int("id", id).Err(err).Msg("channel close")
	}
}

// RemoveDataChannelsByLabel removes and closes every channel under the
// label. Unknown labels are a no-op.
func (s *Session) RemoveDataChannelsByLabel(label string) {
	for _, ch := range s.channels.removeByLabel(label) {
		if err := ch.dc.Close(); err != nil {
			log.Warn().Str("module", "core.session").Str("sid", s.id).Int("id", ch.id).Err(err).Msg("channel close")
		}
	}
}

// SendMessage sends one binary message on the channel with this id.
func (s *Session) SendMessage(id int, payload []byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	ch, ok := s.channels.get(id)
	if !ok {
		return ErrChannelNotFound
	}
	return ch.Send(payload)
}

// AddLocalAudioTrack attaches the session's one outbound audio track. If
// the track fans frames out, the local audio tap hooks in so frame
// callbacks observe outgoing media.
func (s *Session) AddLocalAudioTrack(t MediaTrack) error {
	if t == nil || t.Kind() != KindAudio {
		return ErrWrongTrackKind
	}
	e, err := s.engineHandle()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.localAudio != nil {
		return ErrTrackAttached
	}
	sender, err := e.AddTrack(t)
	if err != nil {
		return fmt.Errorf("add audio track: %w", err)
	}
	s.localAudio = &localBinding{track: t, sender: sender}
	if src, ok := t.(AudioFrameSource); ok {
		src.AddAudioSink(&s.localAudioTap)
	}
	log.Info().Str("module", "core.session").Str("sid", s.id).Str("track", t.ID()).Msg("local audio track added")
	return nil
}

// RemoveLocalAudioTrack detaches the outbound audio track; a no-op when
// none is attached.
func (s *Session) RemoveLocalAudioTrack() {
	s.mu.Lock()
	b := s.localAudio
	s.localAudio = nil
	e := s.engine
	s.mu.Unlock()
	if b == nil {
		return
	}
	if src, ok := b.track.(AudioFrameSource); ok {
		src.RemoveAudioSink(&s.localAudioTap)
	}
	if e != nil {
		if err := e.RemoveTrack(b.sender); err != nil {
			log.Warn().Str("module", "core.session").Str("sid", s.id).Err(err).Msg("remove audio track")
		}
	}
}

// AddLocalVideoTrack is AddLocalAudioTrack for the video slot.
func (s *Session) AddLocalVideoTrack(t MediaTrack) error {
	if t == nil || t.Kind() != KindVideo {
		return ErrWrongTrackKind
	}
	e, err := s.engineHandle()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.localVideo != nil {
		return ErrTrackAttached
	}
	sender, err := e.AddTrack(t)
	if err != nil {
		return fmt.Errorf("add video track: %w", err)
	}
	s.localVideo = &localBinding{track: t, sender: sender}
	if src, ok := t.(VideoFrameSource); ok {
		src.AddVideoSink(&s.localVideoTap)
	}
	log.Info().Str("module", "core.session").Str("sid", s.id).Str("track", t.ID()).Msg("local video track added")
	return nil
}

func (s *Session) RemoveLocalVideoTrack() {
	s.mu.Lock()
	b := s.localVideo
	s.localVideo = nil
	e := s.engine
	s.mu.Unlock()
	if b == nil {
		return
	}
	if src, ok := b.track.(VideoFrameSource); ok {
		src.RemoveVideoSink(&s.localVideoTap)
	}
	if e != nil {
		if err := e.RemoveTrack(b.sender); err != nil {
			log.Warn().Str("module", "core.session").Str("sid", s.id).Err(err).Msg("remove video track")
		}
	}
}

// RemoteStreams snapshots the streams the remote peer currently shares.
func (s *Session) RemoteStreams() []RemoteStream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RemoteStream, 0, len(s.streams))
	for _, st := range s.streams {
		out = append(out, st)
	}
	return out
}

// Close tears the session down: the closed gate flips first so no handler
// runs afterwards, then tracks detach, channels close, and the session's
// engine reference is released. The engine may keep internal references;
// those are its own to drop. Close is idempotent.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.state.Store(int32(SessionClosed))

	s.RemoveLocalAudioTrack()
	s.RemoveLocalVideoTrack()

	for _, ch := range s.channels.drain() {
		_ = ch.dc.Close()
	}

	s.mu.Lock()
	e := s.engine
	s.engine = nil
	s.streams = make(map[string]RemoteStream)
	s.mu.Unlock()

	if e == nil {
		log.Debug().Str("module", "core.session").Str("sid", s.id).Msg("session closed, no engine")
		return nil
	}
	if err := e.Close(); err != nil {
		return fmt.Errorf("close engine: %w", err)
	}
	log.Info().Str("module", "core.session").Str("sid", s.id).Msg("session closed")
	return nil
}
