package rtc

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/peerline/peerline/internal/core"
)

// remoteTrack adapts one inbound pion track. G.711 audio gets a read loop
// that expands packets to PCM frames and fans them to attached sinks;
// every other payload is drained so the transport keeps feeding us, but no
// frames come out of it.
type remoteTrack struct {
	tr        *webrtc.TrackRemote
	kind      core.MediaKind
	decode    func([]byte) []byte
	clockRate uint32
	channels  int

	mu    sync.Mutex
	sinks []core.AudioSink
}

func newRemoteTrack(tr *webrtc.TrackRemote) *remoteTrack {
	kind := core.KindAudio
	if tr.Kind() == webrtc.RTPCodecTypeVideo {
		kind = core.KindVideo
	}

	codec := tr.Codec()
	channels := int(codec.Channels)
	if channels == 0 {
		channels = 1
	}

	return &remoteTrack{
		tr:        tr,
		kind:      kind,
		decode:    g711Decoder(codec.MimeType),
		clockRate: codec.ClockRate,
		channels:  channels,
	}
}

func (t *remoteTrack) ID() string           { return t.tr.ID() }
func (t *remoteTrack) Kind() core.MediaKind { return t.kind }

func (t *remoteTrack) AddAudioSink(s core.AudioSink) {
	if s == nil {
		return
	}
	t.mu.Lock()
	t.sinks = append(t.sinks, s)
	t.mu.Unlock()
}

func (t *remoteTrack) RemoveAudioSink(s core.AudioSink) {
	t.mu.Lock()
	for i, cur := range t.sinks {
		if cur == s {
			t.sinks = append(t.sinks[:i], t.sinks[i+1:]...)
			break
		}
	}
	t.mu.Unlock()
}

func (t *remoteTrack) fan(frame core.AudioFrame) {
	t.mu.Lock()
	sinks := make([]core.AudioSink, len(t.sinks))
	copy(sinks, t.sinks)
	t.mu.Unlock()

	for _, s := range sinks {
		s.OnAudioFrame(frame)
	}
}

// readLoop pulls packets until the track ends. done always runs, so the
// owning peer can retire the track from its stream.
func (t *remoteTrack) readLoop(done func()) {
	defer done()

	var base uint32
	started := false

	for {
		pkt, _, err := t.tr.ReadRTP()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug().Str("module", "rtc.track").Str("track", t.ID()).Err(err).Msg("read loop ended")
			}
			return
		}
		if t.decode == nil || len(pkt.Payload) == 0 {
			continue
		}
		if !started {
			base = pkt.Timestamp
			started = true
		}
		t.fan(audioFrame(pkt.Payload, t.decode, t.clockRate, t.channels, pkt.Timestamp-base))
	}
}

// audioFrame expands one G.711 payload into a PCM frame. elapsed is the
// RTP-timestamp distance from the first packet of the track.
func audioFrame(payload []byte, decode func([]byte) []byte, clockRate uint32, channels int, elapsed uint32) core.AudioFrame {
	pcm := decode(payload)
	return core.AudioFrame{
		Data:          pcm,
		BitsPerSample: 16,
		SampleRate:    int(clockRate),
		Channels:      channels,
		Samples:       len(pcm) / 2 / channels,
		Timestamp:     time.Duration(elapsed) * time.Second / time.Duration(clockRate),
	}
}

// remoteStream groups inbound tracks the way the remote peer bundled
// them. live counts tracks whose read loops are still running; announced
// latches the OnAddStream delivery.
type remoteStream struct {
	id        string
	announced sync.Once

	mu    sync.Mutex
	audio []core.MediaTrack
	video []core.MediaTrack
	live  int
}

func newRemoteStream(id string) *remoteStream {
	return &remoteStream{id: id}
}

func (s *remoteStream) ID() string { return s.id }

func (s *remoteStream) AudioTracks() []core.MediaTrack {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.MediaTrack, len(s.audio))
	copy(out, s.audio)
	return out
}

func (s *remoteStream) VideoTracks() []core.MediaTrack {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.MediaTrack, len(s.video))
	copy(out, s.video)
	return out
}

func (s *remoteStream) addTrack(t *remoteTrack) {
	s.mu.Lock()
	if t.kind == core.KindVideo {
		s.video = append(s.video, t)
	} else {
		s.audio = append(s.audio, t)
	}
	s.live++
	s.mu.Unlock()
}

// trackEnded reports whether that was the last live track.
func (s *remoteStream) trackEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live--
	return s.live == 0
}

var (
	_ core.AudioFrameSource = (*remoteTrack)(nil)
	_ core.RemoteStream     = (*remoteStream)(nil)
)
