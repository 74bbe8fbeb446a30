package rtc

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/peerline/peerline/internal/core"
)

var (
	ErrUnsupportedCodec = errors.New("rtc: unsupported codec")
	ErrBadFrame         = errors.New("rtc: malformed frame")
)

// localTrack is any outbound track built by this package. Peer.AddTrack
// accepts only these; it needs the pion form underneath.
type localTrack interface {
	core.MediaTrack
	rtpTrack() webrtc.TrackLocal
}

// LocalAudioTrack carries app-supplied PCM16 audio. WriteFrame compresses
// each frame to the negotiated G.711 flavor for the wire and mirrors the
// uncompressed frame to attached sinks, so outgoing audio stays observable.
type LocalAudioTrack struct {
	id     string
	track  *webrtc.TrackLocalStaticSample
	encode func([]byte) []byte

	mu    sync.Mutex
	sinks []core.AudioSink
}

// NewLocalAudioTrack builds a PCMU or PCMA sample track bundled under
// streamID.
func NewLocalAudioTrack(mimeType, streamID string) (*LocalAudioTrack, error) {
	encode := g711Encoder(mimeType)
	if encode == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, mimeType)
	}

	id := uuid.NewString()
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: mimeType, ClockRate: 8000, Channels: 1},
		id, streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("create audio track: %w", err)
	}

	return &LocalAudioTrack{id: id, track: track, encode: encode}, nil
}

func (t *LocalAudioTrack) ID() string                  { return t.id }
func (t *LocalAudioTrack) Kind() core.MediaKind        { return core.KindAudio }
func (t *LocalAudioTrack) rtpTrack() webrtc.TrackLocal { return t.track }

// WriteFrame sends one PCM16 frame. The frame must carry whole samples and
// a positive rate, or the wire duration cannot be derived.
func (t *LocalAudioTrack) WriteFrame(frame core.AudioFrame) error {
	if frame.SampleRate <= 0 || frame.Samples <= 0 || len(frame.Data) < frame.Samples*2 {
		return ErrBadFrame
	}

	sample := media.Sample{
		Data:     t.encode(frame.Data),
		Duration: time.Duration(frame.Samples) * time.Second / time.Duration(frame.SampleRate),
	}
	if err := t.track.WriteSample(sample); err != nil {
		return fmt.Errorf("write audio sample: %w", err)
	}

	t.fan(frame)
	return nil
}

func (t *LocalAudioTrack) fan(frame core.AudioFrame) {
	t.mu.Lock()
	sinks := make([]core.AudioSink, len(t.sinks))
	copy(sinks, t.sinks)
	t.mu.Unlock()

	for _, s := range sinks {
		s.OnAudioFrame(frame)
	}
}

func (t *LocalAudioTrack) AddAudioSink(s core.AudioSink) {
	if s == nil {
		return
	}
	t.mu.Lock()
	t.sinks = append(t.sinks, s)
	t.mu.Unlock()
}

func (t *LocalAudioTrack) RemoveAudioSink(s core.AudioSink) {
	t.mu.Lock()
	for i, cur := range t.sinks {
		if cur == s {
			t.sinks = append(t.sinks[:i], t.sinks[i+1:]...)
			break
		}
	}
	t.mu.Unlock()
}

// LocalVideoTrack carries pre-encoded video. WriteSample forwards encoded
// access units to the engine; no encoder runs on this side, so raw frames
// pushed through WriteFrame reach attached sinks only.
type LocalVideoTrack struct {
	id    string
	track *webrtc.TrackLocalStaticSample

	mu    sync.Mutex
	sinks []core.VideoSink
}

// NewLocalVideoTrack builds a sample track for an already-encoded codec,
// e.g. webrtc.MimeTypeVP8.
func NewLocalVideoTrack(mimeType, streamID string) (*LocalVideoTrack, error) {
	id := uuid.NewString()
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: mimeType, ClockRate: 90000},
		id, streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("create video track: %w", err)
	}

	return &LocalVideoTrack{id: id, track: track}, nil
}

func (t *LocalVideoTrack) ID() string                  { return t.id }
func (t *LocalVideoTrack) Kind() core.MediaKind        { return core.KindVideo }
func (t *LocalVideoTrack) rtpTrack() webrtc.TrackLocal { return t.track }

// WriteSample sends one encoded access unit covering the given duration.
func (t *LocalVideoTrack) WriteSample(data []byte, duration time.Duration) error {
	if err := t.track.WriteSample(media.Sample{Data: data, Duration: duration}); err != nil {
		return fmt.Errorf("write video sample: %w", err)
	}
	return nil
}

// WriteFrame mirrors a raw frame to the attached sinks.
func (t *LocalVideoTrack) WriteFrame(frame core.VideoFrame) {
	t.mu.Lock()
	sinks := make([]core.VideoSink, len(t.sinks))
	copy(sinks, t.sinks)
	t.mu.Unlock()

	for _, s := range sinks {
		s.OnVideoFrame(frame)
	}
}

func (t *LocalVideoTrack) AddVideoSink(s core.VideoSink) {
	if s == nil {
		return
	}
	t.mu.Lock()
	t.sinks = append(t.sinks, s)
	t.mu.Unlock()
}

func (t *LocalVideoTrack) RemoveVideoSink(s core.VideoSink) {
	t.mu.Lock()
	for i, cur := range t.sinks {
		if cur == s {
			t.sinks = append(t.sinks[:i], t.sinks[i+1:]...)
			break
		}
	}
	t.mu.Unlock()
}

var (
	_ core.AudioFrameSource = (*LocalAudioTrack)(nil)
	_ core.VideoFrameSource = (*LocalVideoTrack)(nil)
	_ localTrack            = (*LocalAudioTrack)(nil)
	_ localTrack            = (*LocalVideoTrack)(nil)
)
