package rtc

import (
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerline/peerline/internal/core"
)

type captureAudioSink struct {
	mu     sync.Mutex
	frames []core.AudioFrame
}

func (s *captureAudioSink) OnAudioFrame(f core.AudioFrame) {
	s.mu.Lock()
	s.frames = append(s.frames, f)
	s.mu.Unlock()
}

func (s *captureAudioSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

type captureVideoSink struct {
	mu     sync.Mutex
	frames []core.VideoFrame
}

func (s *captureVideoSink) OnVideoFrame(f core.VideoFrame) {
	s.mu.Lock()
	s.frames = append(s.frames, f)
	s.mu.Unlock()
}

func TestLocalAudioTrackFansFrames(t *testing.T) {
	track, err := NewLocalAudioTrack(webrtc.MimeTypePCMU, "mic")
	require.NoError(t, err)
	assert.Equal(t, core.KindAudio, track.Kind())
	assert.NotEmpty(t, track.ID())

	sink := &captureAudioSink{}
	track.AddAudioSink(sink)

	frame := core.AudioFrame{
		Data:          make([]byte, 320),
		BitsPerSample: 16,
		SampleRate:    8000,
		Channels:      1,
		Samples:       160,
	}
	require.NoError(t, track.WriteFrame(frame))
	require.Equal(t, 1, sink.count())
	assert.Equal(t, 160, sink.frames[0].Samples)

	track.RemoveAudioSink(sink)
	require.NoError(t, track.WriteFrame(frame))
	assert.Equal(t, 1, sink.count())
}

func TestLocalAudioTrackRejects(t *testing.T) {
	_, err := NewLocalAudioTrack(webrtc.MimeTypeOpus, "mic")
	require.ErrorIs(t, err, ErrUnsupportedCodec)

	track, err := NewLocalAudioTrack(webrtc.MimeTypePCMA, "mic")
	require.NoError(t, err)

	err = track.WriteFrame(core.AudioFrame{SampleRate: 8000, Samples: 160})
	require.ErrorIs(t, err, ErrBadFrame)

	err = track.WriteFrame(core.AudioFrame{Data: make([]byte, 320), Samples: 160})
	require.ErrorIs(t, err, ErrBadFrame)
}

func TestLocalVideoTrackSinksOnly(t *testing.T) {
	track, err := NewLocalVideoTrack(webrtc.MimeTypeVP8, "cam")
	require.NoError(t, err)
	assert.Equal(t, core.KindVideo, track.Kind())

	sink := &captureVideoSink{}
	track.AddVideoSink(sink)

	track.WriteFrame(core.VideoFrame{
		Format: core.FormatI420,
		Width:  320,
		Height: 240,
		Data:   [][]byte{make([]byte, 320*240), make([]byte, 320*240/4), make([]byte, 320*240/4)},
		Stride: []int{320, 160, 160},
	})

	require.Len(t, sink.frames, 1)
	assert.Equal(t, 320, sink.frames[0].Width)

	track.RemoveVideoSink(sink)
	track.WriteFrame(core.VideoFrame{Format: core.FormatI420, Width: 320, Height: 240})
	assert.Len(t, sink.frames, 1)
}
