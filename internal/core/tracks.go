package core

import "sync"

// Frame taps are the session's four standing frame sinks: local/remote
// crossed with audio/video. A tap attaches to whichever tracks currently
// exist on its side and forwards frames to the one registered callback,
// same swap semantics as the other slots.

type videoTap struct {
	mu sync.Mutex
	fn func(f VideoFrame)
}

func (t *videoTap) set(fn func(f VideoFrame)) {
	t.mu.Lock()
	t.fn = fn
	t.mu.Unlock()
}

func (t *videoTap) OnVideoFrame(f VideoFrame) {
	t.mu.Lock()
	fn := t.fn
	t.mu.Unlock()
	if fn != nil {
		fn(f)
	}
}

type audioTap struct {
	mu sync.Mutex
	fn func(f AudioFrame)
}

func (t *audioTap) set(fn func(f AudioFrame)) {
	t.mu.Lock()
	t.fn = fn
	t.mu.Unlock()
}

func (t *audioTap) OnAudioFrame(f AudioFrame) {
	t.mu.Lock()
	fn := t.fn
	t.mu.Unlock()
	if fn != nil {
		fn(f)
	}
}

var (
	_ VideoSink = (*videoTap)(nil)
	_ AudioSink = (*audioTap)(nil)
)
