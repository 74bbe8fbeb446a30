package core

import "time"

type MediaKind int

const (
	KindAudio MediaKind = iota
	KindVideo
)

func (k MediaKind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

type PixelFormat int

const (
	// FormatI420 carries the Y, U and V planes in Data[0..2].
	FormatI420 PixelFormat = iota
	// FormatARGB is packed 32-bit pixels in Data[0].
	FormatARGB
)

func (f PixelFormat) String() string {
	switch f {
	case FormatI420:
		return "i420"
	case FormatARGB:
		return "argb"
	default:
		return "unknown"
	}
}

// VideoFrame is one decoded frame. Stride[i] is the byte width of Data[i];
// the plane count depends on Format. Frames are delivered on engine
// goroutines and must not be retained past the callback unless copied.
type VideoFrame struct {
	Format    PixelFormat
	Width     int
	Height    int
	Data      [][]byte
	Stride    []int
	Timestamp time.Duration
}

// AudioFrame is a block of interleaved 16-bit PCM samples, little-endian.
type AudioFrame struct {
	Data          []byte
	BitsPerSample int
	SampleRate    int
	Channels      int
	Samples       int
	Timestamp     time.Duration
}
