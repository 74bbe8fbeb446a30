package core

import "errors"

var (
	ErrNotAttached     = errors.New("engine not attached")
	ErrAlreadyAttached = errors.New("engine already attached")
	ErrSessionClosed   = errors.New("session closed")

	ErrChannelIDInUse    = errors.New("data channel id already in use")
	ErrChannelIDNegative = errors.New("data channel id must be non-negative")
	ErrChannelNotFound   = errors.New("no data channel with this id")

	ErrTrackAttached  = errors.New("local track of this kind already attached")
	ErrWrongTrackKind = errors.New("track kind mismatch")

	ErrEmptyDescription = errors.New("empty session description")
	ErrEmptyCandidate   = errors.New("empty ice candidate")
)
