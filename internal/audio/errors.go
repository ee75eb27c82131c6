package audio

import "errors"

var (
	ErrUnknownNode     = errors.New("audio: node does not belong to a software graph")
	ErrForeignNode     = errors.New("audio: node belongs to another context")
	ErrUnknownWaveform = errors.New("audio: unknown waveform")
	ErrInvalidSetting  = errors.New("audio: invalid node setting")
	ErrAlreadyStarted  = errors.New("audio: source already started")
	ErrNotStarted      = errors.New("audio: source not started")
	ErrAlreadyStopped  = errors.New("audio: source already stopped")
	ErrClosed          = errors.New("audio: context closed")
)
