// Package speaker plays an audio graph on the default output device.
package speaker

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"github.com/Conceptual-Machines/art2music-api/internal/audio"
)

// ChannelCount is the number of output channels sent to the device.
const ChannelCount = 2

var (
	deviceOnce sync.Once
	device     *oto.Context
	deviceRate int
	deviceErr  error
)

// openDevice creates the process-wide output context. The driver allows
// only one, so every speaker shares it.
func openDevice(sampleRate int) (*oto.Context, error) {
	deviceOnce.Do(func() {
		ctx, ready, err := oto.NewContext(sampleRate, ChannelCount, oto.FormatFloat32LE)
		if err != nil {
			deviceErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		device = ctx
		deviceRate = sampleRate
	})
	if deviceErr != nil {
		return nil, deviceErr
	}
	if deviceRate != sampleRate {
		return nil, fmt.Errorf("audio device runs at %d Hz, graph at %d Hz", deviceRate, sampleRate)
	}
	return device, nil
}

// Speaker plays a graph's stream live.
type Speaker struct {
	player oto.Player
}

// Open starts playing c on the default output device.
func Open(c *audio.Context) (*Speaker, error) {
	dev, err := openDevice(c.SampleRate())
	if err != nil {
		return nil, err
	}
	p := dev.NewPlayer(c.Stream())
	p.Play()
	return &Speaker{player: p}, nil
}

// SetVolume sets the output level in [0,1].
func (s *Speaker) SetVolume(v float64) {
	s.player.SetVolume(v)
}

// Err returns the first playback error, if any.
func (s *Speaker) Err() error {
	return s.player.Err()
}

// Close stops playback.
func (s *Speaker) Close() error {
	return s.player.Close()
}
