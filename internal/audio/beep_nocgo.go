//go:build !((linux && cgo) || windows || darwin)

package audio

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SpeakerAvailable indicates whether real audio output is supported in
// this build. Speaker playback requires cgo on Linux.
const SpeakerAvailable = false

// Beep is a stub for builds without speaker support. Load and Play fail so
// the player's playback-failure policy decides what the UI sees.
type Beep struct {
	logger *logrus.Logger
}

// NewBeep creates a stub playback backend
func NewBeep(logger *logrus.Logger) *Beep {
	return &Beep{logger: logger}
}

func (b *Beep) SetHandler(Handler) {}

func (b *Beep) Load(Source) error {
	return fmt.Errorf("audio output not available in this build")
}

func (b *Beep) Play() error {
	return fmt.Errorf("audio output not available in this build")
}

func (b *Beep) Pause() {}

func (b *Beep) Resume() {}

func (b *Beep) Seek(float64) {}

func (b *Beep) SetVolume(float64) {}

func (b *Beep) Close() error { return nil }
