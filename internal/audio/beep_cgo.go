//go:build (linux && cgo) || windows || darwin

package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/sirupsen/logrus"
)

// SpeakerAvailable indicates whether real audio output is supported in
// this build.
const SpeakerAvailable = true

// Beep implements Playback with real speaker output via the beep library.
// Sources are local file paths; mp3, flac and wav are supported.
type Beep struct {
	mu          sync.Mutex
	handler     Handler
	initialized bool
	sampleRate  beep.SampleRate
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	level       float64
	progress    chan struct{}
	logger      *logrus.Logger
}

// NewBeep creates a speaker-backed playback backend
func NewBeep(logger *logrus.Logger) *Beep {
	return &Beep{
		sampleRate: beep.SampleRate(44100),
		level:      1.0,
		logger:     logger,
	}
}

// SetHandler installs the event sink
func (b *Beep) SetHandler(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
}

// Load decodes the source file and prepares it for playback
func (b *Beep) Load(src Source) error {
	b.mu.Lock()
	b.stopLocked()

	f, err := os.Open(src.Ref)
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("failed to open audio source: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(src.Ref)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		b.mu.Unlock()
		return fmt.Errorf("unsupported audio format: %s", filepath.Ext(src.Ref))
	}
	if err != nil {
		f.Close()
		b.mu.Unlock()
		return fmt.Errorf("failed to decode audio source: %w", err)
	}

	b.streamer = streamer
	b.format = format

	duration := format.SampleRate.D(streamer.Len()).Seconds()
	onMeta := b.handler.OnMetadata
	b.mu.Unlock()

	if onMeta != nil {
		onMeta(duration)
	}
	return nil
}

// Play starts playback of the loaded source
func (b *Beep) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return fmt.Errorf("no source loaded")
	}

	if !b.initialized {
		if err := speaker.Init(b.sampleRate, b.sampleRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		b.initialized = true
	}

	resampled := beep.Resample(4, b.format.SampleRate, b.sampleRate, b.streamer)
	b.ctrl = &beep.Ctrl{Streamer: resampled}
	b.volume = &effects.Volume{
		Streamer: b.ctrl,
		Base:     2,
		Volume:   levelToVolume(b.level),
		Silent:   b.level == 0,
	}

	b.progress = make(chan struct{})
	go b.reportProgress(b.progress)

	speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
		b.mu.Lock()
		onEnded := b.handler.OnEnded
		b.mu.Unlock()
		if onEnded != nil {
			// Separate goroutine so the handler can start the next
			// track without deadlocking the speaker
			go onEnded()
		}
	})))

	return nil
}

// Pause suspends playback, keeping the position
func (b *Beep) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		speaker.Unlock()
	}
}

// Resume continues playback from the current position
func (b *Beep) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = false
		speaker.Unlock()
	}
}

// Seek moves the playback position to the given offset in seconds
func (b *Beep) Seek(seconds float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()
	samples := b.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if err := b.streamer.Seek(samples); err != nil {
		b.logger.WithError(err).Warn("Seek failed")
	}
}

// SetVolume sets the output volume in the canonical 0.0–1.0 range
func (b *Beep) SetVolume(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = v
	if b.volume != nil {
		speaker.Lock()
		b.volume.Volume = levelToVolume(v)
		b.volume.Silent = v == 0
		speaker.Unlock()
	}
}

// Close stops playback and releases the decoder
func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	return nil
}

// stopLocked tears down the current stream (lock must be held)
func (b *Beep) stopLocked() {
	if b.progress != nil {
		close(b.progress)
		b.progress = nil
	}
	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		speaker.Unlock()
	}
	if b.streamer != nil {
		b.streamer.Close()
		b.streamer = nil
	}
	b.ctrl = nil
	b.volume = nil
}

// reportProgress polls the stream position and mirrors it to the handler
func (b *Beep) reportProgress(stop chan struct{}) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.mu.Lock()
			if b.streamer == nil {
				b.mu.Unlock()
				return
			}
			speaker.Lock()
			pos := b.streamer.Position()
			speaker.Unlock()
			position := b.format.SampleRate.D(pos).Seconds()
			onProgress := b.handler.OnProgress
			b.mu.Unlock()

			if onProgress != nil {
				onProgress(position)
			}
		}
	}
}

// levelToVolume maps the canonical 0.0–1.0 level onto beep's logarithmic
// volume scale (0 == unity gain).
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return 0 // Silent flag covers the actual muting
	}
	return math.Log2(level)
}
