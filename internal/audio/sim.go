package audio

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sim is a clock-driven playback backend that produces no sound. It
// advances a position on a ticker and fires the same events a real backend
// would, which makes it the default for demo catalogs whose audio files
// don't exist. A start error can be injected to exercise the player's
// playback-failure policy.
type Sim struct {
	mu       sync.Mutex
	handler  Handler
	src      Source
	loaded   bool
	playing  bool
	pos      float64
	duration float64
	volume   float64
	speed    float64
	startErr error
	stop     chan struct{}
	logger   *logrus.Logger
}

const simTick = 250 * time.Millisecond

// NewSim creates a simulated backend advancing at real-time speed
func NewSim(logger *logrus.Logger) *Sim {
	return NewSimWithSpeed(logger, 1.0)
}

// NewSimWithSpeed creates a simulated backend whose clock runs at the
// given multiple of real time. Tests use large multipliers.
func NewSimWithSpeed(logger *logrus.Logger, speed float64) *Sim {
	return &Sim{
		volume: 1.0,
		speed:  speed,
		logger: logger,
	}
}

// FailNextPlay makes subsequent Play calls return err until cleared with
// a nil argument. Used to simulate autoplay rejection and missing sources.
func (s *Sim) FailNextPlay(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startErr = err
}

// SetHandler installs the event sink
func (s *Sim) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Load prepares a source, stopping any current playback
func (s *Sim) Load(src Source) error {
	s.mu.Lock()
	s.stopTickerLocked()
	s.src = src
	s.loaded = true
	s.playing = false
	s.pos = 0
	s.duration = src.DurationHint
	onMeta := s.handler.OnMetadata
	duration := s.duration
	s.mu.Unlock()

	if onMeta != nil {
		onMeta(duration)
	}
	return nil
}

// Play starts the simulated clock
func (s *Sim) Play() error {
	s.mu.Lock()
	if s.startErr != nil {
		err := s.startErr
		s.mu.Unlock()
		return err
	}
	if !s.loaded || s.playing {
		s.mu.Unlock()
		return nil
	}
	s.playing = true
	s.stop = make(chan struct{})
	go s.run(s.stop)
	s.mu.Unlock()
	return nil
}

// Pause suspends the clock, keeping the position
func (s *Sim) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTickerLocked()
	s.playing = false
}

// Resume continues the clock from the current position
func (s *Sim) Resume() {
	s.Play()
}

// Seek moves the position, clamped to [0, duration]
func (s *Sim) Seek(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if s.duration > 0 && seconds > s.duration {
		seconds = s.duration
	}
	s.pos = seconds
}

// SetVolume records the volume; a silent backend has nothing to apply it to
func (s *Sim) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

// Close stops the clock
func (s *Sim) Close() error {
	s.Pause()
	return nil
}

// run advances the position until the source ends or the ticker is stopped
func (s *Sim) run(stop chan struct{}) {
	ticker := time.NewTicker(simTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.playing {
				s.mu.Unlock()
				return
			}
			s.pos += simTick.Seconds() * s.speed
			ended := s.duration > 0 && s.pos >= s.duration
			if ended {
				s.pos = s.duration
				s.playing = false
				s.stopTickerLocked()
			}
			pos := s.pos
			onProgress := s.handler.OnProgress
			onEnded := s.handler.OnEnded
			s.mu.Unlock()

			if onProgress != nil {
				onProgress(pos)
			}
			if ended {
				if onEnded != nil {
					onEnded()
				}
				return
			}
		}
	}
}

// stopTickerLocked signals the run goroutine to exit (lock must be held)
func (s *Sim) stopTickerLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
