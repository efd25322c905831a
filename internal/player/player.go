// Package player owns the globally-current track and queue. It translates
// user intent (play, pause, next, seek, volume) into internal state changes
// and commands to the audio playback primitive, and mirrors the primitive's
// events (metadata, progress, ended) back into observable state.
package player

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"vibrato/internal/audio"
	"vibrato/internal/storage"
	"vibrato/pkg/errs"
	"vibrato/pkg/models"

	"github.com/sirupsen/logrus"
)

// RepeatMode governs behavior at track end
type RepeatMode int

const (
	RepeatOff RepeatMode = iota // stop after the queue's only track, otherwise advance
	RepeatAll                   // advance circularly through the queue
	RepeatOne                   // replay the same track
)

// State is a snapshot of the player, safe to hand to the UI layer
type State struct {
	Track       *models.Track `json:"track,omitempty"`
	IsPlaying   bool          `json:"isPlaying"`
	CurrentTime float64       `json:"currentTime"` // seconds
	Duration    float64       `json:"duration"`    // seconds
	Volume      float64       `json:"volume"`      // 0.0 to 1.0
	IsShuffled  bool          `json:"isShuffled"`
	RepeatMode  RepeatMode    `json:"repeatMode"`
	QueueLength int           `json:"queueLength"`
	QueueIndex  int           `json:"queueIndex"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Options configures a Player
type Options struct {
	// StrictPlaybackErrors disables the optimistic "assume playback
	// started" fallback: a rejected play request is returned to the caller
	// and the player stays paused. The default (false) tolerates missing
	// audio sources in demo catalogs.
	StrictPlaybackErrors bool

	// RandIntn overrides the shuffle index source. Nil uses math/rand.
	RandIntn func(n int) int
}

// Player is the queue/playback state machine. All methods are safe for
// concurrent use. The playback primitive is only ever invoked with the
// player's lock released, so its event callbacks may call back in.
type Player struct {
	playback audio.Playback
	store    storage.Store
	logger   *logrus.Logger
	strict   bool
	randIntn func(n int) int

	mu          sync.Mutex
	queue       []models.Track
	index       int
	track       *models.Track
	isPlaying   bool
	currentTime float64
	duration    float64
	volume      float64
	shuffle     bool
	repeat      RepeatMode
	listeners   []chan State
}

// New creates a player driving the given playback primitive. The store is
// used for best-effort persistence of the last played track.
func New(playback audio.Playback, store storage.Store, logger *logrus.Logger, opts Options) *Player {
	randIntn := opts.RandIntn
	if randIntn == nil {
		randIntn = rand.Intn
	}

	p := &Player{
		playback: playback,
		store:    store,
		logger:   logger,
		strict:   opts.StrictPlaybackErrors,
		randIntn: randIntn,
		volume:   1.0,
	}

	playback.SetHandler(audio.Handler{
		OnMetadata: p.onMetadata,
		OnProgress: p.onProgress,
		OnEnded:    p.onEnded,
	})

	return p
}

// PlayTrack makes track the current one and requests playback to start.
// A non-nil queue replaces the current queue, with the index set to the
// track's position in it (or 0 if absent). With a nil queue the existing
// queue is kept and the index moved to the track if it is a member.
//
// Unless strict playback errors are enabled, a rejected play request is
// logged and masked: the player still reports a playing state.
func (p *Player) PlayTrack(track models.Track, queue []models.Track) error {
	p.mu.Lock()
	if queue != nil {
		p.queue = make([]models.Track, len(queue))
		copy(p.queue, queue)
		p.index = 0
		for i, t := range p.queue {
			if t.ID == track.ID {
				p.index = i
				break
			}
		}
	} else {
		for i, t := range p.queue {
			if t.ID == track.ID {
				p.index = i
				break
			}
		}
	}
	p.mu.Unlock()

	return p.start(track)
}

// Pause suspends playback
func (p *Player) Pause() {
	p.playback.Pause()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.isPlaying = false
	p.notifyLocked()
}

// Resume continues playback of the current track; no-op when empty
func (p *Player) Resume() {
	p.mu.Lock()
	if p.track == nil {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.playback.Resume()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.isPlaying = true
	p.notifyLocked()
}

// TogglePlayPause delegates to Pause or Resume based on the current state
func (p *Player) TogglePlayPause() {
	p.mu.Lock()
	playing := p.isPlaying
	p.mu.Unlock()

	if playing {
		p.Pause()
	} else {
		p.Resume()
	}
}

// Next advances the queue index by one, wrapping circularly. With shuffle
// enabled the next index is uniformly random instead, which may repeat a
// track before visiting every other one. No-op on an empty queue.
func (p *Player) Next() {
	p.advance(func(index, length int) int {
		return (index + 1) % length
	})
}

// Previous retreats the queue index by one, wrapping circularly. Shuffle
// picks a uniformly random index, as with Next. No-op on an empty queue.
func (p *Player) Previous() {
	p.advance(func(index, length int) int {
		if index == 0 {
			return length - 1
		}
		return index - 1
	})
}

func (p *Player) advance(step func(index, length int) int) {
	p.mu.Lock()
	if len(p.queue) == 0 {
		p.mu.Unlock()
		return
	}
	if p.shuffle {
		p.index = p.randIntn(len(p.queue))
	} else {
		p.index = step(p.index, len(p.queue))
	}
	track := p.queue[p.index]
	p.mu.Unlock()

	p.start(track)
}

// SetVolume stores the volume, clamped to the canonical 0.0–1.0 range,
// and applies it to the playback primitive
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	p.playback.SetVolume(v)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	p.notifyLocked()
}

// SeekTo moves the playback position to t seconds, clamped to the known
// duration
func (p *Player) SeekTo(t float64) {
	p.mu.Lock()
	if t < 0 {
		t = 0
	}
	if p.duration > 0 && t > p.duration {
		t = p.duration
	}
	p.currentTime = t
	p.notifyLocked()
	p.mu.Unlock()

	p.playback.Seek(t)
}

// SetShuffle toggles random index selection for Next and Previous
func (p *Player) SetShuffle(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shuffle = on
	p.notifyLocked()
}

// SetRepeat sets the track-end policy
func (p *Player) SetRepeat(mode RepeatMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeat = mode
	p.notifyLocked()
}

// State returns a snapshot of the player state
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

// Queue returns a copy of the current queue
func (p *Player) Queue() []models.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	queue := make([]models.Track, len(p.queue))
	copy(queue, p.queue)
	return queue
}

// Subscribe adds a listener for state changes. The channel is buffered;
// a listener that stops draining is dropped.
func (p *Player) Subscribe() <-chan State {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan State, 16)
	p.listeners = append(p.listeners, ch)
	return ch
}

// Unsubscribe removes a listener and closes its channel
func (p *Player) Unsubscribe(ch <-chan State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, listener := range p.listeners {
		if listener == ch {
			close(listener)
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			break
		}
	}
}

// start loads track into the playback primitive and requests playback.
// Must be called without the lock held.
func (p *Player) start(track models.Track) error {
	p.mu.Lock()
	track.PlayCount++
	if p.index < len(p.queue) && p.queue[p.index].ID == track.ID {
		p.queue[p.index].PlayCount = track.PlayCount
	}
	p.track = &track
	p.currentTime = 0
	p.duration = float64(track.DurationSeconds())
	src := audio.Source{Ref: track.Audio, DurationHint: p.duration}
	volume := p.volume
	p.mu.Unlock()

	var startErr error
	if err := p.playback.Load(src); err != nil {
		startErr = err
	} else {
		p.playback.SetVolume(volume)
		if err := p.playback.Play(); err != nil {
			startErr = err
		}
	}

	p.mu.Lock()
	// Optimistic playing state unless strict errors are on: a rejected
	// play request must not block demo usage with missing audio files
	p.isPlaying = startErr == nil || !p.strict
	p.notifyLocked()
	p.mu.Unlock()

	p.persistLastPlayed(track.ID)

	if startErr != nil {
		playErr := &errs.PlaybackStartError{Source: src.Ref, Err: startErr}
		p.logger.WithError(startErr).WithFields(logrus.Fields{
			"track":  track.Title,
			"source": src.Ref,
		}).Warn("Playback failed to start")
		if p.strict {
			return playErr
		}
		return nil
	}
	return nil
}

// onMetadata mirrors the primitive's loaded-metadata event
func (p *Player) onMetadata(duration float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duration = duration
	if p.duration > 0 && p.currentTime > p.duration {
		p.currentTime = p.duration
	}
	p.notifyLocked()
}

// onProgress mirrors the primitive's time-update event
func (p *Player) onProgress(position float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.duration > 0 && position > p.duration {
		position = p.duration
	}
	p.currentTime = position
	p.notifyLocked()
}

// onEnded applies the repeat policy when a track plays to completion
func (p *Player) onEnded() {
	p.mu.Lock()
	repeat := p.repeat
	queueLen := len(p.queue)
	track := p.track
	p.mu.Unlock()

	switch {
	case track == nil:
		return
	case repeat == RepeatOne:
		p.SeekTo(0)
		if err := p.playback.Play(); err != nil {
			p.logger.WithError(err).Warn("Replay failed to start")
		}
	case repeat == RepeatOff && queueLen <= 1:
		p.mu.Lock()
		p.isPlaying = false
		p.notifyLocked()
		p.mu.Unlock()
	default:
		p.Next()
	}
}

// persistLastPlayed writes the current track ID, fire-and-forget
func (p *Player) persistLastPlayed(id int) {
	if p.store == nil {
		return
	}
	if err := p.store.Set(storage.KeyLastPlayed, []byte(strconv.Itoa(id))); err != nil {
		warn := &errs.PersistenceWarning{Key: storage.KeyLastPlayed, Err: err}
		p.logger.WithError(warn).Warn("Could not persist last played track")
	}
}

// LastPlayed returns the persisted last-played track ID, if any
func (p *Player) LastPlayed() (int, bool) {
	if p.store == nil {
		return 0, false
	}
	value, ok, err := p.store.Get(storage.KeyLastPlayed)
	if err != nil || !ok {
		return 0, false
	}
	id, err := strconv.Atoi(string(value))
	if err != nil {
		return 0, false
	}
	return id, true
}

func (p *Player) stateLocked() State {
	state := State{
		IsPlaying:   p.isPlaying,
		CurrentTime: p.currentTime,
		Duration:    p.duration,
		Volume:      p.volume,
		IsShuffled:  p.shuffle,
		RepeatMode:  p.repeat,
		QueueLength: len(p.queue),
		QueueIndex:  p.index,
		UpdatedAt:   time.Now(),
	}
	if p.track != nil {
		trackCopy := *p.track
		state.Track = &trackCopy
	}
	return state
}

// notifyLocked sends the current state to all subscribers (must be called
// with the lock held)
func (p *Player) notifyLocked() {
	state := p.stateLocked()
	alive := p.listeners[:0]
	for _, listener := range p.listeners {
		select {
		case listener <- state:
			alive = append(alive, listener)
		default:
			// Listener stopped draining, drop it
			close(listener)
		}
	}
	p.listeners = alive
}
