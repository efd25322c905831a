// Package audio defines the playback primitive the player state machine
// drives. Backends accept a source reference, expose transport controls and
// emit loaded-metadata / time-update / ended events; they do not decide
// what plays next, that is the player's job.
package audio

// Source identifies what a backend should load. DurationHint carries the
// catalog's duration in seconds for backends that cannot probe the source
// themselves (the simulated backend).
type Source struct {
	Ref          string
	DurationHint float64
}

// Handler receives playback events. Fields may be nil; backends must check
// before calling. Callbacks are invoked without backend locks held, so a
// handler may call back into the backend (e.g. ended -> load next).
type Handler struct {
	// OnMetadata fires once per loaded source with its duration in seconds.
	OnMetadata func(duration float64)
	// OnProgress fires periodically with the playback position in seconds.
	OnProgress func(position float64)
	// OnEnded fires when the source plays to completion.
	OnEnded func()
}

// Playback is the audio primitive interface. Implementations must be safe
// for concurrent use.
type Playback interface {
	// Load prepares a source for playback, replacing any current one.
	Load(src Source) error
	// Play starts or restarts playback of the loaded source.
	Play() error
	// Pause suspends playback, keeping the position.
	Pause()
	// Resume continues playback from the current position.
	Resume()
	// Seek moves the playback position to the given offset in seconds.
	Seek(seconds float64)
	// SetVolume sets the output volume in the canonical 0.0–1.0 range.
	SetVolume(v float64)
	// SetHandler installs the event sink. Call before Load.
	SetHandler(h Handler)
	// Close releases backend resources.
	Close() error
}
