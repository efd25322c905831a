package player_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"vibrato/internal/audio"
	"vibrato/internal/player"
	"vibrato/internal/storage"
	"vibrato/pkg/errs"
	"vibrato/pkg/models"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testQueue() []models.Track {
	return []models.Track{
		{ID: 1, Title: "First", Artist: "A", Duration: "3:00", Audio: "one.mp3"},
		{ID: 2, Title: "Second", Artist: "B", Duration: "2:30", Audio: "two.mp3"},
		{ID: 3, Title: "Third", Artist: "C", Duration: "4:15", Audio: "three.mp3"},
	}
}

func newTestPlayer(t *testing.T, opts player.Options) (*player.Player, *audio.Sim) {
	t.Helper()
	sim := audio.NewSim(testLogger())
	p := player.New(sim, storage.NewMemory(), testLogger(), opts)
	t.Cleanup(func() { sim.Close() })
	return p, sim
}

func TestPlayTrackSetsQueueAndIndex(t *testing.T) {
	p, _ := newTestPlayer(t, player.Options{})
	queue := testQueue()

	if err := p.PlayTrack(queue[1], queue); err != nil {
		t.Fatalf("PlayTrack failed: %v", err)
	}

	state := p.State()
	if state.Track == nil || state.Track.ID != 2 {
		t.Fatalf("Expected track 2 to be current, got %+v", state.Track)
	}
	if !state.IsPlaying {
		t.Error("Expected playing state after PlayTrack")
	}
	if state.QueueLength != 3 {
		t.Errorf("Expected queue length 3, got %d", state.QueueLength)
	}
	if state.QueueIndex != 1 {
		t.Errorf("Expected queue index 1, got %d", state.QueueIndex)
	}
	if state.Duration != 150 {
		t.Errorf("Expected duration 150s from the track metadata, got %v", state.Duration)
	}
	if state.Track.PlayCount != 1 {
		t.Errorf("Expected play count 1, got %d", state.Track.PlayCount)
	}
}

func TestNextWrapsCircularly(t *testing.T) {
	p, _ := newTestPlayer(t, player.Options{})
	queue := testQueue()
	if err := p.PlayTrack(queue[0], queue); err != nil {
		t.Fatalf("PlayTrack failed: %v", err)
	}

	// Advancing len(queue) times must land back on the starting track
	want := []int{2, 3, 1}
	for _, id := range want {
		p.Next()
		if got := p.State().Track.ID; got != id {
			t.Fatalf("Expected track %d after Next, got %d", id, got)
		}
	}
}

func TestPreviousWrapsCircularly(t *testing.T) {
	p, _ := newTestPlayer(t, player.Options{})
	queue := testQueue()
	if err := p.PlayTrack(queue[0], queue); err != nil {
		t.Fatalf("PlayTrack failed: %v", err)
	}

	p.Previous()
	if got := p.State().Track.ID; got != 3 {
		t.Errorf("Expected Previous from the first track to wrap to 3, got %d", got)
	}
	p.Previous()
	if got := p.State().Track.ID; got != 2 {
		t.Errorf("Expected track 2, got %d", got)
	}
}

func TestNextOnEmptyQueueIsNoop(t *testing.T) {
	p, _ := newTestPlayer(t, player.Options{})

	p.Next()
	p.Previous()

	state := p.State()
	if state.Track != nil {
		t.Errorf("Expected no current track, got %+v", state.Track)
	}
	if state.IsPlaying {
		t.Error("Expected paused state on empty queue")
	}
}

func TestShuffleUsesRandomIndex(t *testing.T) {
	picked := 2
	p, _ := newTestPlayer(t, player.Options{
		RandIntn: func(n int) int {
			if n != 3 {
				t.Errorf("Expected random range 3, got %d", n)
			}
			return picked
		},
	})
	queue := testQueue()
	if err := p.PlayTrack(queue[0], queue); err != nil {
		t.Fatalf("PlayTrack failed: %v", err)
	}

	p.SetShuffle(true)
	p.Next()
	if got := p.State().Track.ID; got != 3 {
		t.Errorf("Expected shuffle to pick track 3, got %d", got)
	}

	// Shuffle applies to Previous too
	picked = 0
	p.Previous()
	if got := p.State().Track.ID; got != 1 {
		t.Errorf("Expected shuffle to pick track 1, got %d", got)
	}
}

func TestVolumeClamped(t *testing.T) {
	p, _ := newTestPlayer(t, player.Options{})

	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"AboveRange", 1.5, 1.0},
		{"BelowRange", -0.2, 0.0},
		{"InRange", 0.35, 0.35},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p.SetVolume(tc.in)
			if got := p.State().Volume; got != tc.want {
				t.Errorf("Expected volume %v, got %v", tc.want, got)
			}
		})
	}
}

func TestVolumeIndependentOfPlayState(t *testing.T) {
	p, _ := newTestPlayer(t, player.Options{})
	queue := testQueue()
	if err := p.PlayTrack(queue[0], queue); err != nil {
		t.Fatalf("PlayTrack failed: %v", err)
	}

	p.Pause()
	p.SetVolume(0.5)

	state := p.State()
	if state.IsPlaying {
		t.Error("Expected paused state to survive a volume change")
	}
	if state.Volume != 0.5 {
		t.Errorf("Expected volume 0.5, got %v", state.Volume)
	}
}

func TestSeekClampedToDuration(t *testing.T) {
	p, _ := newTestPlayer(t, player.Options{})
	queue := testQueue()
	if err := p.PlayTrack(queue[0], queue); err != nil { // 3:00 = 180s
		t.Fatalf("PlayTrack failed: %v", err)
	}

	p.SeekTo(500)
	if got := p.State().CurrentTime; got != 180 {
		t.Errorf("Expected seek past the end to clamp to 180, got %v", got)
	}

	p.SeekTo(-10)
	if got := p.State().CurrentTime; got != 0 {
		t.Errorf("Expected negative seek to clamp to 0, got %v", got)
	}

	p.SeekTo(42)
	if got := p.State().CurrentTime; got != 42 {
		t.Errorf("Expected seek to 42, got %v", got)
	}
}

func TestTogglePlayPause(t *testing.T) {
	p, _ := newTestPlayer(t, player.Options{})
	queue := testQueue()
	if err := p.PlayTrack(queue[0], queue); err != nil {
		t.Fatalf("PlayTrack failed: %v", err)
	}

	p.TogglePlayPause()
	if p.State().IsPlaying {
		t.Error("Expected paused after first toggle")
	}
	p.TogglePlayPause()
	if !p.State().IsPlaying {
		t.Error("Expected playing after second toggle")
	}
}

func TestToggleWithoutTrackIsNoop(t *testing.T) {
	p, _ := newTestPlayer(t, player.Options{})
	p.TogglePlayPause()
	if p.State().IsPlaying {
		t.Error("Expected toggle on an empty player to stay paused")
	}
}

func TestOptimisticPlaybackFailure(t *testing.T) {
	p, sim := newTestPlayer(t, player.Options{})
	sim.FailNextPlay(errors.New("autoplay rejected"))

	queue := testQueue()
	if err := p.PlayTrack(queue[0], queue); err != nil {
		t.Fatalf("Expected the start error to be masked, got %v", err)
	}
	if !p.State().IsPlaying {
		t.Error("Expected optimistic playing state despite the start failure")
	}
}

func TestStrictPlaybackFailure(t *testing.T) {
	p, sim := newTestPlayer(t, player.Options{StrictPlaybackErrors: true})
	sim.FailNextPlay(errors.New("autoplay rejected"))

	queue := testQueue()
	err := p.PlayTrack(queue[0], queue)
	if err == nil {
		t.Fatal("Expected a playback start error in strict mode")
	}
	var startErr *errs.PlaybackStartError
	if !errors.As(err, &startErr) {
		t.Fatalf("Expected PlaybackStartError, got %T: %v", err, err)
	}
	if p.State().IsPlaying {
		t.Error("Expected paused state after a strict start failure")
	}
}

func TestLastPlayedPersisted(t *testing.T) {
	store := storage.NewMemory()
	sim := audio.NewSim(testLogger())
	defer sim.Close()
	p := player.New(sim, store, testLogger(), player.Options{})

	queue := testQueue()
	if err := p.PlayTrack(queue[2], queue); err != nil {
		t.Fatalf("PlayTrack failed: %v", err)
	}

	id, ok := p.LastPlayed()
	if !ok {
		t.Fatal("Expected a persisted last-played track")
	}
	if id != 3 {
		t.Errorf("Expected last-played ID 3, got %d", id)
	}
}

func TestSubscribeReceivesStateChanges(t *testing.T) {
	p, _ := newTestPlayer(t, player.Options{})
	ch := p.Subscribe()
	defer p.Unsubscribe(ch)

	p.SetVolume(0.25)

	select {
	case state := <-ch:
		if state.Volume != 0.25 {
			t.Errorf("Expected notified volume 0.25, got %v", state.Volume)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for a state notification")
	}
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestTrackEndRepeatOffSingleTrackPauses(t *testing.T) {
	sim := audio.NewSimWithSpeed(testLogger(), 50)
	defer sim.Close()
	p := player.New(sim, storage.NewMemory(), testLogger(), player.Options{})

	track := models.Track{ID: 1, Title: "Only", Duration: "0:05", Audio: "only.mp3"}
	if err := p.PlayTrack(track, []models.Track{track}); err != nil {
		t.Fatalf("PlayTrack failed: %v", err)
	}

	// 5s of audio at 50x elapses within the first few ticks
	ended := waitFor(t, 3*time.Second, func() bool {
		return !p.State().IsPlaying
	})
	if !ended {
		t.Fatal("Expected playback to stop at the end of the only track")
	}
}

func TestTrackEndAdvancesQueue(t *testing.T) {
	sim := audio.NewSimWithSpeed(testLogger(), 50)
	defer sim.Close()
	p := player.New(sim, storage.NewMemory(), testLogger(), player.Options{})

	queue := []models.Track{
		{ID: 1, Title: "First", Duration: "0:05", Audio: "one.mp3"},
		{ID: 2, Title: "Second", Duration: "9:00", Audio: "two.mp3"},
	}
	if err := p.PlayTrack(queue[0], queue); err != nil {
		t.Fatalf("PlayTrack failed: %v", err)
	}

	advanced := waitFor(t, 3*time.Second, func() bool {
		state := p.State()
		return state.Track != nil && state.Track.ID == 2
	})
	if !advanced {
		t.Fatal("Expected the queue to advance when the first track ended")
	}
}
