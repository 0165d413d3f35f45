package display

import (
	"sync"
	"testing"
	"time"

	"github.com/marquessv/sidecast/internal/audio"
	"github.com/marquessv/sidecast/internal/domain/layout"
	"github.com/marquessv/sidecast/internal/domain/media"
)

type fakeSurface struct {
	mu     sync.Mutex
	images []ImageFrame
	fills  []FillFrame
	videos []VideoFrame
	stops  int
	pos    time.Duration
}

func (s *fakeSurface) ShowImage(f ImageFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, f)
}

func (s *fakeSurface) ShowFill(f FillFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fills = append(s.fills, f)
}

func (s *fakeSurface) PlayVideo(f VideoFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos = append(s.videos, f)
}

func (s *fakeSurface) StopVideo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

func (s *fakeSurface) VideoPosition() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *fakeSurface) counts() (images, fills, videos, stops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images), len(s.fills), len(s.videos), s.stops
}

func newTestBinder() (*Binder, *fakeSurface, *audio.Referee) {
	surface := &fakeSurface{}
	referee := audio.NewReferee(false, false)
	b := NewBinder(surface, referee)
	b.SetHidden(false)
	return b, surface, referee
}

func videoRes(game string, delay time.Duration, mute bool) media.PageResolution {
	return media.PageResolution{
		Kind:      media.PageVideo,
		ImagePath: "/media/snes/screenshots/" + game + ".png",
		VideoPath: "/media/snes/videos/" + game + ".mp4",
		SystemID:  "snes",
		GameID:    game,
		Background: layout.PageBackground{
			Type:       layout.ContentVideo,
			Opacity:    1,
			Mute:       mute,
			VideoDelay: delay,
		},
	}
}

func imageRes(game string) media.PageResolution {
	return media.PageResolution{
		Kind:       media.PageImage,
		ImagePath:  "/media/snes/fanart/" + game + ".png",
		SystemID:   "snes",
		GameID:     game,
		Background: layout.PageBackground{Type: layout.ContentFanArt, Opacity: 1},
	}
}

func TestBinderShowsSolidFill(t *testing.T) {
	b, surface, _ := newTestBinder()

	b.Apply(media.PageResolution{
		Kind:       media.PageSolid,
		Color:      "#112233",
		Background: layout.PageBackground{Type: layout.BackgroundSolidColor, Opacity: 0.5},
	}, false)

	_, fills, _, _ := surface.counts()
	if fills != 1 {
		t.Fatalf("expected one fill, got %d", fills)
	}
	surface.mu.Lock()
	f := surface.fills[0]
	surface.mu.Unlock()
	if f.Color != "#112233" || f.Opacity != 0.5 {
		t.Errorf("unexpected fill frame: %+v", f)
	}
}

func TestBinderSkipsUnchangedResolution(t *testing.T) {
	b, surface, _ := newTestBinder()

	res := imageRes("smw")
	b.Apply(res, false)
	b.Apply(res, false)

	images, _, _, _ := surface.counts()
	if images != 1 {
		t.Errorf("unchanged resolution repainted: %d images", images)
	}

	b.Apply(res, true)
	images, _, _, _ = surface.counts()
	if images != 2 {
		t.Errorf("forced apply should repaint, got %d images", images)
	}
}

func TestBinderDelaysVideoStart(t *testing.T) {
	b, surface, referee := newTestBinder()

	b.Apply(videoRes("smw", 40*time.Millisecond, false), false)

	images, _, videos, _ := surface.counts()
	if images != 1 {
		t.Errorf("interim image should show immediately, got %d", images)
	}
	if videos != 0 {
		t.Fatal("video must not start before the delay")
	}

	time.Sleep(120 * time.Millisecond)

	_, _, videos, _ = surface.counts()
	if videos != 1 {
		t.Fatalf("video should start after the delay, got %d starts", videos)
	}
	if referee.Winner() != audio.SourceBackground {
		t.Errorf("unmuted video should hold audio focus, winner=%s", referee.Winner())
	}
}

func TestBinderBlockerCancelsPendingVideo(t *testing.T) {
	b, surface, _ := newTestBinder()

	b.Apply(videoRes("smw", 40*time.Millisecond, false), false)
	b.SetGameplay(true)

	time.Sleep(120 * time.Millisecond)
	_, _, videos, _ := surface.counts()
	if videos != 0 {
		t.Fatal("video must never start while gameplay blocks it")
	}

	b.SetGameplay(false)
	time.Sleep(120 * time.Millisecond)
	_, _, videos, _ = surface.counts()
	if videos != 1 {
		t.Errorf("clearing the blocker should re-arm the delayed start, got %d", videos)
	}
}

func TestBinderZeroDelayStartsImmediately(t *testing.T) {
	b, surface, _ := newTestBinder()

	b.Apply(videoRes("smw", 0, false), false)

	images, _, videos, _ := surface.counts()
	if videos != 1 {
		t.Errorf("zero delay should start synchronously, got %d", videos)
	}
	if images != 0 {
		t.Errorf("zero delay must not flash the interim image, got %d", images)
	}
}

func TestBinderBlockerRestoresInterimImage(t *testing.T) {
	b, surface, _ := newTestBinder()

	b.Apply(videoRes("smw", 0, false), false)
	b.SetGameplay(true)

	images, _, _, stops := surface.counts()
	if stops != 1 {
		t.Fatalf("gameplay should stop the video, got %d stops", stops)
	}
	if images != 1 {
		t.Errorf("stopped video should fall back to the interim image, got %d", images)
	}
}

func TestBinderMutedVideoKeepsMusicFocus(t *testing.T) {
	b, surface, referee := newTestBinder()

	b.Apply(videoRes("smw", 0, true), false)

	_, _, videos, _ := surface.counts()
	if videos != 1 {
		t.Fatal("muted video should still play")
	}
	surface.mu.Lock()
	muted := surface.videos[0].Muted
	surface.mu.Unlock()
	if !muted {
		t.Error("frame should carry the mute flag")
	}
	if referee.Winner() != audio.SourceMusic {
		t.Errorf("muted video must not claim audio focus, winner=%s", referee.Winner())
	}
}

func TestBinderSuspendResume(t *testing.T) {
	b, surface, referee := newTestBinder()

	b.Apply(videoRes("smw", 0, false), false)
	surface.mu.Lock()
	surface.pos = 7 * time.Second
	surface.mu.Unlock()

	b.Suspend()
	_, _, _, stops := surface.counts()
	if stops != 1 {
		t.Fatalf("suspend should stop the video, got %d stops", stops)
	}
	if referee.Winner() != audio.SourceMusic {
		t.Error("suspended video must release audio focus")
	}

	b.Resume()
	surface.mu.Lock()
	defer surface.mu.Unlock()
	if len(surface.videos) != 2 {
		t.Fatalf("resume should restart the video, got %d starts", len(surface.videos))
	}
	if surface.videos[1].StartAt != 7*time.Second {
		t.Errorf("resume position: got %v, want 7s", surface.videos[1].StartAt)
	}
}

func TestBinderNoRestartWhileSuspended(t *testing.T) {
	b, surface, _ := newTestBinder()

	b.Apply(videoRes("smw", 0, false), false)
	b.Suspend()

	// A reload landing while the menu is open must not sneak a video in.
	b.Apply(videoRes("dkc", 0, false), false)
	_, _, videos, _ := surface.counts()
	if videos != 1 {
		t.Fatalf("suspended binder started a video, %d starts", videos)
	}

	b.Resume()
	_, _, videos, _ = surface.counts()
	if videos != 2 {
		t.Errorf("resume should start the new page's video, got %d", videos)
	}
}

func TestBinderPageChangeReplacesVideo(t *testing.T) {
	b, surface, _ := newTestBinder()

	b.Apply(videoRes("smw", 0, false), false)
	b.Apply(imageRes("dkc"), false)

	images, _, _, stops := surface.counts()
	if stops != 1 {
		t.Errorf("old video should stop on page change, got %d stops", stops)
	}
	if images != 1 {
		t.Errorf("new image should show, got %d images total", images)
	}
}

func TestBinderHiddenSurfaceBlocksVideo(t *testing.T) {
	surface := &fakeSurface{}
	b := NewBinder(surface, audio.NewReferee(false, false))

	b.Apply(videoRes("smw", 0, false), false)
	_, _, videos, _ := surface.counts()
	if videos != 0 {
		t.Fatal("hidden surface must not receive video")
	}

	b.SetHidden(false)
	_, _, videos, _ = surface.counts()
	if videos != 1 {
		t.Errorf("revealing the surface should start the video, got %d", videos)
	}
}
