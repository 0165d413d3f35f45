// Package display owns what the renderer shows: it binds resolved media to
// the output surface, delays and gates background video, and serializes all
// state-changing work onto a single dispatch loop.
package display

import "time"

// ImageFrame is a background image with its presentation settings.
type ImageFrame struct {
	Path       string  `json:"path"`
	Opacity    float64 `json:"opacity"`
	BlurRadius int     `json:"blurRadius"`
	PanZoom    bool    `json:"panZoom"`
}

// FillFrame is a solid-color background.
type FillFrame struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// VideoFrame is a background video start request.
type VideoFrame struct {
	Path       string        `json:"path"`
	StartAt    time.Duration `json:"startAt"`
	Muted      bool          `json:"muted"`
	Opacity    float64       `json:"opacity"`
	BlurRadius int           `json:"blurRadius"`
}

// Surface is the renderer's background layer. The socket.io transport
// implements it by emitting commands to the connected renderer; calls on a
// disconnected surface are cheap no-ops.
type Surface interface {
	ShowImage(f ImageFrame)
	ShowFill(f FillFrame)
	PlayVideo(f VideoFrame)
	StopVideo()
	// VideoPosition is the last playback position the renderer reported,
	// used to resume a suspended video where it left off.
	VideoPosition() time.Duration
}
