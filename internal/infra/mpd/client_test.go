package mpd_test

import (
	"testing"

	"github.com/marquessv/sidecast/internal/infra/mpd"
)

// Port 16600 is assumed unused; these tests exercise the disconnected paths.

func TestNewClient(t *testing.T) {
	client := mpd.NewClient("localhost", 16600, "")

	if client == nil {
		t.Error("NewClient should return a non-nil client")
	}
}

func TestClientConnectFailure(t *testing.T) {
	client := mpd.NewClient("localhost", 16600, "")

	err := client.Connect()
	if err == nil {
		t.Error("Connect should fail for non-existent server")
		client.Close()
	}
}

func TestClientPlaybackWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", 16600, "")

	if err := client.Play(); err == nil {
		t.Error("Play should fail when not connected")
	}
	if err := client.Pause(); err == nil {
		t.Error("Pause should fail when not connected")
	}
	if err := client.Next(); err == nil {
		t.Error("Next should fail when not connected")
	}
	if err := client.SetVolume(50); err == nil {
		t.Error("SetVolume should fail when not connected")
	}
}

func TestClientCloseWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", 16600, "")

	if err := client.Close(); err != nil {
		t.Errorf("Close on a disconnected client should be a no-op, got %v", err)
	}
}
