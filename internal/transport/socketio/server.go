// Package socketio is the renderer-facing transport: it pushes display
// snapshots and surface commands to connected clients over Socket.io and
// feeds their interaction events back into the display hub.
package socketio

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/marquessv/sidecast/internal/display"
	"github.com/marquessv/sidecast/internal/domain/layout"
)

// Server handles Socket.io connections and events. It also implements
// display.Surface: surface commands are broadcast to every connected client,
// which is a no-op while nobody is connected.
type Server struct {
	io      *socket.Server
	limiter *ConnLimiter
	mu      sync.RWMutex
	clients map[string]*socket.Socket
	hub     *display.Controller

	lastState []byte
	videoPos  atomic.Int64
}

// NewServer creates a new Socket.io server. maxRemote caps concurrent
// non-loopback clients; the local renderer is never limited.
func NewServer(maxRemote int) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := socket.NewServer(nil, opts)

	s := &Server{
		io:      server,
		limiter: NewConnLimiter(maxRemote),
		clients: make(map[string]*socket.Socket),
	}

	s.setupHandlers()

	return s, nil
}

// SetHub attaches the display hub. Must be called before serving; events
// arriving without a hub are dropped.
func (s *Server) SetHub(hub *display.Controller) {
	s.mu.Lock()
	s.hub = hub
	s.mu.Unlock()
}

func (s *Server) getHub() *display.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hub
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())
		remoteIP := client.Handshake().Address

		log.Info().Str("id", clientID).Str("ip", remoteIP).Msg("Client connected")

		if evictedID := s.limiter.Admit(clientID, remoteIP); evictedID != "" {
			s.evict(evictedID)
		}

		s.mu.Lock()
		s.clients[clientID] = client
		first := len(s.clients) == 1
		s.mu.Unlock()

		if hub := s.getHub(); hub != nil {
			if first {
				hub.SetSurfaceVisible(true)
			}
			// Send initial state after small delay
			go func() {
				time.Sleep(100 * time.Millisecond)
				client.Emit("pushState", hub.Current())
			}()
		}

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.limiter.Drop(clientID)
			s.mu.Lock()
			delete(s.clients, clientID)
			empty := len(s.clients) == 0
			s.mu.Unlock()

			if hub := s.getHub(); hub != nil && empty {
				hub.SetSurfaceVisible(false)
			}
		})

		client.On("getState", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getState")
			if hub := s.getHub(); hub != nil {
				client.Emit("pushState", hub.Current())
			}
		})

		client.On("getLayout", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getLayout")
			if hub := s.getHub(); hub != nil {
				client.Emit("pushLayout", hub.Layout())
			}
		})

		client.On("menuOpen", func(args ...any) {
			hub := s.getHub()
			if hub == nil || len(args) == 0 {
				return
			}
			if m, ok := args[0].(map[string]interface{}); ok {
				if v, ok := m["value"].(bool); ok {
					log.Debug().Str("id", clientID).Bool("open", v).Msg("menuOpen")
					hub.SetMenuOpen(v)
				}
			}
		})

		client.On("editingUnlocked", func(args ...any) {
			hub := s.getHub()
			if hub == nil || len(args) == 0 {
				return
			}
			if m, ok := args[0].(map[string]interface{}); ok {
				if v, ok := m["value"].(bool); ok {
					log.Debug().Str("id", clientID).Bool("unlocked", v).Msg("editingUnlocked")
					hub.SetEditingUnlocked(v)
				}
			}
		})

		client.On("widgetAudio", func(args ...any) {
			hub := s.getHub()
			if hub == nil || len(args) == 0 {
				return
			}
			if m, ok := args[0].(map[string]interface{}); ok {
				id, _ := m["id"].(string)
				active, _ := m["active"].(bool)
				if id != "" {
					hub.SetWidgetAudio(id, active)
				}
			}
		})

		client.On("videoProgress", func(args ...any) {
			if len(args) > 0 {
				if seconds, ok := args[0].(float64); ok {
					s.videoPos.Store(int64(seconds * float64(time.Second)))
				}
			}
		})

		client.On("videoEnded", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("videoEnded")
			if hub := s.getHub(); hub != nil {
				hub.NotifyVideoEnded()
			}
		})

		client.On("nextTrack", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("nextTrack")
			if hub := s.getHub(); hub != nil {
				hub.NextTrack()
			}
		})

		client.On("setPage", func(args ...any) {
			hub := s.getHub()
			if hub == nil || len(args) == 0 {
				return
			}
			if m, ok := args[0].(map[string]interface{}); ok {
				if v, ok := m["index"].(float64); ok {
					log.Debug().Str("id", clientID).Int("index", int(v)).Msg("setPage")
					hub.SelectPage(int(v))
				}
			}
		})

		client.On("nextPage", func(args ...any) {
			if hub := s.getHub(); hub != nil {
				hub.NextPage(1)
			}
		})

		client.On("prevPage", func(args ...any) {
			if hub := s.getHub(); hub != nil {
				hub.NextPage(-1)
			}
		})

		client.On("updateWidget", func(args ...any) {
			hub := s.getHub()
			if hub == nil || len(args) == 0 {
				return
			}
			m, ok := args[0].(map[string]interface{})
			if !ok {
				return
			}
			pageID, _ := m["pageId"].(string)
			var w layout.OverlayWidget
			if pageID == "" || !decodeArg(m["widget"], &w) {
				log.Warn().Str("id", clientID).Msg("Malformed updateWidget payload")
				return
			}
			hub.UpdateWidget(pageID, w)
		})

		client.On("saveLayout", func(args ...any) {
			hub := s.getHub()
			if hub == nil || len(args) == 0 {
				return
			}
			var l layout.Layout
			if !decodeArg(args[0], &l) {
				log.Warn().Str("id", clientID).Msg("Malformed saveLayout payload")
				return
			}
			hub.ReplaceLayout(l)
		})

		client.On("setMuted", func(args ...any) {
			hub := s.getHub()
			if hub == nil || len(args) == 0 {
				return
			}
			if m, ok := args[0].(map[string]interface{}); ok {
				background, _ := m["background"].(bool)
				music, _ := m["music"].(bool)
				hub.SetMuted(background, music)
			}
		})
	})
}

// evict disconnects a client displaced by the connection limiter.
func (s *Server) evict(clientID string) {
	s.mu.RLock()
	client := s.clients[clientID]
	s.mu.RUnlock()

	if client == nil {
		return
	}
	log.Info().Str("id", clientID).Msg("Evicting oldest remote client")
	client.Disconnect(true)
}

// decodeArg converts a loosely typed Socket.io payload into a struct via a
// JSON round trip.
func decodeArg(arg any, out any) bool {
	data, err := json.Marshal(arg)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// Broadcast pushes a display snapshot to all clients, skipping snapshots
// identical to the last one sent. Used as the display hub's sink.
func (s *Server) Broadcast(snap display.DisplayState) {
	if s.isStateSame(snap) {
		return
	}
	s.saveLastState(snap)
	s.io.Emit("pushState", snap)

	if log.Debug().Enabled() {
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().Str("state", snap.State).Int("clients", clientCount).Msg("Broadcast state")
	}
}

// EmitScrollTick advances the renderer's description auto-scroll.
func (s *Server) EmitScrollTick() {
	s.io.Emit("scrollTick")
}

// ShowImage implements display.Surface.
func (s *Server) ShowImage(f display.ImageFrame) {
	s.io.Emit("showImage", f)
}

// ShowFill implements display.Surface.
func (s *Server) ShowFill(f display.FillFrame) {
	s.io.Emit("showFill", f)
}

// PlayVideo implements display.Surface.
func (s *Server) PlayVideo(f display.VideoFrame) {
	s.videoPos.Store(int64(f.StartAt))
	s.io.Emit("playVideo", f)
}

// StopVideo implements display.Surface.
func (s *Server) StopVideo() {
	s.io.Emit("stopVideo")
}

// VideoPosition implements display.Surface using the renderer's last
// progress report.
func (s *Server) VideoPosition() time.Duration {
	return time.Duration(s.videoPos.Load())
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close closes the Socket.io server.
func (s *Server) Close() error {
	s.io.Close(nil)
	return nil
}
