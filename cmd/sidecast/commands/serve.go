package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marquessv/sidecast/internal/audio"
	"github.com/marquessv/sidecast/internal/config"
	"github.com/marquessv/sidecast/internal/display"
	"github.com/marquessv/sidecast/internal/domain/gamelist"
	"github.com/marquessv/sidecast/internal/domain/layout"
	"github.com/marquessv/sidecast/internal/domain/media"
	"github.com/marquessv/sidecast/internal/domain/state"
	"github.com/marquessv/sidecast/internal/infra/mpd"
	"github.com/marquessv/sidecast/internal/ingest"
	"github.com/marquessv/sidecast/internal/transport/socketio"
	"github.com/marquessv/sidecast/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Sidecast backend",
	Long: `Start the Sidecast backend: signal watcher, display hub, and the
Socket.io server the renderer connects to.`,
	Example: `  # Start with the default config search path
  sidecast serve

  # Start on a custom port with debug logging
  sidecast serve --port 4001 --log-level debug

  # Start with a specific config file
  sidecast serve --config /etc/sidecast/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	// Explicit flags beat the config file.
	if cmd.Flags().Changed("port") {
		cfg.ServerPort, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	setupLogging(cfg.LogLevel)

	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Companion Display Backend")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Int("port", cfg.ServerPort).
		Str("signal_dir", cfg.SignalDir).
		Str("media_dir", cfg.MediaDir).
		Bool("mpd", cfg.MPD.Enabled).
		Msg("Configuration")

	layouts, err := layout.NewStore(cfg.LayoutFile)
	if err != nil {
		return fmt.Errorf("failed to open layout store: %w", err)
	}

	gamelists := gamelist.NewStore(cfg.GamelistDir)
	resolver := media.NewResolver(media.NewLocator(cfg.MediaDir), gamelists, cfg.LogoDir)
	referee := audio.NewReferee(cfg.MuteBackground, cfg.MuteMusic)

	socketServer, err := socketio.NewServer(cfg.MaxRemoteClients)
	if err != nil {
		return fmt.Errorf("failed to create Socket.io server: %w", err)
	}
	defer socketServer.Close()

	binder := display.NewBinder(socketServer, referee)
	screen := layout.ScreenSize{Width: cfg.Screen.Width, Height: cfg.Screen.Height}
	hub := display.NewController(
		state.NewMachine(), resolver, layouts, gamelists, binder, referee,
		screen, socketServer.Broadcast, socketServer.EmitScrollTick,
	)
	socketServer.SetHub(hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	if cfg.MPD.Enabled {
		mpdClient := mpd.NewClient(cfg.MPD.Host, cfg.MPD.Port, cfg.MPD.Password)
		if err := mpdClient.Connect(); err != nil {
			log.Warn().Err(err).Msg("MPD unavailable, ambient music disabled")
		} else {
			defer mpdClient.Close()
			musicCtl := audio.NewMusicController(mpdClient, referee, cfg.FadeDuration)
			defer musicCtl.Close()
			hub.SetStateListener(musicCtl.OnStateChange)
			hub.SetTrackSkipper(musicCtl.Next)
		}
	}

	// Adopt the frontend's last known position before live events arrive.
	hub.Seed(ingest.ReadFacts(cfg.SignalDir).SeedState())

	watcher, err := ingest.NewWatcher(cfg.SignalDir, cfg.DebounceWindow, cfg.SettleDelay, hub.Dispatch)
	if err != nil {
		return fmt.Errorf("failed to create signal watcher: %w", err)
	}
	go func() {
		if err := watcher.Start(ctx); err != nil {
			log.Error().Err(err).Msg("Signal watcher failed")
		}
	}()

	mux := http.NewServeMux()

	mux.Handle("/socket.io/", socketServer)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	// REST fallback for clients that cannot hold a socket open.
	mux.HandleFunc("/api/v1/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(hub.Current())
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      corsMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
