// Command seabattle starts the Sea Battle server.
//
// It supports two modes:
//  1. "serve" (default) - runs the HTTP server exposing the REST API,
//     WebSocket push, and an /mcp HTTP endpoint
//  2. "mcp" - runs an MCP stdio server, reusing an external API server
//     when one is running or spinning up an internal one
//
// Flags control host/port, the mode directory, debug logging, and
// optional ngrok tunneling for easy external access during development.
// Every flag can also be set through the environment (or a .env file).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/avolkov/seabattle/api"
	"github.com/avolkov/seabattle/game/config"
	"github.com/avolkov/seabattle/game/service"
	"github.com/avolkov/seabattle/game/session"
	"github.com/avolkov/seabattle/transport/mcp"
	"github.com/avolkov/seabattle/transport/websocket"
)

const (
	Version = "1.0.0"
	AppName = "Sea Battle Server"
)

// Config holds the environment-driven settings. Flags override the
// values parsed here.
type Config struct {
	Host                string        `env:"HOST" envDefault:"localhost"`
	Port                int           `env:"PORT" envDefault:"8080"`
	ModeDir             string        `env:"MODE_DIR" envDefault:"modes"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	NgrokEnabled        bool          `env:"NGROK_ENABLED"`
	NgrokAuthToken      string        `env:"NGROK_AUTHTOKEN"`
	NgrokDomain         string        `env:"NGROK_DOMAIN"`
	SweepInterval       time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	TimeoutScanInterval time.Duration `env:"TIMEOUT_SCAN_INTERVAL" envDefault:"1s"`
}

func main() {
	// Load .env if present; a missing file is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid environment configuration: %v\n", err)
		os.Exit(1)
	}

	root := &cli.Command{
		Name:    "seabattle",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: cfg.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: cfg.Port, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "mode-dir", Value: cfg.ModeDir, Usage: "Directory with custom game mode files"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Value: cfg.NgrokEnabled, Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Value: cfg.NgrokAuthToken, Usage: "Ngrok auth token"},
			&cli.StringFlag{Name: "ngrok-domain", Value: cfg.NgrokDomain, Usage: "Custom ngrok domain"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server (REST API, WebSocket, /mcp endpoint)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runServe(ctx, cfg, cmd)
				},
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server backed by the REST API",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, cfg, cmd)
				},
			},
		},
		// Bare invocation serves.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServe(ctx, cfg, cmd)
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Debug flag wins over LOG_LEVEL.
func newLogger(cfg Config, debug bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

// initServices wires the mode manager, the session registry, and the
// game service.
func initServices(modeDir string) (service.GameService, error) {
	modeManager, err := config.NewManager(modeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create mode manager: %w", err)
	}
	return service.NewGameService(session.NewManager(), modeManager), nil
}

// runServe starts the HTTP server along with the background routines
// that enforce turn deadlines and sweep stale sessions.
func runServe(ctx context.Context, cfg Config, cmd *cli.Command) error {
	log := newLogger(cfg, cmd.Bool("debug"))
	log.Info().Str("version", Version).Msg("starting " + AppName)

	svc, err := initServices(cmd.String("mode-dir"))
	if err != nil {
		return err
	}

	hub := websocket.NewHub(log)
	apiServer := api.NewServer(svc, hub, log)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))
	mcpClient := mcp.NewClient("http://" + addr)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(data)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<id>&player=<id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		timeoutRoutine(runCtx, svc, apiServer, cfg.TimeoutScanInterval, log)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepRoutine(runCtx, svc, cfg.SweepInterval, log)
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(runCtx, cmd, mainRouter, log)
		}()
	}

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return nil
}

// timeoutRoutine scans timed battles for expired turn deadlines and
// pushes the final state to connected players.
func timeoutRoutine(ctx context.Context, svc service.GameService, apiServer *api.Server, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired := svc.CheckTimeouts(ctx)
			if len(expired) == 0 {
				continue
			}
			for _, id := range expired {
				log.Info().Str("session", id).Msg("turn deadline expired, game forfeited")
			}
			apiServer.NotifySessions(expired)
		}
	}
}

// sweepRoutine periodically removes sessions per the retention policy.
func sweepRoutine(ctx context.Context, svc service.GameService, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := svc.SweepExpired(ctx); removed > 0 {
				log.Info().Int("removed", removed).Msg("swept stale sessions")
			}
		}
	}
}

// runNgrok exposes the server through an ngrok tunnel.
func runNgrok(ctx context.Context, cmd *cli.Command, handler http.Handler, log zerolog.Logger) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	defer tun.Close()

	log.Info().Str("url", tun.URL()).Msg("ngrok tunnel established")
	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses an external API at
// localhost:<port> when one responds; otherwise it starts an internal
// API on a random loopback port.
func runStdioMCP(ctx context.Context, cfg Config, cmd *cli.Command) error {
	log := newLogger(cfg, cmd.Bool("debug"))

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), int(cmd.Int("port")))
	baseURL := externalURL

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info().Str("url", externalURL).Msg("using external API server for MCP")
	} else {
		svc, err := initServices(cmd.String("mode-dir"))
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(log)
		apiServer := api.NewServer(svc, hub, log)

		go func() {
			srv := &http.Server{Handler: apiServer}
			if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Info().Str("url", baseURL).Msg("started internal API server for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")
	if err := mcpserver.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
