package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/ovrinput/internal/config"
	"github.com/soar/ovrinput/internal/console"
	"github.com/soar/ovrinput/internal/hub"
	"github.com/soar/ovrinput/internal/input"
	"github.com/soar/ovrinput/internal/monitor"
	"github.com/soar/ovrinput/internal/sdlpad"
	"github.com/soar/ovrinput/internal/server"
	"github.com/soar/ovrinput/internal/tail"
	"github.com/soar/ovrinput/internal/tray"
	"github.com/soar/ovrinput/internal/vr"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if cfg.Tail {
		runTail(cfg)
		return
	}
	run(cfg)
}

func runTail(cfg *config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	addr := "ws" + tray.BrowserURL(cfg.Listen)[len("http"):] + "/ws"
	if err := tail.Run(ctx, tail.Options{Addr: addr, Out: os.Stdout}); err != nil {
		log.Fatalf("Tail error: %v", err)
	}
}

func run(cfg *config.Config) {
	// Double-clicked on Windows: no console to press Ctrl+C in
	if !console.Attached() {
		cfg.Tray = true
	}

	// Create cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	// Channel for tray- or console-triggered shutdown
	shutdownRequested := make(chan struct{})
	var shutdownOnce sync.Once
	requestShutdown := func() {
		shutdownOnce.Do(func() { close(shutdownRequested) })
	}
	rearmConsole := console.HandleInterrupt(requestShutdown)

	// Pick the runtime backend
	var (
		actions  vr.ActionSystem
		tracking vr.TrackingSystem
		driver   *monitor.SimDriver
		reader   *sdlpad.Reader
	)
	switch cfg.Backend {
	case config.BackendSDL:
		reader = sdlpad.NewReader()
		reader.OnInit(rearmConsole)
		actions, tracking = reader.System(), reader.System()
	default:
		sim := vr.NewSim()
		driver = monitor.NewSimDriver(sim)
		actions, tracking = sim, sim
	}

	manager, err := input.NewManager(actions, tracking, cfg.InputOptions())
	if err != nil {
		log.Fatalf("Input initialization failed: %v", err)
	}

	loop := monitor.New(manager, cfg.FrameInterval())
	if driver != nil {
		loop.BeforeFrame(driver.Tick)
	}

	// Create and start hub
	h := hub.NewHub()
	go h.Run(ctx)

	// Create broadcaster
	broadcaster := hub.NewBroadcaster(h, loop.Frames())
	go broadcaster.Run(ctx)

	// Create and start HTTP server
	srv, err := server.New(h, broadcaster, loop, getFrontendFS(), cfg.Listen)
	if err != nil {
		log.Fatalf("Server initialization failed: %v", err)
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Run the SDL thread (it owns every SDL call) and the frame loop
	readerDone := make(chan struct{})
	readerErrCh := make(chan error, 1)
	if reader != nil {
		go func() {
			defer close(readerDone)
			if err := reader.Run(ctx); err != nil {
				readerErrCh <- err
			}
		}()
	} else {
		close(readerDone)
	}

	loopDone := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(loopDone)
	}()

	url := tray.BrowserURL(cfg.Listen)
	log.Printf("ovrinput started (%s backend): %s", cfg.Backend, url)

	var t *tray.Tray
	if cfg.Tray {
		t = tray.New(cfg.Listen, cfg.Backend, requestShutdown)
		go t.Run(tray.Icon())
	} else {
		log.Println("Press Ctrl+C to exit")
	}

	// Wait for shutdown signal, tray request, or a failing component
	select {
	case <-sigCh:
		log.Println("Shutting down...")
	case <-shutdownRequested:
		log.Println("Shutdown requested")
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
	case err := <-readerErrCh:
		log.Printf("Gamepad reader error: %v", err)
	}
	cancel()

	<-loopDone
	<-readerDone
	manager.Close()

	// Shutdown the HTTP server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if t != nil {
		t.Quit()
	}

	log.Println("ovrinput stopped")
}
