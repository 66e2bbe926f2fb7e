package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/cakecatcher/internal/app"
	"github.com/ayusman/cakecatcher/internal/audio"
	"github.com/ayusman/cakecatcher/internal/capture"
	"github.com/ayusman/cakecatcher/internal/config"
	"github.com/ayusman/cakecatcher/internal/detector"
	"github.com/ayusman/cakecatcher/internal/game"
	"github.com/ayusman/cakecatcher/internal/prefs"
	"github.com/ayusman/cakecatcher/internal/render"
	"github.com/ayusman/cakecatcher/internal/server"
	"github.com/ayusman/cakecatcher/internal/store"
	"github.com/ayusman/cakecatcher/internal/tracker"
	"github.com/ayusman/cakecatcher/internal/tray"
)

// UI modes.
const (
	uiWindow   = "window"
	uiTray     = "tray"
	uiHeadless = "headless"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file (missing file uses defaults)")
		initConfig = flag.Bool("init-config", false, "write the default config to -config and exit")
		uiMode     = flag.String("ui", uiWindow, "user interface: window, tray or headless")
		input      = flag.String("input", "hand", "plate control: hand or mouse (window only)")
		playerName = flag.String("name", "", "player name for the leaderboard (default: last used)")
		addr       = flag.String("addr", "", "HTTP listen address (overrides server.addr)")
		cameraID   = flag.Int("camera", -1, "camera device index (overrides camera.device)")
	)
	flag.Parse()

	fmt.Println("Cake Catcher - catch the cakes with your hand")

	if *initConfig {
		if *configPath == "" {
			log.Fatal("-init-config needs -config")
		}
		if err := config.Default().Save(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Wrote default config to %s\n", *configPath)
		return
	}

	switch *uiMode {
	case uiWindow, uiTray, uiHeadless:
	default:
		log.Fatalf("Unknown -ui %q (want window, tray or headless)", *uiMode)
	}
	if *input != "hand" && *input != "mouse" {
		log.Fatalf("Unknown -input %q (want hand or mouse)", *input)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *cameraID >= 0 {
		cfg.Camera.Device = *cameraID
	}

	st, err := store.New(dbPath(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	pf := prefs.Open()
	p := pf.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hand tracking. The window falls back to the mouse when no hand
	// detector is available.
	var (
		tr      *tracker.Tracker
		pointer game.PointerSource
		mouse   *render.MousePointer
	)
	handReady := false
	if *input == "hand" {
		tr, handReady = startTracker(cfg, cfg.Camera.Mirror && p.Mirror)
		if handReady {
			pointer = tr
		}
	}
	if *uiMode == uiWindow && !handReady {
		log.Println("Steering the plate with the mouse")
		mouse = &render.MousePointer{}
		pointer = mouse
	}

	session := app.New(app.Config{
		Game:       cfg,
		Pointer:    pointer,
		Store:      st,
		PlayerName: *playerName,
	})
	log.Printf("Playing as %s", session.PlayerName())

	sound := audio.NewSoundManager()
	if *uiMode != uiHeadless {
		if err := sound.Initialize(); err != nil {
			log.Printf("Sound disabled: %v", err)
		}
		sound.SetVolume(p.Volume)
		sound.SetMuted(!p.SoundEnabled)
		session.AddSink(app.SinkFunc(func(snap game.Snapshot) { sound.Play(snap.Effects) }))
	}
	defer sound.Cleanup()

	scfg := server.Config{
		StaticDir: cfg.Server.StaticDir,
		Store:     st,
		Game:      session,
		World:     cfg.World,
	}
	if tr != nil {
		scfg.Preview = tr
	}
	srv := server.New(scfg)
	session.AddSink(app.SinkFunc(srv.Hub().Broadcast))

	bound, err := srv.Start(cfg.Server.Addr)
	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	url := "http://" + bound.String()

	switch *uiMode {
	case uiWindow:
		win := render.NewWindow(session, render.Options{
			World: cfg.World,
			Sound: sound,
			Prefs: pf,
			Mouse: mouse,
		})
		closed := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				// ebiten cannot be closed from outside; a signal ends the process.
				shutdown(srv, tr)
				os.Exit(0)
			case <-closed:
			}
		}()
		err := win.Run()
		close(closed)
		if err != nil {
			log.Printf("Window closed with error: %v", err)
		}

	case uiTray:
		go session.Run(ctx)
		t := tray.New()
		t.OnCommand(func(action string) {
			if err := session.Command(action); err != nil {
				log.Printf("Tray command %s: %v", action, err)
			}
		})
		t.OnOpen(func() { openBrowser(url) })
		t.OnQuit(stop)
		session.AddSink(app.SinkFunc(func(snap game.Snapshot) { t.SetState(snap.State) }))
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		log.Printf("Open %s to play", url)
		t.Run()

	case uiHeadless:
		go session.Run(ctx)
		log.Printf("Open %s to play", url)
		<-ctx.Done()
	}

	stop()
	shutdown(srv, tr)
	if err := pf.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

// startTracker opens the camera and starts hand tracking. ok is false when
// no MediaPipe detector is available; the tracker then still serves the
// camera preview. A nil tracker means the camera could not be opened.
func startTracker(cfg *config.Config, mirror bool) (tr *tracker.Tracker, ok bool) {
	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.ConfigFrom(cfg.Detector)); err == nil {
		det = mp
		ok = true
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}

	cam := capture.NewCamera(capture.Options{
		Device: cfg.Camera.Device,
		FPS:    cfg.Camera.FPS,
		Mirror: mirror,
	})
	tr = tracker.New(cam, det, tracker.Options{
		FPS:             cfg.Camera.FPS,
		MotionThreshold: cfg.Camera.MotionThreshold,
		MinConfidence:   cfg.Detector.MinConfidence,
	})
	if err := tr.Start(); err != nil {
		log.Printf("Camera %d unavailable: %v", cfg.Camera.Device, err)
		det.Close()
		return nil, false
	}
	return tr, ok
}

func shutdown(srv *server.Server, tr *tracker.Tracker) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if tr != nil {
		tr.Stop()
	}
}

// dbPath returns store.path or ~/.cakecatcher/cakecatcher.db.
func dbPath(cfg *config.Config) string {
	if cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}
	return filepath.Join(home, ".cakecatcher", "cakecatcher.db")
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
