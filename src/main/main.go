package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"profile-clip/src/clipboard"
	"profile-clip/src/config"
	"profile-clip/src/eventloop"
	"profile-clip/src/gui"
	"profile-clip/src/logutil"
	"profile-clip/src/notification"
	"profile-clip/src/ocr"
	"profile-clip/src/runtimeinit"
	"profile-clip/src/singleinstance"
	"profile-clip/src/tray"
)

// normalizeFlagDashes maps GNU-style --capture to Go's -capture
func normalizeFlagDashes() {
	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch {
		case arg == "--capture":
			os.Args[i] = "-capture"
		case strings.HasPrefix(arg, "--capture="):
			os.Args[i] = "-capture" + arg[len("--capture"):]
		}
	}
}

func main() {
	// Keep the main goroutine on its own OS thread; the fyne event loop
	// below requires it.
	runtime.LockOSThread()

	capture := flag.Bool("capture", false, "Ask the resident instance to start one capture session and exit")
	normalizeFlagDashes()
	flag.Parse()

	// Load .env early so PROFILE_CLIP_PORT_* are applied before any scan.
	_, _ = config.Load()

	if *capture {
		runRemoteCapture()
		return
	}

	// ---------- SINGLE-INSTANCE PRE-FLIGHT ----------
	startPort, _ := singleinstance.GetPortRangeForDebug()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("Pre-flight: port %d busy, resident already exists", startPort)
		fmt.Printf("profile-clip is already running on port %d (use --capture to trigger it)\n", startPort)
		os.Exit(1)
	}
	// We claimed the port; release it so the trigger server can re-bind.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free, becoming the resident", startPort)
	// ------------------------------------------------

	cfg, store, err := runtimeinit.Bootstrap(runtimeinit.Options{
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}

	stopWatch, err := store.Watch(func() {
		log.Printf("Profile: reloaded after external edit")
	})
	if err != nil {
		log.Printf("Profile: file watching unavailable: %v", err)
	} else {
		defer stopWatch()
	}

	log.Printf("Profile Clip initialized")
	log.Printf("Using model: %s", cfg.Model)
	log.Printf("Hotkey: %s", cfg.Hotkey)
	log.Printf("Profile: %s (%d fields)", store.Path(), len(store.Fields()))
	log.Printf("Match threshold: %.2f", cfg.MatchThreshold)
	log.Printf("OCR deadline: %ds", cfg.OCRDeadlineSec)

	a := fyneapp.NewWithID("io.profileclip.app")
	notifier := notification.New(a)
	selector := gui.NewRegionSelector(a)
	chooser := gui.NewChooser(a)
	editor := gui.NewEditor(a, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idleTooltip := fmt.Sprintf("Profile Clip - press %s to capture", cfg.Hotkey)
	var trayIcon *tray.Icon

	loop := eventloop.New(eventloop.Options{
		Surface:      selector,
		Store:        store,
		Chooser:      chooser,
		Sink:         &clipboard.Sink{},
		Notifier:     notifier,
		Recognize:    ocr.Recognize,
		PoolSize:     1,
		OCRDeadline:  time.Duration(cfg.OCRDeadlineSec) * time.Second,
		Threshold:    cfg.MatchThreshold,
		FragmentJoin: cfg.FragmentJoin,
		OnBusy: func(busy bool) {
			if trayIcon == nil {
				return
			}
			if busy {
				trayIcon.UpdateTooltip("Profile Clip - capture in progress")
			} else {
				trayIcon.UpdateTooltip(idleTooltip)
			}
		},
	})

	trayIcon, _ = tray.New(tray.Config{
		Title:         "Profile Clip",
		Tooltip:       idleTooltip,
		OnCapture:     func() { loop.Activate() },
		OnEditProfile: func() { editor.Show() },
		OnAbout: func() {
			notifier.Notify("Profile Clip",
				fmt.Sprintf("Select a form label on screen with %s and the matching profile value lands on the clipboard.", cfg.Hotkey))
		},
		OnExit: func() { cancel() },
	})
	go trayIcon.Run()
	defer trayIcon.Destroy()

	srv := singleinstance.NewServer()
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Failed to bind trigger port: %v", err)
	}
	defer srv.Close()
	go loop.ServeRemote(ctx, srv)

	if err := loop.StartHotkey(cfg.Hotkey); err != nil {
		log.Printf("Running degraded: trigger captures from the tray menu or with --capture")
		notifier.Notify("Hotkey unavailable",
			fmt.Sprintf("Could not register %s. Use the tray menu to capture.", cfg.Hotkey))
	}

	go loop.Run(ctx)

	// SIGINT/SIGTERM and ctx cancellation both unwind through the fyne loop.
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		fyne.Do(a.Quit)
	}()

	// Blocks on the main thread until Quit.
	a.Run()
	log.Printf("Profile Clip exiting")
}

// runRemoteCapture delegates one activation to the resident instance.
func runRemoteCapture() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	delegated, err := singleinstance.NewClient().TryCapture(ctx)
	if err != nil {
		log.Printf("Resident refused capture: %v", err)
		fmt.Fprintf(os.Stderr, "capture not started: %v\n", err)
		os.Exit(1)
	}
	if !delegated {
		fmt.Fprintln(os.Stderr, "no resident profile-clip instance found; start it first")
		os.Exit(1)
	}
	log.Printf("Capture delegated to resident")
}
