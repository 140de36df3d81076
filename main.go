// Package main provides the entry point for the Defect Review application.
package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"defect-review/internal/app"
	"defect-review/internal/session"
	"defect-review/internal/version"
	"defect-review/ui/mainwindow"
	"defect-review/ui/prefs"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

const (
	appID            = "defect-review"
	autosaveInterval = 30 * time.Second
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting defect-review v%s", version.Version)

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	store, err := session.NewStore(filepath.Join(configDir, appID, "sessions"))
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}

	appPrefs := prefs.Load()
	state := app.NewState(store)

	fyneApp := fyneapp.New()
	fyneApp.Settings().SetTheme(&app.ReviewTheme{})

	win := mainwindow.New(fyneApp, state, appPrefs)
	win.Resize(fyne.NewSize(
		float32(appPrefs.FloatWithFallback(prefs.KeyWindowWidth, 1280)),
		float32(appPrefs.FloatWithFallback(prefs.KeyWindowHeight, 800)),
	))

	openInitialSession(state, appPrefs)

	autosaver := app.NewAutosaver(state, autosaveInterval)
	autosaver.Start()

	win.SetCloseIntercept(func() {
		autosaver.Stop()
		if state.Session() != nil && state.Modified() {
			if err := state.SaveSession(); err != nil {
				log.Printf("Failed to save session on exit: %v", err)
			}
		}
		size := win.Canvas().Size()
		appPrefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		appPrefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
		if err := appPrefs.Save(); err != nil {
			log.Printf("Failed to save preferences: %v", err)
		}
		win.Close()
	})

	win.ShowAndRun()
}

// openInitialSession restores the session named on the command line, then
// the last used one, and finally falls back to a fresh session.
func openInitialSession(state *app.State, p *prefs.Prefs) {
	if len(os.Args) > 1 {
		err := state.LoadSession(os.Args[1])
		if err == nil {
			return
		}
		log.Printf("Failed to load session %s: %v", os.Args[1], err)
	}

	if last := p.String(prefs.KeyLastSession); last != "" {
		err := state.LoadSession(last)
		if err == nil {
			return
		}
		log.Printf("Failed to restore session %s: %v", last, err)
	}

	if err := state.NewSession(); err != nil {
		log.Printf("Failed to create session: %v", err)
	}
}
