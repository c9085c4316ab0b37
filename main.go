package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/auth"
	"github.com/sadopc/kitchenos/internal/config"
	"github.com/sadopc/kitchenos/internal/devserver"
	"github.com/sadopc/kitchenos/internal/store"
	"github.com/sadopc/kitchenos/internal/tui"
)

const (
	demoEmail    = "demo@kitchenos.app"
	demoPassword = "demo123"
)

func main() {
	demo := flag.Bool("demo", false, "run against a built-in demo backend")
	flag.Parse()

	if err := run(*demo); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(demo bool) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}

	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "kitchenos")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	session := auth.NewSession(s)
	if err := session.Hydrate(); err != nil {
		return err
	}
	if session.Expired(time.Now()) {
		log.Printf("stored token expired, signing out")
		if err := session.Logout(); err != nil {
			return err
		}
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		if v, err := s.GetSetting(store.SettingAPIURL); err == nil {
			apiURL = config.TrimURL(v)
		}
	}

	var demoHint string
	if demo || apiURL == "" {
		srv, url, err := startDemo(cfg.DemoAddr)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("demo backend shutdown: %v", err)
			}
		}()
		// demo tokens are signed with a per-process secret
		if session.SignedIn() {
			if err := session.Logout(); err != nil {
				return err
			}
		}
		apiURL = url
		demoHint = fmt.Sprintf("Demo backend on %s. Log in as %s / %s", url, demoEmail, demoPassword)
	}
	log.Printf("using backend %s", apiURL)

	app := tui.NewApp(tui.Deps{
		Store:    s,
		Client:   api.NewClient(apiURL, cfg.Timeout, session),
		Session:  session,
		DemoHint: demoHint,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	_, err = p.Run()
	return err
}

// startDemo runs the in-process backend with a seeded demo account.
func startDemo(addr string) (*devserver.Server, string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, "", fmt.Errorf("demo secret: %w", err)
	}
	srv := devserver.New(secret)
	if err := srv.Seed(demoEmail, demoPassword, "Demo"); err != nil {
		return nil, "", err
	}
	url, err := srv.Start(addr)
	if err != nil {
		return nil, "", fmt.Errorf("start demo backend: %w", err)
	}
	return srv, url, nil
}
