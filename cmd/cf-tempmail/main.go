package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Moole123/cf-tempmail/internal/api"
	"github.com/Moole123/cf-tempmail/internal/app"
	"github.com/Moole123/cf-tempmail/internal/credential"
	"github.com/Moole123/cf-tempmail/internal/model"
	"github.com/Moole123/cf-tempmail/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	serverURL := flag.String("server", "", "backend URL (overrides config)")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}

	s, err := store.NewSQLiteStore(cachePath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening cache: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	client := api.NewClient(cfg.ServerURL)
	if cfg.MailboxAddress != "" {
		token, err := credential.Get(credential.TokenKey(cfg.MailboxAddress))
		if err == nil && token != "" {
			client.SetToken(token)
		} else {
			// No token means the mailbox is unusable; re-run setup.
			cfg.MailboxAddress = ""
		}
	}

	p := tea.NewProgram(
		app.New(s, client, cfg, *configPath),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running application: %v\n", err)
		os.Exit(1)
	}
}

// cachePath places the SQLite cache next to the config file.
func cachePath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "cache.db")
}
