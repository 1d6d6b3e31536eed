package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dewinglab/coinmatch/internal/api"
	"github.com/dewinglab/coinmatch/internal/config"
	"github.com/dewinglab/coinmatch/internal/database"
	"github.com/dewinglab/coinmatch/internal/database/repository"
	"github.com/dewinglab/coinmatch/internal/session"
	"github.com/dewinglab/coinmatch/internal/store"
	"github.com/dewinglab/coinmatch/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client, err := api.New(api.Config{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		log.Fatalf("api client: %v", err)
	}

	snapshots := repository.NewSnapshotRepo(db)
	sess := session.New(client)
	data := store.New(sess, client, snapshots)

	// start with the last snapshot so the screens have data before the
	// first refresh lands
	if err := data.LoadSnapshot(ctx); err != nil {
		log.Printf("warn: snapshot load failed: %v", err)
	}

	p := tea.NewProgram(tui.New(ctx, sess, data, cfg.UI.MinScore), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
