// linkctl is a small admin CLI that talks to the link store directly,
// through the same repository and service layers as the server.
package main

import (
	"fmt"
	"os"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/coderedlink/coderedlink/internal/config"
	"github.com/coderedlink/coderedlink/internal/repository"
	"github.com/coderedlink/coderedlink/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "linkctl",
	Short: "Manage short links from the command line",
	Long: `linkctl creates, inspects, and deletes short links against the
configured database. Configuration is read from the environment (and an
optional .env file), exactly like the server.`,
	SilenceUsage: true,
}

type app struct {
	cfg     *config.Config
	repo    *repository.Store
	service *service.LinkService
}

// openApp wires the store and service the way the server does.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	repo, err := repository.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	svc := service.NewLinkService(repo, service.Options{
		CodeLength:   cfg.Codes.Length,
		CustomMin:    cfg.Codes.CustomMin,
		CustomMax:    cfg.Codes.CustomMax,
		MaxAttempts:  cfg.Codes.MaxAttempts,
		ReuseDeleted: cfg.Codes.ReuseDeleted,
		ListLimit:    cfg.App.ListLimit,
	})

	return &app{cfg: cfg, repo: repo, service: svc}, nil
}

func (a *app) close() {
	a.repo.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
