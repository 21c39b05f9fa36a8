package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/smartbrain/smartbrain/internal/api"
	"github.com/smartbrain/smartbrain/internal/config"
	"github.com/smartbrain/smartbrain/internal/database"
	"github.com/smartbrain/smartbrain/internal/engine"
	"github.com/smartbrain/smartbrain/internal/replicate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SmartBrain server",
	Long:  `Start the SmartBrain server to handle sign-in, registration, profile and image generation requests.`,
	Example: `smartbrain serve --config config.yml
smartbrain serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	provider := replicate.New(cfg.Replicate)

	eng := engine.New(cfg, db, provider)

	server := api.New(cfg, eng, log.GetLevel() == log.DebugLevel)

	// Start the API server in a goroutine
	go func() {
		log.Info("starting API server", "listen", cfg.Listen)
		if err := server.Run(); err != nil {
			log.Error("API server error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Info("smartbrain started successfully")
	<-c
	log.Info("shutting down gracefully...")

	// Give time for in-flight requests to finish
	time.Sleep(2 * time.Second)
}
