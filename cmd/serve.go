package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ganttline/ganttline/internal/db"
	"github.com/ganttline/ganttline/internal/server"
)

var servePort int

// serveCmd runs the multi-user sync server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ganttline sync server",
	Long: `Run the HTTP server that clients register against and push project
timelines to. State is stored in a SQLite database at server.dbPath.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := GetConfig().Server
		if cmd.Flags().Changed("port") {
			config.Port = servePort
		}
		logger := GetLogger()

		store, err := db.NewStore(config.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database at %s: %w", config.DBPath, err)
		}

		srv := server.New(config, store, logger)

		var wg sync.WaitGroup
		errChan := make(chan error, 1)
		srv.Start(&wg, errChan)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errChan:
			return fmt.Errorf("server error: %w", err)
		case sig := <-stop:
			logger.Info("shutting down", "signal", sig)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		wg.Wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8585, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}
