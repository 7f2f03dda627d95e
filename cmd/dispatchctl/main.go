package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"dispatch_crm_go/config"
	"dispatch_crm_go/db"
	"dispatch_crm_go/logger"
	"dispatch_crm_go/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "dispatchctl",
	Short: "Maintenance commands for the dispatch CRM",
	Long: `dispatchctl runs lead and call maintenance against the configured database.

It reads the same environment (.env, DB_PATH, TURSO_*, TELNYX_*) as the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return openDatabase()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return db.Close()
	},
}

var cfg *config.Config

func openDatabase() error {
	cfg = config.Load()

	zl, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger.Set(zl)

	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		Environment: "production", // keep SQL logging quiet
		RemoteURL:   cfg.TursoDatabaseURL,
		AuthToken:   cfg.TursoAuthToken,
	}); err != nil {
		return err
	}
	return db.AutoMigrate(models.All()...)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	rootCmd.AddCommand(importLeadsCmd, deleteSourceCmd, sourcesCmd, nextLeadCmd, syncCallsCmd, importCallsCmd, statsCmd)
	if err := rootCmd.Execute(); err != nil {
		logger.L().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
