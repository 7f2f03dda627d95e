package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dispatch_crm_go/db"
	"dispatch_crm_go/services"
	"dispatch_crm_go/services/jobs"
	"dispatch_crm_go/services/telephony"

	"github.com/spf13/cobra"
)

var syncTimeout time.Duration

// syncCallsCmd runs one reconciliation against the carrier's reporting API
var syncCallsCmd = &cobra.Command{
	Use:   "sync-calls",
	Short: "Pull yesterday's and today's call report from the carrier",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), syncTimeout)
		defer cancel()

		reconciler := services.NewReconciler(db.DB, telephony.NewTelnyxService(cfg.ReportClientOptions()), services.NewStorage(cfg))
		result, err := jobs.RunCallSync(ctx, reconciler)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

// importCallsCmd applies a call report downloaded from the carrier portal
var importCallsCmd = &cobra.Command{
	Use:   "import-calls <file>",
	Short: "Import a call-detail export (CSV or XLSX)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		result, err := services.ImportCDRFile(db.DB, data, filepath.Base(args[0]))
		if result != nil {
			if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
				return perr
			}
		}
		if err != nil {
			return fmt.Errorf("import stopped: %w", err)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the dashboard numbers",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := services.GetDashboardStats(db.DB, time.Now())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), stats)
	},
}

func init() {
	syncCallsCmd.Flags().DurationVar(&syncTimeout, "timeout", 10*time.Minute, "give up after this long")
}
