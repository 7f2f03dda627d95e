package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dispatch_crm_go/db"
	"dispatch_crm_go/services"

	"github.com/spf13/cobra"
)

var importSource string

// importLeadsCmd loads a CSV or XLSX lead list
var importLeadsCmd = &cobra.Command{
	Use:   "import-leads <file>",
	Short: "Import a CSV or XLSX lead list",
	Long: `Import leads from a spreadsheet and tag them with a source label.

Columns are matched by header name (Company Name, MC Number, Phone, ...).
Sheets without a recognizable header are read as Company, MC, Phone, Email, State, Trucks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		result, err := services.ImportLeadsFromFile(db.DB, f, filepath.Base(args[0]), importSource)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d rows as %q\n", result.Imported, result.Parsed, result.Source)
		return nil
	},
}

var assumeYes bool

// deleteSourceCmd removes every lead of one import batch
var deleteSourceCmd = &cobra.Command{
	Use:   "delete-source <label>",
	Short: "Delete every lead imported under a source label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := args[0]
		if !assumeYes {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete all leads from %q? Type the label to confirm: ", label)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if strings.TrimSpace(answer) != label {
				return errors.New("aborted")
			}
		}

		n, err := services.DeleteLeadsBySource(db.DB, label)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d leads\n", n)
		return nil
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List source labels with their lead counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := services.ListLeadSources(db.DB)
		if err != nil {
			return err
		}
		for _, s := range sources {
			fmt.Fprintf(cmd.OutOrStdout(), "%-30s %d\n", s.Source, s.Count)
		}
		return nil
	},
}

// nextLeadCmd shows who the dialer would call next
var nextLeadCmd = &cobra.Command{
	Use:   "next-lead",
	Short: "Show the next lead in the call queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		lead, err := services.GetNextLead(db.DB)
		if errors.Is(err, services.ErrNoLeadsInQueue) {
			fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
			return nil
		}
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), lead)
	},
}

func init() {
	importLeadsCmd.Flags().StringVarP(&importSource, "source", "s", "", "source label for the batch")
	_ = importLeadsCmd.MarkFlagRequired("source")
	deleteSourceCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
}
