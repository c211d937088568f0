// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/filing-converter/internal/ledger"
	"github.com/pdiddy/filing-converter/pkg/types"
)

var filingsCmd = &cobra.Command{
	Use:   "filings",
	Short: "List filings recorded in the SQLite filing index",
	Long: `Filings queries the index written by convert --index-db. Results can be
filtered by state, form type, and conversion status.`,
	Args: cobra.NoArgs,
	RunE: runFilings,
}

func runFilings(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("index_db")
	if dbPath == "" {
		return fmt.Errorf("no filing index configured: pass --index-db or set index_db")
	}

	store, err := ledger.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	state, _ := cmd.Flags().GetString("state")
	formType, _ := cmd.Flags().GetString("type")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	filings, err := store.List(cmd.Context(), ledger.QueryOptions{
		State:      state,
		FilingType: formType,
		Status:     types.ConversionStatus(status),
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatFilings(cmd.OutOrStdout(), filings, jsonOutput)
}

func formatFilings(w io.Writer, filings []ledger.Filing, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(filings)
	}

	if len(filings) == 0 {
		fmt.Fprintln(w, "No filings found.")
		return nil
	}

	fmt.Fprintf(w, "%-10s  %-6s  %-6s  %-30s  %-2s  %-9s  %5s  %s\n",
		"EIN", "Form", "Period", "Organization", "St", "Status", "Pages", "PDF")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, f := range filings {
		name := f.OrganizationName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(w, "%-10s  %-6s  %-6s  %-30s  %-2s  %-9s  %5d  %s\n",
			f.Identifier, f.FilingType, f.TaxPeriod, name, f.State, f.Status, f.Pages, f.OutputPath)
	}

	fmt.Fprintf(w, "\n%d filings\n", len(filings))
	return nil
}

func init() {
	filingsCmd.Flags().String("state", "", "filter by 2-letter state code")
	filingsCmd.Flags().String("type", "", "filter by form type (e.g. 990T)")
	filingsCmd.Flags().String("status", "", "filter by status: converted, skipped, failed")
	filingsCmd.Flags().Int("limit", 100, "maximum number of filings to list")
	filingsCmd.Flags().Bool("json", false, "output filings as JSON")

	rootCmd.AddCommand(filingsCmd)
}
