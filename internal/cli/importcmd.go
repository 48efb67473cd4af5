// internal/cli/importcmd.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tender-radar/tenderscrape/internal/dedup"
	"github.com/tender-radar/tenderscrape/internal/export"
	"github.com/tender-radar/tenderscrape/internal/ui"
)

var importDryRun bool

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Backfill the tender store from existing JSON exports",
	Long: `Walks the data directory for per-site JSON exports and inserts every
record the store does not already have. Useful after recreating the database
or when runs happened with the store unavailable; the exports are the system
of record and the store is rebuilt from them.`,
	Example: `  # Backfill from the default data directory
  tenderscrape import

  # See what would be inserted without touching the store
  tenderscrape import --dry-run`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Report what would be imported without writing")
}

func runImport(cmd *cobra.Command, args []string) error {
	appCtx := GetApp()
	ctx := cmd.Context()

	if appCtx.Store == nil {
		return fmt.Errorf("tender store is unavailable; nothing to import into")
	}

	entries, err := os.ReadDir(appCtx.Config.DataDir)
	if err != nil {
		return fmt.Errorf("failed to read data dir %s: %w", appCtx.Config.DataDir, err)
	}

	totalSeen, totalNew := 0, 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		jsonPath := filepath.Join(appCtx.Config.DataDir, id, id+"_tenders.json")
		records := export.LoadAccumulated(jsonPath)
		if len(records) == 0 {
			continue
		}
		totalSeen += len(records)

		siteName := dedup.SiteNameFor(id)
		if importDryRun {
			newCount := 0
			siteID, ok, err := appCtx.Store.SiteID(ctx, siteName)
			for _, rec := range records {
				if !rec.HasTitle() {
					continue
				}
				if err != nil || !ok {
					newCount++
					continue
				}
				exists, eerr := appCtx.Store.TenderExists(ctx, siteID, rec.Title)
				if eerr != nil {
					return eerr
				}
				if !exists {
					newCount++
				}
			}
			totalNew += newCount
			fmt.Fprintf(os.Stdout, "%s %s: %d records, %d would be imported\n",
				ui.Info("·"), id, len(records), newCount)
			continue
		}

		siteID, _, err := appCtx.Store.EnsureSite(ctx, siteName, "")
		if err != nil {
			return err
		}
		saved, err := appCtx.Store.SaveTenders(ctx, siteID, records)
		if err != nil {
			return fmt.Errorf("import of %s failed: %w", id, err)
		}
		totalNew += saved
		log.Info().Str("site", id).Int("records", len(records)).Int("imported", saved).Msg("Export imported")
		fmt.Fprintf(os.Stdout, "%s %s: %d records, %d imported\n", ui.Success("✓"), id, len(records), saved)
	}

	fmt.Fprintf(os.Stdout, "%s\n", ui.Bold(fmt.Sprintf("%d records seen, %d new", totalSeen, totalNew)))
	return nil
}
