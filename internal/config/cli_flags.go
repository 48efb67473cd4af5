package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")
	cmd.PersistentFlags().String("log-file", "", "Also write logs to this rotating file")
	cmd.PersistentFlags().String("data-dir", DefaultDataDir, "Base directory for per-site exports")
	cmd.PersistentFlags().String("db", DefaultDBPath, "Path to the sqlite tender store")
	cmd.PersistentFlags().Bool("headless", DefaultHeadless, "Run the browser headless")
	cmd.PersistentFlags().String("timeout", DefaultScrapeTimeout.String(), "Hard timeout for one scrape run")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (optional)")
}
