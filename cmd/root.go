package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "eddge",
	Short: "Learning paths for exam topics",
	Long: `eddge turns every catalog topic into a five-step learning path and
tracks progress through it. Run without a subcommand to open the
terminal player.`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Database file for sqlite, or URL for postgres (overrides EDDGE_DB)")
	pf.Bool("memory", false, "Keep everything in memory; nothing is saved")
	pf.String("log", "", "Log mode: dev, prod or off (overrides EDDGE_LOG)")

	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
