package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eddge/learnengine/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the terminal player",
	RunE:  runPlay,
}

// runPlay is also the root command's action. Logging defaults to off
// because the player owns the terminal.
func runPlay(cmd *cobra.Command, args []string) error {
	d, err := openDeps(cmd, "off")
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	if _, err := d.progress.Seed(ctx); err != nil {
		return err
	}
	return app.Run(ctx, d.progress, d.doubts(ctx))
}
