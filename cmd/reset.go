package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset [topic]",
	Short: "Reset learning progress for a topic, or for every topic with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) == 1) {
			return errors.New("give a topic id or --all")
		}

		d, err := openDeps(cmd, "off")
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		if all {
			n, err := d.progress.ResetAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Reset %d paths.\n", n)
			return nil
		}
		if err := d.progress.Reset(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Reset %s.\n", args[0])
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Reset every stored path")
}
