package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a fresh path for every catalog topic that has none",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, "off")
		if err != nil {
			return err
		}
		defer d.Close()

		n, err := d.progress.Seed(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d of %d topics.\n", n, d.progress.Catalog().Len())
		return nil
	},
}
