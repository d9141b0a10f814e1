package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List catalog topics and their progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")

		d, err := openDeps(cmd, "off")
		if err != nil {
			return err
		}
		defer d.Close()

		rows, err := d.progress.Overview(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSUBJECT\tDIFFICULTY\tPROGRESS")
		shown := 0
		for _, r := range rows {
			if subject != "" && !strings.EqualFold(r.Topic.SubjectID, subject) {
				continue
			}
			prog := "-"
			if r.Started {
				prog = fmt.Sprintf("%d/%d  %d%%", r.CompletedNodes, r.TotalNodes, r.MasteryScore)
			}
			diff := string(r.Topic.Difficulty)
			if diff == "" {
				diff = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Topic.ID, r.Topic.Name, r.Topic.SubjectID, diff, prog)
			shown++
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if shown == 0 {
			return fmt.Errorf("no topics for subject %q (have: %s)", subject, strings.Join(d.progress.Catalog().Subjects(), ", "))
		}
		return nil
	},
}

func init() {
	topicsCmd.Flags().StringP("subject", "s", "", "Only show topics of this subject")
}
