package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eddge/learnengine/internal/doubts"
)

var askCmd = &cobra.Command{
	Use:   "ask <topic> <node> <question...>",
	Short: "Ask the doubt solver a question about a node",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		frameID, _ := cmd.Flags().GetString("frame")

		d, err := openDeps(cmd, "off")
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		ds := d.doubts(ctx)
		if ds == nil {
			return errors.New("no LLM provider configured; set EDDGE_LLM_PROVIDER and its API key")
		}

		topic, err := d.progress.Topic(args[0])
		if err != nil {
			return err
		}
		node, frs, err := d.progress.Frames(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		in := doubts.Input{
			Topic:    topic,
			Node:     node,
			Question: strings.Join(args[2:], " "),
		}
		if frameID != "" {
			for i := range frs {
				if frs[i].ID == frameID {
					in.Frame = &frs[i]
					break
				}
			}
			if in.Frame == nil {
				return fmt.Errorf("frame %q not found in %s", frameID, node.ID)
			}
		}

		ans, err := ds.Ask(ctx, in)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ans.Explanation)
		if len(ans.Steps) > 0 {
			fmt.Fprintln(out)
			for i, s := range ans.Steps {
				fmt.Fprintf(out, "%d. %s\n", i+1, s)
			}
		}
		if ans.CheckQuestion != "" {
			fmt.Fprintf(out, "\nCheck yourself: %s\n", ans.CheckQuestion)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().String("frame", "", "Frame id the question is about, e.g. fractions-n2-f9")
}
