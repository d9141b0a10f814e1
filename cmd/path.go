package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eddge/learnengine/internal/frames"
	"github.com/eddge/learnengine/internal/learnpath"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Inspect and update learning paths",
}

var pathShowCmd = &cobra.Command{
	Use:   "show <topic>",
	Short: "Show the nodes of a topic's path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := openDeps(cmd, "off")
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.progress.Path(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON {
			for i := range p.Nodes {
				p.Nodes[i].Frames = nil
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}
		printPath(out, p)
		return nil
	},
}

func printPath(out io.Writer, p learnpath.Path) {
	fmt.Fprintf(out, "%s (%s)\n", p.TopicName, p.TopicID)
	fmt.Fprintf(out, "Mastery %d%%, %d of %d nodes done\n\n", p.MasteryScore, p.CompletedNodeCount, p.TotalNodeCount)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tNODE\tTYPE\tSTATUS\tFRAMES\tGOAL")
	for _, n := range p.Nodes {
		marker := ""
		if n.ID == p.CurrentNodeID {
			marker = "▸"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%d\t%s\n", marker, n.ID, n.Type, n.Status.Icon(), n.Status, n.TotalFrames, n.SkillGoal)
	}
	w.Flush()
}

var pathFramesCmd = &cobra.Command{
	Use:   "frames <topic> <node>",
	Short: "List the frames of one node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, "off")
		if err != nil {
			return err
		}
		defer d.Close()

		n, frs, err := d.progress.Frames(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s  %s\n\n", n.ID, n.Type, n.SkillGoal)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSTAGE\tTYPE\tCONTENT")
		for _, f := range frs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", f.Order, f.Stage, f.Type, headline(f.Content))
		}
		return w.Flush()
	},
}

func headline(c frames.Content) string {
	var s string
	switch v := c.(type) {
	case frames.TextContent:
		s = v.Title
	case frames.MCQContent:
		s = v.Question
	case frames.NumericalContent:
		s = v.Question
	case frames.ShortExplainContent:
		s = v.Prompt
	}
	if r := []rune(s); len(r) > 70 {
		s = string(r[:69]) + "…"
	}
	return s
}

var pathCompleteCmd = &cobra.Command{
	Use:   "complete <topic> <node>",
	Short: "Record the outcome of a session on a node",
	Long: `Record the outcome of a session on a node.

Either pass answer counts with --correct and --total, which are scored with
the configured thresholds, or describe the outcome directly with
--partial, --support, --confidence and --not-completed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := outcomeFromFlags(cmd)
		if err != nil {
			return err
		}
		session, _ := cmd.Flags().GetString("session")

		d, err := openDeps(cmd, "off")
		if err != nil {
			return err
		}
		defer d.Close()

		if cmd.Flags().Changed("total") {
			correct, _ := cmd.Flags().GetInt("correct")
			total, _ := cmd.Flags().GetInt("total")
			o = learnpath.ScoreAnswers(correct, total, d.progress.Config().Scoring)
		}

		res, err := d.progress.Complete(cmd.Context(), args[0], args[1], o, session)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s (confidence %d%%)\n", args[1], res.Status, o.ConfidenceScore)
		for _, tr := range res.Transitions {
			fmt.Fprintf(out, "  %s  %s -> %s  (%s)\n", tr.NodeID, tr.From, tr.To, tr.Trigger)
		}
		fmt.Fprintf(out, "Mastery %d%%\n", res.Path.MasteryScore)
		return nil
	},
}

// outcomeFromFlags validates the flag combination. Answer counts are
// scored later, once the scoring config is known.
func outcomeFromFlags(cmd *cobra.Command) (learnpath.Outcome, error) {
	f := cmd.Flags()
	counts := f.Changed("correct") || f.Changed("total")
	direct := f.Changed("partial") || f.Changed("support") || f.Changed("confidence") || f.Changed("not-completed")

	switch {
	case counts && direct:
		return learnpath.Outcome{}, errors.New("use --correct/--total or the outcome flags, not both")
	case counts:
		if !f.Changed("correct") || !f.Changed("total") {
			return learnpath.Outcome{}, errors.New("--correct and --total go together")
		}
		correct, _ := f.GetInt("correct")
		total, _ := f.GetInt("total")
		if correct < 0 || total < 0 || correct > total {
			return learnpath.Outcome{}, fmt.Errorf("--correct %d out of --total %d", correct, total)
		}
		return learnpath.Outcome{}, nil
	}

	notCompleted, _ := f.GetBool("not-completed")
	partial, _ := f.GetBool("partial")
	support, _ := f.GetBool("support")
	confidence, _ := f.GetInt("confidence")
	o := learnpath.Outcome{
		Completed:       !notCompleted,
		Partial:         partial,
		NeedsSupport:    support,
		ConfidenceScore: confidence,
	}
	return o, o.Validate()
}

var pathHistoryCmd = &cobra.Command{
	Use:   "history <topic>",
	Short: "Show recorded outcomes for a topic, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := openDeps(cmd, "off")
		if err != nil {
			return err
		}
		defer d.Close()

		evs, err := d.progress.History(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(evs) == 0 {
			fmt.Fprintln(out, "No outcomes recorded yet.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tTIME\tNODE\tSTATUS\tSCORE\tMASTERY\tCHANGES")
		for _, e := range evs {
			var changes []string
			for _, tr := range e.Transitions {
				changes = append(changes, fmt.Sprintf("%s:%s", strings.TrimPrefix(tr.NodeID, e.TopicID+"-"), tr.To))
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d%%\t%d%%\t%s\n",
				e.Sequence, e.Timestamp.Local().Format("2006-01-02 15:04"), e.NodeID, e.Status,
				e.Outcome.ConfidenceScore, e.MasteryScore, strings.Join(changes, " "))
		}
		return w.Flush()
	},
}

var pathExportCmd = &cobra.Command{
	Use:   "export <topic>",
	Short: "Write a topic's path as a portable JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		d, err := openDeps(cmd, "off")
		if err != nil {
			return err
		}
		defer d.Close()

		data, err := d.progress.Export(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if output == "" || output == "-" {
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", args[0], output)
		return nil
	},
}

var pathImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace a topic's path with an exported document (- reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read import: %w", err)
		}

		d, err := openDeps(cmd, "off")
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.progress.Import(cmd.Context(), data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: mastery %d%%, %d of %d nodes done\n",
			p.TopicID, p.MasteryScore, p.CompletedNodeCount, p.TotalNodeCount)
		return nil
	},
}

func init() {
	pathShowCmd.Flags().Bool("json", false, "Print the path as JSON, without frames")

	fl := pathCompleteCmd.Flags()
	fl.Int("correct", 0, "Correct answers in the session")
	fl.Int("total", 0, "Assessment questions in the session")
	fl.Bool("partial", false, "Mark the node as only partly understood")
	fl.Bool("support", false, "Flag that the learner needs support")
	fl.Int("confidence", 100, "Confidence score 0-100")
	fl.Bool("not-completed", false, "The session was abandoned; nothing changes")
	fl.String("session", "", "Session id to record with the outcome")

	pathHistoryCmd.Flags().IntP("limit", "n", 20, "Number of events to show (0 for all)")
	pathExportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")

	pathCmd.AddCommand(pathShowCmd, pathFramesCmd, pathCompleteCmd, pathHistoryCmd, pathExportCmd, pathImportCmd)
}
