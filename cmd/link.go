package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganttline/ganttline/internal/ui"
)

// linkCmd toggles a precedence edge between two tasks.
var linkCmd = &cobra.Command{
	Use:   "link <from> <to>",
	Short: "Toggle a dependency between two tasks",
	Long: `Toggle a dependency so that <to> may not start before <from> ends.
Running the same link again removes the edge. Links that would form a cycle
are rejected.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, s, err := GetEngine()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		tasks := eng.All()
		from, err := resolveTask(tasks, args[0])
		if err != nil {
			return err
		}
		to, err := resolveTask(tasks, args[1])
		if err != nil {
			return err
		}

		linked := !from.HasSuccessor(to.ID)
		cs, err := eng.ToggleEdge(from.ID, to.ID)
		if err != nil {
			return fmt.Errorf("failed to link %q to %q: %w", from.Name, to.Name, err)
		}

		if err := s.Save(eng.Project()); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		pushInBackground(eng)

		if linked {
			fmt.Printf("%s Linked %q → %q", ui.StyleSuccess.Render("✓"), from.Name, to.Name)
			if len(cs.IDs) > 1 {
				fmt.Printf(" (rescheduled %d task(s))", len(cs.IDs)-1)
			}
			fmt.Println()
		} else {
			fmt.Printf("%s Unlinked %q → %q\n", ui.StyleSuccess.Render("✓"), from.Name, to.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
}
