package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ganttline/ganttline/internal/ui"
)

var (
	moveStart string
	moveEnd   string
	moveLane  int
)

// moveCmd repositions a task, cascading through its dependents.
var moveCmd = &cobra.Command{
	Use:   "move <task>",
	Short: "Move or resize a task",
	Long: `Move or resize a task by id prefix or name.

Omitted flags keep the task's current value. Moving a task pushes every
dependent task that would otherwise start before its prerequisite ends.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, s, err := GetEngine()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		task, err := resolveTask(eng.All(), args[0])
		if err != nil {
			return err
		}

		now := time.Now()
		start, end, lane := task.Start, task.End, task.Lane
		if cmd.Flags().Changed("start") {
			if start, err = parseDay(moveStart, now); err != nil {
				return err
			}
			if !cmd.Flags().Changed("end") {
				end = start + (task.End - task.Start)
			}
		}
		if cmd.Flags().Changed("end") {
			if end, err = parseDay(moveEnd, now); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("lane") {
			lane = moveLane
		}

		cs, err := eng.MoveOrResize(task.ID, lane, start, end)
		if err != nil {
			return fmt.Errorf("failed to move %q: %w", task.Name, err)
		}

		if err := s.Save(eng.Project()); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		pushInBackground(eng)

		moved := len(cs.IDs)
		if moved > 1 {
			fmt.Printf("%s Moved %q (%s to %s), cascaded through %d dependent task(s)\n",
				ui.StyleSuccess.Render("✓"), task.Name, formatDay(start), formatDay(end), moved-1)
		} else {
			fmt.Printf("%s Moved %q (%s to %s)\n",
				ui.StyleSuccess.Render("✓"), task.Name, formatDay(start), formatDay(end))
		}
		return nil
	},
}

func init() {
	moveCmd.Flags().StringVarP(&moveStart, "start", "s", "", "new start date")
	moveCmd.Flags().StringVarP(&moveEnd, "end", "e", "", "new end date")
	moveCmd.Flags().IntVarP(&moveLane, "lane", "l", 0, "new lane index")
	rootCmd.AddCommand(moveCmd)
}
