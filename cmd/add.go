package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ganttline/ganttline/internal/ui"
	"github.com/ganttline/ganttline/models"
)

var (
	addStart       string
	addEnd         string
	addLane        int
	addColour      string
	addDescription string
)

// addCmd creates a new task on the timeline.
var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task to the project",
	Long: `Add a task to the project timeline.

Dates accept YYYY-MM-DD, "today", or +/- day offsets relative to today.
When --lane is negative the task is appended to the bottom of the chart.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(models.KindTask, args[0])
	},
}

// milestoneCmd creates a milestone, which occupies a single day.
var milestoneCmd = &cobra.Command{
	Use:   "milestone <name>",
	Short: "Add a milestone to the project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(models.KindMilestone, args[0])
	},
}

func runAdd(kind models.TaskKind, name string) error {
	eng, s, err := GetEngine()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	now := time.Now()
	start, err := parseDay(addStart, now)
	if err != nil {
		return err
	}
	end := start
	if kind == models.KindTask {
		if end, err = parseDay(addEnd, now); err != nil {
			return err
		}
		if addEnd == "" {
			end = start + 4
		}
	}

	lane := addLane
	if lane < 0 {
		lane = len(eng.All())
	}

	task, err := eng.CreateTask(kind, name, start, end, lane)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", kind, err)
	}

	if addColour != "" || addDescription != "" {
		if addColour != "" {
			task.Colour = addColour
		}
		task.Description = addDescription
		if err := models.ValidateStruct(task); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}
		project := eng.Project()
		project.Tasks[task.ID] = task
		eng.Load(project)
	}

	if err := s.Save(eng.Project()); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	pushInBackground(eng)

	fmt.Printf("%s Added %s %q on lane %d (%s to %s)\n",
		ui.StyleSuccess.Render("✓"), kind, task.Name, task.Lane,
		formatDay(task.Start), formatDay(task.End))
	return nil
}

func init() {
	for _, c := range []*cobra.Command{addCmd, milestoneCmd} {
		c.Flags().StringVarP(&addStart, "start", "s", "today", "start date")
		c.Flags().IntVarP(&addLane, "lane", "l", -1, "lane index (default: append)")
		c.Flags().StringVar(&addColour, "colour", "", "bar colour, e.g. #4c6fbf")
		c.Flags().StringVarP(&addDescription, "description", "d", "", "task description")
	}
	addCmd.Flags().StringVarP(&addEnd, "end", "e", "", "end date (default: start + 4 days)")
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(milestoneCmd)
}
