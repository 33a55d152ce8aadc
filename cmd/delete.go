package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ganttline/ganttline/internal/ui"
	"github.com/ganttline/ganttline/models"
)

var deleteForce bool

// deleteCmd removes a task from the project.
var deleteCmd = &cobra.Command{
	Use:     "delete [task]",
	Aliases: []string{"rm"},
	Short:   "Delete a task from the project",
	Long: `Delete a task by id prefix or name. Without an argument an
interactive picker is shown. Lanes below the deleted task shift up and any
dependency edges referencing it are removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, s, err := GetEngine()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		var task models.Task
		if len(args) == 1 {
			task, err = resolveTask(eng.All(), args[0])
		} else {
			task, err = selectTaskInteractive(eng.All(), "Select task to delete")
		}
		if err != nil {
			return err
		}

		if !deleteForce {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Delete %q", task.Name),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Println(ui.StyleSubtle.Render("Cancelled."))
				return nil
			}
		}

		if err := eng.DeleteTask(task.ID); err != nil {
			return fmt.Errorf("failed to delete %q: %w", task.Name, err)
		}

		if err := s.Save(eng.Project()); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		pushInBackground(eng)

		fmt.Printf("%s Deleted %q\n", ui.StyleSuccess.Render("✓"), task.Name)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
	rootCmd.AddCommand(deleteCmd)
}
