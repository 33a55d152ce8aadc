package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganttline/ganttline/internal/ui"
	"github.com/ganttline/ganttline/models"
)

// editCmd opens the interactive timeline editor.
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the timeline interactively",
	Long: `Open a full-screen timeline editor. Arrow keys shift the selected
task, +/- resize it, shift+arrows change lanes, and d toggles dependencies.
Changes are saved when the editor exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, s, err := GetEngine()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		err = ui.RunEditSession(eng,
			func(p models.Project) error { return s.Save(p) },
			func(models.Project) { pushInBackground(eng) })
		if err != nil {
			return fmt.Errorf("edit session failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
