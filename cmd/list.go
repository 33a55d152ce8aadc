package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ganttline/ganttline/internal/ui"
)

var (
	listJSON     bool
	listTimeline bool
)

// listCmd prints the project's tasks.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks in the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, s, err := GetEngine()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		tasks := eng.All()

		if listJSON {
			data, err := json.MarshalIndent(tasks, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal tasks: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		project := eng.Project()
		fmt.Println(ui.StyleTitle.Render(project.Name))

		if listTimeline {
			width := 100
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
			fmt.Println(ui.RenderTimeline(tasks, eng.Window(), width))
			return nil
		}

		fmt.Println(ui.RenderTaskTable(tasks))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output tasks as JSON")
	listCmd.Flags().BoolVarP(&listTimeline, "timeline", "t", false, "render the timeline chart instead of a table")
	rootCmd.AddCommand(listCmd)
}
