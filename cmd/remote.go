package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganttline/ganttline/internal/ui"
)

// remoteCmd groups remote project management subcommands.
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage projects on the remote server",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var remoteCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project on the remote server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := GetClient()
		if err != nil {
			return err
		}
		ctx, cancel := remoteContext()
		defer cancel()

		record, err := c.CreateProject(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to create remote project: %w", err)
		}
		fmt.Printf("%s Created remote project %q\n", ui.StyleSuccess.Render("✓"), record.Name)
		fmt.Printf("  id: %s\n", record.ID)
		fmt.Println(ui.StyleSubtle.Render("Set remote.projectId in your config to sync against it."))
		return nil
	},
}

var remoteRenameCmd = &cobra.Command{
	Use:   "rename <project-id> <name>",
	Short: "Rename a remote project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := GetClient()
		if err != nil {
			return err
		}
		ctx, cancel := remoteContext()
		defer cancel()

		record, err := c.RenameProject(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to rename remote project: %w", err)
		}
		fmt.Printf("%s Renamed remote project to %q\n", ui.StyleSuccess.Render("✓"), record.Name)
		return nil
	},
}

var remoteDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a remote project and all its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := GetClient()
		if err != nil {
			return err
		}
		ctx, cancel := remoteContext()
		defer cancel()

		if err := c.DeleteProject(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete remote project: %w", err)
		}
		fmt.Println(ui.StyleSuccess.Render("✓") + " Deleted remote project")
		return nil
	},
}

var remoteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your projects on the remote server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := GetClient()
		if err != nil {
			return err
		}
		ctx, cancel := remoteContext()
		defer cancel()

		records, err := c.FetchProjects(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch remote projects: %w", err)
		}
		if len(records) == 0 {
			fmt.Println(ui.StyleSubtle.Render("No remote projects."))
			return nil
		}
		for _, record := range records {
			fmt.Printf("%s  %s\n", record.ID, record.Name)
		}
		return nil
	},
}

func init() {
	remoteCmd.AddCommand(remoteCreateCmd)
	remoteCmd.AddCommand(remoteRenameCmd)
	remoteCmd.AddCommand(remoteDeleteCmd)
	remoteCmd.AddCommand(remoteListCmd)
	rootCmd.AddCommand(remoteCmd)
}
