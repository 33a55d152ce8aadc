package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganttline/ganttline/client"
	"github.com/ganttline/ganttline/internal/ui"
)

// pushCmd uploads the local project to the remote server.
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the local project to the remote server",
	Long: `Push the local project to the configured remote project. Remote
tasks not present locally are deleted so both sides end up identical.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := requireRemoteProject()
		if err != nil {
			return err
		}
		eng, s, err := GetEngine()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		c, err := GetClient()
		if err != nil {
			return err
		}
		ctx, cancel := remoteContext()
		defer cancel()

		tasks := eng.Project().Tasks
		if err := c.PushProject(ctx, projectID, tasks); err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		if err := saveSession(c, currentUsername()); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		fmt.Printf("%s Pushed %d task(s)\n", ui.StyleSuccess.Render("✓"), len(tasks))
		return nil
	},
}

// pullCmd replaces the local project with the remote task set.
var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the remote project into the local store",
	Long: `Pull the remote project's tasks, replacing the local task set. A
backup of the current data file is written first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := requireRemoteProject()
		if err != nil {
			return err
		}
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		c, err := GetClient()
		if err != nil {
			return err
		}
		ctx, cancel := remoteContext()
		defer cancel()

		tasks, err := c.FetchTasks(ctx, projectID)
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}

		project, err := s.Load()
		if err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}
		if len(project.Tasks) > 0 {
			backupPath := GetProjectFilePath() + ".bak"
			if err := s.Backup(backupPath); err != nil {
				return fmt.Errorf("failed to back up project: %w", err)
			}
			fmt.Println(ui.StyleSubtle.Render("Backed up local project to " + backupPath))
		}

		project.Tasks = tasks
		if err := s.Save(project); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		if err := saveSession(c, currentUsername()); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		fmt.Printf("%s Pulled %d task(s)\n", ui.StyleSuccess.Render("✓"), len(tasks))
		return nil
	},
}

// currentUsername reads the username from the stored session, if any.
func currentUsername() string {
	session, err := client.LoadSession(GetSessionFilePath())
	if err != nil {
		return ""
	}
	return session.Username
}

func init() {
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
}
