package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ganttline/ganttline/internal/ui"
)

var initProjectName string

// initCmd bootstraps the .ganttline directory, the config file, and an empty
// project document.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new ganttline project in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		config := GetConfig()
		rootDir := config.Project.RootDir

		if err := os.MkdirAll(rootDir, 0o755); err != nil {
			return fmt.Errorf("failed to create project directory %s: %w", rootDir, err)
		}

		cfgPath := filepath.Join(rootDir, ".ganttline.yaml")
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			if err := writeDefaultConfig(cfgPath); err != nil {
				return err
			}
			fmt.Println(ui.StyleSuccess.Render("✓") + " Created " + cfgPath)
		} else {
			fmt.Println(ui.StyleSubtle.Render("Config already exists at " + cfgPath))
		}

		if initProjectName != "" {
			GlobalAppConfig.Project.Name = initProjectName
		}

		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		project, err := s.Load()
		if err != nil {
			return fmt.Errorf("failed to create project document: %w", err)
		}
		if err := s.Save(project); err != nil {
			return fmt.Errorf("failed to write project document: %w", err)
		}

		fmt.Printf("%s Project %q ready (%s)\n",
			ui.StyleSuccess.Render("✓"), project.Name, GetProjectFilePath())
		return nil
	},
}

// writeDefaultConfig seeds a commented starter config.
func writeDefaultConfig(path string) error {
	config := GetConfig()
	seed := map[string]interface{}{
		"project": map[string]interface{}{
			"rootDir": config.Project.RootDir,
			"name":    config.Project.Name,
		},
		"data": map[string]interface{}{
			"file":   config.Data.File,
			"format": config.Data.Format,
		},
		"server": map[string]interface{}{
			"port":   config.Server.Port,
			"dbPath": config.Server.DBPath,
		},
		"remote": map[string]interface{}{
			"address":   config.Remote.Address,
			"projectId": config.Remote.ProjectID,
		},
	}
	data, err := yaml.Marshal(seed)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func init() {
	initCmd.Flags().StringVarP(&initProjectName, "name", "n", "", "project name")
	rootCmd.AddCommand(initCmd)
}
