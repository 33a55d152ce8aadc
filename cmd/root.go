package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ganttline/ganttline/client"
	"github.com/ganttline/ganttline/engine"
	"github.com/ganttline/ganttline/internal/logger"
	"github.com/ganttline/ganttline/models"
	"github.com/ganttline/ganttline/store"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// ErrNoTasksFound is returned when an interactive selection is attempted
	// but no tasks are available.
	ErrNoTasksFound = errors.New("no tasks found matching your criteria")
	// version is the application version.
	version = "0.3.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ganttline",
	Short: "ganttline plans project timelines from the command line.",
	Long: `ganttline is a dependency-aware project timeline planner.
Tasks occupy exclusive lanes on a day grid; linking tasks creates precedence
edges, and moving a task cascades through everything that depends on it.
Every change is undoable, and projects can sync to a remote server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVersion(version)
		logger.SetCommand(cmd.Name())
		logger.SetBasePath(GetConfig().Project.RootDir)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.ganttline/.ganttline.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// GetLogger returns the application logger honoring the verbose flag.
func GetLogger() *log.Logger {
	return logger.New(GetConfig().Verbose)
}

// GetProjectFilePath returns the full path to the project data file.
func GetProjectFilePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Data.File)
}

// GetSessionFilePath returns the path of the saved remote session.
func GetSessionFilePath() string {
	return filepath.Join(GetConfig().Project.RootDir, "session.json")
}

// GetStore initializes and returns the project store.
func GetStore() (store.ProjectStore, error) {
	s := store.NewFileProjectStore()
	config := GetConfig()

	projectFilePath := GetProjectFilePath()

	err := s.Initialize(map[string]string{
		"dataFile":       projectFilePath,
		"dataFileFormat": config.Data.Format,
		"projectName":    config.Project.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store at %s: %w", projectFilePath, err)
	}
	return s, nil
}

// GetEngine loads the local project into a fresh scheduling engine.
func GetEngine() (*engine.Engine, store.ProjectStore, error) {
	s, err := GetStore()
	if err != nil {
		return nil, nil, err
	}
	project, err := s.Load()
	if err != nil {
		_ = s.Close()
		return nil, nil, fmt.Errorf("failed to load project: %w", err)
	}
	eng := engine.New()
	eng.Load(project)
	return eng, s, nil
}

// GetClient builds a sync client from the remote config and restores any
// saved session token.
func GetClient() (*client.Client, error) {
	c, err := client.New(GetConfig().Remote, GetLogger())
	if err != nil {
		return nil, err
	}
	session, err := client.LoadSession(GetSessionFilePath())
	if err != nil {
		return nil, err
	}
	if session.AccessToken != "" {
		c.SetToken(session.AccessToken)
	}
	return c, nil
}

// saveSession persists the client's current token alongside the username.
func saveSession(c *client.Client, username string) error {
	session := client.Session{Username: username, AccessToken: c.Token()}
	return session.Save(GetSessionFilePath())
}

// requireRemoteProject returns the configured remote project id or an error
// telling the user how to set it.
func requireRemoteProject() (string, error) {
	id := GetConfig().Remote.ProjectID
	if id == "" {
		return "", errors.New("no remote project configured; set remote.projectId in the config or GANTTLINE_REMOTE_PROJECTID")
	}
	return id, nil
}

// resolveTask finds a task by id prefix or exact name. Ambiguous or unknown
// queries return an error listing what matched.
func resolveTask(tasks []models.Task, query string) (models.Task, error) {
	var matches []models.Task
	lowered := strings.ToLower(query)
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, query) || strings.ToLower(t.Name) == lowered {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Task{}, fmt.Errorf("no task matches %q", query)
	default:
		var names []string
		for _, t := range matches {
			names = append(names, fmt.Sprintf("%s (%s)", t.Name, t.ID[:8]))
		}
		return models.Task{}, fmt.Errorf("%q is ambiguous: %s", query, strings.Join(names, ", "))
	}
}

// selectTaskInteractive presents a prompt to pick a task from the project.
func selectTaskInteractive(tasks []models.Task, label string) (models.Task, error) {
	if len(tasks) == 0 {
		return models.Task{}, ErrNoTasksFound
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   `> {{ .Name | cyan }} (lane {{ .Lane }})`,
		Inactive: `  {{ .Name | faint }} (lane {{ .Lane }})`,
		Selected: `{{ "✔" | green }} {{ .Name | faint }}`,
	}

	searcher := func(input string, index int) bool {
		task := tasks[index]
		name := strings.ToLower(task.Name)
		input = strings.ToLower(input)
		return strings.Contains(name, input) || strings.Contains(task.ID, input)
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     tasks,
		Templates: templates,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return models.Task{}, fmt.Errorf("selection cancelled: %w", err)
	}
	return tasks[i], nil
}

// pushInBackground fires an async push when a remote project is configured.
func pushInBackground(eng *engine.Engine) {
	projectID := GetConfig().Remote.ProjectID
	if projectID == "" || GetConfig().Remote.Address == "" {
		return
	}
	c, err := GetClient()
	if err != nil {
		GetLogger().Debug("skipping background push", "error", err)
		return
	}
	c.PushAsync(projectID, eng.Project().Tasks)
}
