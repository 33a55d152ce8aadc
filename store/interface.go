package store

import "github.com/ganttline/ganttline/models"

// ProjectStore defines the persistence contract for one project document:
// the project metadata plus its full task mapping. The scheduling engine
// never touches a store directly; callers load a project into the engine,
// run operations, and save the result back.
type ProjectStore interface {
	// Initialize configures the store with backend-specific settings such as
	// the data file path and format. It must be called before any other
	// operation.
	Initialize(config map[string]string) error

	// Load reads the persisted project. A store with no persisted data
	// returns a fresh empty project.
	Load() (models.Project, error)

	// Save persists the project wholesale, replacing previous contents.
	Save(project models.Project) error

	// Backup copies the current data to the destination path.
	Backup(destinationPath string) error

	// Restore replaces the current data with the contents of the source
	// path. Destructive to current data.
	Restore(sourcePath string) error

	// Close releases any resources held by the store, such as file locks.
	Close() error
}
