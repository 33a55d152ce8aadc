package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	yaml "gopkg.in/yaml.v3"

	"github.com/ganttline/ganttline/models"
)

const (
	defaultDataFile   = "project.json"
	dataFileKey       = "dataFile"
	dataFileFormatKey = "dataFileFormat"
	projectNameKey    = "projectName"
	defaultDataFormat = "json"
	formatJSON        = "json"
	formatYAML        = "yaml"
	formatTOML        = "toml"
	checksumSuffix    = ".checksum"
)

// FileProjectStore implements ProjectStore with a single project document on
// disk. It supports JSON, YAML, and TOML formats, guards the file with an
// OS-level lock, and keeps a checksum sidecar to detect corruption.
type FileProjectStore struct {
	filePath    string
	format      string
	projectName string
	flk         *flock.Flock
}

// NewFileProjectStore creates an uninitialized store; Initialize must be
// called before use.
func NewFileProjectStore() *FileProjectStore {
	return &FileProjectStore{}
}

// Initialize configures the store. Recognized keys: 'dataFile' (path,
// defaults to project.json), 'dataFileFormat' (json/yaml/toml), and
// 'projectName' (used when creating a fresh project document).
func (s *FileProjectStore) Initialize(config map[string]string) error {
	if val, ok := config[dataFileKey]; ok && val != "" {
		s.filePath = val
	} else {
		s.filePath = defaultDataFile
	}

	if val, ok := config[dataFileFormatKey]; ok && val != "" {
		formatLower := strings.ToLower(val)
		switch formatLower {
		case formatJSON, formatYAML, formatTOML:
			s.format = formatLower
		default:
			return fmt.Errorf("unsupported dataFileFormat: %s. Supported formats are json, yaml, toml", val)
		}
	} else {
		s.format = defaultDataFormat
	}

	if s.filePath == defaultDataFile && s.format != formatJSON {
		ext := filepath.Ext(s.filePath)
		s.filePath = strings.TrimSuffix(s.filePath, ext) + "." + s.format
	}

	s.projectName = config[projectNameKey]
	if s.projectName == "" {
		base := filepath.Base(s.filePath)
		s.projectName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	dir := filepath.Dir(s.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	s.flk = flock.New(s.filePath)
	return nil
}

// calculateChecksum computes the SHA256 checksum of the given data.
func calculateChecksum(data []byte) string {
	hasher := sha256.New()
	hasher.Write(data) // Write never returns an error
	return hex.EncodeToString(hasher.Sum(nil))
}

// Load reads the project document, verifying the checksum sidecar when
// present. A missing or empty data file yields a fresh project under the
// configured name.
func (s *FileProjectStore) Load() (models.Project, error) {
	if err := s.flk.Lock(); err != nil {
		return models.Project{}, fmt.Errorf("could not lock file for load: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	return s.loadInternal()
}

func (s *FileProjectStore) loadInternal() (models.Project, error) {
	checksumFilePath := s.filePath + checksumSuffix

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// No data yet. Clean up a stray checksum file and start fresh.
			_ = os.Remove(checksumFilePath)
			return models.NewProject(s.projectName), nil
		}
		return models.Project{}, fmt.Errorf("failed to read data file %s: %w", s.filePath, err)
	}

	if _, err := os.Stat(checksumFilePath); err == nil {
		expectedChecksumBytes, readErr := os.ReadFile(checksumFilePath)
		if readErr != nil {
			return models.Project{}, fmt.Errorf("failed to read checksum file %s: %w", checksumFilePath, readErr)
		}
		expectedChecksum := strings.TrimSpace(string(expectedChecksumBytes))
		if actual := calculateChecksum(data); actual != expectedChecksum {
			return models.Project{}, fmt.Errorf("checksum mismatch for %s - expected %s, got %s - file is corrupt or tampered", s.filePath, expectedChecksum, actual)
		}
	} else if !os.IsNotExist(err) {
		return models.Project{}, fmt.Errorf("error checking checksum file %s: %w", checksumFilePath, err)
	}
	// A data file without a checksum sidecar predates checksumming; allow it
	// and let the next save create one.

	if len(data) == 0 {
		return models.NewProject(s.projectName), nil
	}

	var project models.Project
	switch s.format {
	case formatJSON:
		if err := json.Unmarshal(data, &project); err != nil {
			return models.Project{}, fmt.Errorf("failed to unmarshal JSON from %s: %w", s.filePath, err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &project); err != nil {
			return models.Project{}, fmt.Errorf("failed to unmarshal YAML from %s: %w", s.filePath, err)
		}
	case formatTOML:
		if err := toml.Unmarshal(data, &project); err != nil {
			return models.Project{}, fmt.Errorf("failed to unmarshal TOML from %s: %w", s.filePath, err)
		}
	default:
		return models.Project{}, fmt.Errorf("unsupported data format for loading: %s", s.format)
	}

	if project.Tasks == nil {
		project.Tasks = make(map[string]models.Task)
	}
	return project, nil
}

// Save marshals the project and writes it with an atomic rename, updating
// the checksum sidecar afterward.
func (s *FileProjectStore) Save(project models.Project) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("could not lock file for save: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	return s.saveInternal(project)
}

func (s *FileProjectStore) saveInternal(project models.Project) error {
	var marshaledData []byte
	var err error

	switch s.format {
	case formatJSON:
		marshaledData, err = json.MarshalIndent(project, "", "  ")
	case formatYAML:
		marshaledData, err = yaml.Marshal(project)
	case formatTOML:
		buf := new(bytes.Buffer)
		if encodeErr := toml.NewEncoder(buf).Encode(project); encodeErr == nil {
			marshaledData = buf.Bytes()
		} else {
			err = fmt.Errorf("failed to marshal TOML: %w", encodeErr)
		}
	default:
		return fmt.Errorf("unsupported data format for saving: %s", s.format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal project to %s: %w", s.format, err)
	}

	tempFilePath := s.filePath + ".tmp"
	checksumFilePath := s.filePath + checksumSuffix
	tempChecksumFilePath := checksumFilePath + ".tmp"

	defer func() { _ = os.Remove(tempFilePath) }()
	defer func() { _ = os.Remove(tempChecksumFilePath) }()

	if err := os.WriteFile(tempFilePath, marshaledData, 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary data file %s: %w", tempFilePath, err)
	}
	if err := os.WriteFile(tempChecksumFilePath, []byte(calculateChecksum(marshaledData)), 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary checksum file %s: %w", tempChecksumFilePath, err)
	}

	if err := os.Rename(tempFilePath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temporary data file %s to %s: %w", tempFilePath, s.filePath, err)
	}
	if err := os.Rename(tempChecksumFilePath, checksumFilePath); err != nil {
		return fmt.Errorf("data file %s updated, but failed to update checksum file %s: %w - store may be inconsistent", s.filePath, checksumFilePath, err)
	}

	return nil
}

// Backup copies the current data file to the destination path.
func (s *FileProjectStore) Backup(destinationPath string) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("could not lock file for backup: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no data file to back up at %s", s.filePath)
		}
		return fmt.Errorf("failed to read data file for backup: %w", err)
	}

	if dir := filepath.Dir(destinationPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create backup directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(destinationPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup file %s: %w", destinationPath, err)
	}
	return nil
}

// Restore replaces the current data with the contents of the source path.
// The restored document must parse in the store's configured format.
func (s *FileProjectStore) Restore(sourcePath string) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("could not lock file for restore: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read restore source %s: %w", sourcePath, err)
	}

	if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to restore data file %s: %w", s.filePath, err)
	}
	if err := os.WriteFile(s.filePath+checksumSuffix, []byte(calculateChecksum(data)), 0o644); err != nil {
		return fmt.Errorf("failed to restore checksum file: %w", err)
	}

	if _, err := s.loadInternal(); err != nil {
		return fmt.Errorf("restored data failed to parse: %w", err)
	}
	return nil
}

// Close releases the file lock if held.
func (s *FileProjectStore) Close() error {
	if s.flk != nil {
		return s.flk.Unlock()
	}
	return nil
}
