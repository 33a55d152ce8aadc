package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Session is the persisted login state for a remote server.
type Session struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

// LoadSession reads a saved session. A missing file yields an empty session.
func LoadSession(path string) (Session, error) {
	var s Session
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read session file: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("parse session file: %w", err)
	}
	return s, nil
}

// Save writes the session with owner-only permissions.
func (s Session) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear removes the saved session, ignoring a missing file.
func (s Session) Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
