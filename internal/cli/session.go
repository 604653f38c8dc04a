package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iliyamo/notestack/internal/client"
)

// DefaultSessionPath returns ~/.config/notestack/session.json or the
// platform equivalent.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "notestack", "session.json")
}

// loadSession reads saved tokens. A missing file is an empty session.
func loadSession(path string) (client.Tokens, error) {
	var t client.Tokens
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(b, &t); err != nil {
		return client.Tokens{}, fmt.Errorf("parse session file %s: %w", path, err)
	}
	return t, nil
}

// saveSession writes tokens readable by the owner only. Empty tokens
// remove the file.
func saveSession(path string, t client.Tokens) error {
	if t == (client.Tokens{}) {
		err := os.Remove(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
