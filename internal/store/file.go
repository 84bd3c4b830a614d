package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/campuseats/campuseats/internal/errs"
)

const snapshotName = "session.json"

// FileStore keeps the snapshot as a single JSON file under the user's
// config directory. Writes go through a temp file and rename, so readers
// never observe a half-written snapshot.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at $XDG_CONFIG_HOME/campuseats
// (falling back to ~/.config/campuseats).
func NewFileStore() *FileStore {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return &FileStore{dir: filepath.Join(v, "campuseats")}
	}
	home, _ := os.UserHomeDir()
	return &FileStore{dir: filepath.Join(home, ".config", "campuseats")}
}

// NewFileStoreAt returns a store rooted at an explicit directory.
func NewFileStoreAt(dir string) *FileStore { return &FileStore{dir: dir} }

func (f *FileStore) path() string { return filepath.Join(f.dir, snapshotName) }

// Load reads the persisted snapshot. A missing file means no session.
func (f *FileStore) Load() (Snapshot, error) {
	b, err := os.ReadFile(f.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, errs.ErrNoSession
		}
		return Snapshot{}, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Save replaces the snapshot atomically.
func (f *FileStore) Save(s Snapshot) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, snapshotName+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path())
}

// Clear removes the snapshot. Clearing an absent session is not an error.
func (f *FileStore) Clear() error {
	err := os.Remove(f.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
