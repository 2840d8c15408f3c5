package theme

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/foldlab/foldpipe/internal/models"
)

// prefsFile is the TOML layout of the preference file.
type prefsFile struct {
	Theme string `toml:"theme"`
}

// TOMLFile persists the theme as `theme = "dark"` in a TOML file.
type TOMLFile struct {
	path string
}

// NewTOMLFile returns a persister backed by the file at path.
func NewTOMLFile(path string) *TOMLFile {
	return &TOMLFile{path: path}
}

// Path returns the backing file path.
func (f *TOMLFile) Path() string {
	return f.path
}

// Load reads the preference. A missing file or empty key is not an error.
func (f *TOMLFile) Load() (models.Theme, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}

	var prefs prefsFile
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return "", false, fmt.Errorf("theme: parse %s: %w", f.path, err)
	}
	if prefs.Theme == "" {
		return "", false, nil
	}

	theme, err := models.ParseTheme(prefs.Theme)
	if err != nil {
		return "", false, err
	}
	return theme, true, nil
}

// Save writes the preference atomically via a temp file and rename.
func (f *TOMLFile) Save(theme models.Theme) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(prefsFile{Theme: string(theme)}); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".preferences-*.toml")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
