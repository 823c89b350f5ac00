package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultFileName = "totp_config.json"
	ExampleFileName = "totp_config.example.json"
)

// Location is the outcome of Locate. Created is set when the file was just
// copied from the bundled example and still needs editing.
type Location struct {
	Path    string
	Created bool
}

// Locator searches for the secrets file. Zero fields use the process
// working directory and the directory of the running executable.
type Locator struct {
	WorkDir string
	ExeDir  string
}

// Locate resolves the secrets file. An explicit path wins and must exist.
// Otherwise ./.keys/totp_config.json is tried, then config/totp_config.json
// next to the executable, which is seeded from the example file if needed.
func (l Locator) Locate(explicit string) (Location, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return Location{}, fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		}
		return Location{Path: explicit}, nil
	}

	workDir := l.WorkDir
	if workDir == "" {
		workDir = "."
	}
	local := filepath.Join(workDir, ".keys", DefaultFileName)
	if fileExists(local) {
		return Location{Path: local}, nil
	}

	exeDir := l.ExeDir
	if exeDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return Location{}, err
		}
		exeDir = filepath.Dir(exe)
	}
	bundled := filepath.Join(exeDir, "config", DefaultFileName)
	if fileExists(bundled) {
		return Location{Path: bundled}, nil
	}

	example := filepath.Join(exeDir, "config", ExampleFileName)
	if fileExists(example) {
		if err := copyFile(example, bundled); err != nil {
			return Location{}, fmt.Errorf("seed %s from example: %w", bundled, err)
		}
		return Location{Path: bundled, Created: true}, nil
	}

	return Location{}, fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join([]string{local, bundled}, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
