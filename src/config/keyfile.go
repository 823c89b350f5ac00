package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeyFilePath returns where the side file for name lives under dir.
func KeyFilePath(dir, name string) string {
	return filepath.Join(dir, name+"_totp")
}

// ReadKeyFile returns the first line of dir/<name>_totp, trimmed.
func ReadKeyFile(dir, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q is not a valid key file name", ErrSecretNotFound, name)
	}

	path := KeyFilePath(dir, name)
	//nolint:gosec // name is checked for path separators above
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %s is empty", ErrSecretNotFound, path)
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// Resolve finds the entry for name in f, falling back to a side file in
// keysDir. f may be nil when no config file exists.
func Resolve(f *File, keysDir, name string) (Entry, error) {
	if f != nil {
		if e, ok := f.Lookup(name); ok {
			return e, nil
		}
	}
	secret, err := ReadKeyFile(keysDir, name)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Name: name, Secret: secret}, nil
}
