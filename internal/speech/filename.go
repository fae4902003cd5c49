package speech

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxReserveAttempts = 1000

// UniqueFilename appends the unix timestamp to the base name of path,
// keeping the extension: out.mp3 -> out_1700000000.mp3.
func UniqueFilename(path string, now time.Time) string {
	return tokenPath(path, now.Unix())
}

func tokenPath(path string, token int64) string {
	ext := filepath.Ext(path)
	name := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%d%s", name, token, ext)
}

// reserveUniquePath creates an empty file under the first free token name,
// starting at now and counting up, so two calls in the same second never share
// a name. The caller owns the file and must remove it on failure.
func reserveUniquePath(path string, now time.Time) (string, error) {
	if err := ensureDir(path); err != nil {
		return "", err
	}

	for i := 0; i < maxReserveAttempts; i++ {
		candidate := UniqueFilename(path, now.Add(time.Duration(i)*time.Second))
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return candidate, f.Close()
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", path, maxReserveAttempts)
}

// missingDirs lists the ancestors of path that do not exist yet, deepest first.
func missingDirs(path string) []string {
	var dirs []string
	for dir := filepath.Dir(path); dir != "." && dir != ""; {
		if _, err := os.Stat(dir); !errors.Is(err, fs.ErrNotExist) {
			break
		}
		dirs = append(dirs, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dirs
}

// removeEmptyDirs drops dirs that are still empty. Non-empty ones are kept.
func removeEmptyDirs(dirs []string) {
	for _, dir := range dirs {
		_ = os.Remove(dir)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
