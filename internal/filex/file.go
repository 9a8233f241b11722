// Package filex contains small filesystem helpers for transient files used
// during upload relaying.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// NewTransientFile creates a uniquely named file in dir and returns the open
// handle. An empty dir means the platform temp directory. The name embeds a
// timestamp and a random suffix so that concurrent uploads never collide:
//
//	clipforge-1724500000000000000-9f2d4c3a.mp4
//
// The caller owns the file and is responsible for removing it with
// RemoveIfExists when done.
func NewTransientFile(dir, prefix, ext string) (*os.File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("%s-%d-%s%s", prefix, time.Now().UnixNano(), uuid.NewString()[:8], ext)
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create transient file %s: %w", path, err)
	}
	return f, nil
}

// RemoveIfExists deletes the file at path if it is still present.
// It is safe to call multiple times and on paths that were never created;
// the boolean reports whether a file was actually removed.
func RemoveIfExists(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnsureSubdDir creates (if needed) a subdirectory of the current working
// directory and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
