// Package discovery locates usage log files on disk.
//
// It walks the configured log roots recursively and returns every JSONL
// file found, in a stable order. Unreadable subdirectories are logged
// and skipped so a single bad permission bit never hides the rest of
// the logs.
//
// Example usage:
//
//	d := discovery.New([]string{"~/.claude/projects"}, logger.Default())
//	files, err := d.Discover()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range files {
//	    fmt.Printf("log: %s (%d bytes)\n", f.Path, f.Size)
//	}
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Logger defines the logging interface used by the discovery package.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// LogFile describes a discovered usage log.
type LogFile struct {
	// Path is the absolute path to the JSONL file.
	Path string

	// Size is the file size in bytes at discovery time.
	Size int64

	// ModTime is the last modification time.
	ModTime time.Time
}

// Discoverer finds usage log files under the configured roots.
type Discoverer interface {
	// Discover walks every configured root and returns all JSONL files
	// found, sorted by path.
	//
	// Returns:
	//   - Slice of discovered log files (empty, non-nil, when roots exist
	//     but contain no logs)
	//   - ErrRootNotFound if none of the configured roots exist
	//   - ErrPermissionDenied if a root exists but cannot be opened
	Discover() ([]LogFile, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	roots  []string // log roots to walk, tilde-expanded lazily
	logger Logger
}

// New creates a new Discoverer instance.
//
// Parameters:
//   - roots: List of root directories to walk (e.g., ~/.claude/projects)
//   - logger: Logger instance for diagnostic messages
//
// Returns a configured Discoverer.
func New(roots []string, logger Logger) Discoverer {
	return &discoverer{
		roots:  roots,
		logger: logger,
	}
}

// Discover implements Discoverer.Discover.
func (d *discoverer) Discover() ([]LogFile, error) {
	files := make([]LogFile, 0, 16)
	found := 0

	for _, root := range d.roots {
		expanded := ExpandHome(root)

		if _, err := os.Stat(expanded); err != nil {
			if os.IsNotExist(err) {
				d.logger.Debug("log root not found, skipping", "path", expanded)
				continue
			}
			if os.IsPermission(err) {
				return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, expanded)
			}
			return nil, fmt.Errorf("failed to stat log root %s: %w", expanded, err)
		}
		found++

		rootFiles, err := d.walkRoot(expanded)
		if err != nil {
			return nil, err
		}
		files = append(files, rootFiles...)
	}

	if found == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, strings.Join(d.roots, ", "))
	}

	// Stable order keeps downstream processing deterministic across runs.
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	d.logger.Info("discovery complete", "roots", found, "files", len(files))
	return files, nil
}

// walkRoot walks one root recursively, collecting JSONL files. Errors on
// subdirectories are logged and skipped; an error on the root itself is
// fatal because it means the whole tree is unreadable.
func (d *discoverer) walkRoot(root string) ([]LogFile, error) {
	var files []LogFile

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				if os.IsPermission(err) {
					return fmt.Errorf("%w: %s", ErrPermissionDenied, root)
				}
				return fmt.Errorf("failed to walk log root %s: %w", root, err)
			}
			d.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			d.logger.Warn("failed to get file info", "path", path, "error", err)
			return nil
		}

		files = append(files, LogFile{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Debug("walked log root", "path", root, "files", len(files))
	return files, nil
}

// ExpandHome expands a leading ~ in file paths to the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
