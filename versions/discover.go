package versions

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DisabledMarker excludes a version directory from discovery.
	DisabledMarker = ".disabled"
	// ExperimentalMarker flags a version directory as experimental.
	ExperimentalMarker = ".experimental"
	// ExperimentalDir is the directory tracking the newest
	// experimental build.
	ExperimentalDir = "experimental"

	readmeFile   = "README.md"
	scriptFile   = "get-folia.py"
	scriptMarker = "Supports Experimental Builds"
	readmeMarker = "(Experimental)"
)

// ErrRootNotFound is returned when the versions root directory
// does not exist. An existing but empty root is not an error.
var ErrRootNotFound = errors.New("versions root not found")

// Options tunes discovery.
type Options struct {
	// IncludeExperimental keeps directories that look
	// experimental. When false they are skipped even if they
	// carry no disable marker.
	IncludeExperimental bool
}

// Discover lists the version directories under root that are
// eligible for building, sorted oldest first.
func Discover(root string, opts Options) ([]string, error) {
	const errCtx = "discovering versions"

	names, err := listDirs(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	found := make([]string, 0, len(names))

	for _, name := range names {
		dir := filepath.Join(root, name)

		if exists(filepath.Join(dir, DisabledMarker)) {
			slog.Debug("skipping disabled version", "version", name)

			continue
		}

		if !opts.IncludeExperimental && IsExperimentalDir(dir) {
			slog.Debug(
				"skipping experimental version",
				"version", name,
			)

			continue
		}

		found = append(found, name)
	}

	Sort(found)

	return found, nil
}

// Local lists every version directory under root regardless of
// markers, sorted oldest first.
func Local(root string) ([]string, error) {
	const errCtx = "listing local versions"

	names, err := listDirs(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	Sort(names)

	return names, nil
}

// IsExperimentalDir applies the experimental heuristics to a
// version directory: an explicit marker file, the directory
// name, the README heading, or a download script that advertises
// experimental support.
func IsExperimentalDir(dir string) bool {
	name := filepath.Base(dir)

	if name == ExperimentalDir || strings.Contains(name, "-exp") {
		return true
	}

	if exists(filepath.Join(dir, ExperimentalMarker)) {
		return true
	}

	if heading := firstLine(filepath.Join(dir, readmeFile)); strings.Contains(heading, readmeMarker) {
		return true
	}

	return fileContains(filepath.Join(dir, scriptFile), scriptMarker)
}

func listDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}

	return names, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func firstLine(path string) string {
	fi, err := os.Open(path) //nolint:gosec // path built from versions root
	if err != nil {
		return ""
	}

	defer fi.Close() //nolint:errcheck // read-only

	sc := bufio.NewScanner(fi)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}

	return ""
}

func fileContains(path string, needle string) bool {
	data, err := os.ReadFile(path) //nolint:gosec // path built from versions root
	if err != nil {
		return false
	}

	return strings.Contains(string(data), needle)
}
