package scaffold

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Pablo-Barros/folia-docker/builds"
	"github.com/Pablo-Barros/folia-docker/digester"
	"github.com/Pablo-Barros/folia-docker/image"
	"github.com/Pablo-Barros/folia-docker/templating"
	"github.com/Pablo-Barros/folia-docker/versions"
)

const (
	// ScriptName is the download script inside a version
	// directory.
	ScriptName = "get-folia.py"
	// ReadmeName is the generated README.
	ReadmeName = "README.md"
)

// TemplateFiles are copied from the template directory into new
// version directories.
var TemplateFiles = []string{ //nolint:gochecknoglobals // fixed list
	"Dockerfile",
	"entrypoint.sh",
	"requirements.txt",
}

// ErrTemplateNotFound reports a missing template directory or
// download script.
var ErrTemplateNotFound = errors.New("template not found")

//go:embed templates/*.tpl
var readmes embed.FS

// Outcome tells what SyncVersion did to a directory.
type Outcome int

const (
	// Unchanged means every file already had the wanted
	// content.
	Unchanged Outcome = iota
	// Created means the directory did not exist.
	Created
	// Refreshed means at least one file was rewritten.
	Refreshed
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Refreshed:
		return "refreshed"
	default:
		return "unchanged"
	}
}

// Source is the upstream view the syncer needs.
// *builds.Resolver satisfies it.
type Source interface {
	Versions(ctx context.Context) ([]string, error)
	LatestIn(
		ctx context.Context,
		version string,
		channel builds.Channel,
	) (builds.Resolved, error)
	Latest(ctx context.Context, channel builds.Channel) (builds.Resolved, error)
}

// Syncer scaffolds version directories under Root.
type Syncer struct {
	Root           string
	TemplateDir    string
	DownloadScript string
	Naming         image.Naming
	Source         Source

	// ExperimentalEnabled and AutoSync must both be set for
	// SyncAll to do anything.
	ExperimentalEnabled bool
	AutoSync            bool
}

// Report lists the directories touched by SyncAll.
type Report struct {
	Created   []string
	Refreshed []string
	Unchanged []string
	// Experimental is the tag of the build the experimental
	// directory now tracks, empty when it was not rebuilt.
	Experimental string
}

// SyncVersion creates or refreshes the directory of an
// experimental build.
func (s *Syncer) SyncVersion(res builds.Resolved) (Outcome, error) {
	const errCtx = "syncing version"

	if err := s.checkTemplates(); err != nil {
		return Unchanged, fmt.Errorf("%s: %w", errCtx, err)
	}

	dir := filepath.Join(s.Root, res.Version)

	_, err := os.Stat(dir)

	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("creating version directory", "dir", dir)

		if _, err := s.populate(dir, res, s.versionReadme); err != nil {
			return Unchanged, fmt.Errorf("%s: %w", errCtx, err)
		}

		return Created, nil
	case err != nil:
		return Unchanged, fmt.Errorf("%s: %w", errCtx, err)
	}

	changed, err := s.refresh(dir, res, s.versionReadme)
	if err != nil {
		return Unchanged, fmt.Errorf("%s: %w", errCtx, err)
	}

	if !changed {
		return Unchanged, nil
	}

	slog.Info("refreshed version directory", "dir", dir)

	return Refreshed, nil
}

// SyncExperimental points the experimental directory at res.
func (s *Syncer) SyncExperimental(res builds.Resolved) (Outcome, error) {
	const errCtx = "syncing experimental directory"

	if err := s.checkTemplates(); err != nil {
		return Unchanged, fmt.Errorf("%s: %w", errCtx, err)
	}

	dir := filepath.Join(s.Root, versions.ExperimentalDir)

	_, statErr := os.Stat(dir)
	if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return Unchanged, fmt.Errorf("%s: %w", errCtx, statErr)
	}

	// Template files are refreshed as well: the directory
	// mirrors the template rather than a pinned copy.
	changed, err := s.populate(dir, res, s.experimentalReadme)
	if err != nil {
		return Unchanged, fmt.Errorf("%s: %w", errCtx, err)
	}

	switch {
	case statErr != nil:
		return Created, nil
	case changed:
		return Refreshed, nil
	default:
		return Unchanged, nil
	}
}

// SyncAll scaffolds every upstream version that has an
// experimental build, then moves the experimental directory to
// the newest one. Versions failing upstream are logged and
// skipped.
func (s *Syncer) SyncAll(ctx context.Context) (Report, error) {
	const errCtx = "syncing experimental versions"

	if !s.ExperimentalEnabled || !s.AutoSync {
		slog.Info(
			"experimental sync disabled, skipping",
			"experimental", s.ExperimentalEnabled,
			"auto_sync", s.AutoSync,
		)

		return Report{}, nil
	}

	if err := s.checkTemplates(); err != nil {
		return Report{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	all, err := s.Source.Versions(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	var (
		report Report
		found  bool
	)

	for _, v := range all {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("%s: %w", errCtx, err)
		}

		res, err := s.Source.LatestIn(ctx, v, builds.ChannelExperimental)
		if err != nil {
			logSkip(v, err)

			continue
		}

		found = true

		slog.Info(
			"found experimental build",
			"version", v,
			"build", res.Build,
		)

		outcome, err := s.SyncVersion(res)
		if err != nil {
			return report, fmt.Errorf("%s: %w", errCtx, err)
		}

		tag := image.Tag(res)

		switch outcome {
		case Created:
			report.Created = append(report.Created, tag)
		case Refreshed:
			report.Refreshed = append(report.Refreshed, tag)
		default:
			report.Unchanged = append(report.Unchanged, tag)
		}
	}

	if !found {
		slog.Info("no experimental builds upstream")

		return report, nil
	}

	latest, err := s.Source.Latest(ctx, builds.ChannelExperimental)
	if err != nil {
		return report, fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := s.SyncExperimental(latest); err != nil {
		return report, fmt.Errorf("%s: %w", errCtx, err)
	}

	report.Experimental = image.Tag(latest)

	return report, nil
}

func logSkip(version string, err error) {
	if errors.Is(err, builds.ErrNoBuilds) {
		slog.Debug("no experimental builds", "version", version)

		return
	}

	slog.Warn(
		"skipping version",
		"version", version,
		"error", err,
	)
}

type readmeFunc func(res builds.Resolved) ([]byte, error)

// populate writes every scaffolded file into dir, creating it,
// and reports whether any file changed.
func (s *Syncer) populate(
	dir string,
	res builds.Resolved,
	readme readmeFunc,
) (bool, error) {
	const errCtx = "populating directory"

	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // docker build context
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	var changed bool

	for _, name := range TemplateFiles {
		src := filepath.Join(s.TemplateDir, name)

		data, err := os.ReadFile(src) //nolint:gosec // configured template dir
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("template file not found", "file", src)

			continue
		}

		if err != nil {
			return false, fmt.Errorf("%s: %w", errCtx, err)
		}

		wrote, err := writeIfChanged(
			filepath.Join(dir, name), data, fileMode(src),
		)
		if err != nil {
			return false, fmt.Errorf("%s: %w", errCtx, err)
		}

		changed = changed || wrote
	}

	wrote, err := s.refresh(dir, res, readme)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return changed || wrote, nil
}

// refresh rewrites the download script and README of dir and
// reports whether either changed.
func (s *Syncer) refresh(
	dir string,
	res builds.Resolved,
	readme readmeFunc,
) (bool, error) {
	const errCtx = "refreshing directory"

	script, err := os.ReadFile(s.DownloadScript)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	scriptChanged, err := writeIfChanged(
		filepath.Join(dir, ScriptName), script, 0o755,
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	body, err := readme(res)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	readmeChanged, err := writeIfChanged(
		filepath.Join(dir, ReadmeName), body, 0o644,
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return scriptChanged || readmeChanged, nil
}

func (s *Syncer) checkTemplates() error {
	info, err := os.Stat(s.TemplateDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf(
			"%w: directory %q", ErrTemplateNotFound, s.TemplateDir,
		)
	}

	if _, err := os.Stat(s.DownloadScript); err != nil {
		return fmt.Errorf(
			"%w: download script %q", ErrTemplateNotFound, s.DownloadScript,
		)
	}

	return nil
}

func (s *Syncer) versionReadme(res builds.Resolved) ([]byte, error) {
	vars, err := s.readmeVars(res)
	if err != nil {
		return nil, err
	}

	if res.Experimental() {
		vars["heading_suffix"] = " (Experimental)"
		vars["build_note"] = " build " + vars["build"] +
			" (experimental channel)"
		vars["notice"] = "\n## Experimental Build Information\n\n" +
			"This is an experimental build of Folia. Experimental " +
			"builds may contain new features but can also have bugs. " +
			"Use with caution in production environments.\n"
	}

	return render("templates/version.md.tpl", vars)
}

func (s *Syncer) experimentalReadme(res builds.Resolved) ([]byte, error) {
	vars, err := s.readmeVars(res)
	if err != nil {
		return nil, err
	}

	ref, err := s.Naming.Name(image.ExperimentalTag)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped
	}

	vars["image"] = ref

	return render("templates/experimental.md.tpl", vars)
}

func (s *Syncer) readmeVars(res builds.Resolved) (map[string]string, error) {
	ref, err := s.Naming.Reference(res)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped
	}

	return map[string]string{
		"version":        res.Version,
		"build":          strconv.Itoa(res.Build),
		"image":          ref,
		"heading_suffix": "",
		"build_note":     "",
		"notice":         "",
	}, nil
}

func render(name string, vars map[string]string) ([]byte, error) {
	tpl, err := readmes.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	en := templating.Engine{}

	return []byte(en.Render(string(tpl), vars)), nil
}

// writeIfChanged writes data to path unless the file already
// holds it, and reports whether it wrote.
func writeIfChanged(
	path string,
	data []byte,
	perm os.FileMode,
) (bool, error) {
	same, err := digester.Matches(path, data)
	if err != nil {
		return false, err //nolint:wrapcheck // wrapped by caller
	}

	if same {
		return false, nil
	}

	if err := os.WriteFile(path, data, perm); err != nil {
		return false, err //nolint:wrapcheck // wrapped by caller
	}

	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, perm); err != nil {
		return false, err //nolint:wrapcheck // wrapped by caller
	}

	return true, nil
}

func fileMode(path string) os.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return 0o644
	}

	return info.Mode().Perm()
}
