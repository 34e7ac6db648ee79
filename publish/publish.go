package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Pablo-Barros/folia-docker/builds"
	"github.com/Pablo-Barros/folia-docker/image"
	"github.com/Pablo-Barros/folia-docker/versions"
)

var (
	// ErrNoConfigurations reports an empty batch.
	ErrNoConfigurations = errors.New("no build configurations found")
	// ErrContextNotFound reports a missing build context
	// directory.
	ErrContextNotFound = errors.New("build context not found")
)

// Resolver picks the build behind a directory.
// *builds.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, version string) (builds.Resolved, error)
	Latest(ctx context.Context, channel builds.Channel) (builds.Resolved, error)
}

// Docker runs the container runtime. image.Runner satisfies it.
type Docker interface {
	Build(ctx context.Context, t image.Target) (string, error)
	Push(ctx context.Context, ref string) (string, error)
}

// Config holds the settings of a publish run.
type Config struct {
	// Root is the directory holding one build context per
	// version.
	Root     string
	Naming   image.Naming
	Resolver Resolver
	Docker   Docker

	// DryRun logs the docker commands without running them.
	DryRun bool
}

// Plan resolves the directory dir under cfg.Root into a build
// target. The "latest" directory tracks the newest version with
// a usable build, the experimental directory the newest
// experimental build; any other directory is a version.
func Plan(ctx context.Context, cfg Config, dir string) (image.Target, error) {
	const errCtx = "planning build"

	buildCtx := filepath.Join(cfg.Root, dir)

	info, err := os.Stat(buildCtx)
	if err != nil || !info.IsDir() {
		return image.Target{}, fmt.Errorf(
			"%s: %w: %s", errCtx, ErrContextNotFound, buildCtx,
		)
	}

	var (
		res builds.Resolved
		tag string
	)

	switch dir {
	case versions.Latest:
		res, err = cfg.Resolver.Latest(ctx, builds.ChannelDefault)
		tag = image.LatestTag
	case versions.ExperimentalDir:
		res, err = cfg.Resolver.Latest(ctx, builds.ChannelExperimental)
		tag = image.ExperimentalTag
	default:
		res, err = cfg.Resolver.Resolve(ctx, dir)
		tag = image.Tag(res)
	}

	if err != nil {
		return image.Target{}, fmt.Errorf("%s %s: %w", errCtx, dir, err)
	}

	ref, err := cfg.Naming.Name(tag)
	if err != nil {
		return image.Target{}, fmt.Errorf("%s %s: %w", errCtx, dir, err)
	}

	return image.Target{
		Ref:     ref,
		Context: buildCtx,
		Version: res.Version,
		Build:   res.Build,
	}, nil
}

// BuildAll builds the image of every directory in dirs.
func BuildAll(
	ctx context.Context,
	cfg Config,
	dirs []string,
) (Summary, error) {
	return run(ctx, cfg, dirs, "build", func(t image.Target) (string, error) {
		if cfg.DryRun {
			slog.Info(
				"dry run, not building",
				"cmd", strings.Join(image.BuildArgs(t), " "),
			)

			return "", nil
		}

		return cfg.Docker.Build(ctx, t) //nolint:wrapcheck // wrapped by run
	})
}

// PushAll pushes the image of every directory in dirs.
func PushAll(
	ctx context.Context,
	cfg Config,
	dirs []string,
) (Summary, error) {
	return run(ctx, cfg, dirs, "push", func(t image.Target) (string, error) {
		if cfg.DryRun {
			slog.Info(
				"dry run, not pushing",
				"cmd", strings.Join(image.PushArgs(t.Ref), " "),
			)

			return "", nil
		}

		return cfg.Docker.Push(ctx, t.Ref) //nolint:wrapcheck // wrapped by run
	})
}

func run(
	ctx context.Context,
	cfg Config,
	dirs []string,
	action string,
	do func(image.Target) (string, error),
) (Summary, error) {
	if len(dirs) == 0 {
		return Summary{}, fmt.Errorf("%s: %w", action, ErrNoConfigurations)
	}

	slog.Info(
		"found build configurations",
		"count", len(dirs),
		"dirs", strings.Join(dirs, ","),
	)

	sum := Summary{Action: action, Total: len(dirs)}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			sum.fail(dir, "", err)

			continue
		}

		t, err := Plan(ctx, cfg, dir)

		switch {
		case errors.Is(err, builds.ErrNoBuilds):
			slog.Warn("no builds available, skipping", "dir", dir, "error", err)

			sum.Skipped++

			continue
		case err != nil:
			sum.fail(dir, "", err)

			continue
		}

		slog.Info(
			action,
			"dir", dir,
			"image", t.Ref,
			"version", t.Version,
			"build", t.Build,
		)

		out, err := do(t)
		if err != nil {
			sum.fail(dir, out, err)

			continue
		}

		sum.Succeeded++
		sum.Images = append(sum.Images, t.Ref)
	}

	slog.Info(sum.String())

	return sum, nil
}
