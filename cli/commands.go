package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Pablo-Barros/folia-docker/builds"
	"github.com/Pablo-Barros/folia-docker/checker"
	"github.com/Pablo-Barros/folia-docker/image"
	"github.com/Pablo-Barros/folia-docker/publish"
	"github.com/Pablo-Barros/folia-docker/scaffold"
	"github.com/Pablo-Barros/folia-docker/versions"
)

func discoverCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List the version directories eligible for building",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				dirs []string
				err  error
			)

			if all {
				dirs, err = versions.Local(a.cfg.VersionsDir)
			} else {
				dirs, err = versions.Discover(a.cfg.VersionsDir, versions.Options{
					IncludeExperimental: a.cfg.EnableExperimental,
				})
			}

			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}

			return printLines(cmd.OutOrStdout(), dirs)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every directory, ignoring markers")

	return cmd
}

func resolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve VERSION...",
		Short: "Show the build chosen for each version",
		Long: "Resolve picks the newest stable build of each version, " +
			"falling back to the newest experimental one. " +
			`"latest" resolves the newest version with a usable build.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := a.resolver()
			if err != nil {
				return err
			}

			naming := a.cfg.Naming()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			fmt.Fprintln(tw, "VERSION\tBUILD\tCHANNEL\tIMAGE")

			var failed []error

			for _, v := range args {
				res, err := resolveVersion(cmd, rs, v)
				if err != nil {
					failed = append(failed, err)

					continue
				}

				ref, err := naming.Reference(res)
				if err != nil {
					return err //nolint:wrapcheck // already wrapped
				}

				channel := res.Channel.String()
				if res.Assumed {
					channel += " (assumed)"
				}

				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", res.Version, res.Build, channel, ref)
			}

			if err := tw.Flush(); err != nil {
				return err //nolint:wrapcheck // stdout write
			}

			return errors.Join(failed...)
		},
	}
}

func classifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify VERSION BUILD",
		Short: "Print the channel of a single build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			build, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid build number %q: %w", args[1], err)
			}

			rs, err := a.resolver()
			if err != nil {
				return err
			}

			ch, err := rs.Classify(cmd.Context(), args[0], build)
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ch)

			return err //nolint:wrapcheck // stdout write
		},
	}
}

// availableJSON is the machine readable form of builds.Available.
type availableJSON struct {
	Version            string `json:"version"`
	Stable             []int  `json:"stable"`
	Experimental       []int  `json:"experimental"`
	LatestStable       int    `json:"latest_stable,omitempty"`
	LatestExperimental int    `json:"latest_experimental,omitempty"`
}

func buildsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "builds VERSION",
		Short: "List the builds of a version by channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := a.resolver()
			if err != nil {
				return err
			}

			av, err := rs.ListAvailable(cmd.Context(), args[0])
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}

			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")

				return enc.Encode(availableJSON{ //nolint:wrapcheck // stdout write
					Version:            av.Version,
					Stable:             nonNil(av.Stable),
					Experimental:       nonNil(av.Experimental),
					LatestStable:       av.LatestStable,
					LatestExperimental: av.LatestExperimental,
				})
			}

			fmt.Fprintf(out, "version:             %s\n", av.Version)
			fmt.Fprintf(out, "stable:              %v\n", nonNil(av.Stable))
			fmt.Fprintf(out, "experimental:        %v\n", nonNil(av.Experimental))
			fmt.Fprintf(out, "latest stable:       %s\n", buildOrNone(av.LatestStable))
			_, err = fmt.Fprintf(out, "latest experimental: %s\n", buildOrNone(av.LatestExperimental))

			return err //nolint:wrapcheck // stdout write
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func tagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tag VERSION",
		Short: "Print the image reference a version would be published as",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := a.resolver()
			if err != nil {
				return err
			}

			res, err := resolveVersion(cmd, rs, args[0])
			if err != nil {
				return err
			}

			tag := image.Tag(res)
			if versions.IsSentinel(args[0]) {
				tag = image.LatestTag
			}

			ref, err := a.cfg.Naming().Name(tag)
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ref)

			return err //nolint:wrapcheck // stdout write
		},
	}
}

type batchFunc func(
	cmd *cobra.Command,
	cfg publish.Config,
	dirs []string,
) (publish.Summary, error)

func batchCmd(a *app, use, short string, run batchFunc) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   use + " [DIR...]",
		Short: short,
		Long: short + ". Without arguments every discovered version " +
			"directory is processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := args
			if len(dirs) == 0 {
				var err error

				dirs, err = versions.Discover(a.cfg.VersionsDir, versions.Options{
					IncludeExperimental: a.cfg.EnableExperimental,
				})
				if err != nil {
					return err //nolint:wrapcheck // already wrapped
				}
			}

			rs, err := a.resolver()
			if err != nil {
				return err
			}

			sum, err := run(cmd, publish.Config{
				Root:     a.cfg.VersionsDir,
				Naming:   a.cfg.Naming(),
				Resolver: rs,
				Docker:   a.runner(),
				DryRun:   dryRun,
			}, dirs)
			if err != nil {
				return err
			}

			if err := printLines(cmd.OutOrStdout(), sum.Images); err != nil {
				return err
			}

			return sum.Err()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log docker commands without running them")

	return cmd
}

func buildCmd(a *app) *cobra.Command {
	return batchCmd(a, "build", "Build the image of each version directory",
		func(cmd *cobra.Command, cfg publish.Config, dirs []string) (publish.Summary, error) {
			return publish.BuildAll(cmd.Context(), cfg, dirs) //nolint:wrapcheck // already wrapped
		})
}

func pushCmd(a *app) *cobra.Command {
	return batchCmd(a, "push", "Push the image of each version directory",
		func(cmd *cobra.Command, cfg publish.Config, dirs []string) (publish.Summary, error) {
			return publish.PushAll(cmd.Context(), cfg, dirs) //nolint:wrapcheck // already wrapped
		})
}

func syncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Scaffold version directories for upstream experimental builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs, err := a.resolver()
			if err != nil {
				return err
			}

			sy := &scaffold.Syncer{
				Root:                a.cfg.VersionsDir,
				TemplateDir:         a.cfg.TemplateDir,
				DownloadScript:      a.cfg.DownloadScript,
				Naming:              a.cfg.Naming(),
				Source:              rs,
				ExperimentalEnabled: a.cfg.EnableExperimental,
				AutoSync:            a.cfg.AutoSyncExperimental,
			}

			report, err := sy.SyncAll(cmd.Context())
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}

			out := cmd.OutOrStdout()

			for _, row := range []struct {
				label string
				tags  []string
			}{
				{"created", report.Created},
				{"refreshed", report.Refreshed},
				{"unchanged", report.Unchanged},
			} {
				for _, tag := range row.tags {
					fmt.Fprintf(out, "%s\t%s\n", row.label, tag)
				}
			}

			if report.Experimental != "" {
				fmt.Fprintf(out, "%s\t%s\n", versions.ExperimentalDir, report.Experimental)
			}

			return nil
		},
	}
}

func checkUpdatesCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "check-updates",
		Short: "Open an issue for every upstream version not supported locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}

			tr, err := a.tracker(dryRun)
			if err != nil {
				return err
			}

			report, err := checker.Run(cmd.Context(), checker.Config{
				Root:      a.cfg.VersionsDir,
				Upstream:  cl,
				Tracker:   tr,
				Assignees: a.cfg.Tracker.Assignees,
				Labels:    a.cfg.Tracker.Labels,
			})
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}

			out := cmd.OutOrStdout()

			for _, v := range report.Created {
				fmt.Fprintf(out, "created\t%s\n", v)
			}

			for _, v := range report.Existing {
				fmt.Fprintf(out, "existing\t%s\n", v)
			}

			return report.Err()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log issues without creating them")

	return cmd
}

func downloadCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "download VERSION [BUILD]",
		Short: "Download the server jar of a build",
		Long: "Download fetches the jar of BUILD, or of the build " +
			"chosen by resolve when BUILD is omitted.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := a.resolver()
			if err != nil {
				return err
			}

			cl, err := a.client()
			if err != nil {
				return err
			}

			version := args[0]

			var build int

			explicit := len(args) == 2
			if explicit {
				build, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid build number %q: %w", args[1], err)
				}
			}

			// "latest" names the newest version; an explicit build
			// number then selects within that version.
			if versions.IsSentinel(version) || !explicit {
				res, err := resolveVersion(cmd, rs, version)
				if err != nil {
					return err
				}

				version = res.Version

				if !explicit {
					build = res.Build
				}
			}

			path := filepath.Join(outDir, cl.ArtifactName(version, build))

			if err := cl.DownloadFile(cmd.Context(), version, build, path); err != nil {
				return err //nolint:wrapcheck // already wrapped
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)

			return err //nolint:wrapcheck // stdout write
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "destination directory")

	return cmd
}

func configCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.cfg.Redacted().YAML()
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}

			_, err = cmd.OutOrStdout().Write(out)

			return err //nolint:wrapcheck // stdout write
		},
	}
}

// resolveVersion resolves version, routing the "latest" sentinel
// through the newest upstream version.
func resolveVersion(
	cmd *cobra.Command,
	rs *builds.Resolver,
	version string,
) (builds.Resolved, error) {
	if versions.IsSentinel(version) {
		return rs.Latest(cmd.Context(), builds.ChannelDefault) //nolint:wrapcheck // already wrapped
	}

	return rs.Resolve(cmd.Context(), version) //nolint:wrapcheck // already wrapped
}

func printLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err //nolint:wrapcheck // stdout write
		}
	}

	return nil
}

func nonNil(v []int) []int {
	if v == nil {
		return []int{}
	}

	return v
}

func buildOrNone(b int) string {
	if b == 0 {
		return "none"
	}

	return strconv.Itoa(b)
}
