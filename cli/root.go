package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Pablo-Barros/folia-docker/config"
)

// Version is the release version, set at link time.
var Version = "dev" //nolint:gochecknoglobals // set by -ldflags

// Options configures the root command. Zero values select the
// process environment and standard streams.
type Options struct {
	Lookup config.LookupFunc
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs the command line args and logs a fatal error.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd(Options{})
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error("fatal", "error", err)

		return err //nolint:wrapcheck // already logged
	}

	return nil
}

// NewRootCmd returns the folia-docker command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}

	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	a := &app{lookup: opts.Lookup, stderr: opts.Stderr}

	cmd := &cobra.Command{
		Use:           "folia-docker",
		Short:         "Build, tag and publish Folia server images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)

	a.bindFlags(cmd)

	cmd.AddCommand(
		discoverCmd(a),
		resolveCmd(a),
		classifyCmd(a),
		buildsCmd(a),
		tagCmd(a),
		buildCmd(a),
		pushCmd(a),
		syncCmd(a),
		checkUpdatesCmd(a),
		downloadCmd(a),
		configCmd(a),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the folia-docker version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)

			return err //nolint:wrapcheck // stdout write
		},
	}
}
