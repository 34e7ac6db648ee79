// Package cli wires the folia-docker commands with spf13/cobra.
//
// The root command loads the configuration once (defaults, YAML
// file, environment, then flags) and every sub-command builds the
// components it needs from it.
package cli
