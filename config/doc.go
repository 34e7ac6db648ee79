// Package config assembles the run configuration from defaults,
// an optional YAML file and environment variables, in increasing
// order of precedence. Command line flags are applied on top by
// the cli package.
//
// The resulting Config is passed explicitly to every component;
// nothing reads the environment after Load returns.
package config
