// Package digester calculates SHA256 file digests. The scaffolder
// uses them to leave files whose content already matches untouched.
package digester
