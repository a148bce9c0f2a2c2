// Package cmd implements the command-line interface for sprefs. It exposes
// the preferences of an application package on the shell, mainly for
// inspecting, seeding and backing up namespaces.
//
// The package is organized into two subpackages:
//
//   - prefs: Commands operating on one namespace (get, put, remove, list, export, import, perf, ...)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See sprefs -help for a list of all commands.
package cmd
