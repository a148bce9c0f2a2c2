// Package internal contains the command batch queued by store editors.
package internal
