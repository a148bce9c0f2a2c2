// Package util provides small helpers shared by the KVDB engines.
//
// The package contains:
//   - functions: the per-database seed, the FNV-1a string hash and shard selection
//   - statistics: summary statistics used to report how evenly entries are spread over shards
package util
