// Package store implements preference namespaces: typed key-value entries held
// in a db.KVDB engine and persisted to one file per namespace.
//
// Key Components:
//
//   - Namespace: The store handle. Typed getters (GetInt, GetLong, GetFloat,
//     GetDouble, GetBoolean, GetString) return the supplied default for missing
//     keys and an Error with RetCTypeMismatch if the key holds another kind.
//     Doubles are longs holding the IEEE-754 bits of the value.
//
//   - Editor: A batch of puts, removes and an optional clear. Apply makes the
//     batch visible in memory immediately and writes the file in the background;
//     Commit writes the file before returning. Background writes coalesce, so a
//     burst of Apply calls results in few file writes. Flush waits for them.
//
//   - Mode: The access mode of the file (private, world-readable, world-writable,
//     multi-process). It determines the file permission; in multi-process mode the
//     directory is watched with fsnotify and the namespace reloads when another
//     process replaces the file.
//
//   - Listeners: Called for every key a commit or reload changed, with "" for a clear.
//
//   - Error System: Every error returned by this package is an *Error carrying a
//     RetCode. Error.Is compares codes, so errors.Is(err, store.ErrTypeMismatch)
//     works regardless of the message.
//
// File Format:
//
//	The file is the snapshot of the maple engine (see lib/db/engines/maple). Each
//	value is encoded with the binary serializer (one kind byte plus payload). Files
//	are replaced atomically (temp file, fsync, rename).
//
// Metrics:
//
//	Reads, writes, commits, failed commits, reloads and save durations are recorded
//	with VictoriaMetrics/metrics, labeled by namespace name.
package store
