// Package maple implements the in-memory key-value engine (KVDB) that holds the
// content of one preferences namespace. It provides a complete implementation of
// the db.KVDB interface with a focus on thread safety and a compact snapshot format.
//
// Key Components:
//
//   - mapleImpl: The central database structure implementing db.KVDB. It manages
//     shards and provides the public API for key-value operations. mapleImpl does
//     not generate write indices itself; the caller passes them in, which lets the
//     namespace store order whole editor batches with a single counter.
//
//   - ShardSet: The seed and the shards of one database generation. Load builds a
//     new set and publishes it atomically, so concurrent readers observe either the
//     old or the new content, never a mix.
//
//   - Entry: The stored value and the write index it was written at.
//
// Internal Mechanisms:
//
//   - Sharding Strategy: String keys are hashed with FNV-1a and a database specific
//     seed, the hash is right-shifted by 7 bits and taken modulo the shard count.
//     Each shard is an xsync.MapOf keyed by the original string, which keeps the
//     keys available for Range and Save.
//
//   - Stale Write Prevention: A write is only applied if its write index is greater
//     than or equal to the stored index of the entry.
//
//   - Persistence Format (version 4):
//     1. Magic number "MAPLEDB\x00"
//     2. Version number (uint8)
//     3. Database seed (uint64)
//     4. Number of entries (uint64)
//     5. For each entry: key length (uint32), key bytes, write index (uint64),
//     value length (uint32), value bytes
//     All integers are little endian. Save takes a fuzzy snapshot without locking;
//     callers that need a consistent cut must stop writers while saving.
package maple
