package internal

import (
	"github.com/ValentinKolb/sprefs/lib/db/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Entry Type (value with metadata)
// --------------------------------------------------------------------------

// Entry stores a value with the write index it was last written at
type Entry struct {
	Value []byte // Encoded value
	Index uint64 // Write index when this entry was created/updated
}

// --------------------------------------------------------------------------
// Shard Type (partition of the database)
// --------------------------------------------------------------------------

// Shard represents a partition of the database
type Shard struct {
	Data *xsync.MapOf[string, Entry]
}

// NewShard creates a new empty shard
func NewShard() *Shard {
	return &Shard{
		Data: xsync.NewMapOf[string, Entry](),
	}
}

// ShardSet is an immutable set of shards together with the seed used to pick them.
// A database swaps the whole set on Load so readers never see a half-built one.
type ShardSet struct {
	Seed   uint64
	Shards []*Shard
}

// NewShardSet creates numShards empty shards
func NewShardSet(seed uint64, numShards int) *ShardSet {
	if numShards < 1 {
		numShards = 1
	}
	shards := make([]*Shard, numShards)
	for i := range shards {
		shards[i] = NewShard()
	}
	return &ShardSet{Seed: seed, Shards: shards}
}

// GetShard returns the appropriate shard for a given key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *ShardSet) GetShard(key string) *Shard {
	return s.Shards[util.ShardIndex(util.HashString(key, s.Seed), len(s.Shards))]
}
