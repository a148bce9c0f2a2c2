package maple

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/sprefs/lib/db"
	"github.com/ValentinKolb/sprefs/lib/db/engines/maple/internal"
	"github.com/ValentinKolb/sprefs/lib/db/util"
	"io"
	"runtime"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	magicNum     = "MAPLEDB\x00" // File format identifier
	mapleVersion = 4             // Database version
	maxKeyLen    = 1 << 16       // Upper bound for keys read from a snapshot
	maxValueLen  = 64 << 20      // Upper bound for values read from a snapshot
)

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// mapleImpl implements a sharded in-memory database
type mapleImpl struct {
	numShards int
	set       atomic.Pointer[internal.ShardSet]
	currIndex atomic.Uint64 // Current logical timestamp
	closed    atomic.Bool
}

// DBOptions configures the mapleImpl behavior during initialization
type DBOptions struct {
	NumShards int // Number of shards (0 = auto)
}

// DefaultOptions returns the default mapleImpl options.
// Preference namespaces are small, so the shard count is capped.
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumShards: min(runtime.NumCPU(), 8),
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMapleDB creates a new MapleDB instance with the specified options (optional)
func NewMapleDB(opts *DBOptions) db.KVDB {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumShards < 1 {
		opts.NumShards = DefaultOptions().NumShards
	}

	newDB := &mapleImpl{
		numShards: opts.NumShards,
	}
	newDB.set.Store(internal.NewShardSet(util.GenerateSeed(), opts.NumShards))
	newDB.currIndex.Store(0)

	return newDB
}

func (maple *mapleImpl) shard(key string) *internal.Shard {
	return maple.set.Load().GetShard(key)
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key, value, and writeIndex.
// Stale writes (lower index than the stored entry) are ignored.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Set(key string, value []byte, writeIndex uint64) {
	maple.SetWriteIdx(writeIndex)

	// Copy value to prevent memory corruption
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	maple.shard(key).Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded && writeIndex < old.Index {
			return old, false
		}
		return internal.Entry{Value: valueCopy, Index: writeIndex}, false
	})
}

// Delete removes an entry with the specified key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Delete(key string, writeIndex uint64) {
	maple.SetWriteIdx(writeIndex)

	maple.shard(key).Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return old, true // set delete to true because else the value will be created
		}
		if writeIndex < old.Index {
			return old, false
		}
		return old, true
	})
}

// Clear removes every entry written at or before writeIndex.
//
// Thread-safety: This method is thread-safe. Entries written concurrently with a
// higher index survive.
func (maple *mapleImpl) Clear(writeIndex uint64) {
	maple.SetWriteIdx(writeIndex)

	for _, shard := range maple.set.Load().Shards {
		var keys []string
		shard.Data.Range(func(key string, _ internal.Entry) bool {
			keys = append(keys, key)
			return true
		})

		for _, key := range keys {
			shard.Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
				if !loaded {
					return old, true
				}
				return old, old.Index <= writeIndex
			})
		}
	}
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves a value for a key.
// The returned value is a copy of the stored data and therefore safe to use and modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Get(key string) ([]byte, bool) {
	e, ok := maple.shard(key).Data.Load(key)
	if !ok {
		return nil, false
	}

	data := make([]byte, len(e.Value))
	copy(data, e.Value)
	return data, true
}

// Has checks if a key exists in the database.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Has(key string) bool {
	_, ok := maple.shard(key).Data.Load(key)
	return ok
}

// Range calls fn for every entry until fn returns false.
//
// Thread-safety: This method is thread-safe. Concurrent writes may or may not be observed.
func (maple *mapleImpl) Range(fn func(key string, value []byte) bool) {
	for _, shard := range maple.set.Load().Shards {
		cont := true
		shard.Data.Range(func(key string, e internal.Entry) bool {
			value := make([]byte, len(e.Value))
			copy(value, e.Value)
			cont = fn(key, value)
			return cont
		})
		if !cont {
			return
		}
	}
}

// Len returns the number of entries
func (maple *mapleImpl) Len() int {
	n := 0
	for _, shard := range maple.set.Load().Shards {
		n += shard.Data.Size()
	}
	return n
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save persists the database to the writer
// Concurrent reading and writing is allowed during Save operation
//
// Thread-safety: This function allows concurrent operations with all other functions.
// It takes a fuzzy snapshot of the data without blocking modifications.
func (maple *mapleImpl) Save(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 64*1024)

	type entryToSave struct {
		key   string
		entry internal.Entry
	}

	set := maple.set.Load()

	// Collect snapshots of all shards
	var entries []entryToSave
	for _, shard := range set.Shards {
		shard.Data.Range(func(key string, entry internal.Entry) bool {
			entries = append(entries, entryToSave{key, entry})
			return true
		})
	}

	// Write file header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(mapleVersion)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, set.Seed); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}

	// Write data entries
	for _, item := range entries {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(item.key))); err != nil {
			return err
		}
		if _, err := bw.WriteString(item.key); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, item.entry.Index); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(item.entry.Value))); err != nil {
			return err
		}
		if _, err := bw.Write(item.entry.Value); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Load restores a database from the reader, replacing the current content.
// On error the current content is kept.
//
// Thread-safety: The new content is published atomically; concurrent writes
// issued while Load runs may be lost.
func (maple *mapleImpl) Load(r io.Reader) error {
	br := bufio.NewReaderSize(r, 64*1024)

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	// Read and verify version
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if int(version) != mapleVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, mapleVersion)
	}

	var seed uint64
	if err := binary.Read(br, binary.LittleEndian, &seed); err != nil {
		return err
	}

	set := internal.NewShardSet(seed, maple.numShards)

	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return err
	}

	var maxIndex uint64
	for i := uint64(0); i < count; i++ {
		var keyLen uint32
		if err := binary.Read(br, binary.LittleEndian, &keyLen); err != nil {
			return err
		}
		if keyLen > maxKeyLen {
			return fmt.Errorf("invalid file format: key length %d exceeds %d", keyLen, maxKeyLen)
		}
		keyBytes := make([]byte, keyLen)
		if _, err := io.ReadFull(br, keyBytes); err != nil {
			return err
		}

		var index uint64
		if err := binary.Read(br, binary.LittleEndian, &index); err != nil {
			return err
		}
		maxIndex = max(maxIndex, index)

		var valueLen uint32
		if err := binary.Read(br, binary.LittleEndian, &valueLen); err != nil {
			return err
		}
		if valueLen > maxValueLen {
			return fmt.Errorf("invalid file format: value length %d exceeds %d", valueLen, maxValueLen)
		}
		value := make([]byte, valueLen)
		if _, err := io.ReadFull(br, value); err != nil {
			return err
		}

		key := string(keyBytes)
		set.GetShard(key).Data.Store(key, internal.Entry{Value: value, Index: index})
	}

	maple.set.Store(set)
	maple.SetWriteIdx(maxIndex)

	return nil
}

// --------------------------------------------------------------------------
// KVDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (maple *mapleImpl) GetInfo() db.DatabaseInfo {
	set := maple.set.Load()

	entries := 0
	sizeBytes := 0
	shardSizes := make([]float64, len(set.Shards))
	for i, shard := range set.Shards {
		shard.Data.Range(func(key string, e internal.Entry) bool {
			entries++
			sizeBytes += len(key) + len(e.Value) + 16 // 4+4 length prefixes, 8 index
			return true
		})
		shardSizes[i] = float64(shard.Data.Size())
	}

	meta := &struct {
		CurrentWriteIndex uint64                 `json:"current_write_index"`
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
		FormatVersion     int                    `json:"format_version"`
	}{
		CurrentWriteIndex: maple.currIndex.Load(),
		ShardCount:        len(set.Shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		FormatVersion:     mapleVersion,
	}

	supportedFeatures := []db.Feature{
		db.FeatureSet, db.FeatureGet, db.FeatureDelete, db.FeatureHas,
		db.FeatureRange, db.FeatureClear,
		db.FeatureSave, db.FeatureLoad,
	}

	return db.DatabaseInfo{
		Entries:           entries,
		SizeBytes:         sizeBytes,
		DbType:            db.ImplMaple,
		SupportedFeatures: supportedFeatures,
		Metadata:          meta,
	}
}

// SupportsFeature checks if this implementation supports a specific KVDB feature
func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureHas |
		db.FeatureRange |
		db.FeatureClear |
		db.FeatureSave |
		db.FeatureLoad
	return supportedFeatures&feature == feature
}

// Close releases the shards. The database must not be used afterward.
func (maple *mapleImpl) Close() error {
	if maple.closed.CompareAndSwap(false, true) {
		maple.set.Store(internal.NewShardSet(maple.set.Load().Seed, maple.numShards))
	}
	return nil
}

// --------------------------------------------------------------------------
// Index and Timestamp Management
// --------------------------------------------------------------------------

// SetWriteIdx safely updates the current index
// It only updates if the new index is greater than the current one
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) SetWriteIdx(newIdx uint64) {
	for {
		currIdx := maple.currIndex.Load()
		if newIdx <= currIdx {
			return
		}
		if maple.currIndex.CompareAndSwap(currIdx, newIdx) {
			return
		}
	}
}

// WriteIdx returns the current index of the database
func (maple *mapleImpl) WriteIdx() uint64 {
	return maple.currIndex.Load()
}
