package db

import "io"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMaple Implementation = "maple"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet    Feature = 1 << iota // Support for Set operations
	FeatureGet                        // Support for Get operations
	FeatureDelete                     // Support for Delete operations
	FeatureHas                        // Support for Has operations
	FeatureRange                      // Support for Range and Len operations
	FeatureClear                      // Support for Clear operations
	FeatureSave                       // Support for Save operations
	FeatureLoad                       // Support for Load operations
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureHas:
		return "Has"
	case FeatureRange:
		return "Range"
	case FeatureClear:
		return "Clear"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	Entries           int            `json:"entries"`
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for key-value database implementations.
// It provides methods for basic operations like Set, Get, Delete, iteration and persistence.
// Any implementation of this interface must manage keys in a consistent way.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates an entry with the given key, value, and writeIndex.
	// If the key already exists, the old value should be overwritten.
	// The writeIndex parameter is used as a logical timestamp for the entry,
	// writes with an index lower than the stored entry's index are ignored.
	Set(key string, value []byte, writeIndex uint64)

	// Delete removes an entry with the specified key.
	// The key should be removed from the database and not be findable anymore.
	Delete(key string, writeIndex uint64)

	// Clear removes every entry that was written at or before writeIndex.
	Clear(writeIndex uint64)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	// The returned slice is a copy and may be modified by the caller.
	Get(key string) (value []byte, loaded bool)

	// Has checks whether a key exists in the database.
	Has(key string) (loaded bool)

	// Range calls fn for every entry until fn returns false.
	// The order is unspecified. The value passed to fn is a copy.
	Range(fn func(key string, value []byte) bool)

	// Len returns the number of entries in the database.
	Len() int

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save persists the current state of the database to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load restores the database state data provided by an io.Reader.
	// The current content of the database is replaced.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Returns true if the feature is supported, false otherwise.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// --------------------------------------------------------------------------
	// Write Index Operations
	// --------------------------------------------------------------------------

	// SetWriteIdx sets the current index of the database only if the provided index is greater than the current index.
	SetWriteIdx(index uint64)

	// WriteIdx returns the current index of the database .
	WriteIdx() (index uint64)

	// Close closes the database.
	Close() (err error)
}
