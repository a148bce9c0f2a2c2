// Package db provides a standardized interface for the key-value engines that
// back a preferences namespace. It defines the KVDB interface so the namespace
// store can interact with an engine without knowing its implementation.
//
// The package focuses on:
//   - A unified interface for key-value operations
//   - Feature discovery through capability flags
//   - Standardized persistence operations (one snapshot per namespace file)
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for basic operations (Set, Get, Has, Delete, Clear),
//     iteration (Range, Len), metadata retrieval (GetInfo) and persistence
//     operations (Save, Load).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method.
//
//   - Database Information: The DatabaseInfo structure reports entry count, an
//     estimated size, the implementation type and implementation-specific metadata.
//
// Note on the Write Index:
//   - All write operations take a write-index that acts as a logical timestamp.
//     Implementations ignore writes whose index is lower than the index of the
//     entry they would replace, and the global index only increases.
//   - Read operations do not take an index.
//
// Related Packages:
//
// The engines/maple package (github.com/ValentinKolb/sprefs/lib/db/engines/maple)
// provides a sharded in-memory implementation with a binary snapshot format.
//
// The testing package (github.com/ValentinKolb/sprefs/lib/db/testing) provides
// a conformance suite for implementations of the KVDB interface.
package db
