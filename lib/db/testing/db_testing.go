package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/sprefs/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("Range", func(t *testing.T) {
			testRange(t, factory())
		})

		t.Run("StaleWrites", func(t *testing.T) {
			testStaleWrites(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("LoadInvalid", func(t *testing.T) {
			testLoadInvalid(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	database.Set(testKey, testValue1, 1)

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	database.Set(testKey, testValue2, 2)

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = database.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	retrievedValue, _ := database.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _ := database.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	input := []byte("mutable")
	database.Set("copy-key", input, 3)
	input[0] = 'X'
	if stored, _ := database.Get("copy-key"); !bytes.Equal(stored, []byte("mutable")) {
		t.Errorf("Set should copy the value, got %s", stored)
	}

	if database.WriteIdx() != 3 {
		t.Errorf("Expected write index 3, got %d", database.WriteIdx())
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	database.Set("delete-key", []byte("value"), 1)
	database.Delete("delete-key", 2)

	if _, exists := database.Get("delete-key"); exists {
		t.Errorf("Expected key to be gone after Delete")
	}

	// deleting a missing key must not create it
	database.Delete("never-set", 3)
	if database.Has("never-set") {
		t.Errorf("Delete of a missing key should not create it")
	}

	database.Set("delete-key", []byte("again"), 4)
	if value, exists := database.Get("delete-key"); !exists || string(value) != "again" {
		t.Errorf("Expected key to be writable after Delete, got %s (exists=%v)", value, exists)
	}
}

func testHas(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureHas)

	if database.Has("has-key") {
		t.Errorf("Expected Has to return false for a missing key")
	}

	database.Set("has-key", nil, 1)
	if !database.Has("has-key") {
		t.Errorf("Expected Has to return true for a key with an empty value")
	}
}

func testClear(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureClear|db.FeatureRange)

	for i := 0; i < 100; i++ {
		database.Set(fmt.Sprintf("clear-%d", i), []byte("v"), uint64(i+1))
	}
	database.Set("late", []byte("v"), 500)

	database.Clear(100)

	if database.Len() != 1 {
		t.Errorf("Expected one entry to survive Clear, got %d", database.Len())
	}
	if !database.Has("late") {
		t.Errorf("Expected entry written after the clear index to survive")
	}

	database.Clear(database.WriteIdx() + 1)
	if database.Len() != 0 {
		t.Errorf("Expected empty database after Clear, got %d entries", database.Len())
	}
}

func testRange(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureRange)

	expected := map[string]string{}
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("range-%d", i)
		expected[key] = fmt.Sprintf("value-%d", i)
		database.Set(key, []byte(expected[key]), uint64(i+1))
	}

	seen := map[string]string{}
	database.Range(func(key string, value []byte) bool {
		seen[key] = string(value)
		return true
	})

	if len(seen) != len(expected) {
		t.Errorf("Expected %d entries, got %d", len(expected), len(seen))
	}
	for k, v := range expected {
		if seen[k] != v {
			t.Errorf("Range value mismatch for %s: expected %s, got %s", k, v, seen[k])
		}
	}

	count := 0
	database.Range(func(string, []byte) bool {
		count++
		return count < 5
	})
	if count != 5 {
		t.Errorf("Expected Range to stop after 5 entries, got %d", count)
	}

	if database.Len() != 50 {
		t.Errorf("Expected Len 50, got %d", database.Len())
	}
}

func testStaleWrites(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	database.Set("stale", []byte("new"), 10)
	database.Set("stale", []byte("old"), 5)

	if value, _ := database.Get("stale"); string(value) != "new" {
		t.Errorf("Stale Set should be ignored, got %s", value)
	}

	database.Delete("stale", 5)
	if !database.Has("stale") {
		t.Errorf("Stale Delete should be ignored")
	}

	database.SetWriteIdx(3)
	if database.WriteIdx() != 10 {
		t.Errorf("Write index must never decrease, got %d", database.WriteIdx())
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	database2 := factory()

	defer database.Close()
	defer database2.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureSave|db.FeatureLoad)

	numEntries := 1000
	originalKeys := make([]string, numEntries)
	originalValues := make([][]byte, numEntries)

	for i := 0; i < numEntries; i++ {
		key := fmt.Sprintf("save-load-test-key-%d", i)
		value := []byte(fmt.Sprintf("save-load-test-value-%d", i))
		originalKeys[i] = key
		originalValues[i] = value

		database.Set(key, value, uint64(i+1))
	}
	database.Set("empty-value", []byte{}, uint64(numEntries+1))

	// content of database2 is replaced by Load
	database2.Set("only-in-target", []byte("x"), 1)

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}

	if err := database2.Load(&buf); err != nil {
		t.Fatalf("Unexpected error during Load: %v", err)
	}

	for i := 0; i < numEntries; i++ {
		actualValue, exists := database2.Get(originalKeys[i])
		if !exists {
			t.Errorf("Key %s not found after Load", originalKeys[i])
			continue
		}
		if !bytes.Equal(actualValue, originalValues[i]) {
			t.Errorf("Value mismatch for key %s: expected %s, got %s", originalKeys[i], originalValues[i], actualValue)
		}
	}

	if !database2.Has("empty-value") {
		t.Errorf("Expected entry with empty value to survive Save/Load")
	}
	if database2.Has("only-in-target") {
		t.Errorf("Load should replace the existing content")
	}
	if database2.WriteIdx() != uint64(numEntries+1) {
		t.Errorf("Expected write index %d after Load, got %d", numEntries+1, database2.WriteIdx())
	}
	if database2.Len() != numEntries+1 {
		t.Errorf("Expected %d entries after Load, got %d", numEntries+1, database2.Len())
	}
}

func testLoadInvalid(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureLoad)

	database.Set("keep", []byte("me"), 1)

	if err := database.Load(bytes.NewReader([]byte("not a snapshot at all"))); err == nil {
		t.Errorf("Expected error when loading garbage")
	}
	if err := database.Load(bytes.NewReader(nil)); err == nil {
		t.Errorf("Expected error when loading an empty reader")
	}

	if value, ok := database.Get("keep"); !ok || string(value) != "me" {
		t.Errorf("Failed Load must keep the current content")
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	cases := map[string][]byte{
		"":                 []byte("empty key"),
		"unicode-ключ-鍵":   []byte("unicode"),
		"with\x00null":     []byte("null byte"),
		"binary":           {0x00, 0xff, 0x10, 0x00},
		"large":            bytes.Repeat([]byte("x"), 1<<20),
		"spaces in key  ":  []byte("spaces"),
		"newline\nkey":     []byte("newline"),
		"slash/and\\back":  []byte("slashes"),
		"long-" + string(bytes.Repeat([]byte("k"), 1024)): []byte("long key"),
	}

	idx := uint64(1)
	for k, v := range cases {
		database.Set(k, v, idx)
		idx++
	}

	for k, v := range cases {
		got, ok := database.Get(k)
		if !ok {
			t.Errorf("Expected key %q to exist", k)
			continue
		}
		if !bytes.Equal(got, v) {
			t.Errorf("Value mismatch for key %q", k)
		}
	}
}

func testConcurrent(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureRange)

	var wg sync.WaitGroup
	workers := 8
	perWorker := 200

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("w%d-k%d", w, i)
				database.Set(key, []byte(key), uint64(w*perWorker+i+1))
				if v, ok := database.Get(key); !ok || string(v) != key {
					t.Errorf("Concurrent read of %s returned %s (ok=%v)", key, v, ok)
				}
			}
		}(w)
	}
	wg.Wait()

	if database.Len() != workers*perWorker {
		t.Errorf("Expected %d entries, got %d", workers*perWorker, database.Len())
	}
}
