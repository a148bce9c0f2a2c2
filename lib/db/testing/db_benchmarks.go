package testing

import (
	"bytes"
	"fmt"
	"github.com/ValentinKolb/sprefs/lib/db"
	"sync/atomic"
	"testing"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementations
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Has(not)", func(b *testing.B) {
			benchmarkHasNot(b, factory())
		})

		b.Run("SaveLoad", func(b *testing.B) {
			benchmarkSaveLoad(b, factory)
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkSet(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)

	var index atomic.Uint64
	value := []byte("benchmark-value")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			database.Set(fmt.Sprintf("key-%d", counter%1000), value, index.Add(1))
			counter++
		}
	})
}

func benchmarkGet(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureGet)

	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
		database.Set(keys[i], []byte("benchmark-value"), uint64(i+1))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			database.Get(keys[counter%len(keys)])
			counter++
		}
	})
}

func benchmarkHasNot(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureHas)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.Has("missing")
	}
}

func benchmarkSaveLoad(b *testing.B, factory DBFactory) {
	database := factory()
	target := factory()
	b.Cleanup(func() {
		database.Close()
		target.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureSave|db.FeatureLoad)

	for i := 0; i < 10_000; i++ {
		database.Set(fmt.Sprintf("key-%d", i), []byte("benchmark-value"), uint64(i+1))
	}

	var buf bytes.Buffer
	b.Run("Save", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf.Reset()
			if err := database.Save(&buf); err != nil {
				b.Fatal(err)
			}
		}
	})

	snapshot := buf.Bytes()
	b.Run("Load", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := target.Load(bytes.NewReader(snapshot)); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func benchmarkMixedUsage(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	var index atomic.Uint64
	value := []byte("benchmark-value")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("key-%d", counter%100)
			switch counter % 10 {
			case 0:
				database.Delete(key, index.Add(1))
			case 1, 2:
				database.Set(key, value, index.Add(1))
			default:
				database.Get(key)
			}
			counter++
		}
	})
}
