package store

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ValentinKolb/sprefs/lib/db"
	"github.com/ValentinKolb/sprefs/lib/db/engines/maple"
	"github.com/ValentinKolb/sprefs/lib/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestNamespace(t *testing.T, mode Mode) (*Namespace, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.prefs")
	ns, err := Open(path, mode)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ns.Close() })
	return ns, path
}

func TestTypedRoundTrip(t *testing.T) {
	ns, path := openTestNamespace(t, ModePrivate)

	negZero := math.Copysign(0, -1)
	nanPayload := math.Float64frombits(0x7ff8000000000abc)

	err := ns.Edit().
		PutInt("int.min", math.MinInt32).
		PutInt("int.max", math.MaxInt32).
		PutInt("int.zero", 0).
		PutLong("long.min", math.MinInt64).
		PutFloat("float.neg", -1.5).
		PutDouble("double.negzero", negZero).
		PutDouble("double.nan", nanPayload).
		PutDouble("double.inf", math.Inf(1)).
		PutBoolean("bool", true).
		PutString("string.empty", "").
		Commit()
	require.NoError(t, err)

	check := func(ns *Namespace) {
		i, err := ns.GetInt("int.min", 1)
		require.NoError(t, err)
		assert.Equal(t, int32(math.MinInt32), i)

		i, err = ns.GetInt("int.max", 1)
		require.NoError(t, err)
		assert.Equal(t, int32(math.MaxInt32), i)

		i, err = ns.GetInt("int.zero", 1)
		require.NoError(t, err)
		assert.Equal(t, int32(0), i)

		l, err := ns.GetLong("long.min", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(math.MinInt64), l)

		f, err := ns.GetFloat("float.neg", 0)
		require.NoError(t, err)
		assert.Equal(t, float32(-1.5), f)

		d, err := ns.GetDouble("double.negzero", 1)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(negZero), math.Float64bits(d))

		d, err = ns.GetDouble("double.nan", 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0x7ff8000000000abc), math.Float64bits(d), "NaN payload must survive")

		d, err = ns.GetDouble("double.inf", 0)
		require.NoError(t, err)
		assert.True(t, math.IsInf(d, 1))

		b, err := ns.GetBoolean("bool", false)
		require.NoError(t, err)
		assert.True(t, b)

		s, err := ns.GetString("string.empty", "default")
		require.NoError(t, err)
		assert.Equal(t, "", s)
	}

	check(ns)

	// the same values must come back from the file
	reopened, err := Open(path, ModePrivate)
	require.NoError(t, err)
	defer reopened.Close()
	check(reopened)
}

func TestMissingKeysReturnDefault(t *testing.T) {
	ns, _ := openTestNamespace(t, ModePrivate)

	i, err := ns.GetInt("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, int32(7), i)

	d, err := ns.GetDouble("missing", 2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, d)

	s, err := ns.GetString("missing", "x")
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	assert.False(t, ns.Contains("missing"))
}

func TestTypeMismatch(t *testing.T) {
	ns, _ := openTestNamespace(t, ModePrivate)
	require.NoError(t, ns.Edit().PutString("name", "alice").PutInt("count", 3).Commit())

	_, err := ns.GetInt("name", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	var storeErr *Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, RetCTypeMismatch, storeErr.Code)

	// a double is a long, an int is not
	_, err = ns.GetDouble("count", 0)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = ns.GetLong("count", 0)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestClearIsAppliedBeforePuts(t *testing.T) {
	ns, _ := openTestNamespace(t, ModePrivate)
	require.NoError(t, ns.Edit().PutString("old", "1").PutString("kept", "1").Commit())

	require.NoError(t, ns.Edit().PutString("kept", "2").PutString("new", "3").Clear().Commit())

	assert.False(t, ns.Contains("old"))
	kept, err := ns.GetString("kept", "")
	require.NoError(t, err)
	assert.Equal(t, "2", kept)
	assert.True(t, ns.Contains("new"))
	assert.Equal(t, 2, ns.Len())
}

func TestEditorCanBeCommittedOnce(t *testing.T) {
	ns, _ := openTestNamespace(t, ModePrivate)

	editor := ns.Edit().PutInt("a", 1)
	require.NoError(t, editor.Commit())

	err := editor.Commit()
	assert.ErrorIs(t, err, ErrInvalidOperation)

	editor.Apply() // logged and reported by Flush
	assert.ErrorIs(t, ns.Flush(), ErrInvalidOperation)
	assert.NoError(t, ns.Flush(), "flush resets the background error")
}

func TestEmptyKeyIsRejected(t *testing.T) {
	ns, _ := openTestNamespace(t, ModePrivate)
	err := ns.Edit().PutInt("", 1).PutInt("b", 2).Commit()
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, ns.Contains("b"), "a failed editor must not change anything")
}

func TestUntypedValueIsRejected(t *testing.T) {
	ns, _ := openTestNamespace(t, ModePrivate)
	err := ns.Edit().PutValue("k", serializer.Value{}).Commit()
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, ns.Contains("k"))
}

func TestEmptyEditorChangesNothing(t *testing.T) {
	ns, path := openTestNamespace(t, ModePrivate)
	require.NoError(t, ns.Edit().Commit())

	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "an empty commit must not write the file")
}

func TestRemove(t *testing.T) {
	ns, _ := openTestNamespace(t, ModePrivate)
	require.NoError(t, ns.Edit().PutInt("a", 1).PutInt("b", 2).Commit())
	require.NoError(t, ns.Edit().Remove("a").Remove("missing").Commit())

	assert.False(t, ns.Contains("a"))
	assert.True(t, ns.Contains("b"))

	// remove after put in the same editor wins
	require.NoError(t, ns.Edit().PutInt("c", 3).Remove("c").Commit())
	assert.False(t, ns.Contains("c"))
}

func TestApplyIsVisibleAndFlushPersists(t *testing.T) {
	ns, path := openTestNamespace(t, ModePrivate)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ns.Edit().PutInt("counter", int32(i)).PutBoolean("seen", true).Apply()
		}(i)
	}
	wg.Wait()

	// visible in memory right away
	assert.True(t, ns.Contains("seen"))
	require.NoError(t, ns.Flush())

	want, err := ns.GetInt("counter", -1)
	require.NoError(t, err)

	reopened, err := Open(path, ModePrivate)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetInt("counter", -1)
	require.NoError(t, err)
	assert.Equal(t, want, got, "file must hold the last applied value")
}

func TestGetAllReturnsCopy(t *testing.T) {
	ns, _ := openTestNamespace(t, ModePrivate)
	require.NoError(t, ns.Edit().PutInt("a", 1).PutString("b", "x").PutBoolean("c", true).Commit())

	all := ns.GetAll()
	require.Len(t, all, 3)
	assert.True(t, serializer.Int(1).Equal(all["a"]))
	assert.True(t, serializer.String("x").Equal(all["b"]))
	assert.True(t, serializer.Bool(true).Equal(all["c"]))

	delete(all, "a")
	all["d"] = serializer.Int(4)
	assert.True(t, ns.Contains("a"))
	assert.False(t, ns.Contains("d"))
}

func TestListeners(t *testing.T) {
	ns, _ := openTestNamespace(t, ModePrivate)

	var (
		mu   sync.Mutex
		keys []string
	)
	id := ns.RegisterListener(func(got *Namespace, key string) {
		assert.Same(t, ns, got)
		mu.Lock()
		keys = append(keys, key)
		mu.Unlock()
	})

	require.NoError(t, ns.Edit().PutInt("a", 1).PutInt("b", 2).Commit())
	require.NoError(t, ns.Edit().PutInt("a", 1).Commit()) // same value, no change
	require.NoError(t, ns.Edit().Clear().PutInt("c", 3).Commit())

	mu.Lock()
	assert.Equal(t, []string{"a", "b", "", "c"}, keys)
	keys = nil
	mu.Unlock()

	ns.UnregisterListener(id)
	require.NoError(t, ns.Edit().PutInt("d", 4).Commit())
	mu.Lock()
	assert.Empty(t, keys)
	mu.Unlock()
}

func TestFilePermissionsFollowMode(t *testing.T) {
	tests := []struct {
		mode Mode
		perm os.FileMode
	}{
		{ModePrivate, 0o600},
		{ModeWorldReadable, 0o644},
		{ModeWorldWritable, 0o666},
		{ModeMultiProcess, 0o600},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			ns, path := openTestNamespace(t, tt.mode)
			require.NoError(t, ns.Edit().PutInt("a", 1).Commit())

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, tt.perm, info.Mode().Perm())
		})
	}
}

func TestOpenRejectsInvalidMode(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "x.prefs"), Mode(3))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.prefs")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a snapshot"), 0o600))

	_, err := Open(path, ModePrivate)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestClosedNamespaceRejectsEdits(t *testing.T) {
	ns, _ := openTestNamespace(t, ModePrivate)
	require.NoError(t, ns.Close())
	require.NoError(t, ns.Close(), "close is idempotent")

	err := ns.Edit().PutInt("a", 1).Commit()
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestCloseDuringApply(t *testing.T) {
	ns, path := openTestNamespace(t, ModePrivate)
	require.NoError(t, ns.Edit().PutString("kept-1", "a").PutString("kept-2", "b").Commit())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ns.Edit().PutInt("racing", int32(i)).Apply()
		}(i)
	}
	if err := ns.Close(); err != nil {
		// a racing Apply rejected after Close started
		assert.ErrorIs(t, err, ErrInvalidOperation)
	}
	wg.Wait()
	_ = ns.Flush()

	// edits after Close are rejected instead of landing in the released engine
	ns.Edit().PutInt("late", 1).Apply()
	assert.ErrorIs(t, ns.Flush(), ErrInvalidOperation)

	reopened, err := Open(path, ModePrivate)
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, reopened.Contains("kept-1"))
	assert.True(t, reopened.Contains("kept-2"))
	assert.False(t, reopened.Contains("late"))
}

func TestCustomEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.prefs")
	ns, err := Open(path, ModePrivate,
		WithName("custom"),
		WithDBFactory(func() db.KVDB { return maple.NewMapleDB(&maple.DBOptions{NumShards: 1}) }),
	)
	require.NoError(t, err)
	defer ns.Close()

	require.NoError(t, ns.Edit().PutString("k", "v").Commit())
	assert.Equal(t, "custom", ns.Name())
	assert.Equal(t, 1, ns.Info().Entries)
	assert.Equal(t, db.ImplMaple, ns.Info().DbType)
}

func TestExportImport(t *testing.T) {
	src, _ := openTestNamespace(t, ModePrivate)
	require.NoError(t, src.Edit().PutInt("a", 1).PutDouble("pi", math.Pi).PutString("s", "x").Commit())

	for _, format := range []string{"json", "toml", "yaml"} {
		t.Run(format, func(t *testing.T) {
			dumper, err := serializer.NewDumpSerializer(format)
			require.NoError(t, err)

			data, err := src.Export(dumper)
			require.NoError(t, err)

			dst, _ := openTestNamespace(t, ModePrivate)
			require.NoError(t, dst.Edit().PutInt("stale", 1).Commit())

			n, err := dst.Import(data, dumper, true)
			require.NoError(t, err)
			assert.Equal(t, 3, n)
			assert.False(t, dst.Contains("stale"))

			pi, err := dst.GetDouble("pi", 0)
			require.NoError(t, err)
			assert.Equal(t, math.Pi, pi)
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"private":         ModePrivate,
		"WORLD_READABLE":  ModeWorldReadable,
		"world-writeable": ModeWorldWritable,
		"multi_process":   ModeMultiProcess,
		"4":               ModeMultiProcess,
		"0":               ModePrivate,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"3", "public", "-1"} {
		_, err := ParseMode(in)
		assert.ErrorIs(t, err, ErrInvalidArgument, in)
	}
}
