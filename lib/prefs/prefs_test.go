package prefs

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/ValentinKolb/sprefs/lib/common"
	"github.com/ValentinKolb/sprefs/lib/host"
	"github.com/ValentinKolb/sprefs/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPackage = "com.example.prefs"

// recordingHost remembers the last namespace request
type recordingHost struct {
	*host.App
	mu   sync.Mutex
	name string
	mode store.Mode
}

func (r *recordingHost) Preferences(name string, mode store.Mode) (*store.Namespace, error) {
	r.mu.Lock()
	r.name, r.mode = name, mode
	r.mu.Unlock()
	return r.App.Preferences(name, mode)
}

func newTestHost(t *testing.T) *recordingHost {
	t.Helper()
	app, err := host.NewApp(common.HostConfig{PackageName: testPackage, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return &recordingHost{App: app}
}

// initTest resets the default slot and installs a fresh namespace
func initTest(t *testing.T) *recordingHost {
	t.Helper()
	defaultPrefs.Store(nil)
	t.Cleanup(func() { defaultPrefs.Store(nil) })

	h := newTestHost(t)
	require.NoError(t, NewBuilder().SetContext(h).SetNamespace("test").Build())
	return h
}

func TestBuildResolvesNamespace(t *testing.T) {
	defaultPrefs.Store(nil)
	t.Cleanup(func() { defaultPrefs.Store(nil) })

	tests := []struct {
		name      string
		namespace string
		suffix    bool
		mode      store.Mode
		want      string
	}{
		{"explicit name", "settings", false, store.ModePrivate, "settings"},
		{"package name", "", false, store.ModeWorldReadable, testPackage},
		{"suffixed name", "settings", true, store.ModeWorldWritable, "settings" + DefaultSuffix},
		{"suffixed package name", "", true, store.ModeMultiProcess, testPackage + DefaultSuffix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHost(t)
			err := NewBuilder().
				SetContext(h).
				SetNamespace(tt.namespace).
				SetMode(tt.mode).
				SetUseDefaultSuffix(tt.suffix).
				Build()
			require.NoError(t, err)

			assert.Equal(t, tt.want, h.name)
			assert.Equal(t, tt.mode, h.mode)

			ns, err := Handle()
			require.NoError(t, err)
			assert.Equal(t, tt.want, ns.Name())
			assert.Equal(t, tt.mode, ns.Mode())
		})
	}
}

func TestAccessorsBeforeInit(t *testing.T) {
	defaultPrefs.Store(nil)

	_, err := Handle()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = Default()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = GetInt("k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = GetLongOr("k", 1)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = GetFloat("k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = GetDouble("k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = GetBoolean("k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = GetString("k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = GetAll()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = Contains("k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = Edit()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = RegisterListener(func(*store.Namespace, string) {})
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, PutInt("k", 1), ErrNotInitialized)
	assert.ErrorIs(t, PutDouble("k", 1), ErrNotInitialized)
	assert.ErrorIs(t, PutString("k", "v"), ErrNotInitialized)
	assert.ErrorIs(t, Remove("k"), ErrNotInitialized)
	assert.ErrorIs(t, Clear(), ErrNotInitialized)
	assert.ErrorIs(t, Flush(), ErrNotInitialized)
}

func TestBuildWithoutContext(t *testing.T) {
	defaultPrefs.Store(nil)
	t.Cleanup(func() { defaultPrefs.Store(nil) })

	err := NewBuilder().SetNamespace("x").Build()
	assert.ErrorIs(t, err, ErrMissingContext)

	_, err = Handle()
	assert.ErrorIs(t, err, ErrNotInitialized, "a failed build must not install anything")
}

func TestSetModeValidation(t *testing.T) {
	for _, mode := range []store.Mode{-1, 3, 5, 8} {
		b := NewBuilder().SetMode(mode)
		assert.ErrorIs(t, b.Err(), ErrInvalidArgument, "mode %d", mode)
		assert.Contains(t, b.Err().Error(), store.ValidModes)
		assert.Equal(t, store.ModePrivate, b.Config().Mode, "invalid mode must not change the field")
	}

	defaultPrefs.Store(nil)
	t.Cleanup(func() { defaultPrefs.Store(nil) })
	h := newTestHost(t)
	err := NewBuilder().SetContext(h).SetMode(7).Build()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	b := NewBuilder().SetMode(store.ModeWorldReadable)
	assert.NoError(t, b.Err())
	assert.Equal(t, store.ModeWorldReadable, b.Config().Mode)
}

func TestSetModeRecoversFromInvalidMode(t *testing.T) {
	defaultPrefs.Store(nil)
	t.Cleanup(func() { defaultPrefs.Store(nil) })
	h := newTestHost(t)

	b := NewBuilder().SetContext(h).SetNamespace("recovered").SetMode(3)
	require.ErrorIs(t, b.Err(), ErrInvalidArgument)

	b.SetMode(store.ModeMultiProcess)
	assert.NoError(t, b.Err())
	require.NoError(t, b.Build())
	assert.Equal(t, store.ModeMultiProcess, h.mode)
}

func TestRoundTrip(t *testing.T) {
	initTest(t)

	require.NoError(t, PutInt("int.min", math.MinInt32))
	require.NoError(t, PutInt("int.max", math.MaxInt32))
	require.NoError(t, PutLong("long", math.MinInt64))
	require.NoError(t, PutFloat("float", -0.25))
	require.NoError(t, PutDouble("double.nan", math.NaN()))
	require.NoError(t, PutDouble("double.inf", math.Inf(-1)))
	require.NoError(t, PutBoolean("bool", true))
	require.NoError(t, PutString("string", ""))

	i, err := GetInt("int.min")
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), i)

	i, err = GetInt("int.max")
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32), i)

	l, err := GetLong("long")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), l)

	f, err := GetFloat("float")
	require.NoError(t, err)
	assert.Equal(t, float32(-0.25), f)

	d, err := GetDouble("double.nan")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(d))

	d, err = GetDouble("double.inf")
	require.NoError(t, err)
	assert.True(t, math.IsInf(d, -1))

	b, err := GetBoolean("bool")
	require.NoError(t, err)
	assert.True(t, b)

	s, err := GetStringOr("string", "not empty")
	require.NoError(t, err)
	assert.Equal(t, "", s)

	require.NoError(t, Flush())
}

func TestMultiProcessRoundTrip(t *testing.T) {
	defaultPrefs.Store(nil)
	t.Cleanup(func() { defaultPrefs.Store(nil) })
	h := newTestHost(t)
	require.NoError(t, NewBuilder().SetContext(h).SetNamespace("shared").SetMode(store.ModeMultiProcess).Build())

	const n = 150
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("applied.%03d", i)
		require.NoError(t, PutInt(key, int32(i)))
		found, err := Contains(key)
		require.NoError(t, err)
		require.True(t, found, key)
	}
	for i := 0; i < n; i++ {
		editor, err := Edit()
		require.NoError(t, err)
		require.NoError(t, editor.PutString(fmt.Sprintf("committed.%03d", i), "v").Commit())
	}
	require.NoError(t, Flush())

	for i := 0; i < n; i++ {
		v, err := GetIntOr(fmt.Sprintf("applied.%03d", i), -1)
		require.NoError(t, err)
		assert.Equal(t, int32(i), v)
		found, err := Contains(fmt.Sprintf("committed.%03d", i))
		require.NoError(t, err)
		assert.True(t, found)
	}

	// a second host on the same directory sees everything
	other, err := host.NewApp(common.HostConfig{PackageName: testPackage, DataDir: h.DataDir()})
	require.NoError(t, err)
	defer other.Close()
	p, err := Open(Config{Host: other, Namespace: "shared", Mode: store.ModeMultiProcess})
	require.NoError(t, err)
	all := p.GetAll()
	assert.Len(t, all, 2*n)
	assert.Equal(t, int32(n-1), all[fmt.Sprintf("applied.%03d", n-1)])
}

func TestDefaults(t *testing.T) {
	initTest(t)

	i, err := GetInt("missing")
	require.NoError(t, err)
	assert.Equal(t, int32(0), i)
	i, err = GetIntOr("missing", 42)
	require.NoError(t, err)
	assert.Equal(t, int32(42), i)

	l, err := GetLong("missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), l)

	f, err := GetFloatOr("missing", 1.5)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)

	d, err := GetDouble("missing")
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)

	b, err := GetBooleanOr("missing", true)
	require.NoError(t, err)
	assert.True(t, b)

	s, err := GetString("missing")
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestDoubleIsStoredAsBits(t *testing.T) {
	initTest(t)

	for _, d := range []float64{math.Copysign(0, -1), math.Float64frombits(0x7ff0000000000001), math.SmallestNonzeroFloat64, -math.MaxFloat64} {
		require.NoError(t, PutDouble("d", d))

		bits, err := GetLong("d")
		require.NoError(t, err)
		assert.Equal(t, int64(math.Float64bits(d)), bits)

		got, err := GetDouble("d")
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(d), math.Float64bits(got))
	}
}

func TestTypeMismatch(t *testing.T) {
	initTest(t)
	require.NoError(t, PutString("name", "x"))

	_, err := GetBoolean("name")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = GetDoubleOr("name", 1)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestContainsAndClear(t *testing.T) {
	initTest(t)

	require.NoError(t, PutInt("a", 1))
	ok, err := Contains("a")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, Remove("a"))
	ok, _ = Contains("a")
	assert.False(t, ok)

	require.NoError(t, PutInt("a", 1))
	require.NoError(t, PutString("b", "x"))
	require.NoError(t, Clear())

	ok, _ = Contains("a")
	assert.False(t, ok)
	ok, _ = Contains("b")
	assert.False(t, ok)

	all, err := GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetAll(t *testing.T) {
	initTest(t)

	require.NoError(t, PutInt("a", 1))
	require.NoError(t, PutString("b", "x"))
	require.NoError(t, PutBoolean("c", true))

	all, err := GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int32(1), "b": "x", "c": true}, all)

	all["a"] = int32(99)
	delete(all, "b")

	again, err := GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int32(1), "b": "x", "c": true}, again)
}

func TestEditBatch(t *testing.T) {
	initTest(t)
	require.NoError(t, PutInt("old", 1))

	editor, err := Edit()
	require.NoError(t, err)
	require.NoError(t, editor.Clear().PutString("new", "v").Commit())

	ok, _ := Contains("old")
	assert.False(t, ok)
	s, err := GetString("new")
	require.NoError(t, err)
	assert.Equal(t, "v", s)
}

func TestListenerForwarding(t *testing.T) {
	initTest(t)

	keys := make(chan string, 4)
	id, err := RegisterListener(func(_ *store.Namespace, key string) { keys <- key })
	require.NoError(t, err)

	require.NoError(t, PutInt("a", 1))
	assert.Equal(t, "a", <-keys)

	require.NoError(t, UnregisterListener(id))
	require.NoError(t, PutInt("b", 1))
	assert.Empty(t, keys)
}

func TestRebuildReplacesHandle(t *testing.T) {
	h := initTest(t)
	first, err := Handle()
	require.NoError(t, err)

	require.NoError(t, NewBuilder().SetContext(h).SetNamespace("second").Build())
	second, err := Handle()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, "second", second.Name())
}

func TestOpenDoesNotTouchDefault(t *testing.T) {
	defaultPrefs.Store(nil)
	h := newTestHost(t)

	p, err := Open(Config{Host: h, Namespace: "explicit"})
	require.NoError(t, err)
	p.PutInt("a", 1)

	v, err := p.GetInt("a")
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	_, err = Default()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

// Goroutines that see the default must always see a usable handle, and every
// goroutine started after Init returned must see it.
func TestConcurrentInitPublishesCompleteHandle(t *testing.T) {
	defaultPrefs.Store(nil)
	t.Cleanup(func() { defaultPrefs.Store(nil) })
	h := newTestHost(t)

	stop := make(chan struct{})
	var readers sync.WaitGroup
	for i := 0; i < 8; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				p, err := Default()
				if err != nil {
					assert.ErrorIs(t, err, ErrNotInitialized)
					continue
				}
				if !assert.NotNil(t, p.Handle()) {
					return
				}
				_, err = p.GetIntOr("counter", 0)
				assert.NoError(t, err)
			}
		}()
	}

	var builders sync.WaitGroup
	for i := 0; i < 4; i++ {
		builders.Add(1)
		go func() {
			defer builders.Done()
			assert.NoError(t, NewBuilder().SetContext(h).SetNamespace("shared").Build())
		}()
	}
	builders.Wait()

	var after sync.WaitGroup
	for i := 0; i < 8; i++ {
		after.Add(1)
		go func(i int) {
			defer after.Done()
			assert.NoError(t, PutInt("counter", int32(i)))
			_, err := GetInt("counter")
			assert.NoError(t, err)
		}(i)
	}
	after.Wait()

	close(stop)
	readers.Wait()
	require.NoError(t, Flush())
}
