package store

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/sprefs/lib/common"
	"github.com/ValentinKolb/sprefs/lib/db"
	"github.com/ValentinKolb/sprefs/lib/serializer"
	"github.com/ValentinKolb/sprefs/lib/store/internal"
	"github.com/fsnotify/fsnotify"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// Logger is the default logger of all namespaces
var Logger = logger.GetLogger(common.LoggerStore)

// ListenerID identifies a registered listener
type ListenerID uint64

// Listener is called after a change became visible in memory.
// key is the changed key, or "" if the namespace was cleared.
type Listener func(ns *Namespace, key string)

// Namespace is a handle to one preferences file.
// All methods are safe for concurrent use.
type Namespace struct {
	name string
	path string
	mode Mode
	log  logger.ILogger

	db    db.KVDB
	ser   serializer.IValueSerializer
	index atomic.Uint64

	// commitMu serializes batches, reloads and snapshots
	commitMu sync.Mutex
	gen      uint64 // bumped by every batch that changed something, guarded by commitMu

	// writeMu serializes file writes, lock order is writeMu before commitMu
	writeMu    sync.Mutex
	writtenGen uint64 // guarded by writeMu
	diskSum    uint64 // hash of the file content last written or loaded, guarded by writeMu

	pending  sync.WaitGroup
	errMu    sync.Mutex
	asyncErr error

	listeners    *xsync.MapOf[ListenerID, Listener]
	nextListener atomic.Uint64

	watcher   *fsnotify.Watcher
	watchDone chan struct{}

	metrics *namespaceMetrics
	closed  atomic.Bool
}

// Open opens the namespace stored at path, loading the file if it exists.
// The directory is created when missing. In ModeMultiProcess the file is
// watched and reloaded when another process replaces it.
func Open(path string, mode Mode, opts ...Option) (*Namespace, error) {
	if !mode.Valid() {
		return nil, NewErrorf(RetCInvalidArgument, "invalid mode %d, must be one of %s", int(mode), ValidModes)
	}

	o := options{
		factory: DefaultDBFactory,
		logger:  Logger,
	}
	for _, opt := range opts {
		opt(&o)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, NewErrorf(RetCInvalidArgument, "invalid path %q: %v", path, err)
	}
	if o.name == "" {
		base := filepath.Base(absPath)
		o.name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ns := &Namespace{
		name:      o.name,
		path:      absPath,
		mode:      mode,
		log:       o.logger,
		db:        o.factory(),
		ser:       serializer.NewBinarySerializer(),
		listeners: xsync.NewMapOf[ListenerID, Listener](),
		metrics:   newNamespaceMetrics(o.name),
	}

	if err := ns.checkFeatures(); err != nil {
		_ = ns.db.Close()
		return nil, err
	}
	if err := ns.loadFromDisk(); err != nil {
		_ = ns.db.Close()
		return nil, err
	}
	if mode == ModeMultiProcess {
		if err := ns.startWatcher(); err != nil {
			_ = ns.db.Close()
			return nil, err
		}
	}

	ns.log.Infof("opened namespace %s (%s, %d entries) at %s", ns.name, mode, ns.db.Len(), ns.path)
	return ns, nil
}

// checkFeatures verifies the engine supports everything the namespace needs
func (ns *Namespace) checkFeatures() error {
	required := []db.Feature{db.FeatureGet, db.FeatureHas, db.FeatureRange, db.FeatureSave, db.FeatureLoad}
	for _, ct := range internal.CommandTypes {
		f, err := ct.ToDBFeature()
		if err != nil {
			return NewError(RetCInternalError, err.Error())
		}
		required = append(required, f)
	}
	for _, f := range required {
		if !ns.db.SupportsFeature(f) {
			return NewErrorf(RetCUnsupportedOperation, "engine does not support %s operations", f)
		}
	}
	return nil
}

// incAndGetIndex increments the index and returns the new value.
// It is used to ensure that each write operation has a unique index.
func (ns *Namespace) incAndGetIndex() uint64 {
	return ns.index.Add(1)
}

// raiseIndex moves the index forward to at least idx
func (ns *Namespace) raiseIndex(idx uint64) {
	for {
		curr := ns.index.Load()
		if idx <= curr || ns.index.CompareAndSwap(curr, idx) {
			return
		}
	}
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Name returns the namespace name used in logs and metrics
func (ns *Namespace) Name() string { return ns.name }

// Path returns the absolute path of the namespace file
func (ns *Namespace) Path() string { return ns.path }

// Mode returns the access mode the namespace was opened with
func (ns *Namespace) Mode() Mode { return ns.mode }

// Info returns metadata about the engine holding the entries
func (ns *Namespace) Info() db.DatabaseInfo { return ns.db.GetInfo() }

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Get returns the value stored under key. The boolean reports whether the key exists.
func (ns *Namespace) Get(key string) (serializer.Value, bool, error) {
	ns.metrics.reads.Inc()

	raw, ok := ns.db.Get(key)
	if !ok {
		return serializer.Value{}, false, nil
	}
	v, err := ns.ser.Deserialize(raw)
	if err != nil {
		return serializer.Value{}, false, NewErrorf(RetCInternalError, "decode value of key %q: %v", key, err)
	}
	return v, true, nil
}

// getTyped returns def if key is missing and ErrTypeMismatch if it holds another kind
func getTyped[T any](ns *Namespace, key string, def T, want serializer.Kind, as func(serializer.Value) (T, bool)) (T, error) {
	v, ok, err := ns.Get(key)
	if err != nil || !ok {
		return def, err
	}
	t, ok := as(v)
	if !ok {
		return def, NewErrorf(RetCTypeMismatch, "key %q holds a %s, not a %s", key, v.Kind(), want)
	}
	return t, nil
}

// GetInt returns the int stored under key, def if it is missing
func (ns *Namespace) GetInt(key string, def int32) (int32, error) {
	return getTyped(ns, key, def, serializer.KindInt, serializer.Value.AsInt)
}

// GetLong returns the long stored under key, def if it is missing
func (ns *Namespace) GetLong(key string, def int64) (int64, error) {
	return getTyped(ns, key, def, serializer.KindLong, serializer.Value.AsLong)
}

// GetFloat returns the float stored under key, def if it is missing
func (ns *Namespace) GetFloat(key string, def float32) (float32, error) {
	return getTyped(ns, key, def, serializer.KindFloat, serializer.Value.AsFloat)
}

// GetDouble reads a long and reinterprets its bits as float64
func (ns *Namespace) GetDouble(key string, def float64) (float64, error) {
	return getTyped(ns, key, def, serializer.KindLong, serializer.Value.AsDouble)
}

// GetBoolean returns the boolean stored under key, def if it is missing
func (ns *Namespace) GetBoolean(key string, def bool) (bool, error) {
	return getTyped(ns, key, def, serializer.KindBool, serializer.Value.AsBool)
}

// GetString returns the string stored under key, def if it is missing
func (ns *Namespace) GetString(key string, def string) (string, error) {
	return getTyped(ns, key, def, serializer.KindString, serializer.Value.AsString)
}

// GetAll returns a copy of all entries. Entries that cannot be decoded are skipped.
func (ns *Namespace) GetAll() map[string]serializer.Value {
	ns.metrics.reads.Inc()

	result := make(map[string]serializer.Value, ns.db.Len())
	ns.db.Range(func(key string, raw []byte) bool {
		v, err := ns.ser.Deserialize(raw)
		if err != nil {
			ns.log.Warningf("namespace %s: skipping key %q: %v", ns.name, key, err)
			return true
		}
		result[key] = v
		return true
	})
	return result
}

// Contains reports whether key holds a value of any kind
func (ns *Namespace) Contains(key string) bool {
	ns.metrics.reads.Inc()
	return ns.db.Has(key)
}

// Len returns the number of entries
func (ns *Namespace) Len() int {
	return ns.db.Len()
}

// --------------------------------------------------------------------------
// Write Path
// --------------------------------------------------------------------------

// Edit returns a new editor. Nothing is changed until Apply or Commit is called.
func (ns *Namespace) Edit() *Editor {
	return &Editor{ns: ns}
}

// applyBatch makes a batch visible in memory and returns the changed keys.
// Puts of an identical value and removals of missing keys are not changes.
func (ns *Namespace) applyBatch(batch internal.Batch) ([]string, error) {
	ns.commitMu.Lock()
	defer ns.commitMu.Unlock()

	// closed is set under commitMu, so no batch lands after Close flushed
	if ns.closed.Load() {
		return nil, NewErrorf(RetCInvalidOperation, "namespace %s is closed", ns.name)
	}
	if batch.Empty() {
		return nil, nil
	}

	var changed []string
	if batch.Clear && ns.db.Len() > 0 {
		ns.db.Clear(ns.incAndGetIndex())
		changed = append(changed, "")
	}

	for _, cmd := range batch.Commands {
		switch cmd.Type {
		case internal.CommandTSet:
			if old, ok := ns.db.Get(cmd.Key); ok && bytes.Equal(old, cmd.Value) {
				continue
			}
			ns.db.Set(cmd.Key, cmd.Value, ns.incAndGetIndex())
		case internal.CommandTDelete:
			if !ns.db.Has(cmd.Key) {
				continue
			}
			ns.db.Delete(cmd.Key, ns.incAndGetIndex())
		default:
			return changed, NewErrorf(RetCInternalError, "unexpected command %s in batch", cmd.Type)
		}
		ns.metrics.writes.Inc()
		changed = append(changed, cmd.Key)
	}

	if len(changed) > 0 {
		ns.gen++
	}
	ns.metrics.commits.Inc()
	return changed, nil
}

// --------------------------------------------------------------------------
// Listeners
// --------------------------------------------------------------------------

// RegisterListener adds a listener that is called for every changed key
func (ns *Namespace) RegisterListener(fn Listener) ListenerID {
	id := ListenerID(ns.nextListener.Add(1))
	ns.listeners.Store(id, fn)
	return id
}

// UnregisterListener removes a listener, unknown ids are ignored
func (ns *Namespace) UnregisterListener(id ListenerID) {
	ns.listeners.Delete(id)
}

func (ns *Namespace) notify(keys []string) {
	if len(keys) == 0 || ns.listeners.Size() == 0 {
		return
	}
	for _, key := range keys {
		ns.listeners.Range(func(_ ListenerID, fn Listener) bool {
			fn(ns, key)
			return true
		})
	}
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Close flushes pending writes, stops the watcher and releases the engine.
// Further edits fail with RetCInvalidOperation.
func (ns *Namespace) Close() error {
	ns.commitMu.Lock()
	swapped := ns.closed.CompareAndSwap(false, true)
	ns.commitMu.Unlock()
	if !swapped {
		return nil
	}

	ns.stopWatcher()
	err := ns.Flush()
	if cerr := ns.db.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close engine: %w", cerr)
	}

	ns.log.Debugf("closed namespace %s", ns.name)
	return err
}
