package prefs

import (
	"sync/atomic"

	"github.com/ValentinKolb/sprefs/lib/common"
	"github.com/ValentinKolb/sprefs/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

// Logger is the logger of the prefs package
var Logger = logger.GetLogger(common.LoggerPrefs)

// defaultPrefs is the process-wide slot. It is published atomically, so once
// Init returns every goroutine observes the fully constructed Prefs.
var defaultPrefs atomic.Pointer[Prefs]

// Init opens the namespace of cfg and installs it as the process-wide default,
// replacing any previous one. On error the default is left unchanged.
func Init(cfg Config) error {
	p, err := Open(cfg)
	if err != nil {
		return err
	}
	if old := defaultPrefs.Swap(p); old != nil && old.ns != p.ns {
		Logger.Infof("default preferences switched from %s to %s", old.ns.Name(), p.ns.Name())
	}
	return nil
}

// Default returns the process-wide preferences
func Default() (*Prefs, error) {
	p := defaultPrefs.Load()
	if p == nil {
		return nil, store.NewError(store.RetCNotInitialized, "preferences are not initialized, call Builder.Build or Init first")
	}
	return p, nil
}

// Handle returns the namespace of the process-wide preferences
func Handle() (*store.Namespace, error) {
	p, err := Default()
	if err != nil {
		return nil, err
	}
	return p.ns, nil
}

// --------------------------------------------------------------------------
// Package level accessors, all fail with ErrNotInitialized before Init
// --------------------------------------------------------------------------

func get[T any](fn func(p *Prefs) (T, error)) (T, error) {
	p, err := Default()
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(p)
}

func put(fn func(p *Prefs)) error {
	p, err := Default()
	if err != nil {
		return err
	}
	fn(p)
	return nil
}

// GetInt reads an int of the default preferences, 0 if missing
func GetInt(key string) (int32, error) {
	return get(func(p *Prefs) (int32, error) { return p.GetInt(key) })
}

// GetIntOr reads an int of the default preferences, def if missing
func GetIntOr(key string, def int32) (int32, error) {
	return get(func(p *Prefs) (int32, error) { return p.GetIntOr(key, def) })
}

// GetLong reads a long of the default preferences, 0 if missing
func GetLong(key string) (int64, error) {
	return get(func(p *Prefs) (int64, error) { return p.GetLong(key) })
}

// GetLongOr reads a long of the default preferences, def if missing
func GetLongOr(key string, def int64) (int64, error) {
	return get(func(p *Prefs) (int64, error) { return p.GetLongOr(key, def) })
}

// GetFloat reads a float of the default preferences, 0 if missing
func GetFloat(key string) (float32, error) {
	return get(func(p *Prefs) (float32, error) { return p.GetFloat(key) })
}

// GetFloatOr reads a float of the default preferences, def if missing
func GetFloatOr(key string, def float32) (float32, error) {
	return get(func(p *Prefs) (float32, error) { return p.GetFloatOr(key, def) })
}

// GetDouble reads a double (long bits) of the default preferences, 0 if missing
func GetDouble(key string) (float64, error) {
	return get(func(p *Prefs) (float64, error) { return p.GetDouble(key) })
}

// GetDoubleOr reads a double (long bits) of the default preferences, def if missing
func GetDoubleOr(key string, def float64) (float64, error) {
	return get(func(p *Prefs) (float64, error) { return p.GetDoubleOr(key, def) })
}

// GetBoolean reads a boolean of the default preferences, false if missing
func GetBoolean(key string) (bool, error) {
	return get(func(p *Prefs) (bool, error) { return p.GetBoolean(key) })
}

// GetBooleanOr reads a boolean of the default preferences, def if missing
func GetBooleanOr(key string, def bool) (bool, error) {
	return get(func(p *Prefs) (bool, error) { return p.GetBooleanOr(key, def) })
}

// GetString reads a string of the default preferences, "" if missing
func GetString(key string) (string, error) {
	return get(func(p *Prefs) (string, error) { return p.GetString(key) })
}

// GetStringOr reads a string of the default preferences, def if missing
func GetStringOr(key string, def string) (string, error) {
	return get(func(p *Prefs) (string, error) { return p.GetStringOr(key, def) })
}

// GetAll returns a copy of all entries of the default preferences
func GetAll() (map[string]any, error) {
	return get(func(p *Prefs) (map[string]any, error) { return p.GetAll(), nil })
}

// Contains reports whether key exists in the default preferences
func Contains(key string) (bool, error) {
	return get(func(p *Prefs) (bool, error) { return p.Contains(key), nil })
}

// Edit returns a new editor of the default preferences
func Edit() (*store.Editor, error) {
	return get(func(p *Prefs) (*store.Editor, error) { return p.Edit(), nil })
}

// PutInt, PutLong, PutFloat, PutDouble, PutBoolean and PutString store v under
// key of the default preferences. The change is visible immediately and written
// in the background, see Flush.
func PutInt(key string, v int32) error      { return put(func(p *Prefs) { p.PutInt(key, v) }) }
func PutLong(key string, v int64) error     { return put(func(p *Prefs) { p.PutLong(key, v) }) }
func PutFloat(key string, v float32) error  { return put(func(p *Prefs) { p.PutFloat(key, v) }) }
func PutDouble(key string, v float64) error { return put(func(p *Prefs) { p.PutDouble(key, v) }) }
func PutBoolean(key string, v bool) error   { return put(func(p *Prefs) { p.PutBoolean(key, v) }) }
func PutString(key string, v string) error  { return put(func(p *Prefs) { p.PutString(key, v) }) }

// Remove deletes key from the default preferences
func Remove(key string) error { return put(func(p *Prefs) { p.Remove(key) }) }

// Clear removes all entries of the default preferences
func Clear() error { return put(func(p *Prefs) { p.Clear() }) }

// Flush waits until all applied changes of the default preferences are written
func Flush() error {
	p, err := Default()
	if err != nil {
		return err
	}
	return p.Flush()
}

// RegisterListener adds a listener to the default preferences
func RegisterListener(fn store.Listener) (store.ListenerID, error) {
	return get(func(p *Prefs) (store.ListenerID, error) { return p.RegisterListener(fn), nil })
}

// UnregisterListener removes a listener from the default preferences
func UnregisterListener(id store.ListenerID) error {
	return put(func(p *Prefs) { p.UnregisterListener(id) })
}
