package prefs

import (
	"github.com/ValentinKolb/sprefs/lib/store"
)

// Prefs is a typed view of one namespace.
// Getters return the zero value (or the given default) for missing keys.
// Putters apply asynchronously: the value is visible immediately and written in the background.
type Prefs struct {
	ns *store.Namespace
}

// New wraps an open namespace
func New(ns *store.Namespace) *Prefs {
	return &Prefs{ns: ns}
}

// Handle returns the underlying namespace
func (p *Prefs) Handle() *store.Namespace {
	return p.ns
}

// --------------------------------------------------------------------------
// Getters
// --------------------------------------------------------------------------

// All getters fail with ErrTypeMismatch if the key holds another type.

// GetInt and GetIntOr read an int, missing keys yield 0 or def
func (p *Prefs) GetInt(key string) (int32, error)              { return p.ns.GetInt(key, 0) }
func (p *Prefs) GetIntOr(key string, def int32) (int32, error) { return p.ns.GetInt(key, def) }

// GetLong and GetLongOr read a long, missing keys yield 0 or def
func (p *Prefs) GetLong(key string) (int64, error)              { return p.ns.GetLong(key, 0) }
func (p *Prefs) GetLongOr(key string, def int64) (int64, error) { return p.ns.GetLong(key, def) }

// GetFloat and GetFloatOr read a float, missing keys yield 0 or def
func (p *Prefs) GetFloat(key string) (float32, error)                { return p.ns.GetFloat(key, 0) }
func (p *Prefs) GetFloatOr(key string, def float32) (float32, error) { return p.ns.GetFloat(key, def) }

// GetDouble and GetDoubleOr read a long and reinterpret its bits as float64
func (p *Prefs) GetDouble(key string) (float64, error)                { return p.ns.GetDouble(key, 0) }
func (p *Prefs) GetDoubleOr(key string, def float64) (float64, error) { return p.ns.GetDouble(key, def) }

// GetBoolean and GetBooleanOr read a boolean, missing keys yield false or def
func (p *Prefs) GetBoolean(key string) (bool, error)             { return p.ns.GetBoolean(key, false) }
func (p *Prefs) GetBooleanOr(key string, def bool) (bool, error) { return p.ns.GetBoolean(key, def) }

// GetString and GetStringOr read a string, missing keys yield "" or def
func (p *Prefs) GetString(key string) (string, error)               { return p.ns.GetString(key, "") }
func (p *Prefs) GetStringOr(key string, def string) (string, error) { return p.ns.GetString(key, def) }

// GetAll returns a copy of all entries as int32, int64, float32, bool or string.
// Doubles appear as int64, their kind is not recorded.
func (p *Prefs) GetAll() map[string]any {
	all := p.ns.GetAll()
	result := make(map[string]any, len(all))
	for key, v := range all {
		result[key] = v.Interface()
	}
	return result
}

// Contains reports whether key holds a value of any type
func (p *Prefs) Contains(key string) bool {
	return p.ns.Contains(key)
}

// --------------------------------------------------------------------------
// Putters
// --------------------------------------------------------------------------

// PutInt, PutLong, PutFloat, PutDouble, PutBoolean and PutString store v under
// key using one editor per call, applied without waiting for the file write.
func (p *Prefs) PutInt(key string, v int32)      { p.ns.Edit().PutInt(key, v).Apply() }
func (p *Prefs) PutLong(key string, v int64)     { p.ns.Edit().PutLong(key, v).Apply() }
func (p *Prefs) PutFloat(key string, v float32)  { p.ns.Edit().PutFloat(key, v).Apply() }
func (p *Prefs) PutDouble(key string, v float64) { p.ns.Edit().PutDouble(key, v).Apply() }
func (p *Prefs) PutBoolean(key string, v bool)   { p.ns.Edit().PutBoolean(key, v).Apply() }
func (p *Prefs) PutString(key string, v string)  { p.ns.Edit().PutString(key, v).Apply() }

// Remove deletes key
func (p *Prefs) Remove(key string) {
	p.ns.Edit().Remove(key).Apply()
}

// Clear removes all entries. Use Edit().Clear() to combine clearing with new values.
func (p *Prefs) Clear() {
	p.ns.Edit().Clear().Apply()
}

// Edit returns a new editor, nothing is written until it is applied or committed
func (p *Prefs) Edit() *store.Editor {
	return p.ns.Edit()
}

// Flush waits until every applied change is written and returns background write errors
func (p *Prefs) Flush() error {
	return p.ns.Flush()
}

// RegisterListener forwards to the namespace, see store.Namespace.RegisterListener
func (p *Prefs) RegisterListener(fn store.Listener) store.ListenerID {
	return p.ns.RegisterListener(fn)
}

// UnregisterListener removes a listener registered with RegisterListener
func (p *Prefs) UnregisterListener(id store.ListenerID) {
	p.ns.UnregisterListener(id)
}
