package store

import (
	"sync"

	"github.com/ValentinKolb/sprefs/lib/serializer"
	"github.com/ValentinKolb/sprefs/lib/store/internal"
)

// Editor collects modifications of a namespace and applies them as one batch.
// Puts and removes replace earlier ones for the same key. A Clear is applied
// before all puts and removes of the editor, no matter when it was called.
// An editor can be committed (Apply or Commit) exactly once.
type Editor struct {
	ns *Namespace

	mu    sync.Mutex
	batch internal.Batch
	err   error // first error of a put, returned by Commit
	done  bool
}

func (e *Editor) put(key string, v serializer.Value) *Editor {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.err != nil {
		return e
	}
	if key == "" {
		e.err = NewError(RetCInvalidArgument, "key must not be empty")
		return e
	}
	if !v.IsValid() {
		e.err = NewErrorf(RetCInvalidArgument, "value of key %q has no type", key)
		return e
	}
	raw, err := e.ns.ser.Serialize(v)
	if err != nil {
		e.err = NewErrorf(RetCInternalError, "encode value of key %q: %v", key, err)
		return e
	}
	e.batch.Add(internal.Command{Type: internal.CommandTSet, Key: key, Value: raw})
	return e
}

func (e *Editor) PutInt(key string, v int32) *Editor     { return e.put(key, serializer.Int(v)) }
func (e *Editor) PutLong(key string, v int64) *Editor    { return e.put(key, serializer.Long(v)) }
func (e *Editor) PutFloat(key string, v float32) *Editor { return e.put(key, serializer.Float(v)) }
func (e *Editor) PutBoolean(key string, v bool) *Editor  { return e.put(key, serializer.Bool(v)) }
func (e *Editor) PutString(key string, v string) *Editor { return e.put(key, serializer.String(v)) }

// PutDouble stores v as a long holding its IEEE-754 bits
func (e *Editor) PutDouble(key string, v float64) *Editor { return e.put(key, serializer.Double(v)) }

// PutValue stores an already typed value
func (e *Editor) PutValue(key string, v serializer.Value) *Editor { return e.put(key, v) }

// Remove deletes key
func (e *Editor) Remove(key string) *Editor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batch.Add(internal.Command{Type: internal.CommandTDelete, Key: key})
	return e
}

// Clear removes all entries that existed before this editor is committed
func (e *Editor) Clear() *Editor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batch.Clear = true
	return e
}

// take hands out the batch and marks the editor as used
func (e *Editor) take() (internal.Batch, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return internal.Batch{}, NewError(RetCInvalidOperation, "editor was already committed")
	}
	e.done = true
	return e.batch, e.err
}

// Commit applies the batch to memory and writes the file before returning.
// Listeners are called after the write attempt.
func (e *Editor) Commit() error {
	batch, err := e.take()
	if err != nil {
		e.ns.metrics.commitErrors.Inc()
		return err
	}

	changed, err := e.ns.applyBatch(batch)
	if err != nil {
		e.ns.metrics.commitErrors.Inc()
		return err
	}
	err = e.ns.writeToDisk()

	// the change is visible in memory even if the write failed
	e.ns.notify(changed)
	return err
}

// Apply applies the batch to memory and writes the file in the background.
// Errors are logged and reported by the next Namespace.Flush.
func (e *Editor) Apply() {
	batch, err := e.take()
	if err == nil {
		var changed []string
		if changed, err = e.ns.applyBatch(batch); err == nil {
			if len(changed) > 0 {
				e.ns.scheduleWrite()
			}
			e.ns.notify(changed)
			return
		}
	}

	e.ns.metrics.commitErrors.Inc()
	e.ns.log.Warningf("namespace %s: apply failed: %v", e.ns.name, err)
	e.ns.recordAsyncErr(err)
}
