package store

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
)

// startWatcher watches the directory of the namespace file. The directory is
// watched instead of the file because writers replace the file by renaming.
func (ns *Namespace) startWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return NewErrorf(RetCInternalError, "create watcher: %v", err)
	}
	if err := w.Add(filepath.Dir(ns.path)); err != nil {
		_ = w.Close()
		return NewErrorf(RetCInternalError, "watch %s: %v", filepath.Dir(ns.path), err)
	}

	ns.watcher = w
	ns.watchDone = make(chan struct{})
	go ns.watch()
	return nil
}

func (ns *Namespace) stopWatcher() {
	if ns.watcher == nil {
		return
	}
	_ = ns.watcher.Close()
	<-ns.watchDone
}

func (ns *Namespace) watch() {
	defer close(ns.watchDone)
	for {
		select {
		case ev, ok := <-ns.watcher.Events:
			if !ok {
				return
			}
			if !ns.isReloadEvent(ev) {
				continue
			}
			if err := ns.reload(); err != nil {
				ns.log.Warningf("namespace %s: reload failed: %v", ns.name, err)
			}
		case err, ok := <-ns.watcher.Errors:
			if !ok {
				return
			}
			ns.log.Warningf("namespace %s: watcher error: %v", ns.name, err)
		}
	}
}

// isReloadEvent reports whether ev created or modified the namespace file
func (ns *Namespace) isReloadEvent(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != ns.path {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)
}

// reload replaces the in-memory state with the file content if the file was
// written by someone else, then notifies listeners about every key that differs.
// Changes applied locally but not yet written are lost.
func (ns *Namespace) reload() error {
	if ns.closed.Load() {
		return nil
	}

	// the file is read under writeMu, so a write of our own cannot land
	// between reading and comparing against diskSum
	ns.writeMu.Lock()
	data, err := os.ReadFile(ns.path)
	if errors.Is(err, fs.ErrNotExist) || len(data) == 0 {
		ns.writeMu.Unlock()
		return nil
	}
	if err != nil {
		ns.writeMu.Unlock()
		return err
	}
	sum := checksum(data)
	if sum == ns.diskSum {
		ns.writeMu.Unlock()
		return nil
	}

	ns.commitMu.Lock()
	if ns.closed.Load() {
		ns.commitMu.Unlock()
		ns.writeMu.Unlock()
		return nil
	}
	before := ns.snapshotRaw()
	if err := ns.db.Load(bytes.NewReader(data)); err != nil {
		ns.commitMu.Unlock()
		ns.writeMu.Unlock()
		return NewErrorf(RetCInternalError, "load %s: %v", ns.path, err)
	}
	ns.raiseIndex(ns.db.WriteIdx())
	changed := diffKeys(before, ns.snapshotRaw())
	ns.gen++
	ns.writtenGen = ns.gen
	ns.commitMu.Unlock()

	ns.diskSum = sum
	ns.writeMu.Unlock()

	ns.metrics.reloads.Inc()
	ns.log.Infof("namespace %s: reloaded after external write (%d keys changed)", ns.name, len(changed))
	ns.notify(changed)
	return nil
}

// snapshotRaw copies all encoded entries, the caller holds commitMu
func (ns *Namespace) snapshotRaw() map[string][]byte {
	m := make(map[string][]byte, ns.db.Len())
	ns.db.Range(func(key string, value []byte) bool {
		m[key] = value
		return true
	})
	return m
}

// diffKeys returns the sorted keys that were added, removed or changed
func diffKeys(before, after map[string][]byte) []string {
	var keys []string
	for k, v := range after {
		if old, ok := before[k]; !ok || !bytes.Equal(old, v) {
			keys = append(keys, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
