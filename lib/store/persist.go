package store

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ValentinKolb/sprefs/lib/db/util"
)

// checksum identifies file contents, used to skip reloading our own writes
func checksum(data []byte) uint64 {
	return util.HashString(string(data), 0)
}

// loadFromDisk reads the namespace file into the engine. A missing file is an empty namespace.
func (ns *Namespace) loadFromDisk() error {
	if err := os.MkdirAll(filepath.Dir(ns.path), ns.mode.dirPerm()); err != nil {
		return NewErrorf(RetCInternalError, "create data directory: %v", err)
	}

	data, err := os.ReadFile(ns.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return NewErrorf(RetCInternalError, "read %s: %v", ns.path, err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := ns.db.Load(bytes.NewReader(data)); err != nil {
		return NewErrorf(RetCInternalError, "load %s: %v", ns.path, err)
	}
	ns.raiseIndex(ns.db.WriteIdx())
	ns.diskSum = checksum(data)
	return nil
}

// writeToDisk writes the current state if it changed since the last write.
// Concurrent callers coalesce: whoever gets writeMu first writes the newest state,
// the others find nothing to do.
func (ns *Namespace) writeToDisk() error {
	ns.writeMu.Lock()
	defer ns.writeMu.Unlock()

	var buf bytes.Buffer
	ns.commitMu.Lock()
	gen := ns.gen
	if gen == ns.writtenGen {
		ns.commitMu.Unlock()
		return nil
	}
	err := ns.db.Save(&buf)
	ns.commitMu.Unlock()
	if err != nil {
		ns.metrics.commitErrors.Inc()
		return NewErrorf(RetCInternalError, "snapshot namespace %s: %v", ns.name, err)
	}

	start := time.Now()
	if err := writeFileAtomic(ns.path, buf.Bytes(), ns.mode.Perm()); err != nil {
		ns.metrics.commitErrors.Inc()
		return NewErrorf(RetCInternalError, "write %s: %v", ns.path, err)
	}
	ns.metrics.observeSave(start)

	ns.writtenGen = gen
	ns.diskSum = checksum(buf.Bytes())
	ns.log.Debugf("namespace %s: wrote %d bytes", ns.name, buf.Len())
	return nil
}

// scheduleWrite writes the file in a background goroutine
func (ns *Namespace) scheduleWrite() {
	ns.pending.Add(1)
	go func() {
		defer ns.pending.Done()
		if err := ns.writeToDisk(); err != nil {
			ns.log.Errorf("namespace %s: background write failed: %v", ns.name, err)
			ns.recordAsyncErr(err)
		}
	}()
}

func (ns *Namespace) recordAsyncErr(err error) {
	ns.errMu.Lock()
	if ns.asyncErr == nil {
		ns.asyncErr = err
	}
	ns.errMu.Unlock()
}

// Flush waits for background writes and makes sure the file reflects all applied changes.
// It returns the first background error since the previous Flush.
func (ns *Namespace) Flush() error {
	ns.pending.Wait()
	err := ns.writeToDisk()

	ns.errMu.Lock()
	asyncErr := ns.asyncErr
	ns.asyncErr = nil
	ns.errMu.Unlock()

	if err != nil {
		return err
	}
	return asyncErr
}

// writeFileAtomic replaces path with data: temp file in the same directory, fsync, rename.
// Readers see either the old or the new content, never a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	// CreateTemp uses 0600; chmod is not affected by the umask
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
