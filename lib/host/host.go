package host

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ValentinKolb/sprefs/lib/common"
	"github.com/ValentinKolb/sprefs/lib/db"
	"github.com/ValentinKolb/sprefs/lib/db/engines/maple"
	"github.com/ValentinKolb/sprefs/lib/store"
	"github.com/adrg/xdg"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// Logger is the logger of the host package
var Logger = logger.GetLogger(common.LoggerHost)

// FileExtension is appended to the namespace name to form the file name
const FileExtension = ".prefs"

// Context is the capability of the hosting application that resolves namespaces.
type Context interface {
	// PackageName identifies the application, it is the default namespace name
	PackageName() string
	// Preferences returns the namespace with the given name, opening it on first use
	Preferences(name string, mode store.Mode) (*store.Namespace, error)
}

// App is the Context of a regular process: namespaces are files in one data
// directory, opened once and shared by every caller asking for the same name.
type App struct {
	pkg     string
	dataDir string
	shards  int

	mu         sync.Mutex // serializes opening and closing
	closed     bool
	namespaces *xsync.MapOf[string, *store.Namespace]
}

// NewApp creates the host handle for an application
func NewApp(cfg common.HostConfig) (*App, error) {
	if err := validateName("package name", cfg.PackageName); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir(cfg.PackageName)
	}
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, store.NewErrorf(store.RetCInvalidArgument, "invalid data directory %q: %v", dataDir, err)
	}

	return &App{
		pkg:        cfg.PackageName,
		dataDir:    abs,
		shards:     cfg.Shards,
		namespaces: xsync.NewMapOf[string, *store.Namespace](),
	}, nil
}

// DefaultDataDir returns $XDG_DATA_HOME/<pkg>/shared_prefs
func DefaultDataDir(pkg string) string {
	return filepath.Join(xdg.DataHome, pkg, "shared_prefs")
}

// validateName rejects names that cannot be used as a single file name
func validateName(what, name string) error {
	switch {
	case name == "":
		return store.NewErrorf(store.RetCInvalidArgument, "%s must not be empty", what)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, filepath.Separator):
		return store.NewErrorf(store.RetCInvalidArgument, "%s %q contains a path separator", what, name)
	case name == "." || name == "..":
		return store.NewErrorf(store.RetCInvalidArgument, "%s %q is not a valid file name", what, name)
	default:
		return nil
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see host.Context)
// --------------------------------------------------------------------------

func (a *App) PackageName() string {
	return a.pkg
}

func (a *App) Preferences(name string, mode store.Mode) (*store.Namespace, error) {
	if !mode.Valid() {
		return nil, store.NewErrorf(store.RetCInvalidArgument, "invalid mode %d, must be one of %s", int(mode), store.ValidModes)
	}
	path, err := a.Path(name)
	if err != nil {
		return nil, err
	}

	if ns, ok := a.namespaces.Load(name); ok {
		return checkMode(ns, mode)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, store.NewError(store.RetCInvalidOperation, "host was closed")
	}
	if ns, ok := a.namespaces.Load(name); ok {
		return checkMode(ns, mode)
	}

	ns, err := store.Open(path, mode, store.WithName(name), store.WithDBFactory(a.dbFactory()))
	if err != nil {
		return nil, err
	}
	a.namespaces.Store(name, ns)
	Logger.Debugf("resolved namespace %s (%s)", name, mode)
	return ns, nil
}

func checkMode(ns *store.Namespace, mode store.Mode) (*store.Namespace, error) {
	if ns.Mode() != mode {
		return nil, store.NewErrorf(store.RetCInvalidArgument,
			"namespace %s is already open with mode %s, requested %s", ns.Name(), ns.Mode(), mode)
	}
	return ns, nil
}

func (a *App) dbFactory() store.DBFactory {
	if a.shards <= 0 {
		return store.DefaultDBFactory
	}
	shards := a.shards
	return func() db.KVDB {
		return maple.NewMapleDB(&maple.DBOptions{NumShards: shards})
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// DataDir returns the directory holding the namespace files
func (a *App) DataDir() string {
	return a.dataDir
}

// Path returns the file of the namespace with the given name
func (a *App) Path(name string) (string, error) {
	if err := validateName("namespace name", name); err != nil {
		return "", err
	}
	return filepath.Join(a.dataDir, name+FileExtension), nil
}

// Namespaces returns the sorted names of all namespaces opened so far
func (a *App) Namespaces() []string {
	var names []string
	a.namespaces.Range(func(name string, _ *store.Namespace) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Close closes all namespaces, flushing pending writes
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	a.namespaces.Range(func(name string, ns *store.Namespace) bool {
		if err := ns.Close(); err != nil {
			errs = append(errs, err)
		}
		a.namespaces.Delete(name)
		return true
	})
	return errors.Join(errs...)
}
