package prefs

import (
	"github.com/ValentinKolb/sprefs/lib/host"
	"github.com/ValentinKolb/sprefs/lib/store"
)

// DefaultSuffix is appended to the namespace name when Config.UseDefaultSuffix is set
const DefaultSuffix = "_simple_preferences"

// Errors returned by this package, usable with errors.Is
var (
	ErrMissingContext  = store.ErrMissingContext
	ErrNotInitialized  = store.ErrNotInitialized
	ErrInvalidArgument = store.ErrInvalidArgument
	ErrTypeMismatch    = store.ErrTypeMismatch
)

// Config selects the namespace the preferences are stored in
type Config struct {
	// Namespace is the name of the namespace. Empty means the host's package name.
	Namespace string
	// Mode is the access mode, the zero value is store.ModePrivate
	Mode store.Mode
	// Host resolves the namespace, required
	Host host.Context
	// UseDefaultSuffix appends DefaultSuffix to the resolved name
	UseDefaultSuffix bool
}

// Resolve validates the configuration and derives the namespace name
func (c Config) Resolve() (name string, mode store.Mode, err error) {
	if c.Host == nil {
		return "", c.Mode, store.NewError(store.RetCMissingContext, "no host context configured")
	}
	if !c.Mode.Valid() {
		return "", c.Mode, store.NewErrorf(store.RetCInvalidArgument, "invalid mode %d, must be one of %s", int(c.Mode), store.ValidModes)
	}

	name = c.Namespace
	if name == "" {
		name = c.Host.PackageName()
	}
	if c.UseDefaultSuffix {
		name += DefaultSuffix
	}
	return name, c.Mode, nil
}

// Open resolves the namespace of cfg and wraps it. The process-wide default is not touched.
func Open(cfg Config) (*Prefs, error) {
	name, mode, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	ns, err := cfg.Host.Preferences(name, mode)
	if err != nil {
		return nil, err
	}
	return New(ns), nil
}
