package prefs

import (
	"github.com/ValentinKolb/sprefs/lib/host"
	"github.com/ValentinKolb/sprefs/lib/store"
)

// Builder configures the process-wide preferences step by step.
//
//	err := prefs.NewBuilder().
//		SetContext(app).
//		SetNamespace("settings").
//		SetMode(store.ModePrivate).
//		Build()
//
// An invalid SetMode is kept and returned by Err and Build until a valid mode is set.
type Builder struct {
	cfg Config
	err error
}

func NewBuilder() *Builder {
	return &Builder{cfg: Config{Mode: store.ModePrivate}}
}

// SetNamespace sets the namespace name, empty selects the package name
func (b *Builder) SetNamespace(name string) *Builder {
	b.cfg.Namespace = name
	return b
}

// SetContext sets the host handle, required
func (b *Builder) SetContext(h host.Context) *Builder {
	b.cfg.Host = h
	return b
}

// SetMode sets the access mode. An invalid mode records an error and leaves
// the mode unchanged; a later valid SetMode clears that error.
func (b *Builder) SetMode(mode store.Mode) *Builder {
	if !mode.Valid() {
		b.err = store.NewErrorf(store.RetCInvalidArgument, "invalid mode %d, must be one of %s", int(mode), store.ValidModes)
		return b
	}
	b.cfg.Mode = mode
	b.err = nil
	return b
}

// SetUseDefaultSuffix appends DefaultSuffix to the namespace name
func (b *Builder) SetUseDefaultSuffix(flag bool) *Builder {
	b.cfg.UseDefaultSuffix = flag
	return b
}

// Err returns the error of the last invalid SetMode, nil if the mode is valid
func (b *Builder) Err() error {
	return b.err
}

// Config returns the collected configuration
func (b *Builder) Config() Config {
	return b.cfg
}

// Build resolves the namespace and installs it as the process-wide default,
// replacing any previous one. On error the default is left unchanged.
func (b *Builder) Build() error {
	if b.err != nil {
		return b.err
	}
	return Init(b.cfg)
}
