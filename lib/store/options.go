package store

import (
	"github.com/ValentinKolb/sprefs/lib/db"
	"github.com/ValentinKolb/sprefs/lib/db/engines/maple"
	"github.com/lni/dragonboat/v4/logger"
)

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
type DBFactory func() db.KVDB

// DefaultDBFactory creates maple engines with the default options
func DefaultDBFactory() db.KVDB {
	return maple.NewMapleDB(nil)
}

// Option configures a Namespace
type Option func(*options)

type options struct {
	factory DBFactory
	logger  logger.ILogger
	name    string
}

// WithDBFactory sets the engine used to hold the entries in memory
func WithDBFactory(factory DBFactory) Option {
	return func(o *options) {
		o.factory = factory
	}
}

// WithLogger replaces the "store" logger
func WithLogger(l logger.ILogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithName sets the namespace name used in logs and metric labels.
// Defaults to the file name without extension.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
