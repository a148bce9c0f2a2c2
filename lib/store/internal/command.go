package internal

import (
	"fmt"

	"github.com/ValentinKolb/sprefs/lib/db"
)

// CommandType defines the operations an editor can queue
type CommandType uint8

const (
	CommandTSet    CommandType = iota // Insert or update an entry.
	CommandTDelete                    // Delete an entry.
	CommandTClear                     // Delete all entries written before the batch.
)

// CommandTypes lists every command type, used to check engine capabilities
var CommandTypes = []CommandType{CommandTSet, CommandTDelete, CommandTClear}

func (ct CommandType) String() string {
	switch ct {
	case CommandTSet:
		return "Set"
	case CommandTDelete:
		return "Delete"
	case CommandTClear:
		return "Clear"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// ToDBFeature converts a CommandType to the corresponding db.Feature.
// This can be used for checking if the database supports a certain operation.
func (ct CommandType) ToDBFeature() (db.Feature, error) {
	switch ct {
	case CommandTSet:
		return db.FeatureSet, nil
	case CommandTDelete:
		return db.FeatureDelete, nil
	case CommandTClear:
		return db.FeatureClear, nil
	default:
		return 0, fmt.Errorf("unknown command type %d", ct)
	}
}

// Command is a single queued modification of an editor.
// Value holds the serialized value for CommandTSet and is nil otherwise.
type Command struct {
	Type  CommandType
	Key   string
	Value []byte
}

// Batch is the ordered list of commands of one editor.
// Clear is kept apart because it is applied before every other command,
// regardless of when it was queued.
type Batch struct {
	Clear    bool
	Commands []Command
}

// Add queues a command. A later command for the same key replaces the earlier one.
func (b *Batch) Add(cmd Command) {
	for i := range b.Commands {
		if b.Commands[i].Key == cmd.Key {
			b.Commands = append(b.Commands[:i], b.Commands[i+1:]...)
			break
		}
	}
	b.Commands = append(b.Commands, cmd)
}

// Empty reports whether the batch would not change anything
func (b *Batch) Empty() bool {
	return !b.Clear && len(b.Commands) == 0
}
