package store

import (
	"os"
	"strconv"
	"strings"
)

// Mode is the access mode of a namespace file.
// The numeric values match the platform constants so stored configuration stays portable.
type Mode int

const (
	ModePrivate       Mode = 0 // only the owning user can read and write
	ModeWorldReadable Mode = 1 // everyone can read
	ModeWorldWritable Mode = 2 // everyone can read and write
	ModeMultiProcess  Mode = 4 // private, reloaded when another process writes the file
)

// ValidModes names the legal set, used in error messages
const ValidModes = "PRIVATE(0), WORLD_READABLE(1), WORLD_WRITABLE(2), MULTI_PROCESS(4)"

// Valid reports whether m is one of the four modes
func (m Mode) Valid() bool {
	switch m {
	case ModePrivate, ModeWorldReadable, ModeWorldWritable, ModeMultiProcess:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	switch m {
	case ModePrivate:
		return "private"
	case ModeWorldReadable:
		return "world-readable"
	case ModeWorldWritable:
		return "world-writable"
	case ModeMultiProcess:
		return "multi-process"
	default:
		return "invalid(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMode accepts the mode names (private, world-readable, ...), the
// upper case platform names (WORLD_READABLE, ...) and the numeric values.
func ParseMode(s string) (Mode, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	switch normalized {
	case "private":
		return ModePrivate, nil
	case "world-readable":
		return ModeWorldReadable, nil
	case "world-writable", "world-writeable":
		return ModeWorldWritable, nil
	case "multi-process":
		return ModeMultiProcess, nil
	}

	if n, err := strconv.Atoi(normalized); err == nil && Mode(n).Valid() {
		return Mode(n), nil
	}
	return ModePrivate, NewErrorf(RetCInvalidArgument, "invalid mode %q, must be one of %s", s, ValidModes)
}

// Perm returns the permission bits of the namespace file
func (m Mode) Perm() os.FileMode {
	switch m {
	case ModeWorldReadable:
		return 0o644
	case ModeWorldWritable:
		return 0o666
	default:
		return 0o600
	}
}

// dirPerm returns the permission bits used when the data directory has to be created
func (m Mode) dirPerm() os.FileMode {
	switch m {
	case ModeWorldReadable, ModeWorldWritable:
		return 0o755
	default:
		return 0o700
	}
}
