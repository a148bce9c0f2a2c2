package serializer

// IValueSerializer encodes single values for storage in a namespace file
type IValueSerializer interface {
	// Serialize encodes a value into a byte array
	Serialize(v Value) ([]byte, error)
	// Deserialize decodes a byte array produced by Serialize
	Deserialize(b []byte) (Value, error)
}

// IDumpSerializer encodes a whole namespace into a human-readable document.
// Every entry keeps its kind, so a dump can be imported without losing type information.
type IDumpSerializer interface {
	// Serialize encodes all entries
	Serialize(entries map[string]Value) ([]byte, error)
	// Deserialize decodes a document produced by Serialize
	Deserialize(b []byte) (map[string]Value, error)
	// Format returns the name of the format (json, toml, yaml)
	Format() string
}
