package serializer

import (
	"github.com/pelletier/go-toml/v2"
)

// NewTOMLSerializer creates a new dump serializer using toml encoding
func NewTOMLSerializer() IDumpSerializer {
	return &tomlSerializerImpl{}
}

// tomlSerializerImpl implements the IDumpSerializer interface using toml encoding.
// Every key becomes a table with a type and a value field.
type tomlSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IDumpSerializer)
// --------------------------------------------------------------------------

func (t tomlSerializerImpl) Serialize(entries map[string]Value) ([]byte, error) {
	doc, err := toDocument(entries)
	if err != nil {
		return nil, err
	}
	return toml.Marshal(doc)
}

func (t tomlSerializerImpl) Deserialize(b []byte) (map[string]Value, error) {
	var doc map[string]dumpEntry
	if err := toml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return fromDocument(doc)
}

func (t tomlSerializerImpl) Format() string {
	return "toml"
}
