package serializer

import (
	"bytes"
	"encoding/json"
)

// NewJSONSerializer creates a new dump serializer using json encoding
func NewJSONSerializer() IDumpSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IDumpSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IDumpSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(entries map[string]Value) ([]byte, error) {
	doc, err := toDocument(entries)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (j jsonSerializerImpl) Deserialize(b []byte) (map[string]Value, error) {
	// numbers are kept as json.Number so longs keep all 64 bits
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var doc map[string]dumpEntry
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return fromDocument(doc)
}

func (j jsonSerializerImpl) Format() string {
	return "json"
}
