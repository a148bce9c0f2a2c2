package serializer

import (
	"gopkg.in/yaml.v3"
)

// NewYAMLSerializer creates a new dump serializer using yaml encoding
func NewYAMLSerializer() IDumpSerializer {
	return &yamlSerializerImpl{}
}

// yamlSerializerImpl implements the IDumpSerializer interface using yaml encoding
type yamlSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IDumpSerializer)
// --------------------------------------------------------------------------

func (y yamlSerializerImpl) Serialize(entries map[string]Value) ([]byte, error) {
	doc, err := toDocument(entries)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func (y yamlSerializerImpl) Deserialize(b []byte) (map[string]Value, error) {
	var doc map[string]dumpEntry
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return fromDocument(doc)
}

func (y yamlSerializerImpl) Format() string {
	return "yaml"
}
