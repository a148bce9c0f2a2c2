package store

import (
	"github.com/ValentinKolb/sprefs/lib/serializer"
)

// Export encodes all entries in the format of s
func (ns *Namespace) Export(s serializer.IDumpSerializer) ([]byte, error) {
	data, err := s.Serialize(ns.GetAll())
	if err != nil {
		return nil, NewErrorf(RetCInternalError, "export %s as %s: %v", ns.name, s.Format(), err)
	}
	return data, nil
}

// Import decodes a dump and commits its entries in one batch.
// With replace, all existing entries are removed first.
// Returns the number of imported entries.
func (ns *Namespace) Import(data []byte, s serializer.IDumpSerializer, replace bool) (int, error) {
	entries, err := s.Deserialize(data)
	if err != nil {
		return 0, NewErrorf(RetCInvalidArgument, "parse %s dump: %v", s.Format(), err)
	}

	editor := ns.Edit()
	if replace {
		editor.Clear()
	}
	for key, v := range entries {
		editor.PutValue(key, v)
	}
	if err := editor.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}
