package serializer

import (
	"encoding/binary"
	"fmt"
)

// NewBinarySerializer creates the serializer used for values on disk.
//
// Format: one kind byte followed by the payload
//   - int: 4 bytes little endian
//   - long: 8 bytes little endian
//   - float: 4 bytes little endian IEEE-754 bits
//   - boolean: 1 byte (0 or 1)
//   - string: the raw UTF-8 bytes (length is implied by the record)
func NewBinarySerializer() IValueSerializer {
	return &binarySerializerImpl{}
}

type binarySerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IValueSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(v Value) ([]byte, error) {
	switch v.kind {
	case KindInt, KindFloat:
		result := make([]byte, 5)
		result[0] = byte(v.kind)
		binary.LittleEndian.PutUint32(result[1:], uint32(v.bits))
		return result, nil
	case KindLong:
		result := make([]byte, 9)
		result[0] = byte(v.kind)
		binary.LittleEndian.PutUint64(result[1:], v.bits)
		return result, nil
	case KindBool:
		return []byte{byte(v.kind), byte(v.bits & 1)}, nil
	case KindString:
		result := make([]byte, 1+len(v.str))
		result[0] = byte(v.kind)
		copy(result[1:], v.str)
		return result, nil
	default:
		return nil, fmt.Errorf("cannot serialize value of kind %s", v.kind)
	}
}

func (b binarySerializerImpl) Deserialize(data []byte) (Value, error) {
	if len(data) == 0 {
		return Value{}, fmt.Errorf("empty value record")
	}

	kind := Kind(data[0])
	payload := data[1:]

	expectLen := func(n int) error {
		if len(payload) != n {
			return fmt.Errorf("invalid %s record: expected %d payload bytes, got %d", kind, n, len(payload))
		}
		return nil
	}

	switch kind {
	case KindInt, KindFloat:
		if err := expectLen(4); err != nil {
			return Value{}, err
		}
		return Value{kind: kind, bits: uint64(binary.LittleEndian.Uint32(payload))}, nil
	case KindLong:
		if err := expectLen(8); err != nil {
			return Value{}, err
		}
		return Value{kind: kind, bits: binary.LittleEndian.Uint64(payload)}, nil
	case KindBool:
		if err := expectLen(1); err != nil {
			return Value{}, err
		}
		if payload[0] > 1 {
			return Value{}, fmt.Errorf("invalid boolean record: %d", payload[0])
		}
		return Value{kind: kind, bits: uint64(payload[0])}, nil
	case KindString:
		return Value{kind: kind, str: string(payload)}, nil
	default:
		return Value{}, fmt.Errorf("unknown value kind %d", data[0])
	}
}
