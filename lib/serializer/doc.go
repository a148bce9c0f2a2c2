// Package serializer defines the typed values stored in a preferences namespace
// and the formats they are written in.
//
// Key Components:
//
//   - Value: A tagged primitive (int, long, float, boolean, string). Doubles have no
//     kind of their own: Double(d) stores math.Float64bits(d) as a long and
//     Value.AsDouble reinterprets the bits, which keeps files compatible with stores
//     that only know 64-bit integers.
//
//   - IValueSerializer: Encoding of single values inside a namespace file. The binary
//     implementation writes one kind byte followed by a fixed-size little endian
//     payload or the raw string bytes.
//
//   - IDumpSerializer: Human-readable dumps of a whole namespace (json, toml, yaml).
//     Every entry is written as {type, value} so imports restore the exact kinds.
//     Longs survive json dumps with all 64 bits; NaN and infinities are written as
//     strings because json has no literal for them.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use.
package serializer
