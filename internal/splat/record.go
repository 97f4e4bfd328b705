package splat

import (
	"encoding/binary"
	"math"
)

// RecordSize is the fixed stride of one point in a .splat stream:
// 3*4 position + 3*4 scale + 4 rgba + 4 quaternion.
const RecordSize = 32

// Byte offsets of each field within a record.
const (
	offPosition = 0
	offScale    = 12
	offColor    = 24
	offRot      = 28
)

// Record is one encoded point of a .splat stream. Streams carry no header;
// records are concatenated in little-endian byte order.
type Record struct {
	Position [3]float32 // scene space, untransformed
	Scale    [3]float32 // linear (already exponentiated)
	Color    [4]uint8   // R, G, B, A
	Rot      [4]uint8   // normalized quaternion mapped q*128+128
}

// PutTo writes the record into b, which must be at least RecordSize long.
func (r Record) PutTo(b []byte) {
	_ = b[RecordSize-1]
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(b[offPosition+4*i:], math.Float32bits(r.Position[i]))
		binary.LittleEndian.PutUint32(b[offScale+4*i:], math.Float32bits(r.Scale[i]))
	}
	copy(b[offColor:offColor+4], r.Color[:])
	copy(b[offRot:offRot+4], r.Rot[:])
}

// AppendTo appends the encoded record to dst.
func (r Record) AppendTo(dst []byte) []byte {
	var buf [RecordSize]byte
	r.PutTo(buf[:])
	return append(dst, buf[:]...)
}

// DecodeRecord reads one record from the first RecordSize bytes of b.
func DecodeRecord(b []byte) Record {
	_ = b[RecordSize-1]
	var r Record
	for i := 0; i < 3; i++ {
		r.Position[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[offPosition+4*i:]))
		r.Scale[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[offScale+4*i:]))
	}
	copy(r.Color[:], b[offColor:offColor+4])
	copy(r.Rot[:], b[offRot:offRot+4])
	return r
}

// CountRecords returns the number of records in a stream of the given
// byte length. name identifies the stream in the returned *FormatError.
func CountRecords(name string, size int) (int, error) {
	if size < 0 || size%RecordSize != 0 {
		return 0, &FormatError{Path: name, Size: size}
	}
	return size / RecordSize, nil
}

// recordAt returns the i-th record of stream without copying.
func recordAt(stream []byte, i int) []byte {
	return stream[i*RecordSize : (i+1)*RecordSize]
}
