package cbor

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// CBOR major types used by the map framing.
const (
	majorUint  byte = 0
	majorBytes byte = 2
	majorText  byte = 3
	majorArray byte = 4
	majorMap   byte = 5

	breakByte byte = 0xff
)

var majorNames = [...]string{"unsigned integer", "negative integer", "byte string", "text string", "array", "map", "tag", "simple/float"}

// appendHead appends the initial byte and argument of a data item.
func appendHead(b []byte, major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return append(b, m|byte(n))
	case n <= math.MaxUint8:
		return append(b, m|24, byte(n))
	case n <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(b, m|25), uint16(n))
	case n <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(b, m|26), uint32(n))
	default:
		return binary.BigEndian.AppendUint64(append(b, m|27), n)
	}
}

// parseHead reads the head of the data item at the start of data. For
// indefinite-length items it reports indefinite and n is 0.
func parseHead(data []byte) (major byte, n uint64, indefinite bool, size int, err error) {
	if len(data) == 0 {
		return 0, 0, false, 0, io.ErrUnexpectedEOF
	}
	major = data[0] >> 5
	ai := data[0] & 0x1f
	switch {
	case ai < 24:
		return major, uint64(ai), false, 1, nil
	case ai == 24:
		if len(data) < 2 {
			return 0, 0, false, 0, io.ErrUnexpectedEOF
		}
		return major, uint64(data[1]), false, 2, nil
	case ai == 25:
		if len(data) < 3 {
			return 0, 0, false, 0, io.ErrUnexpectedEOF
		}
		return major, uint64(binary.BigEndian.Uint16(data[1:])), false, 3, nil
	case ai == 26:
		if len(data) < 5 {
			return 0, 0, false, 0, io.ErrUnexpectedEOF
		}
		return major, uint64(binary.BigEndian.Uint32(data[1:])), false, 5, nil
	case ai == 27:
		if len(data) < 9 {
			return 0, 0, false, 0, io.ErrUnexpectedEOF
		}
		return major, binary.BigEndian.Uint64(data[1:]), false, 9, nil
	case ai == 31:
		switch major {
		case majorBytes, majorText, majorArray, majorMap:
			return major, 0, true, 1, nil
		}
	}
	return 0, 0, false, 0, fmt.Errorf("cbor: invalid additional information %d for type %s", ai, majorNames[major])
}
