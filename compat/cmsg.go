// File: compat/cmsg.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ancillary data records. A record is a fixed 16-byte header (64-bit data
// length, 32-bit level, 32-bit type, little-endian) followed by the data,
// padded to an 8-byte boundary. The length field counts data bytes only.

package compat

import "encoding/binary"

// Ancillary record tags for protocol headers.
const (
	ProtoSP = 1
	SPHdr   = 1
)

const cmsgHdrSize = 16

func cmsgAlign(n int) int {
	return (n + 7) &^ 7
}

// CmsgSpace returns the buffer space an ancillary record with n data bytes
// occupies.
func CmsgSpace(n int) int {
	return cmsgHdrSize + cmsgAlign(n)
}

// putCmsg encodes one record into buf, which must hold CmsgSpace(len(data))
// bytes.
func putCmsg(buf []byte, level, typ int, data []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(len(data)))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(level))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(typ))
	copy(buf[cmsgHdrSize:], data)
}

// ParseCmsg decodes the first ancillary record in buf. The data slice
// aliases buf; ok is false when buf is too short to hold the record it
// declares.
func ParseCmsg(buf []byte) (level, typ int, data []byte, ok bool) {
	if len(buf) < cmsgHdrSize {
		return 0, 0, nil, false
	}
	dlen := binary.LittleEndian.Uint64(buf[0:8])
	level = int(int32(binary.LittleEndian.Uint32(buf[8:12])))
	typ = int(int32(binary.LittleEndian.Uint32(buf[12:16])))
	if dlen > uint64(len(buf)-cmsgHdrSize) {
		return 0, 0, nil, false
	}
	return level, typ, buf[cmsgHdrSize : cmsgHdrSize+int(dlen)], true
}
