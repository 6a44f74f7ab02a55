package blf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
)

// buildFileHeader returns a minimal 144-byte LOGG file header with the
// given SYSTEMTIME start time at offset 56.
func buildFileHeader(systemTime [16]byte) []byte {
	const size = 144

	h := make([]byte, size)
	copy(h[0:4], "LOGG")
	binary.LittleEndian.PutUint32(h[4:8], size)
	copy(h[56:72], systemTime[:])

	return h
}

func systemTime(year, month, day, hour, minute, second, ms uint16) [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint16(b[0:2], year)
	binary.LittleEndian.PutUint16(b[2:4], month)
	binary.LittleEndian.PutUint16(b[6:8], day)
	binary.LittleEndian.PutUint16(b[8:10], hour)
	binary.LittleEndian.PutUint16(b[10:12], minute)
	binary.LittleEndian.PutUint16(b[12:14], second)
	binary.LittleEndian.PutUint16(b[14:16], ms)

	return b
}

// buildInnerObject builds one inner LOBJ record (extended header version 1
// plus a CAN_MESSAGE body) and returns its bytes, padded to a multiple of 4.
func buildInnerObject(objType uint32, ticks uint64, channel uint16, flags, dlc uint8, canID uint32, data []byte) []byte {
	bodyLen := 16 + 16 + len(data) // ext header + can-message fixed fields + data
	total := baseHeaderSize + bodyLen

	buf := make([]byte, total)
	copy(buf[0:4], "LOBJ")
	binary.LittleEndian.PutUint16(buf[4:6], 16) // hdr_size
	binary.LittleEndian.PutUint16(buf[6:8], 1)  // hdr_version
	binary.LittleEndian.PutUint32(buf[8:12], uint32(total))
	binary.LittleEndian.PutUint32(buf[12:16], objType)

	ext := buf[baseHeaderSize:]
	binary.LittleEndian.PutUint32(ext[0:4], 0) // flags: nanoseconds
	binary.LittleEndian.PutUint64(ext[8:16], ticks)

	msg := ext[extHeaderSize:]
	binary.LittleEndian.PutUint16(msg[0:2], channel)
	msg[2] = flags
	msg[3] = dlc
	binary.LittleEndian.PutUint32(msg[4:8], canID)
	copy(msg[8:8+len(data)], data)

	// Padding bytes follow the reader's literal obj_size%4 formula, not a
	// round-up-to-multiple-of-4 formula.
	if pad := total % 4; pad != 0 {
		buf = append(buf, make([]byte, pad)...)
	}

	return buf
}

// buildOuterLogContainer wraps payload (already-assembled inner objects) in
// an outer LOBJ of type LogContainer, optionally zlib-compressing it.
func buildOuterLogContainer(payload []byte, compressed bool) []byte {
	var stored []byte

	method := uint16(0)

	if compressed {
		var zbuf bytes.Buffer

		zw := zlib.NewWriter(&zbuf)
		_, _ = zw.Write(payload)
		_ = zw.Close()
		stored = zbuf.Bytes()
		method = 2
	} else {
		stored = payload
	}

	body := make([]byte, containerHeaderSize+len(stored))
	binary.LittleEndian.PutUint16(body[0:2], method)
	copy(body[containerHeaderSize:], stored)

	total := baseHeaderSize + len(body)
	buf := make([]byte, total)
	copy(buf[0:4], "LOBJ")
	binary.LittleEndian.PutUint16(buf[4:6], 16)
	binary.LittleEndian.PutUint16(buf[6:8], 1)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(total))
	binary.LittleEndian.PutUint32(buf[12:16], 10) // LogContainer

	copy(buf[16:], body)

	if pad := total % 4; pad != 0 {
		buf = append(buf, make([]byte, pad)...)
	}

	return buf
}
