// Package extract implements the signal extractor: decoding a CanFrame
// against the DBC descriptors of its owning bus into typed, timestamped
// signal values (spec §4.2).
package extract

import "github.com/JanSpindler/blf2mdf/dbcmodel"

// extractRaw produces the raw bit-packed u64 from data according to
// startBit/bitCount/order, or reports false if start_bit runs past the end
// of data (and, for Motorola order, if the descending scan would run below
// bit 0, i.e. startBit < bitCount-1).
func extractRaw(data []byte, startBit, bitCount uint, order dbcmodel.ByteOrder) (uint64, bool) {
	l := len(data)
	if startBit >= uint(8*l) {
		return 0, false
	}

	if order == dbcmodel.BigEndian {
		if startBit < bitCount-1 {
			return 0, false
		}

		var raw uint64

		for i := uint(0); i < bitCount; i++ {
			abs := startBit - i
			byteIdx := abs / 8
			offset := abs % 8
			bit := (data[byteIdx] >> offset) & 1
			raw |= uint64(bit) << i
		}

		return raw, true
	}

	var raw uint64

	for i := uint(0); i < bitCount; i++ {
		abs := startBit + i
		if abs >= uint(8*l) {
			break
		}

		byteIdx := abs / 8
		offset := abs % 8
		bit := (data[byteIdx] >> offset) & 1
		raw |= uint64(bit) << i
	}

	return raw, true
}

// signExtend reinterprets the low bitCount bits of raw as a two's-complement
// signed value widened to int64.
func signExtend(raw uint64, bitCount uint) int64 {
	if bitCount >= 64 {
		return int64(raw)
	}

	signBit := uint64(1) << (bitCount - 1)
	if raw&signBit != 0 {
		raw |= ^((uint64(1) << bitCount) - 1)
	}

	return int64(raw)
}
