package extract

import (
	"testing"

	"github.com/JanSpindler/blf2mdf/dbcmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRawLittleEndian16Bit(t *testing.T) {
	data := []byte{0x34, 0x12, 0, 0, 0, 0, 0, 0}

	raw, ok := extractRaw(data, 0, 16, dbcmodel.LittleEndian)
	require.True(t, ok)
	assert.Equal(t, uint64(0x1234), raw)
}

func TestExtractRawBigEndian16Bit(t *testing.T) {
	data := []byte{0x12, 0x34, 0, 0, 0, 0, 0, 0}

	raw, ok := extractRaw(data, 7, 16, dbcmodel.BigEndian)
	require.True(t, ok)
	assert.Equal(t, uint64(0x1234), raw)
}

func TestExtractRawBigEndianRejectsUnderflowStartBit(t *testing.T) {
	data := []byte{0xFF}

	_, ok := extractRaw(data, 2, 16, dbcmodel.BigEndian)
	assert.False(t, ok)
}

func TestExtractRawRejectsOutOfRangeStartBit(t *testing.T) {
	data := []byte{0xFF}

	_, ok := extractRaw(data, 8, 4, dbcmodel.LittleEndian)
	assert.False(t, ok)
}

func TestSignExtend10BitAllOnes(t *testing.T) {
	assert.Equal(t, int64(-1), signExtend(0x3FF, 10))
}

func TestSignExtend64BitNoop(t *testing.T) {
	assert.Equal(t, int64(-1), signExtend(^uint64(0), 64))
}

func TestExtractRawLittleEndianRoundTrip(t *testing.T) {
	for startBit := uint(0); startBit < 8; startBit++ {
		for bitCount := uint(1); bitCount <= 32; bitCount++ {
			bufLen := (startBit + bitCount + 7) / 8
			data := make([]byte, bufLen)

			value := uint64(1)<<bitCount - 1 // all-ones, always < 2^bitCount
			for i := uint(0); i < bitCount; i++ {
				abs := startBit + i
				bit := (value >> i) & 1
				data[abs/8] |= byte(bit) << (abs % 8)
			}

			got, ok := extractRaw(data, startBit, bitCount, dbcmodel.LittleEndian)
			require.True(t, ok)
			assert.Equal(t, value, got, "startBit=%d bitCount=%d", startBit, bitCount)
		}
	}
}

func TestExtractRawBigEndianRoundTrip(t *testing.T) {
	for bitCount := uint(1); bitCount <= 32; bitCount++ {
		startBit := bitCount - 1
		bufLen := (startBit + 8) / 8 // generous upper bound

		data := make([]byte, bufLen+1)

		value := uint64(1)<<bitCount - 1

		for i := uint(0); i < bitCount; i++ {
			abs := startBit - i
			bit := (value >> i) & 1
			data[abs/8] |= byte(bit) << (abs % 8)
		}

		got, ok := extractRaw(data, startBit, bitCount, dbcmodel.BigEndian)
		require.True(t, ok)
		assert.Equal(t, value, got, "bitCount=%d", bitCount)
	}
}
