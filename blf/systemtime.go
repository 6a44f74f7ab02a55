package blf

import (
	"encoding/binary"
	"time"
)

// systemTimeToUnix converts a 16-byte Windows SYSTEMTIME (year, month,
// dayOfWeek, day, hour, minute, second, millisecond, each little-endian
// u16) found at file-header offset 56 into a Unix-epoch seconds value.
//
// The original decoder this spec was distilled from approximates this with
// 365-day years and 30-day months; that approximation is replaced here with
// a proper Gregorian conversion via the standard library's calendar (spec
// §9, "should be replaced with a proper Gregorian conversion").
func systemTimeToUnix(b []byte) float64 {
	if len(b) < 16 {
		return 0
	}

	year := binary.LittleEndian.Uint16(b[0:2])
	month := binary.LittleEndian.Uint16(b[2:4])
	// dayOfWeek at b[4:6] is redundant with the date and unused.
	day := binary.LittleEndian.Uint16(b[6:8])
	hour := binary.LittleEndian.Uint16(b[8:10])
	minute := binary.LittleEndian.Uint16(b[10:12])
	second := binary.LittleEndian.Uint16(b[12:14])
	millisecond := binary.LittleEndian.Uint16(b[14:16])

	t := time.Date(
		int(year), time.Month(month), int(day),
		int(hour), int(minute), int(second), int(millisecond)*int(time.Millisecond),
		time.UTC,
	)

	return float64(t.UnixNano()) / 1e9
}
