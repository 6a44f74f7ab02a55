package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushCreatesSeriesWithDeclaredKind(t *testing.T) {
	s := New()
	s.PushF64("Temp", 1.0, 21.5)

	require.Equal(t, 1, s.SignalCount())
	ser := s.Series("Temp")
	require.NotNil(t, ser)
	assert.Equal(t, 1, len(ser.Points))
	assert.Equal(t, 21.5, ser.Points[0].F64)
}

func TestPushKindMismatchPanics(t *testing.T) {
	s := New()
	s.PushI64("RPM", 0, 100)

	assert.Panics(t, func() {
		s.PushF64("RPM", 1, 1.5)
	})
}

func TestSetUnitAndValueTableIdempotent(t *testing.T) {
	s := New()
	s.PushU64("Gear", 0, 1)
	s.SetUnit("Gear", "")
	s.SetUnit("Gear", "gear")
	s.SetValueTable("Gear", map[int64]string{1: "first"})
	s.SetValueTable("Gear", map[int64]string{1: "first", 2: "second"})

	ser := s.Series("Gear")
	require.NotNil(t, ser)
	assert.Equal(t, "gear", ser.Unit)
	assert.Equal(t, map[int64]string{1: "first", 2: "second"}, ser.ValueTable)
}

func TestSortSeriesStableOnEqualTimestamps(t *testing.T) {
	s := New()
	s.PushI64("X", 5.0, 1)
	s.PushI64("X", 1.0, 2)
	s.PushI64("X", 1.0, 3)

	ser := s.Series("X")
	sortSeries(ser)

	require.Len(t, ser.Points, 3)
	assert.Equal(t, int64(2), ser.Points[0].I64)
	assert.Equal(t, int64(3), ser.Points[1].I64)
	assert.Equal(t, int64(1), ser.Points[2].I64)

	for i := 1; i < len(ser.Points); i++ {
		assert.LessOrEqual(t, ser.Points[i-1].Timestamp, ser.Points[i].Timestamp)
	}
}
