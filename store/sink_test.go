package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamRoundTrip(t *testing.T) {
	s := New()
	s.PushI64("Gear", 3.0, -1)
	s.PushI64("Gear", 1.0, 2)
	s.SetUnit("Gear", "")
	s.SetValueTable("Gear", map[int64]string{-1: "reverse", 2: "second"})

	s.PushF64("Temp", 2.0, 21.5)
	s.SetUnit("Temp", "degC")

	s.PushString("Status", 0.5, "ok")

	var buf bytes.Buffer
	require.NoError(t, s.WriteToStream(&buf))

	got, err := ReadFromStream(&buf)
	require.NoError(t, err)

	require.Equal(t, s.SignalCount(), got.SignalCount())

	gear := got.Series("Gear")
	require.NotNil(t, gear)
	assert.Equal(t, []Point{{Timestamp: 1.0, I64: 2}, {Timestamp: 3.0, I64: -1}}, gear.Points)

	temp := got.Series("Temp")
	require.NotNil(t, temp)
	assert.Equal(t, 21.5, temp.Points[0].F64)

	status := got.Series("Status")
	require.NotNil(t, status)
	assert.Equal(t, "ok", status.Points[0].Str)
}

func TestWriteToStreamSortsBeforeEmission(t *testing.T) {
	s := New()
	s.PushU64("Counter", 5.0, 1)
	s.PushU64("Counter", 2.0, 2)
	s.PushU64("Counter", 8.0, 3)

	var buf bytes.Buffer
	require.NoError(t, s.WriteToStream(&buf))

	got, err := ReadFromStream(&buf)
	require.NoError(t, err)

	ser := got.Series("Counter")
	require.Len(t, ser.Points, 3)

	for i := 1; i < len(ser.Points); i++ {
		assert.LessOrEqual(t, ser.Points[i-1].Timestamp, ser.Points[i].Timestamp)
	}
}
