package extract

import (
	"testing"

	"github.com/JanSpindler/blf2mdf/dbcmodel"
	"github.com/JanSpindler/blf2mdf/dbcparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndexFirstBusClaimsSignalName(t *testing.T) {
	sigA := &dbcmodel.DbcSignalDescriptor{Name: "Shared"}
	msgA := &dbcmodel.DbcMessage{ID: 1, Signals: []*dbcmodel.DbcSignalDescriptor{sigA}}

	sigB := &dbcmodel.DbcSignalDescriptor{Name: "Shared"}
	msgB := &dbcmodel.DbcMessage{ID: 2, Signals: []*dbcmodel.DbcSignalDescriptor{sigB}}

	idx := BuildIndex([][]*dbcparse.Database{
		{{Messages: map[uint32]*dbcmodel.DbcMessage{1: msgA}}},
		{{Messages: map[uint32]*dbcmodel.DbcMessage{2: msgB}}},
	})

	assert.True(t, idx.ownsSignal("Shared", 0))
	assert.False(t, idx.ownsSignal("Shared", 1))
}

func TestBuildIndexLookupByBusAndID(t *testing.T) {
	msg := &dbcmodel.DbcMessage{ID: 42}
	idx := BuildIndex([][]*dbcparse.Database{{{Messages: map[uint32]*dbcmodel.DbcMessage{42: msg}}}})

	got, ok := idx.Lookup(0, 42)
	require.True(t, ok)
	assert.Same(t, msg, got)

	_, ok = idx.Lookup(0, 99)
	assert.False(t, ok)

	_, ok = idx.Lookup(1, 42)
	assert.False(t, ok)
}
