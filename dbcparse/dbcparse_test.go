package dbcparse

import (
	"strings"
	"testing"

	"github.com/JanSpindler/blf2mdf/dbcmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDBC = `
BO_ 100 EngineData: 8 Vector__XXX
 SG_ Mode M : 0|4@1+ (1,0) [0|15] "" Vector__XXX
 SG_ RPM m1 : 8|16@1+ (0.25,0) [0|16000] "rpm" Vector__XXX
 SG_ Temp m2 : 8|8@0- (1,-40) [-40|215] "degC" Vector__XXX
 SG_ Always : 24|1@1+ (1,0) [0|1] "" Vector__XXX

BO_ 200 GearData: 1 Vector__XXX
 SG_ Gear : 0|8@1+ (1,0) [0|5] "" Vector__XXX

VAL_ 200 Gear 0 "Park" 1 "Reverse" 2 "Neutral" 3 "Drive" ;
`

func TestParse_Messages(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleDBC))
	require.NoError(t, err)
	require.Len(t, db.Messages, 2)

	engine := db.Messages[100]
	require.NotNil(t, engine)
	assert.Equal(t, "EngineData", engine.Name)
	assert.Equal(t, uint8(8), engine.DLC)
	require.Len(t, engine.Signals, 4)
}

func TestParse_Multiplex(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleDBC))
	require.NoError(t, err)

	engine := db.Messages[100]
	mux := engine.Multiplexor()
	require.NotNil(t, mux)
	assert.Equal(t, "Mode", mux.Name)

	var rpm, temp, always *dbcmodel.DbcSignalDescriptor
	for _, s := range engine.Signals {
		switch s.Name {
		case "RPM":
			rpm = s
		case "Temp":
			temp = s
		case "Always":
			always = s
		}
	}

	require.NotNil(t, rpm)
	assert.Equal(t, dbcmodel.MultiplexedSignal, rpm.Multiplex.Role)
	assert.Equal(t, uint64(1), rpm.Multiplex.Value)
	assert.Equal(t, 0.25, rpm.Factor)

	require.NotNil(t, temp)
	assert.Equal(t, dbcmodel.MultiplexedSignal, temp.Multiplex.Role)
	assert.Equal(t, uint64(2), temp.Multiplex.Value)
	assert.Equal(t, dbcmodel.Signed, temp.ValueType)
	assert.Equal(t, dbcmodel.BigEndian, temp.ByteOrder)
	assert.Equal(t, -40.0, temp.Offset)

	require.NotNil(t, always)
	assert.Equal(t, dbcmodel.Plain, always.Multiplex.Role)
}

func TestParse_ValueTable(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleDBC))
	require.NoError(t, err)

	gear := db.Messages[200]
	require.Len(t, gear.Signals, 1)

	sig := gear.Signals[0]
	require.NotNil(t, sig.ValueTable)
	assert.Equal(t, "Park", sig.ValueTable[0])
	assert.Equal(t, "Drive", sig.ValueTable[3])
}

func TestParse_MalformedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("BO_ not-a-number Foo: 8 Vector__XXX\n"))
	assert.Error(t, err)
}
