package dbcmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDbcMessage_Multiplexor(t *testing.T) {
	mux := &DbcSignalDescriptor{Name: "Mux", Multiplex: Multiplex{Role: Multiplexor}}
	plain := &DbcSignalDescriptor{Name: "Plain", Multiplex: Multiplex{Role: Plain}}

	msg := &DbcMessage{ID: 1, Signals: []*DbcSignalDescriptor{plain, mux}}

	assert.Same(t, mux, msg.Multiplexor())
}

func TestDbcMessage_Multiplexor_None(t *testing.T) {
	plain := &DbcSignalDescriptor{Name: "Plain", Multiplex: Multiplex{Role: Plain}}
	msg := &DbcMessage{ID: 1, Signals: []*DbcSignalDescriptor{plain}}

	assert.Nil(t, msg.Multiplexor())
}
