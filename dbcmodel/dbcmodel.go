// Package dbcmodel defines the abstract DBC descriptor model the decode
// pipeline consumes: a message is a CAN arbitration ID with a fixed DLC and
// a set of bit-level signal descriptors. The textual DBC grammar that
// produces these values is not this package's concern — see dbcparse.
package dbcmodel

// ByteOrder is the DBC bit-numbering convention a signal is laid out with.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota // Intel: LSB-first.
	BigEndian                    // Motorola: MSB-first.
)

// ValueType is whether a signal's raw bits are sign-extended.
type ValueType uint8

const (
	Unsigned ValueType = iota
	Signed
)

// ExtendedValueType distinguishes DBC's "float" signal extension from plain
// integer signals. Float32/Float64 signals are parsed but never decoded by
// extract (spec §9 "Float raw signals").
type ExtendedValueType uint8

const (
	Integer ExtendedValueType = iota
	Float32
	Float64
)

// MultiplexRole is a signal's participation in a message's multiplexing
// scheme.
type MultiplexRole uint8

const (
	// Plain signals are always decoded, regardless of any multiplexor value.
	Plain MultiplexRole = iota
	// Multiplexor is the (at most one per message) switch signal; always
	// decoded, and its value gates MultiplexedSignal signals.
	Multiplexor
	// MultiplexedSignal signals are decoded only when the message's
	// Multiplexor value equals MultiplexValue.
	MultiplexedSignal
)

// Multiplex carries a signal's MultiplexRole and, for MultiplexedSignal,
// the switch value it is gated on.
type Multiplex struct {
	Role  MultiplexRole
	Value uint64 // meaningful only when Role == MultiplexedSignal
}

// DbcSignalDescriptor describes one bit-level signal within a DBC message.
type DbcSignalDescriptor struct {
	Name              string
	MessageID         uint32
	StartBit          uint
	BitCount          uint
	ByteOrder         ByteOrder
	ValueType         ValueType
	ExtendedValueType ExtendedValueType
	Factor            float64
	Offset            float64
	Unit              string
	Multiplex         Multiplex
	// ValueTable maps a decoded integer value to a human-readable label
	// (DBC VAL_ lines). Nil when the signal has none.
	ValueTable map[int64]string
}

// DbcMessage is one CAN message definition: an arbitration ID, a declared
// DLC, and the signals packed into its payload.
type DbcMessage struct {
	ID      uint32
	Name    string
	DLC     uint8
	Signals []*DbcSignalDescriptor
}

// Multiplexor returns the message's switch signal, if any.
func (m *DbcMessage) Multiplexor() *DbcSignalDescriptor {
	for _, s := range m.Signals {
		if s.Multiplex.Role == Multiplexor {
			return s
		}
	}

	return nil
}
