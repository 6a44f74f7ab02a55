package extract

import (
	"github.com/JanSpindler/blf2mdf/dbcmodel"
	"github.com/JanSpindler/blf2mdf/dbcparse"
	"github.com/JanSpindler/blf2mdf/internal/hash"
)

// busMessages maps a message ID to its DBC descriptor for one bus.
type busMessages map[uint32]*dbcmodel.DbcMessage

// DecodeIndex is the pre-built index the extractor decodes against: one
// message map per configured bus, plus a global signal-name claim map that
// makes the first bus to define a signal name own it for the whole run
// (spec §3 "DecodeIndex", §4.2 "Bus deduplication").
type DecodeIndex struct {
	buses      []busMessages
	claimedBus map[uint64]int // hash.ID(name) -> claiming bus index
}

// BuildIndex constructs a DecodeIndex from one ordered set of DBC databases
// per bus (index i holds bus i's databases, searched in order). A message
// ID already claimed by an earlier database on the same bus is not
// overwritten; the first database to define an ID wins, following DBC
// loading order.
func BuildIndex(busDBCs [][]*dbcparse.Database) *DecodeIndex {
	idx := &DecodeIndex{
		buses:      make([]busMessages, len(busDBCs)),
		claimedBus: make(map[uint64]int),
	}

	for bus, dbs := range busDBCs {
		msgs := make(busMessages)

		for _, db := range dbs {
			for id, msg := range db.Messages {
				if _, exists := msgs[id]; !exists {
					msgs[id] = msg
				}
			}
		}

		idx.buses[bus] = msgs

		for _, msg := range msgs {
			for _, sig := range msg.Signals {
				key := hash.ID(sig.Name)
				if _, claimed := idx.claimedBus[key]; !claimed {
					idx.claimedBus[key] = bus
				}
			}
		}
	}

	return idx
}

// BusCount returns the number of configured buses.
func (idx *DecodeIndex) BusCount() int { return len(idx.buses) }

// Lookup returns the message descriptor for (bus, arbitrationID), or false
// if the bus index is out of range or the message is not present on it.
func (idx *DecodeIndex) Lookup(bus uint8, arbitrationID uint32) (*dbcmodel.DbcMessage, bool) {
	if int(bus) >= len(idx.buses) {
		return nil, false
	}

	msg, ok := idx.buses[bus][arbitrationID]

	return msg, ok
}

// ownsSignal reports whether bus is the first bus to have claimed name.
func (idx *DecodeIndex) ownsSignal(name string, bus uint8) bool {
	claimed, ok := idx.claimedBus[hash.ID(name)]
	if !ok {
		return true
	}

	return claimed == int(bus)
}
