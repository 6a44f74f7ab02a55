// Package dbcparse reads the subset of DBC text grammar needed to populate
// dbcmodel values end to end: BO_ (message) and SG_ (signal, including
// m/M multiplexor markers) lines, plus VAL_ (value table) lines.
//
// This is deliberately not a complete DBC grammar (no BA_, CM_, attribute
// blocks) — a textual DBC parser is an out-of-scope collaborator per the
// core specification; this package exists only so the CLI has a real one
// to call.
package dbcparse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/JanSpindler/blf2mdf/dbcmodel"
)

// Database is the set of messages parsed from one DBC file, keyed by
// arbitration ID.
type Database struct {
	Messages map[uint32]*dbcmodel.DbcMessage
}

var (
	// BO_ 1234 EngineData: 8 Vector__XXX
	boLine = regexp.MustCompile(`^BO_\s+(\d+)\s+(\S+):\s+(\d+)\s+\S+`)

	// SG_ RPM m2 : 0|16@1+ (1,0.5) [0|8000] "rpm" Vector__XXX
	// SG_ Checksum M : 48|8@1+ (1,0) [0|255] "" Vector__XXX
	// SG_ Temp : 16|8@0- (1,-40) [-40|215] "degC" Vector__XXX
	sgLine = regexp.MustCompile(
		`^\s*SG_\s+(\S+)\s*(M|m\d+)?\s*:\s*(\d+)\|(\d+)@(\d)([+-])\s*\(([^,]+),([^)]+)\)\s*\[([^|]*)\|([^\]]*)\]\s*"([^"]*)"`,
	)

	// VAL_ 1234 GearSelector 0 "Park" 1 "Reverse" 2 "Neutral" 3 "Drive" ;
	valLine = regexp.MustCompile(`^VAL_\s+(\d+)\s+(\S+)\s+(.*?)\s*;\s*$`)

	valEntry = regexp.MustCompile(`(-?\d+)\s+"([^"]*)"`)
)

// ParseFile opens path and parses it as a DBC file.
func ParseFile(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dbcparse: open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a DBC file from r.
func Parse(r io.Reader) (*Database, error) {
	db := &Database{Messages: make(map[uint32]*dbcmodel.DbcMessage)}

	var current *dbcmodel.DbcMessage

	scanner := bufio.NewScanner(r)
	// DBC lines can be long (many signals' worth of attribute text on a
	// single logical record in some exporters); grow past bufio's default.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "BO_ "):
			msg, err := parseMessage(line)
			if err != nil {
				return nil, err
			}

			db.Messages[msg.ID] = msg
			current = msg

		case strings.HasPrefix(strings.TrimSpace(line), "SG_ ") && current != nil:
			sig, err := parseSignal(line, current.ID)
			if err != nil {
				return nil, err
			}

			current.Signals = append(current.Signals, sig)

		case strings.HasPrefix(strings.TrimSpace(line), "VAL_ "):
			if err := applyValueTable(db, line); err != nil {
				return nil, err
			}

		case strings.TrimSpace(line) == "":
			current = nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dbcparse: %w", err)
	}

	return db, nil
}

func parseMessage(line string) (*dbcmodel.DbcMessage, error) {
	m := boLine.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("dbcparse: malformed BO_ line: %q", line)
	}

	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("dbcparse: BO_ id: %w", err)
	}

	dlc, err := strconv.ParseUint(m[3], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("dbcparse: BO_ dlc: %w", err)
	}

	return &dbcmodel.DbcMessage{
		ID:   uint32(id),
		Name: m[2],
		DLC:  uint8(dlc),
	}, nil
}

func parseSignal(line string, messageID uint32) (*dbcmodel.DbcSignalDescriptor, error) {
	m := sgLine.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("dbcparse: malformed SG_ line: %q", line)
	}

	startBit, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("dbcparse: SG_ start bit: %w", err)
	}

	bitCount, err := strconv.ParseUint(m[4], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("dbcparse: SG_ bit count: %w", err)
	}

	byteOrder := dbcmodel.BigEndian
	if m[5] == "1" {
		byteOrder = dbcmodel.LittleEndian
	}

	valueType := dbcmodel.Unsigned
	if m[6] == "-" {
		valueType = dbcmodel.Signed
	}

	factor, err := strconv.ParseFloat(strings.TrimSpace(m[7]), 64)
	if err != nil {
		return nil, fmt.Errorf("dbcparse: SG_ factor: %w", err)
	}

	offset, err := strconv.ParseFloat(strings.TrimSpace(m[8]), 64)
	if err != nil {
		return nil, fmt.Errorf("dbcparse: SG_ offset: %w", err)
	}

	mux, err := parseMultiplex(m[2])
	if err != nil {
		return nil, err
	}

	return &dbcmodel.DbcSignalDescriptor{
		Name:              m[1],
		MessageID:         messageID,
		StartBit:          uint(startBit),
		BitCount:          uint(bitCount),
		ByteOrder:         byteOrder,
		ValueType:         valueType,
		ExtendedValueType: dbcmodel.Integer,
		Factor:            factor,
		Offset:            offset,
		Unit:              m[11],
		Multiplex:         mux,
	}, nil
}

func parseMultiplex(marker string) (dbcmodel.Multiplex, error) {
	switch {
	case marker == "":
		return dbcmodel.Multiplex{Role: dbcmodel.Plain}, nil
	case marker == "M":
		return dbcmodel.Multiplex{Role: dbcmodel.Multiplexor}, nil
	case strings.HasPrefix(marker, "m"):
		k, err := strconv.ParseUint(marker[1:], 10, 64)
		if err != nil {
			return dbcmodel.Multiplex{}, fmt.Errorf("dbcparse: multiplex marker %q: %w", marker, err)
		}

		return dbcmodel.Multiplex{Role: dbcmodel.MultiplexedSignal, Value: k}, nil
	default:
		return dbcmodel.Multiplex{}, fmt.Errorf("dbcparse: unrecognised multiplex marker %q", marker)
	}
}

func applyValueTable(db *Database, line string) error {
	m := valLine.FindStringSubmatch(line)
	if m == nil {
		// VAL_TABLE_ and other VAL_-prefixed directives are out of scope;
		// a line that isn't a per-signal value table is silently ignored.
		return nil
	}

	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return fmt.Errorf("dbcparse: VAL_ message id: %w", err)
	}

	msg, ok := db.Messages[uint32(id)]
	if !ok {
		return nil
	}

	var sig *dbcmodel.DbcSignalDescriptor

	for _, s := range msg.Signals {
		if s.Name == m[2] {
			sig = s

			break
		}
	}

	if sig == nil {
		return nil
	}

	table := make(map[int64]string)

	for _, entry := range valEntry.FindAllStringSubmatch(m[3], -1) {
		v, err := strconv.ParseInt(entry[1], 10, 64)
		if err != nil {
			continue
		}

		table[v] = entry[2]
	}

	sig.ValueTable = table

	return nil
}
