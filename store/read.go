package store

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/JanSpindler/blf2mdf/format"
)

// ReadFromStream parses the §6 wire format back into a SignalStore. It
// exists primarily to let tests assert the stream round-trip property
// (spec §8 property 7); the downstream MDF/MF4 writer is the real
// consumer of the format and is out of scope for this module.
func ReadFromStream(r io.Reader) (*SignalStore, error) {
	br := bufio.NewReader(r)

	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("store: read magic: %w", err)
	}

	if magic != streamMagic {
		return nil, fmt.Errorf("store: bad stream magic %x", magic)
	}

	cnt, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("store: read signal count: %w", err)
	}

	s := New()

	for i := uint32(0); i < cnt; i++ {
		if err := readSeries(br, s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func readSeries(br *bufio.Reader, s *SignalStore) error {
	nameLen, err := readU16(br)
	if err != nil {
		return fmt.Errorf("store: read name length: %w", err)
	}

	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(br, nameBuf); err != nil {
		return fmt.Errorf("store: read name: %w", err)
	}

	kindByte, err := br.ReadByte()
	if err != nil {
		return fmt.Errorf("store: read kind: %w", err)
	}

	kind := format.ValueKind(kindByte)

	pointCnt, err := readU32(br)
	if err != nil {
		return fmt.Errorf("store: read point count: %w", err)
	}

	name := string(nameBuf)

	ser, err := s.getOrCreate(name, kind)
	if err != nil {
		return err
	}

	for i := uint32(0); i < pointCnt; i++ {
		pt, err := readPoint(br, kind)
		if err != nil {
			return err
		}

		ser.Points = append(ser.Points, pt)
	}

	return nil
}

func readPoint(br *bufio.Reader, kind format.ValueKind) (Point, error) {
	tsBits, err := readU64(br)
	if err != nil {
		return Point{}, fmt.Errorf("store: read timestamp: %w", err)
	}

	pt := Point{Timestamp: math.Float64frombits(tsBits)}

	switch kind {
	case format.KindI64:
		v, err := readU64(br)
		if err != nil {
			return Point{}, err
		}

		pt.I64 = int64(v)
	case format.KindU64:
		v, err := readU64(br)
		if err != nil {
			return Point{}, err
		}

		pt.U64 = v
	case format.KindF64:
		v, err := readU64(br)
		if err != nil {
			return Point{}, err
		}

		pt.F64 = math.Float64frombits(v)
	case format.KindString:
		vlen, err := readU16(br)
		if err != nil {
			return Point{}, err
		}

		buf := make([]byte, vlen)
		if _, err := io.ReadFull(br, buf); err != nil {
			return Point{}, err
		}

		pt.Str = string(buf)
	default:
		return Point{}, fmt.Errorf("store: unknown value kind %d", kind)
	}

	return pt, nil
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}

	return sinkEngine.Uint16(buf[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}

	return sinkEngine.Uint32(buf[:]), nil
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}

	return sinkEngine.Uint64(buf[:]), nil
}
