package store

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/JanSpindler/blf2mdf/endian"
	"github.com/JanSpindler/blf2mdf/format"
	"github.com/JanSpindler/blf2mdf/internal/metricsrv"
	"github.com/JanSpindler/blf2mdf/internal/pool"
)

// streamMagic opens every emitted stream (spec §6).
var streamMagic = [8]byte{'B', 'L', 'F', '2', 'M', 'D', 'F', 0x01}

// sinkEngine is the byte order the §6 wire format is defined in ("Output
// stream format ... Little-endian").
var sinkEngine = endian.GetLittleEndianEngine()

// WriteToStream sorts each series by timestamp and serialises the store to
// w in the framing defined by spec §6. w is wrapped in a bufio.Writer of
// pool.SinkBufferDefaultSize (1MiB) bytes (spec §4.4 "large write
// buffering, >=1MiB suggested"). The bufio.Writer allocates its own buffer
// on every call; the pooled sink buffer is taken and returned but does not
// hold the stream's bytes.
func (s *SignalStore) WriteToStream(w io.Writer) error {
	bb := pool.GetSinkBuffer()
	defer pool.PutSinkBuffer(bb)

	bw := bufio.NewWriterSize(w, max(len(bb.Bytes()), pool.SinkBufferDefaultSize))

	if _, err := bw.Write(streamMagic[:]); err != nil {
		return fmt.Errorf("store: write magic: %w", err)
	}

	if _, err := bw.Write(sinkEngine.AppendUint32(nil, uint32(len(s.order)))); err != nil {
		return fmt.Errorf("store: write signal count: %w", err)
	}

	for _, name := range s.order {
		ser := s.series[name]
		sortSeries(ser)

		if err := writeSeries(bw, ser); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("store: flush: %w", err)
	}

	return nil
}

func writeSeries(bw *bufio.Writer, ser *SignalSeries) error {
	name := []byte(ser.Name)
	if len(name) > math.MaxUint16 {
		return fmt.Errorf("store: signal name %q too long", ser.Name)
	}

	if _, err := bw.Write(sinkEngine.AppendUint16(nil, uint16(len(name)))); err != nil {
		return fmt.Errorf("store: write name length: %w", err)
	}

	if _, err := bw.Write(name); err != nil {
		return fmt.Errorf("store: write name: %w", err)
	}

	if err := bw.WriteByte(byte(ser.Kind)); err != nil {
		return fmt.Errorf("store: write kind: %w", err)
	}

	if _, err := bw.Write(sinkEngine.AppendUint32(nil, uint32(len(ser.Points)))); err != nil {
		return fmt.Errorf("store: write point count: %w", err)
	}

	for _, pt := range ser.Points {
		if err := writePoint(bw, ser.Kind, pt); err != nil {
			return err
		}

		metricsrv.SignalPointsWritten.Inc()
	}

	return nil
}

func writePoint(bw *bufio.Writer, kind format.ValueKind, pt Point) error {
	if _, err := bw.Write(sinkEngine.AppendUint64(nil, math.Float64bits(pt.Timestamp))); err != nil {
		return fmt.Errorf("store: write timestamp: %w", err)
	}

	switch kind {
	case format.KindI64:
		_, err := bw.Write(sinkEngine.AppendUint64(nil, uint64(pt.I64)))

		return err
	case format.KindU64:
		_, err := bw.Write(sinkEngine.AppendUint64(nil, pt.U64))

		return err
	case format.KindF64:
		_, err := bw.Write(sinkEngine.AppendUint64(nil, math.Float64bits(pt.F64)))

		return err
	case format.KindString:
		b := []byte(pt.Str)
		if len(b) > math.MaxUint16 {
			return fmt.Errorf("store: string value too long (%d bytes)", len(b))
		}

		if _, err := bw.Write(sinkEngine.AppendUint16(nil, uint16(len(b)))); err != nil {
			return err
		}

		_, err := bw.Write(b)

		return err
	default:
		return fmt.Errorf("store: unknown value kind %d", kind)
	}
}
