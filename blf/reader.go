// Package blf implements the Vector BLF container reader: it parses the
// file header, enumerates outer LOBJ objects, decompresses LogContainer
// payloads, and yields a lazy sequence of CanFrame values with restored
// absolute timestamps (spec §4.1).
package blf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/JanSpindler/blf2mdf/compress"
	"github.com/JanSpindler/blf2mdf/format"
	"github.com/JanSpindler/blf2mdf/internal/logging"
	"github.com/JanSpindler/blf2mdf/internal/metricsrv"
)

const (
	baseHeaderSize      = 16
	extHeaderSize       = 16
	containerHeaderSize = 16
	// resyncWindow bounds the byte-by-byte scan for a missing LOBJ
	// signature inside a container payload (spec §4.1 "a small window").
	resyncWindow = 8

	timeTenMics      = 0x1
	timeTenMicsScale = 1e-5
	timeOneNanScale  = 1e-9

	canMsgExtendedFlag = 0x80000000
	canArbitrationMask = 0x1FFFFFFF
	canRemoteFlag      = 0x80
	canDirFlag         = 0x01
)

var lobjSignature = [4]byte{'L', 'O', 'B', 'J'}

// Reader parses a BLF file's object stream. It owns the file's carry-over
// buffer; the frames it yields are owned by the consumer.
type Reader struct {
	r              io.Reader
	startTimestamp float64
	tail           []byte
}

// NewReader parses the BLF file header from r and returns a Reader
// positioned to read the first outer object.
func NewReader(r io.Reader) (*Reader, error) {
	head := make([]byte, 8)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("blf: read file header: %w", err)
	}

	if string(head[0:4]) != "LOGG" {
		return nil, ErrBadSignature
	}

	headerSize := binary.LittleEndian.Uint32(head[4:8])
	if headerSize < 8 {
		return nil, fmt.Errorf("%w: header size %d too small", ErrBadSignature, headerSize)
	}

	full := make([]byte, headerSize)
	copy(full, head)

	if _, err := io.ReadFull(r, full[8:]); err != nil {
		return nil, fmt.Errorf("blf: read file header: %w", err)
	}

	var start float64
	if len(full) >= 72 {
		start = systemTimeToUnix(full[56:72])
	}

	return &Reader{r: r, startTimestamp: start}, nil
}

// Frames returns a lazy sequence of (CanFrame, error) pairs. A non-nil
// error is terminal: the outer I/O error that produced it is fatal per
// spec §7 and the sequence yields nothing further after it. Per-object and
// per-container problems are skipped, never surfaced here: a skipped
// container is logged, while an inner object that cannot be decoded is
// dropped without a log entry.
func (rd *Reader) Frames() iter.Seq2[CanFrame, error] {
	return func(yield func(CanFrame, error) bool) {
		for {
			objType, body, err := rd.readOuterObject()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield(CanFrame{}, err)

				return
			}

			if objType != format.ObjTypeLogContainer {
				continue
			}

			payload, err := rd.decompressContainer(body)
			if err != nil {
				logging.L().Warn("container_skipped", "error", err)
				metricsrv.ContainersSkipped.WithLabelValues(skipReason(err)).Inc()

				continue
			}

			metricsrv.ContainersDecompressed.Inc()

			for _, frame := range rd.parseContainerPayload(payload) {
				if !yield(frame, nil) {
					return
				}
			}
		}
	}
}

func skipReason(err error) string {
	if errors.Is(err, ErrUnknownCompression) {
		return metricsrv.ReasonUnknownCompression
	}

	return metricsrv.ReasonCorruptContainer
}

// readOuterObject reads one OBJ_HEADER_BASE plus its body and padding,
// returning io.EOF when the stream ends cleanly before a base header.
func (rd *Reader) readOuterObject() (format.ObjectType, []byte, error) {
	var base [baseHeaderSize]byte

	if _, err := io.ReadFull(rd.r, base[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, nil, io.EOF
		}

		return 0, nil, fmt.Errorf("blf: read object header: %w", err)
	}

	if !bytes.Equal(base[0:4], lobjSignature[:]) {
		return 0, nil, ErrBadObjectSignature
	}

	objSize := binary.LittleEndian.Uint32(base[8:12])
	objType := format.ObjectType(binary.LittleEndian.Uint32(base[12:16]))

	if objSize < baseHeaderSize {
		return 0, nil, fmt.Errorf("%w: object size %d smaller than base header", ErrTruncatedRecord, objSize)
	}

	body := make([]byte, objSize-baseHeaderSize)
	if _, err := io.ReadFull(rd.r, body); err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrTruncatedRecord, err)
	}

	if padding := objSize % 4; padding > 0 {
		pad := make([]byte, padding)
		if _, err := io.ReadFull(rd.r, pad); err != nil {
			return 0, nil, fmt.Errorf("blf: read object padding: %w", err)
		}
	}

	return objType, body, nil
}

// decompressContainer parses the 16-byte LOG_CONTAINER header and
// decompresses the remainder of body according to its declared method.
func (rd *Reader) decompressContainer(body []byte) ([]byte, error) {
	if len(body) < containerHeaderSize {
		return nil, fmt.Errorf("%w: container header truncated", ErrTruncatedRecord)
	}

	method := format.CompressionMethod(binary.LittleEndian.Uint16(body[0:2]))

	decompressor, err := compress.GetDecompressor(method)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, method)
	}

	out, err := decompressor.Decompress(body[containerHeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompressionFailed, err)
	}

	return out, nil
}
