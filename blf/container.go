package blf

import (
	"bytes"
	"encoding/binary"

	"github.com/JanSpindler/blf2mdf/format"
	"github.com/JanSpindler/blf2mdf/internal/metricsrv"
)

// parseContainerPayload decodes the inner LOBJ objects packed into one
// decompressed LogContainer payload, prefixing any tail carried over from
// the previous container.
//
// An inner object whose declared size runs past the end of the combined
// buffer belongs partly to the next container: parsing stops there and
// everything from the last fully consumed position onward becomes the new
// tail (spec §4.1). The original decoder this spec was distilled from
// advances its carry-over cursor to the start of the object being parsed
// rather than the end of the last one fully parsed, which re-emits that
// object's bytes as part of the next tail and duplicates it once the next
// container is appended. consumed here only ever advances past an object
// once that object has been fully decoded, which is what spec §8's
// carry-over property (splitting a container at any byte offset must
// yield exactly the frames the unsplit container would) requires.
func (rd *Reader) parseContainerPayload(payload []byte) []CanFrame {
	var full []byte
	if len(rd.tail) > 0 {
		full = append(append([]byte(nil), rd.tail...), payload...)
	} else {
		full = payload
	}

	var frames []CanFrame

	pos := 0
	consumed := 0
	maxPos := len(full)

	for pos < maxPos {
		if maxPos-pos < baseHeaderSize {
			break
		}

		if !bytes.Equal(full[pos:pos+4], lobjSignature[:]) {
			if resynced, ok := resync(full, pos, maxPos); ok {
				pos = resynced

				continue
			}

			break
		}

		objSize := int(binary.LittleEndian.Uint32(full[pos+8 : pos+12]))
		objType := format.ObjectType(binary.LittleEndian.Uint32(full[pos+12 : pos+16]))

		if objSize < baseHeaderSize {
			pos++

			continue
		}

		nextPos := pos + objSize
		if pad := objSize % 4; pad > 0 {
			nextPos += pad
		}

		if nextPos > maxPos {
			break
		}

		headerVersion := binary.LittleEndian.Uint16(full[pos+6 : pos+8])
		body := full[pos+baseHeaderSize : pos+objSize]

		if headerVersion == 1 || headerVersion == 2 {
			if frame, ok := rd.decodeInnerObject(objType, headerVersion, body); ok {
				frames = append(frames, frame)
				metricsrv.FramesDecoded.WithLabelValues(objType.String()).Inc()
			}
		}

		pos = nextPos
		consumed = nextPos
	}

	if consumed < maxPos {
		rd.tail = append([]byte(nil), full[consumed:]...)
	} else {
		rd.tail = nil
	}

	return frames
}

// resync scans forward for the LOBJ signature within resyncWindow bytes of
// pos, reporting failure if none is found before the window (or the end of
// the buffer) is exhausted.
func resync(full []byte, pos, maxPos int) (int, bool) {
	limit := pos + resyncWindow
	if limit > maxPos-4 {
		limit = maxPos - 4
	}

	for i := pos + 1; i <= limit; i++ {
		if bytes.Equal(full[i:i+4], lobjSignature[:]) {
			return i, true
		}
	}

	return 0, false
}

// decodeInnerObject decodes one inner object's extended header and, for
// CAN object types, its frame payload.
func (rd *Reader) decodeInnerObject(objType format.ObjectType, headerVersion uint16, body []byte) (CanFrame, bool) {
	if len(body) < extHeaderSize {
		return CanFrame{}, false
	}

	flags := binary.LittleEndian.Uint32(body[0:4])
	ticks := binary.LittleEndian.Uint64(body[8:16])

	_ = headerVersion // versions 1 and 2 share this extended header layout

	var scale float64
	if flags == timeTenMics {
		scale = timeTenMicsScale
	} else {
		scale = timeOneNanScale
	}

	timestamp := rd.startTimestamp + float64(ticks)*scale

	return decodeFramePayload(objType, body[extHeaderSize:], timestamp)
}

// decodeFramePayload decodes the CAN-specific body following an inner
// object's extended header.
func decodeFramePayload(objType format.ObjectType, data []byte, timestamp float64) (CanFrame, bool) {
	switch objType {
	case format.ObjTypeCanMessage, format.ObjTypeCanMessage2:
		return decodeCanMessage(data, timestamp)
	case format.ObjTypeCanErrorExt:
		return decodeCanErrorExt(data, timestamp)
	default:
		return CanFrame{}, false
	}
}

func decodeCanMessage(data []byte, timestamp float64) (CanFrame, bool) {
	const minLen = 16
	if len(data) < minLen {
		return CanFrame{}, false
	}

	channel := binary.LittleEndian.Uint16(data[0:2])
	flags := data[2]
	dlc := data[3]
	canID := binary.LittleEndian.Uint32(data[4:8])

	n := int(dlc)
	if n > 8 {
		n = 8
	}

	frameData := append([]byte(nil), data[8:8+n]...)

	var ch uint8
	if channel > 0 {
		ch = uint8(channel - 1)
	}

	return CanFrame{
		Timestamp:     timestamp,
		ArbitrationID: canID & canArbitrationMask,
		IsExtendedID:  canID&canMsgExtendedFlag != 0,
		IsRemoteFrame: flags&canRemoteFlag != 0,
		IsRx:          flags&canDirFlag == 0,
		DLC:           dlc,
		Data:          frameData,
		Channel:       ch,
	}, true
}

func decodeCanErrorExt(data []byte, timestamp float64) (CanFrame, bool) {
	const minLen = 26
	if len(data) < minLen {
		return CanFrame{}, false
	}

	channel := binary.LittleEndian.Uint16(data[0:2])
	dlc := data[5]
	canID := binary.LittleEndian.Uint32(data[12:16])

	n := int(dlc)
	if minLen+n > len(data) {
		n = len(data) - minLen
	}

	if n < 0 {
		n = 0
	}

	frameData := append([]byte(nil), data[minLen:minLen+n]...)

	var ch uint8
	if channel > 0 {
		ch = uint8(channel - 1)
	}

	return CanFrame{
		Timestamp:     timestamp,
		ArbitrationID: canID & canArbitrationMask,
		IsExtendedID:  canID&canMsgExtendedFlag != 0,
		IsRx:          true,
		IsErrorFrame:  true,
		DLC:           dlc,
		Data:          frameData,
		Channel:       ch,
	}, true
}
