// Package compress provides the decompression codecs used by the BLF
// container reader. A BLF LogContainer declares its compression method in
// its header (spec §4.1: 0 = none, 2 = zlib/deflate); unknown methods are
// reported so the caller can skip the container rather than fail the file.
package compress

import (
	"fmt"

	"github.com/JanSpindler/blf2mdf/format"
)

// Decompressor decompresses a single LogContainer payload.
//
// The input slice is never modified. ZlibDecompressor returns a newly
// allocated slice owned by the caller; NoOpDecompressor returns the input
// slice itself.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// GetDecompressor returns the Decompressor for a BLF compression method.
//
// Returns an error for any method other than the two defined by the BLF
// format; callers should treat that as a non-fatal, skip-this-container
// condition per spec §4.1 ("Unknown methods ... cause the container to be
// skipped (non-fatal) with a warning").
func GetDecompressor(method format.CompressionMethod) (Decompressor, error) {
	switch method {
	case format.CompressionNone:
		return NoOpDecompressor{}, nil
	case format.CompressionZlib:
		return ZlibDecompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression method: %d", method)
	}
}
