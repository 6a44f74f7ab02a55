package compress

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sync"

	"github.com/JanSpindler/blf2mdf/internal/pool"
)

// zlibReaderPool pools zlib.Reader instances. zlib.NewReader allocates a
// flate window on every call; reusing it via Reset avoids that allocation
// on the hot per-container decompression path.
var zlibReaderPool = sync.Pool{
	New: func() any {
		return new(zlibReaderSlot)
	},
}

type zlibReaderSlot struct {
	r io.ReadCloser
}

// ZlibDecompressor handles BLF LogContainer compression method 2
// (zlib/deflate, spec §4.1).
type ZlibDecompressor struct{}

var _ Decompressor = ZlibDecompressor{}

// Decompress inflates a zlib-wrapped deflate stream.
func (ZlibDecompressor) Decompress(data []byte) ([]byte, error) {
	slot, _ := zlibReaderPool.Get().(*zlibReaderSlot)
	defer zlibReaderPool.Put(slot)

	var err error
	if slot.r == nil {
		slot.r, err = zlib.NewReader(bytes.NewReader(data))
	} else {
		err = slot.r.(zlib.Resetter).Reset(bytes.NewReader(data), nil)
	}
	if err != nil {
		slot.r = nil

		return nil, fmt.Errorf("zlib: %w", err)
	}

	buf := pool.GetContainerBuffer()
	defer pool.PutContainerBuffer(buf)

	if _, err := io.Copy(buf, slot.r); err != nil {
		slot.r = nil

		return nil, fmt.Errorf("zlib: %w", err)
	}

	out := append([]byte(nil), buf.Bytes()...)

	return out, nil
}
