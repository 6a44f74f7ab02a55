package compress

// NoOpDecompressor handles BLF's "no compression" LogContainer method: the
// payload is returned unchanged.
type NoOpDecompressor struct{}

var _ Decompressor = NoOpDecompressor{}

// Decompress returns data as-is. The returned slice shares the input's
// underlying array; callers must not mutate it afterwards if they still
// hold the input.
func (NoOpDecompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
