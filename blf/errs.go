package blf

import "errors"

// Error kinds surfaced by the container reader (spec §7).
var (
	ErrBadSignature        = errors.New("blf: bad file signature")
	ErrBadObjectSignature  = errors.New("blf: bad object signature")
	ErrTruncatedRecord     = errors.New("blf: truncated record")
	ErrUnknownCompression  = errors.New("blf: unknown compression method")
	ErrDecompressionFailed = errors.New("blf: decompression failed")
)
