// Package hash provides the string hashing the extract package's
// DecodeIndex uses to key its signal-name claim map.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
