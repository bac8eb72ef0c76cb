package cache

import (
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

var keyEncoding cbor.EncMode

func init() {
	var err error
	keyEncoding, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cache: CBOR encoder initialization failed: " + err.Error())
	}
}

// hashKey returns prefix:hash(parts). Parts are encoded as deterministic
// CBOR, so equal values always give equal keys.
func hashKey(prefix string, parts ...any) string {
	data, err := keyEncoding.Marshal(parts)
	if err != nil {
		panic("cache: unencodable key part: " + err.Error())
	}
	return prefix + ":" + Hash(data)
}

// Hash returns the hex BLAKE3-256 digest of data, 64 characters long.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
