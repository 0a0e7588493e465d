package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// canonicalJSON serializes a payload with deterministically ordered keys so
// that hashing is reproducible across runs. encoding/json sorts map keys at
// every nesting level, which is exactly the ordering guarantee needed here.
// A serialization failure indicates a canonicalization bug in the caller,
// not bad input.
func canonicalJSON(payload map[string]any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "integrity: canonical serialize")
	}
	return b, nil
}

// hashHex returns the hex-encoded SHA-256 digest of data.
func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// lockRounds is the total number of hash applications in the lock chain.
const lockRounds = 5

// chainedHash hashes the payload once, then re-hashes the hex digest four
// more times. The chain is order-sensitive: each round consumes the previous
// round's hex encoding.
func chainedHash(payload []byte) string {
	digest := hashHex(payload)
	for i := 1; i < lockRounds; i++ {
		digest = hashHex([]byte(digest))
	}
	return digest
}
