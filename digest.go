package liszt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Digest is a content hash used to key cached artifacts: compiled kernel
// versions and the per-relation generated defrag copy routine (see
// Relation.structuralSignature).
type Digest [sha256.Size]byte

// String renders d as a short hex string, suitable for log lines.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])[:16]
}

// DigestString hashes a set of strings, in order, into a single Digest.
// Each part is length-prefixed so that ("ab", "c") and ("a", "bc") hash
// differently.
func DigestString(parts ...string) Digest {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s;", len(p), p)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}
