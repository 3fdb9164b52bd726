// Package rescache is a content-addressed two-tier cache for
// execution results: a small bounded in-memory tier in front of a
// persistent DynamoDB tier with a longer TTL.
package rescache

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint identifies one cacheable unit of work. Fields are
// length-prefixed before hashing so that no two distinct inputs can
// produce the same byte stream. Independent of caller identity and
// request order.
func Fingerprint(langID string, srcCode string, stdin string) string {
	return hashFrames(langID, srcCode, stdin)
}

// BatchFingerprint covers a batch run: language, code and the
// ordered test inputs.
func BatchFingerprint(langID string, srcCode string, inputs []string) string {
	frames := make([]string, 0, len(inputs)+2)
	frames = append(frames, langID, srcCode)
	frames = append(frames, inputs...)
	return hashFrames(frames...)
}

func hashFrames(frames ...string) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // only fails with an oversized key
	}
	var lenBuf [8]byte
	for _, f := range frames {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(f)))
		h.Write(lenBuf[:])
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}
