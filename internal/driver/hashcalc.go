package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Digest is a SHA-256 value used as a disk cache key.
type Digest [sha256.Size]byte

// String returns the lowercase hex form.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

func contentDigest(content []byte) Digest {
	return Digest(sha256.Sum256(content))
}

// combineDigest: H(content || dep1 || dep2 ...). Порядок deps значим.
func combineDigest(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// optionsDigest folds everything that changes the diagnostics of a file
// besides its content: the cache schema and the diagnostics limit.
func optionsDigest(maxDiagnostics int) Digest {
	var buf [10]byte
	binary.LittleEndian.PutUint16(buf[:2], diskCacheSchemaVersion)
	binary.LittleEndian.PutUint64(buf[2:], uint64(max(maxDiagnostics, 0)))
	return Digest(sha256.Sum256(buf[:]))
}

// fileCacheKey is the key of the cached diagnostics of one file.
func fileCacheKey(content []byte, maxDiagnostics int) Digest {
	return combineDigest(contentDigest(content), optionsDigest(maxDiagnostics))
}
