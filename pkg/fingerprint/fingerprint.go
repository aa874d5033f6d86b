// Package fingerprint derives the cache key of a generation request.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// Input is every field that can change the generated output. Adding a field
// here changes every fingerprint, which invalidates the whole cache.
type Input struct {
	SourceContent string
	ToolName      string
	Tone          string
	Emotion       string
	Language      string
	TargetRegion  string
	CreatorNotes  string
}

// Compute returns the lowercase hex SHA-256 of in. Each field is written as
// its byte length followed by its raw bytes, so distinct inputs never share an
// encoding, including inputs that are not valid UTF-8.
func Compute(in Input) string {
	h := sha256.New()
	for _, field := range []string{
		in.SourceContent,
		in.ToolName,
		in.Tone,
		in.Emotion,
		in.Language,
		in.TargetRegion,
		in.CreatorNotes,
	} {
		writeField(h, field)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, field string) {
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(len(field)))
	h.Write(size[:])
	h.Write([]byte(field))
}
