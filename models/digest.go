package models

import (
	"crypto/sha256"
	"encoding/hex"
)

// JournalEntry is one applied transition as recorded by the server. The
// client reconstructs the same entries from its session bookkeeping so both
// sides can compute an identical digest.
type JournalEntry struct {
	OperationID   string     `json:"operation_id"`
	Kind          ActionKind `json:"kind"`
	PayloadDigest string     `json:"payload_digest"`
	ResultVersion int64      `json:"result_version"`
}

// PayloadDigestOf returns the hex SHA-256 of a payload's encoded envelope.
func PayloadDigestOf(p ActionPayload) (string, error) {
	raw, err := EncodePayload(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// SessionDigest computes a deterministic digest over the ordered applied
// operations of one replay session: SHA-256 over the concatenation of each
// entry's operation id and payload digest, separated by newlines. Order
// matters; the same set applied in a different order yields a different
// digest.
func SessionDigest(entries []JournalEntry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.OperationID))
		h.Write([]byte{'\n'})
		h.Write([]byte(e.PayloadDigest))
		h.Write([]byte{'\n'})
	}

	return hex.EncodeToString(h.Sum(nil))
}
