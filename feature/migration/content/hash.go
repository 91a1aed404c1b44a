package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain tags keep record and payload digests in separate spaces.
const (
	DomainRecord  = "accounting-sync/record/v1"
	DomainPayload = "accounting-sync/payload/v1"
)

// ShortKeyLen is the default width, in hex characters, of a derived row key digest.
const ShortKeyLen = 16

// Hash returns the hex SHA-256 of a record's canonical form.
func Hash(record any) (string, error) {
	return hashWithDomain(DomainRecord, record)
}

func hashWithDomain(domain string, v any) (string, error) {
	data, err := Canonical(v)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Addressor derives row keys and checksums.
type Addressor struct {
	// KeyLen is the number of hex characters kept in derived row keys (1..64).
	KeyLen int
}

// NewAddressor returns an addressor with 16-hex derived keys, or full-width ones.
func NewAddressor(fullWidth bool) Addressor {
	if fullWidth {
		return Addressor{KeyLen: sha256.Size * 2}
	}
	return Addressor{KeyLen: ShortKeyLen}
}

// Hash returns the record checksum.
func (a Addressor) Hash(record any) (string, error) {
	return Hash(record)
}

// RowKey returns naturalKey when present, otherwise "<prefix>-<digest>".
func (a Addressor) RowKey(prefix, naturalKey string, record any) (string, error) {
	if naturalKey != "" {
		return naturalKey, nil
	}
	sum, err := Hash(record)
	if err != nil {
		return "", fmt.Errorf("failed to derive %s row key: %w", prefix, err)
	}
	n := a.KeyLen
	if n <= 0 || n > len(sum) {
		n = ShortKeyLen
	}
	return prefix + "-" + sum[:n], nil
}

// PayloadChecksum hashes a whole normalized payload.
func (a Addressor) PayloadChecksum(payload any) (string, error) {
	return hashWithDomain(DomainPayload, payload)
}
