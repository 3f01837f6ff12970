package digest

import (
	"bytes"
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"

	// Register SHA implementations with crypto.Hash.
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
)

const (
	// Primary is used for both integrity fields of the manifest.
	Primary = "SHA-256"
	// Legacy is used only to derive the vanilla download URL.
	Legacy = "SHA-1"
	// SHA512 is accepted for integrity fields.
	SHA512 = "SHA-512"
	// BLAKE3 is accepted for integrity fields when the consumer supports it.
	BLAKE3 = "BLAKE3"
)

// ErrUnsupportedAlgorithm is returned when a digest algorithm is unknown or
// not linked into the binary.
var ErrUnsupportedAlgorithm = errors.New("unsupported digest algorithm")

// ErrInvalidLength is returned by ParseHex when the decoded sum does not have
// the size of the named algorithm.
var ErrInvalidLength = errors.New("digest length does not match algorithm")

// Digest is the result of hashing an artifact with a named algorithm.
type Digest struct {
	// Algorithm is the canonical algorithm name.
	Algorithm string
	// Sum holds the raw digest bytes.
	Sum []byte
}

// algorithms maps canonical names to their hash constructors.
//
//nolint:gochecknoglobals // Read-only registry.
var algorithms = map[string]func() (hash.Hash, error){
	Primary:   stdlibHash(crypto.SHA256),
	Legacy:    stdlibHash(crypto.SHA1),
	SHA512:    stdlibHash(crypto.SHA512),
	BLAKE3: func() (hash.Hash, error) {
		return blake3.New(), nil
	},
}

// Canonical resolves an algorithm name or alias (case-insensitive, dash optional)
// to its canonical form.
func Canonical(algorithm string) (string, error) {
	name := strings.ToUpper(strings.TrimSpace(algorithm))

	switch name {
	case "SHA256", "SHA-256":
		return Primary, nil
	case "SHA1", "SHA-1":
		return Legacy, nil
	case "SHA512", "SHA-512":
		return SHA512, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
}

// Sum hashes data with the named algorithm.
func Sum(algorithm string, data []byte) (Digest, error) {
	name, err := Canonical(algorithm)
	if err != nil {
		return Digest{}, err
	}

	h, err := algorithms[name]()
	if err != nil {
		return Digest{}, err
	}

	// hash.Hash.Write never returns an error.
	_, _ = h.Write(data)

	return Digest{
		Algorithm: name,
		Sum:       h.Sum(nil),
	}, nil
}

// ParseHex decodes a hex digest produced by Hex or LowerHex.
func ParseHex(algorithm, s string) (Digest, error) {
	name, err := Canonical(algorithm)
	if err != nil {
		return Digest{}, err
	}

	sum, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return Digest{}, fmt.Errorf("decode %s digest: %w", name, err)
	}

	h, err := algorithms[name]()
	if err != nil {
		return Digest{}, err
	}

	if len(sum) != h.Size() {
		return Digest{}, fmt.Errorf("%w: %s expects %d bytes, got %d", ErrInvalidLength, name, h.Size(), len(sum))
	}

	return Digest{
		Algorithm: name,
		Sum:       sum,
	}, nil
}

// Hex renders the digest as uppercase hex, two characters per byte.
func (d Digest) Hex() string {
	return strings.ToUpper(hex.EncodeToString(d.Sum))
}

// LowerHex renders the digest as lowercase hex.
func (d Digest) LowerHex() string {
	return hex.EncodeToString(d.Sum)
}

// String implements fmt.Stringer.
func (d Digest) String() string {
	return d.Algorithm + ":" + d.Hex()
}

// Equal reports whether both digests use the same algorithm and sum.
func (d Digest) Equal(other Digest) bool {
	return d.Algorithm == other.Algorithm && bytes.Equal(d.Sum, other.Sum)
}

// CryptoHash returns the crypto.Hash for SHA algorithms, used by callers
// that verify checksums through crypto.Hash based APIs.
func (d Digest) CryptoHash() (crypto.Hash, error) {
	switch d.Algorithm {
	case Primary:
		return crypto.SHA256, nil
	case Legacy:
		return crypto.SHA1, nil
	case SHA512:
		return crypto.SHA512, nil
	default:
		return 0, fmt.Errorf("%w: %s has no crypto.Hash", ErrUnsupportedAlgorithm, d.Algorithm)
	}
}

// stdlibHash adapts a crypto.Hash to the registry, checking that the
// implementation is linked in.
func stdlibHash(h crypto.Hash) func() (hash.Hash, error) {
	return func() (hash.Hash, error) {
		if !h.Available() {
			return nil, fmt.Errorf("%w: %s is not linked into the binary", ErrUnsupportedAlgorithm, h)
		}

		return h.New(), nil
	}
}
