package srp

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/sha3"
)

const (
	DefaultIterations = 600000
	DefaultKeyLength  = 64
	DefaultHash       = "SHA-512"

	minIterations = 1
	maxKeyLength  = 1024
)

var (
	ErrUnsupportedHash  = errors.New("srp: unsupported hash")
	ErrInvalidKDFParams = errors.New("srp: invalid kdf parameters")
)

var hashes = map[string]func() hash.Hash{
	"SHA-1":    sha1.New,
	"SHA-256":  sha256.New,
	"SHA-384":  sha512.New384,
	"SHA-512":  sha512.New,
	"SHA3-256": sha3.New256,
	"SHA3-512": sha3.New512,
}

// KDFParams configures the PBKDF2 derivation of x.
type KDFParams struct {
	Iterations int    `yaml:"iterations" mapstructure:"iterations"`
	KeyLength  int    `yaml:"keylength" mapstructure:"keylength"`
	Hash       string `yaml:"hash" mapstructure:"hash"`
}

func DefaultKDFParams() KDFParams {
	return KDFParams{
		Iterations: DefaultIterations,
		KeyLength:  DefaultKeyLength,
		Hash:       DefaultHash,
	}
}

// Validate checks bounds and resolves the hash name.
func (p KDFParams) Validate() error {
	if p.Iterations < minIterations {
		return fmt.Errorf("%w: iterations %d", ErrInvalidKDFParams, p.Iterations)
	}
	if p.KeyLength <= 0 || p.KeyLength > maxKeyLength {
		return fmt.Errorf("%w: key length %d", ErrInvalidKDFParams, p.KeyLength)
	}
	_, err := hashFunc(p.Hash)
	return err
}

func hashFunc(name string) (func() hash.Hash, error) {
	h, ok := hashes[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedHash, name)
	}
	return h, nil
}

// DeriveKey runs PBKDF2 over the raw password bytes with the hex-decoded salt
// and returns the derived key as lowercase hex of length 2*KeyLength.
func DeriveKey(saltHex, password string, p KDFParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	h, _ := hashFunc(p.Hash)

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("%w: salt: %v", ErrInvalidHex, err)
	}

	key := pbkdf2.Key([]byte(password), salt, p.Iterations, p.KeyLength, h)
	return hex.EncodeToString(key), nil
}
