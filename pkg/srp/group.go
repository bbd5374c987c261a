// Package srp holds the SRP-6a building blocks used for registration: the
// RFC 5054 group, right-to-left modular exponentiation and the PBKDF2
// derivation of the private exponent x.
package srp

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrGroupIntegrity reports malformed group parameters.
	ErrGroupIntegrity = errors.New("srp: group parameter integrity")
	// ErrInvalidHex reports a value that is not a hex-encoded unsigned integer.
	ErrInvalidHex = errors.New("srp: invalid hex integer")
)

// rfc5054N3072 is the 3072-bit safe prime of RFC 5054 appendix A.
const rfc5054N3072 = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74" +
	"020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F1437" +
	"4FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF05" +
	"98DA48361C55D39A69163FA8FD24CF5F83655D23DCA3AD961C62F356208552BB" +
	"9ED529077096966D670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B" +
	"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9DE2BCBF695581718" +
	"3995497CEA956AE515D2261898FA051015728E5A8AAAC42DAD33170D04507A33" +
	"A85521ABDF1CBA64ECFB850458DBEF0A8AEA71575D060C7DB3970F85A6E1E4C7" +
	"ABF5AE8CDB0933D71E8C94E04A25619DCEE3D2261AD2EE6BF12FFA06D98A0864" +
	"D87602733EC86A64521F2B18177B200CBBE117577A615D6C770988C0BAD946E2" +
	"08E24FA074E5AB3143DB5BFCE0FD108E4B82D120A93AD2CAFFFFFFFFFFFFFFFF"

// RFC5054N3072Hex returns the hex text of the 3072-bit modulus.
func RFC5054N3072Hex() string {
	return rfc5054N3072
}

// RFC5054Group3072 is the default registration group. A malformed constant
// stops the process at init.
var RFC5054Group3072 = mustGroup(rfc5054N3072, 2, 3072)

// Group is a safe-prime modulus N and generator G. Values are never mutated
// after construction and may be shared freely.
type Group struct {
	N *big.Int
	G *big.Int
}

// NewGroup parses nHex and validates it against the expected bit size. The hex
// text must be exactly bits/4 digits with the top bit set.
func NewGroup(nHex string, g int64, bits int) (*Group, error) {
	if bits <= 0 || bits%8 != 0 {
		return nil, fmt.Errorf("%w: bit size %d", ErrGroupIntegrity, bits)
	}
	if len(nHex) != bits/4 {
		return nil, fmt.Errorf("%w: N has %d hex digits, want %d", ErrGroupIntegrity, len(nHex), bits/4)
	}

	n, err := ParseHex(nHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGroupIntegrity, err)
	}
	if n.BitLen() != bits {
		return nil, fmt.Errorf("%w: N is %d bits, want %d", ErrGroupIntegrity, n.BitLen(), bits)
	}
	if n.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: N is even", ErrGroupIntegrity)
	}

	gen := big.NewInt(g)
	nMinus1 := new(big.Int).Sub(n, one)
	if gen.Cmp(one) <= 0 || gen.Cmp(nMinus1) >= 0 {
		return nil, fmt.Errorf("%w: generator %d out of range", ErrGroupIntegrity, g)
	}

	return &Group{N: n, G: gen}, nil
}

func mustGroup(nHex string, g int64, bits int) *Group {
	grp, err := NewGroup(nHex, g, bits)
	if err != nil {
		panic(err)
	}
	return grp
}

// Bits is the size of N in bits.
func (g *Group) Bits() int {
	return g.N.BitLen()
}

// NHex returns N as upper-case hex, the form used on the wire by clients.
func (g *Group) NHex() string {
	return strings.ToUpper(g.N.Text(16))
}

func (g *Group) Equal(o *Group) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.N.Cmp(o.N) == 0 && g.G.Cmp(o.G) == 0
}

// ParseHex parses an unsigned hex integer; an optional 0x prefix is accepted.
func ParseHex(s string) (*big.Int, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return v, nil
}
