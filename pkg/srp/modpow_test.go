package srp

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randInt(t *testing.T, bits int) *big.Int {
	max := new(big.Int).Lsh(one, uint(bits))
	v, err := rand.Int(rand.Reader, max)
	require.NoError(t, err)
	return v
}

func TestModPowUnitModulus(t *testing.T) {
	assert := assert.New(t)
	for i := 0; i < 20; i++ {
		b, e := randInt(t, 512), randInt(t, 512)
		assert.Equal(0, ModPow(b, e, one).Sign())
	}
	assert.Equal(0, ModPow(big.NewInt(0), big.NewInt(0), big.NewInt(1)).Sign())
}

func TestModPowMatchesExp(t *testing.T) {
	assert := assert.New(t)

	for _, bits := range []int{8, 64, 256, 1024, 2048, 3072, 4096} {
		for i := 0; i < 4; i++ {
			b, e := randInt(t, bits), randInt(t, bits)
			m := randInt(t, bits)
			if m.Cmp(one) <= 0 {
				m.SetInt64(7)
			}
			want := new(big.Int).Exp(b, e, m)
			assert.Equal(0, want.Cmp(ModPow(b, e, m)), "bits=%d", bits)
		}
	}
}

func TestModPowZeroExponent(t *testing.T) {
	assert := assert.New(t)

	for _, m := range []int64{2, 3, 97, 1 << 40} {
		got := ModPow(big.NewInt(12345), big.NewInt(0), big.NewInt(m))
		assert.Equal(int64(1), got.Int64())
	}
}

func TestModPowDoesNotMutate(t *testing.T) {
	assert := assert.New(t)

	b, e, m := big.NewInt(1000), big.NewInt(77), big.NewInt(997)
	ModPow(b, e, m)
	assert.Equal(int64(1000), b.Int64())
	assert.Equal(int64(77), e.Int64())
	assert.Equal(int64(997), m.Int64())
}

func TestModPowGroup(t *testing.T) {
	g := RFC5054Group3072
	x, _ := new(big.Int).SetString("deadbeef", 16)
	want := "aa7723d8a49f39b456c50d92193a5889257daa134b2d31be7ca3d6e5635bca0e"
	got := ModPow(g.G, x, g.N).Text(16)
	assert.Equal(t, want, got[:len(want)])
}

func BenchmarkModPow3072(b *testing.B) {
	g := RFC5054Group3072
	x := new(big.Int).Lsh(one, 511)
	x.Sub(x, big.NewInt(12345))
	for i := 0; i < b.N; i++ {
		ModPow(g.G, x, g.N)
	}
}
