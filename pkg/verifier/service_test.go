package verifier

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korthochain/srpverifier/pkg/journal"
	"github.com/korthochain/srpverifier/pkg/limiter"
	"github.com/korthochain/srpverifier/pkg/srp"
	"github.com/korthochain/srpverifier/pkg/workerpool"
)

// x for salt=00*16, password=Test1234 with the default KDF parameters.
const vectorX = "b68928404617e2038b4f1bb6fdf516437696c7cc62ae7cfa6dc9c1e8e37362ce" +
	"1c0c5a30cda58b1f3d45f576bd3aa0a6cbda4eecb4dc6172a990324a2839a614"

const vectorVerifier = "9016aaf910a32b4048eca805edceda14f99dcd518b606896a016618b74d658b5" +
	"ac5dfde31f368235c034cbdf475bdd263c8f7022295f62a592d0c6f1962a864a" +
	"5531e695b1d4219c25c8ca86e34a7c75c91945e870671b89bc8cc541907d5157" +
	"4e1bde584bc7aeda092a289a68b9d644f74db74c9c20389de3a2606473d84a01" +
	"efdd9a3e814a2eb2fc69c69c6bffc066e8f9582fa3af5711808484718faca79f" +
	"e2547dddce542e8a91032db7c16fb8afd6542f211df0368dff67b14e132c7f0f" +
	"3defe5f94f3de773e1244441354377c44a60df168d0baeb7496e80771cbae20e" +
	"1abf251a684f08101dff6a1639b4d5ccfca66c1d9c0080e61dd79bd17734c059" +
	"38247bbd599ea9b8a505f2f2a6eb3914a7cf96e99e6b9731d306ffd39e31b307" +
	"9132d5250aa256349b6621063be851c2009abe0321bb4f2a97ece7708407b093" +
	"dc46f7edac86544f86bbb94602d20b8be6886057ed6b0faf236afa005a1ce95e" +
	"d47ed5e895722518203e3febbbbb73009b16bbc1424ec45d3b52845a2b0fac4f"

var fastKDF = srp.KDFParams{Iterations: 1000, KeyLength: 64, Hash: "SHA-512"}

func newService(t *testing.T, pool *workerpool.Pool, opts Options) *Service {
	t.Helper()
	if opts.KDF == (srp.KDFParams{}) {
		opts.KDF = fastKDF
	}
	s, err := New(pool, opts)
	require.NoError(t, err)
	return s
}

func TestComputeVerifierVector(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	for _, cfg := range []workerpool.Config{{Size: 2}, {Inline: true}} {
		pool := workerpool.New(cfg, workerpool.GoroutineRuntime{})
		s := newService(t, pool, Options{})

		v, err := s.ComputeVerifier(ctx, vectorX)
		assert.NoError(err)
		assert.Equal(vectorVerifier, v, "mode %s", pool.Mode())

		// deterministic for a fixed x
		again, err := s.ComputeVerifier(ctx, vectorX)
		assert.NoError(err)
		assert.Equal(v, again)

		explicit, err := s.ComputeVerifierWith(ctx, vectorX, srp.RFC5054N3072Hex(), big.NewInt(2))
		assert.NoError(err)
		assert.Equal(v, explicit)

		pool.Destroy()
	}
}

func TestComputeVerifierRejectsBadHex(t *testing.T) {
	pool := workerpool.New(workerpool.Config{Inline: true}, nil)
	defer pool.Destroy()
	s := newService(t, pool, Options{})

	_, err := s.ComputeVerifier(context.Background(), "not-hex")
	assert.True(t, errors.Is(err, srp.ErrInvalidHex))

	_, err = s.ComputeVerifierWith(context.Background(), "01", "xyz", big.NewInt(2))
	assert.True(t, errors.Is(err, srp.ErrInvalidHex))
}

func TestGenerateSalt(t *testing.T) {
	assert := assert.New(t)

	pool := workerpool.New(workerpool.Config{Inline: true}, nil)
	defer pool.Destroy()
	s := newService(t, pool, Options{})

	salt, err := s.GenerateSalt(0)
	assert.NoError(err)
	assert.Len(salt, 2*DefaultSaltLength)
	assert.Equal(strings.ToLower(salt), salt)

	salt, err = s.GenerateSalt(32)
	assert.NoError(err)
	assert.Len(salt, 64)

	short := newService(t, pool, Options{Rand: bytes.NewReader([]byte{1, 2})})
	_, err = short.GenerateSalt(0)
	assert.Error(err)
}

func TestVerifierAndSalt(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	pool := workerpool.New(workerpool.DefaultConfig(), workerpool.GoroutineRuntime{})
	defer pool.Destroy()
	s := newService(t, pool, Options{})

	first, err := s.VerifierAndSalt(ctx, "Test1234")
	require.NoError(t, err)
	second, err := s.VerifierAndSalt(ctx, "Test1234")
	require.NoError(t, err)

	assert.NotEqual(first.Salt, second.Salt)
	assert.NotEqual(first.Verifier, second.Verifier)

	for _, rec := range []*Record{first, second} {
		x, err := srp.DeriveKey(rec.Salt, "Test1234", fastKDF)
		require.NoError(t, err)
		xi, _ := new(big.Int).SetString(x, 16)
		grp := srp.RFC5054Group3072
		assert.Equal(new(big.Int).Exp(grp.G, xi, grp.N).Text(16), rec.Verifier)
	}
}

func TestVerifierAndSaltDefaultVector(t *testing.T) {
	if testing.Short() {
		t.Skip("600000 PBKDF2 iterations")
	}

	pool := workerpool.New(workerpool.DefaultConfig(), workerpool.GoroutineRuntime{})
	defer pool.Destroy()
	s, err := New(pool, Options{Rand: bytes.NewReader(make([]byte, DefaultSaltLength))})
	require.NoError(t, err)

	rec, err := s.VerifierAndSalt(context.Background(), "Test1234")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("00", DefaultSaltLength), rec.Salt)
	assert.Equal(t, vectorVerifier, rec.Verifier)
}

func TestVerifierAndSaltConcurrent(t *testing.T) {
	pool := workerpool.New(workerpool.Config{Size: 2}, workerpool.GoroutineRuntime{})
	defer pool.Destroy()
	s := newService(t, pool, Options{})

	const n = 8
	var wg sync.WaitGroup
	salts := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := s.VerifierAndSalt(context.Background(), "correct horse")
			if assert.NoError(t, err) {
				salts <- rec.Salt
			}
		}()
	}
	wg.Wait()
	close(salts)

	seen := map[string]bool{}
	for salt := range salts {
		assert.False(t, seen[salt])
		seen[salt] = true
	}
	assert.Len(t, seen, n)
}

func TestVerifierAndSaltForRejectsSaltReuse(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	pool := workerpool.New(workerpool.Config{Inline: true}, nil)
	defer pool.Destroy()

	// a reader of zeros hands out the same salt every time
	zeros := bytes.NewReader(make([]byte, 1<<12))
	j := journal.NewMemory(16, 0)
	s := newService(t, pool, Options{Rand: zeros, Journal: j})

	rec, err := s.VerifierAndSaltFor(ctx, "alice", "pw")
	assert.NoError(err)
	assert.Equal(strings.Repeat("00", DefaultSaltLength), rec.Salt)

	_, err = s.VerifierAndSaltFor(ctx, "alice", "pw")
	assert.True(errors.Is(err, ErrSaltReuse))

	_, err = s.VerifierAndSaltFor(ctx, "bob", "pw")
	assert.NoError(err)
}

func TestVerifierAndSaltForRateLimited(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	pool := workerpool.New(workerpool.Config{Inline: true}, nil)
	defer pool.Destroy()
	s := newService(t, pool, Options{Limiter: limiter.New(limiter.Config{Rate: 0.001, Burst: 1})})

	_, err := s.VerifierAndSaltFor(ctx, "alice", "pw")
	assert.NoError(err)
	_, err = s.VerifierAndSaltFor(ctx, "alice", "pw")
	assert.True(errors.Is(err, ErrRateLimited))
}

func TestVerifierAndSaltPoolFailure(t *testing.T) {
	pool := workerpool.New(workerpool.Config{Size: 1}, workerpool.GoroutineRuntime{})
	s := newService(t, pool, Options{})
	pool.Destroy()

	_, err := s.VerifierAndSalt(context.Background(), "pw")
	assert.True(t, errors.Is(err, workerpool.ErrPoolDestroyed))
}

func TestVerifierAndSaltCancelled(t *testing.T) {
	pool := workerpool.New(workerpool.Config{Inline: true}, nil)
	defer pool.Destroy()
	s := newService(t, pool, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.VerifierAndSalt(ctx, "pw")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewValidatesOptions(t *testing.T) {
	assert := assert.New(t)

	_, err := New(nil, Options{})
	assert.Error(err)

	pool := workerpool.New(workerpool.Config{Inline: true}, nil)
	defer pool.Destroy()
	_, err = New(pool, Options{KDF: srp.KDFParams{Iterations: 1, KeyLength: 8, Hash: "MD5"}})
	assert.True(errors.Is(err, srp.ErrUnsupportedHash))
}
