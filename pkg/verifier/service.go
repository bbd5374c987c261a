// Package verifier produces SRP-6a registration records: a fresh salt and
// the verifier v = g^x mod N, where x is derived from the password.
package verifier

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"

	"go.uber.org/zap"

	"github.com/korthochain/srpverifier/pkg/journal"
	"github.com/korthochain/srpverifier/pkg/limiter"
	"github.com/korthochain/srpverifier/pkg/logger"
	"github.com/korthochain/srpverifier/pkg/srp"
)

const (
	DefaultSaltLength = 16

	maxSaltDraws = 3
)

var (
	ErrRateLimited = errors.New("verifier: too many registration attempts")
	ErrSaltReuse   = errors.New("verifier: could not draw an unused salt")
)

// Record is what the registration flow stores against a user.
type Record struct {
	Salt     string `json:"salt"`
	Verifier string `json:"verifier"`
}

// Computer runs base^exponent mod modulus; *workerpool.Pool implements it.
type Computer interface {
	Compute(ctx context.Context, base, exponent, modulus *big.Int) (*big.Int, error)
}

type Options struct {
	Group      *srp.Group
	KDF        srp.KDFParams
	SaltLength int
	// Rand defaults to crypto/rand.Reader.
	Rand    io.Reader
	Limiter *limiter.IdentityLimiter
	Journal journal.Journal
}

type Service struct {
	pool    Computer
	group   *srp.Group
	kdf     srp.KDFParams
	saltLen int
	rand    io.Reader
	limiter *limiter.IdentityLimiter
	journal journal.Journal
}

func New(pool Computer, opts Options) (*Service, error) {
	if pool == nil {
		return nil, errors.New("verifier: nil pool")
	}
	if opts.Group == nil {
		opts.Group = srp.RFC5054Group3072
	}
	if opts.KDF == (srp.KDFParams{}) {
		opts.KDF = srp.DefaultKDFParams()
	}
	if err := opts.KDF.Validate(); err != nil {
		return nil, err
	}
	if opts.SaltLength <= 0 {
		opts.SaltLength = DefaultSaltLength
	}
	if opts.Rand == nil {
		opts.Rand = rand.Reader
	}

	return &Service{
		pool:    pool,
		group:   opts.Group,
		kdf:     opts.KDF,
		saltLen: opts.SaltLength,
		rand:    opts.Rand,
		limiter: opts.Limiter,
		journal: opts.Journal,
	}, nil
}

// GenerateSalt draws n random bytes and hex-encodes them. n <= 0 uses the
// configured salt length.
func (s *Service) GenerateSalt(n int) (string, error) {
	if n <= 0 {
		n = s.saltLen
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.rand, buf); err != nil {
		return "", fmt.Errorf("verifier: read salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ComputeVerifier returns g^x mod N in hex for the service group.
func (s *Service) ComputeVerifier(ctx context.Context, xHex string) (string, error) {
	return s.compute(ctx, xHex, s.group.N, s.group.G)
}

// ComputeVerifierWith is ComputeVerifier over an explicit modulus and generator.
func (s *Service) ComputeVerifierWith(ctx context.Context, xHex, nHex string, g *big.Int) (string, error) {
	n, err := srp.ParseHex(nHex)
	if err != nil {
		return "", err
	}
	return s.compute(ctx, xHex, n, g)
}

func (s *Service) compute(ctx context.Context, xHex string, n, g *big.Int) (string, error) {
	x, err := srp.ParseHex(xHex)
	if err != nil {
		return "", err
	}

	logger.Debug("computing verifier",
		zap.String("x", logger.Prefix(xHex, 30)),
		zap.Int("modulus_bits", n.BitLen()),
	)

	v, err := s.pool.Compute(ctx, g, x, n)
	if err != nil {
		return "", err
	}
	return v.Text(16), nil
}

// VerifierAndSalt is the registration entry point: fresh salt, x from the
// password, then the verifier.
func (s *Service) VerifierAndSalt(ctx context.Context, password string) (*Record, error) {
	salt, err := s.GenerateSalt(0)
	if err != nil {
		return nil, err
	}
	return s.derive(ctx, salt, password)
}

// VerifierAndSaltFor is VerifierAndSalt for a known identity: attempts are
// rate limited and the salt is checked against the journal.
func (s *Service) VerifierAndSaltFor(ctx context.Context, identity, password string) (*Record, error) {
	if !s.limiter.Allow(identity) {
		logger.Warn("registration attempt rate limited", zap.String("identity", identity))
		return nil, ErrRateLimited
	}

	salt, err := s.claimSalt(identity)
	if err != nil {
		return nil, err
	}
	return s.derive(ctx, salt, password)
}

func (s *Service) claimSalt(identity string) (string, error) {
	for i := 0; i < maxSaltDraws; i++ {
		salt, err := s.GenerateSalt(0)
		if err != nil {
			return "", err
		}
		if s.journal == nil {
			return salt, nil
		}

		ok, err := s.journal.Claim(identity, salt)
		if err != nil {
			return "", fmt.Errorf("verifier: salt journal: %w", err)
		}
		if ok {
			return salt, nil
		}
		logger.Warn("salt already issued, drawing again",
			zap.String("identity", identity),
			zap.String("salt", logger.Prefix(salt, 8)),
		)
	}
	return "", ErrSaltReuse
}

func (s *Service) derive(ctx context.Context, salt, password string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	xHex, err := srp.DeriveKey(salt, password, s.kdf)
	if err != nil {
		return nil, fmt.Errorf("verifier: derive x: %w", err)
	}

	v, err := s.ComputeVerifier(ctx, xHex)
	if err != nil {
		return nil, fmt.Errorf("verifier: compute verifier: %w", err)
	}

	logger.Info("registration verifier computed",
		zap.String("salt", logger.Prefix(salt, 8)),
		zap.Int("verifier_len", len(v)),
	)
	return &Record{Salt: salt, Verifier: v}, nil
}
