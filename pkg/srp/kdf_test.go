package srp

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKeyVectors(t *testing.T) {
	for _, tt := range []struct {
		name     string
		saltHex  string
		password string
		params   KDFParams
		want     string
	}{
		{
			"rfc6070 sha1",
			"73616c74", "password",
			KDFParams{Iterations: 1, KeyLength: 20, Hash: "SHA-1"},
			"0c60c80f961f0e71f3a9b524af6012062fe037a6",
		},
		{
			"sha256",
			"73616c74", "password",
			KDFParams{Iterations: 1, KeyLength: 32, Hash: "SHA-256"},
			"120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b",
		},
		{
			"sha3-512 lower-case name",
			"0102", "pw",
			KDFParams{Iterations: 10, KeyLength: 32, Hash: "sha3-512"},
			"51a41454bfb49c945fb7227fe697efc2a83c384d5053337f1ee0ccdf57c66247",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveKey(tt.saltHex, tt.password, tt.params)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveKeyDefaults(t *testing.T) {
	if testing.Short() {
		t.Skip("600000 PBKDF2 iterations")
	}
	assert := assert.New(t)

	const want = "b68928404617e2038b4f1bb6fdf516437696c7cc62ae7cfa6dc9c1e8e37362ce" +
		"1c0c5a30cda58b1f3d45f576bd3aa0a6cbda4eecb4dc6172a990324a2839a614"

	salt := strings.Repeat("00", 16)
	first, err := DeriveKey(salt, "Test1234", DefaultKDFParams())
	assert.NoError(err)
	assert.Equal(want, first)
	assert.Len(first, 2*DefaultKeyLength)

	second, err := DeriveKey(salt, "Test1234", DefaultKDFParams())
	assert.NoError(err)
	assert.Equal(first, second)
}

func TestDeriveKeyErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := DeriveKey("zz", "pw", DefaultKDFParams())
	assert.True(errors.Is(err, ErrInvalidHex))

	_, err = DeriveKey("00", "pw", KDFParams{Iterations: 1, KeyLength: 16, Hash: "MD5"})
	assert.True(errors.Is(err, ErrUnsupportedHash))

	_, err = DeriveKey("00", "pw", KDFParams{Iterations: 0, KeyLength: 16, Hash: "SHA-256"})
	assert.True(errors.Is(err, ErrInvalidKDFParams))

	_, err = DeriveKey("00", "pw", KDFParams{Iterations: 1, KeyLength: 0, Hash: "SHA-256"})
	assert.True(errors.Is(err, ErrInvalidKDFParams))
}
