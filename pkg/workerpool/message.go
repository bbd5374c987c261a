package workerpool

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// Request is what a unit receives. Integers travel as base-10 text.
type Request struct {
	Base     string `cbor:"base"`
	Exponent string `cbor:"exponent"`
	Modulus  string `cbor:"modulus"`
}

// Response is what a unit sends back for each Request.
type Response struct {
	Success bool   `cbor:"success"`
	Result  string `cbor:"result,omitempty"`
	Error   string `cbor:"error,omitempty"`
}

func newRequest(base, exponent, modulus *big.Int) Request {
	return Request{
		Base:     base.Text(10),
		Exponent: exponent.Text(10),
		Modulus:  modulus.Text(10),
	}
}

func (r Request) operands() (base, exponent, modulus *big.Int, err error) {
	if base, err = parseDecimal("base", r.Base); err != nil {
		return
	}
	if exponent, err = parseDecimal("exponent", r.Exponent); err != nil {
		return
	}
	modulus, err = parseDecimal("modulus", r.Modulus)
	return
}

func parseDecimal(name, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func encodeMessage(msg interface{}) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	err := cbor.NewEncoder(buf).Encode(msg)
	return buf.Bytes(), err
}

func decodeMessage(buf []byte, out interface{}) error {
	return cbor.NewDecoder(bytes.NewReader(buf)).Decode(out)
}
