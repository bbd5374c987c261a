package workerpool

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/korthochain/srpverifier/pkg/srp"
)

// Runtime is the concurrency substrate: it starts isolated compute units
// that only exchange encoded messages with the pool.
type Runtime interface {
	Start(n int) ([]Unit, error)
}

// Unit is one compute unit. Post must not block; the pool never has more
// than one request outstanding per unit. Responses is closed once the unit
// has stopped.
type Unit interface {
	Post(msg []byte) error
	Responses() <-chan []byte
	Terminate()
}

// GoroutineRuntime runs every unit on its own goroutine.
type GoroutineRuntime struct{}

func (GoroutineRuntime) Start(n int) ([]Unit, error) {
	if n <= 0 {
		return nil, fmt.Errorf("workerpool: cannot start %d units", n)
	}
	units := make([]Unit, n)
	for i := range units {
		u := &goroutineUnit{
			inbox:  make(chan []byte, 1),
			outbox: make(chan []byte, 1),
			quit:   make(chan struct{}),
		}
		go u.run()
		units[i] = u
	}
	return units, nil
}

type goroutineUnit struct {
	inbox  chan []byte
	outbox chan []byte
	quit   chan struct{}
	once   sync.Once
}

func (u *goroutineUnit) Post(msg []byte) error {
	buf := append([]byte(nil), msg...)
	select {
	case <-u.quit:
		return ErrUnitTerminated
	default:
	}
	select {
	case u.inbox <- buf:
		return nil
	default:
		return ErrUnitBusy
	}
}

func (u *goroutineUnit) Responses() <-chan []byte {
	return u.outbox
}

func (u *goroutineUnit) Terminate() {
	u.once.Do(func() { close(u.quit) })
}

func (u *goroutineUnit) run() {
	defer close(u.outbox)
	for {
		select {
		case <-u.quit:
			return
		case msg := <-u.inbox:
			resp := HandleRequest(msg)
			select {
			case u.outbox <- resp:
			case <-u.quit:
				return
			}
		}
	}
}

// HandleRequest is the body of a compute unit: decode, exponentiate, encode.
// Failures, including panics, come back as an unsuccessful Response.
func HandleRequest(msg []byte) []byte {
	resp := compute(msg)
	out, err := encodeMessage(resp)
	if err != nil {
		out, _ = encodeMessage(Response{Error: err.Error()})
	}
	return out
}

func compute(msg []byte) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{Error: fmt.Sprint(r)}
		}
	}()

	var req Request
	if err := decodeMessage(msg, &req); err != nil {
		return Response{Error: err.Error()}
	}
	base, exponent, modulus, err := req.operands()
	if err != nil {
		return Response{Error: err.Error()}
	}
	if err := checkOperands(base, exponent, modulus); err != nil {
		return Response{Error: err.Error()}
	}
	return Response{Success: true, Result: srp.ModPow(base, exponent, modulus).Text(10)}
}

func decodeResponse(msg []byte) (Response, error) {
	var resp Response
	if err := decodeMessage(msg, &resp); err != nil {
		return resp, fmt.Errorf("%w: %v", errMalformedResult, err)
	}
	if resp.Success {
		if _, err := parseDecimal("result", resp.Result); err != nil {
			return resp, fmt.Errorf("%w: %v", errMalformedResult, err)
		}
	} else if resp.Error == "" {
		resp.Error = "unknown worker error"
	}
	return resp, nil
}

func checkOperands(base, exponent, modulus *big.Int) error {
	switch {
	case base == nil, exponent == nil, modulus == nil:
		return fmt.Errorf("%w: nil", ErrInvalidOperand)
	case base.Sign() < 0, exponent.Sign() < 0:
		return fmt.Errorf("%w: negative", ErrInvalidOperand)
	case modulus.Sign() <= 0:
		return fmt.Errorf("%w: modulus must be positive", ErrInvalidOperand)
	}
	return nil
}
