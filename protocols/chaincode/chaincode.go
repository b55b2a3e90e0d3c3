package chaincode

import (
	"math/big"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/protocols/ecdh"
)

const sessionLabel = "kms-secp256k1/chaincode/v1"

// ChainCode is the shared 256-bit value both parties must end up holding
// bit-identically (spec §3).
type ChainCode struct {
	Value *big.Int
}

// Bytes returns the canonical 33-byte compressed-point encoding the chain
// code was derived from.
func (c *ChainCode) Bytes() []byte {
	buf := c.Value.Bytes()
	out := make([]byte, 33)
	copy(out[33-len(buf):], buf)
	return out
}

func fromPoint(p *curve.Point) *ChainCode {
	return &ChainCode{Value: new(big.Int).SetBytes(p.Compressed())}
}

// Party1 drives the initiator side of the underlying ecdh exchange.
type Party1 struct {
	ecdh *ecdh.Initiator
}

// NewParty1 starts P1's side of chain-code agreement.
func NewParty1() (*Party1, error) {
	i, err := ecdh.NewInitiator([]byte(sessionLabel))
	if err != nil {
		return nil, err
	}
	return &Party1{ecdh: i}, nil
}

// FirstMessage is P1's round-1 commitment message.
func (p *Party1) FirstMessage() (*ecdh.FirstMessage, error) {
	return p.ecdh.FirstMessage()
}

// SecondMessage is P1's round-3 decommitment.
func (p *Party1) SecondMessage() (*ecdh.Decommitment, error) {
	return p.ecdh.SecondMessage()
}

// ComputeChainCode derives P1's chain code from P2's public point as
// received; Party1 does not check P2's proof of knowledge.
func (p *Party1) ComputeChainCode(party2Public *curve.Point) *ChainCode {
	return fromPoint(p.ecdh.Combine(party2Public, ecdh.ScalarMultCombine))
}

// Party2 drives the responder side of the underlying ecdh exchange.
type Party2 struct {
	ecdh *ecdh.Responder
}

// NewParty2 starts P2's side of chain-code agreement.
func NewParty2() (*Party2, error) {
	r, err := ecdh.NewResponder([]byte(sessionLabel))
	if err != nil {
		return nil, err
	}
	return &Party2{ecdh: r}, nil
}

// FirstMessage is P2's round-2 message.
func (p *Party2) FirstMessage() *ecdh.SecondMessage {
	return p.ecdh.Message()
}

// Verify checks P1's commitments and decommitment.
func (p *Party2) Verify(party1First *ecdh.FirstMessage, party1Decom *ecdh.Decommitment) error {
	return p.ecdh.Verify(party1First, party1Decom, []byte(sessionLabel))
}

// ComputeChainCode derives P2's chain code from P1's verified public point.
// Called only after Verify has succeeded.
func (p *Party2) ComputeChainCode(party1Public *curve.Point) *ChainCode {
	return fromPoint(p.ecdh.Combine(party1Public, ecdh.ScalarMultCombine))
}
