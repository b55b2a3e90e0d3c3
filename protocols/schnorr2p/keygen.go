package schnorr2p

import (
	"context"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/logging"
	"github.com/mpc-kms/secp256k1/protocols/ecdh"
)

const keyGenLabel = "kms-secp256k1/schnorr2p/keygen/v1"

// KeyGenResult is the joint public output of key generation: both parties
// compute this identically.
type KeyGenResult struct {
	Q  *curve.Point
	I1 *curve.Point
	I2 *curve.Point
}

// Party1Private is P1's key share, held in the clear.
type Party1Private struct {
	X1 *curve.Scalar
}

// Party2Private is P2's key share, held in the clear.
type Party2Private struct {
	X2 *curve.Scalar
}

// KeyGenParty1 drives the initiator side of key generation.
type KeyGenParty1 struct {
	logger logging.Logger
	ecdh   *ecdh.Initiator
}

// NewKeyGenParty1 starts P1's side of key generation. loggers takes an
// optional Logger; when omitted KeyGenParty1 logs nothing.
func NewKeyGenParty1(loggers ...logging.Logger) (*KeyGenParty1, error) {
	log := logging.First(loggers...)
	i, err := ecdh.NewInitiator([]byte(keyGenLabel), log)
	if err != nil {
		return nil, err
	}
	return &KeyGenParty1{logger: log, ecdh: i}, nil
}

// FirstMessage is P1's round-1 commitment to I1 and its discrete-log proof.
func (p *KeyGenParty1) FirstMessage() (*ecdh.FirstMessage, error) {
	return p.ecdh.FirstMessage()
}

// SecondMessage verifies P2's broadcast point and proof, then decommits I1.
func (p *KeyGenParty1) SecondMessage(peer *ecdh.SecondMessage) (*ecdh.Decommitment, error) {
	if err := p.ecdh.VerifyPeer(peer, []byte(keyGenLabel)); err != nil {
		p.logger.Warn(context.Background(), "schnorr2p: p1 keygen aborted", "reason", err)
		return nil, err
	}
	return p.ecdh.SecondMessage()
}

// Result computes the aggregate key from P2's verified public point.
func (p *KeyGenParty1) Result(peerPublic *curve.Point) *KeyGenResult {
	q := p.ecdh.Combine(peerPublic, ecdh.AddCombine)
	p.logger.Debug(context.Background(), "schnorr2p: p1 keygen done")
	return &KeyGenResult{Q: q, I1: p.ecdh.Public(), I2: peerPublic}
}

// Private returns P1's key share.
func (p *KeyGenParty1) Private() *Party1Private {
	return &Party1Private{X1: p.ecdh.Secret()}
}

// KeyGenParty2 drives the responder side of key generation.
type KeyGenParty2 struct {
	logger logging.Logger
	ecdh   *ecdh.Responder
}

// NewKeyGenParty2 starts P2's side of key generation. loggers takes an
// optional Logger; when omitted KeyGenParty2 logs nothing.
func NewKeyGenParty2(loggers ...logging.Logger) (*KeyGenParty2, error) {
	log := logging.First(loggers...)
	r, err := ecdh.NewResponder([]byte(keyGenLabel), log)
	if err != nil {
		return nil, err
	}
	return &KeyGenParty2{logger: log, ecdh: r}, nil
}

// FirstMessage broadcasts P2's point I2 and its discrete-log proof.
func (p *KeyGenParty2) FirstMessage() *ecdh.SecondMessage {
	return p.ecdh.Message()
}

// Verify checks P1's commitments and decommitment against I1.
func (p *KeyGenParty2) Verify(party1First *ecdh.FirstMessage, party1Decom *ecdh.Decommitment) error {
	if err := p.ecdh.Verify(party1First, party1Decom, []byte(keyGenLabel)); err != nil {
		p.logger.Warn(context.Background(), "schnorr2p: p2 keygen aborted", "reason", err)
		return err
	}
	return nil
}

// Result computes the aggregate key from P1's verified public point. Called
// only after Verify has succeeded.
func (p *KeyGenParty2) Result(peerPublic *curve.Point) *KeyGenResult {
	q := p.ecdh.Combine(peerPublic, ecdh.AddCombine)
	p.logger.Debug(context.Background(), "schnorr2p: p2 keygen done")
	return &KeyGenResult{Q: q, I1: peerPublic, I2: p.ecdh.Public()}
}

// Private returns P2's key share.
func (p *KeyGenParty2) Private() *Party2Private {
	return &Party2Private{X2: p.ecdh.Secret()}
}
