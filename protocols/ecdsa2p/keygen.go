package ecdsa2p

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/logging"
	"github.com/mpc-kms/secp256k1/pkg/mkerr"
	"github.com/mpc-kms/secp256k1/pkg/paillier"
	"github.com/mpc-kms/secp256k1/pkg/zk"
	"github.com/mpc-kms/secp256k1/protocols/ecdh"
)

const keyGenLabel = "kms-secp256k1/ecdsa2p/keygen/v1"

var (
	// ErrInvalidCorrectKeyProof is returned when P1's Paillier modulus
	// fails the correct-key proof.
	ErrInvalidCorrectKeyProof = errors.New("ecdsa2p: invalid paillier correct-key proof")
	// ErrInvalidRangeProof is returned when P1's range proof over c_key
	// fails.
	ErrInvalidRangeProof = errors.New("ecdsa2p: invalid paillier range proof")
	// ErrInvalidPDL is returned when P1 fails to prove c_key encrypts the
	// discrete log of p1.
	ErrInvalidPDL = errors.New("ecdsa2p: invalid PDL proof")
	errOutOfOrder = errors.New("ecdsa2p: keygen message called out of order")
)

// rangeBound is q/3, the bound spec §4.3 requires x1's Paillier plaintext
// to fall within.
func rangeBound() *big.Int {
	return new(big.Int).Div(curve.Order(), big.NewInt(3))
}

// share1Below samples x1 uniformly from [1, bound) by rejection sampling,
// so that P1's Paillier-encrypted share satisfies the range proof's bound
// before key generation even starts.
func share1Below(bound *big.Int) (*curve.Scalar, error) {
	for {
		n, err := rand.Int(rand.Reader, bound)
		if err != nil {
			return nil, err
		}
		if n.Sign() == 0 {
			continue
		}
		return curve.NewScalarFromBigInt(n), nil
	}
}

// KeyGenResult is the public material both parties agree on at the end of
// S3, matching the Global invariant of spec §3.
type KeyGenResult struct {
	Q           *curve.Point
	P1          *curve.Point
	P2          *curve.Point
	PaillierPub *paillier.PublicKey
	CKey        *paillier.Ciphertext
}

// Party1Private is P1's secret key-generation output: its share and the
// Paillier key that decrypts c_key.
type Party1Private struct {
	X1          *curve.Scalar
	PaillierKey *paillier.PrivateKey
}

// Party2Private is P2's secret key-generation output: its share in the
// clear.
type Party2Private struct {
	X2 *curve.Scalar
}

// P1State tracks where a KeyGenP1 sits in the four-round protocol.
type P1State int

const (
	P1StateInit P1State = iota
	P1StateFirstSent
	P1StatePaillierSent
	P1StatePDLCommitted
	P1StateDone
	P1StateAborted
)

// KeyGenP1 drives P1's side of S3.
type KeyGenP1 struct {
	state  P1State
	logger logging.Logger

	ecdh *ecdh.Initiator

	paillierKey *paillier.PrivateKey
	cKey        *paillier.Ciphertext

	pdlCommitment *zk.PDLCommitment
	pdlState      *zk.PDLProverState

	p2Public *curve.Point
	result   *KeyGenResult
}

// NewKeyGenP1 samples P1's share x1 below q/3 (the range proof's bound)
// and starts the round-1 ecdh exchange. loggers takes an optional Logger;
// when omitted KeyGenP1 logs nothing.
func NewKeyGenP1(loggers ...logging.Logger) (*KeyGenP1, error) {
	x1, err := share1Below(rangeBound())
	if err != nil {
		return nil, err
	}
	log := logging.First(loggers...)
	i, err := ecdh.NewInitiatorWithSecret(x1, []byte(keyGenLabel), log)
	if err != nil {
		return nil, err
	}
	return &KeyGenP1{state: P1StateInit, logger: log, ecdh: i}, nil
}

// FirstMessage is P1's round-1 commitment.
func (p *KeyGenP1) FirstMessage() (*ecdh.FirstMessage, error) {
	if p.state != P1StateInit {
		return nil, errOutOfOrder
	}
	msg, err := p.ecdh.FirstMessage()
	if err != nil {
		return nil, err
	}
	p.state = P1StateFirstSent
	return msg, nil
}

// Message2 is P1's round-2 payload: the ecdh decommitment, the freshly
// generated Paillier public key and c_key = Enc(x1), and the correct-key
// and range proofs P2 needs before issuing its PDL challenge. Mirrors
// party1.rs's KeyGenParty1Message2.
type Message2 struct {
	EcdhSecond      *ecdh.Decommitment
	PaillierPub     *paillier.PublicKey
	CKey            *paillier.Ciphertext
	CorrectKeyProof *zk.ValidPaillierProof
	RangeProof      *zk.RangeProof
}

// SecondMessage verifies P2's round-2 ecdh reply, decommits P1's own
// public share, generates a Paillier keypair, encrypts x1, and proves
// both that the modulus is well-formed and that c_key's plaintext is
// below q/3.
func (p *KeyGenP1) SecondMessage(peer *ecdh.SecondMessage) (*Message2, error) {
	if p.state != P1StateFirstSent {
		return nil, errOutOfOrder
	}
	if err := p.ecdh.VerifyPeer(peer, []byte(keyGenLabel)); err != nil {
		p.state = P1StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 keygen aborted", "reason", err)
		return nil, mkerr.New("ecdsa2p.KeyGenP1.SecondMessage", mkerr.KeyGen, err)
	}
	p.p2Public = peer.Public

	decom, err := p.ecdh.SecondMessage()
	if err != nil {
		p.state = P1StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 keygen aborted", "reason", err)
		return nil, err
	}

	sk, err := paillier.Generate()
	if err != nil {
		p.state = P1StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 keygen aborted", "reason", err)
		return nil, err
	}
	x1 := p.ecdh.Secret()
	cKey, nonce, err := sk.PublicKey.Encrypt(x1.BigInt())
	if err != nil {
		p.state = P1StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 keygen aborted", "reason", err)
		return nil, err
	}

	rangeProof, err := zk.ProveRange(&sk.PublicKey, cKey, x1.BigInt(), nonce, rangeBound())
	if err != nil {
		p.state = P1StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 keygen aborted", "reason", err)
		return nil, err
	}

	p.paillierKey = sk
	p.cKey = cKey
	p.state = P1StatePaillierSent
	p.logger.Debug(context.Background(), "ecdsa2p: p1 keygen sent paillier material")

	return &Message2{
		EcdhSecond:      decom,
		PaillierPub:     &sk.PublicKey,
		CKey:            cKey,
		CorrectKeyProof: zk.ProveValidPaillier(sk),
		RangeProof:      rangeProof,
	}, nil
}

// ThirdMessage answers P2's PDL challenge, decrypting the challenge
// ciphertext with the Paillier private key and committing to the result.
func (p *KeyGenP1) ThirdMessage(cTag *paillier.Ciphertext) (*zk.PDLCommitment, error) {
	if p.state != P1StatePaillierSent {
		return nil, errOutOfOrder
	}
	com, state, err := zk.FirstMessagePDL(p.paillierKey, &zk.PDLChallenge{CTag: cTag})
	if err != nil {
		p.state = P1StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 keygen aborted", "reason", err)
		return nil, err
	}
	p.pdlCommitment = com
	p.pdlState = state
	p.state = P1StatePDLCommitted
	p.logger.Debug(context.Background(), "ecdsa2p: p1 keygen committed pdl response")
	return com, nil
}

// FourthMessage opens the PDL commitment once P2 has revealed its
// challenge's (a, b).
func (p *KeyGenP1) FourthMessage(reveal *zk.PDLReveal) (*zk.PDLOpening, error) {
	if p.state != P1StatePDLCommitted {
		return nil, errOutOfOrder
	}
	if reveal == nil {
		p.state = P1StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 keygen aborted", "reason", ErrInvalidPDL)
		return nil, mkerr.New("ecdsa2p.KeyGenP1.FourthMessage", mkerr.KeyGen, ErrInvalidPDL)
	}
	opening := zk.SecondMessagePDL(p.pdlCommitment, p.pdlState)
	q := p.ecdh.Combine(p.p2Public, ecdh.ScalarMultCombine)
	p.result = &KeyGenResult{
		Q:           q,
		P1:          p.ecdh.Public(),
		P2:          p.p2Public,
		PaillierPub: &p.paillierKey.PublicKey,
		CKey:        p.cKey,
	}
	p.state = P1StateDone
	p.logger.Debug(context.Background(), "ecdsa2p: p1 keygen done")
	return opening, nil
}

// Result returns the agreed public material, valid once FourthMessage has
// run.
func (p *KeyGenP1) Result() *KeyGenResult { return p.result }

// Private returns P1's secret key-generation output, valid once
// FourthMessage has run.
func (p *KeyGenP1) Private() *Party1Private {
	return &Party1Private{X1: p.ecdh.Secret(), PaillierKey: p.paillierKey}
}

// P2State tracks where a KeyGenP2 sits in the four-round protocol.
type P2State int

const (
	P2StateInit P2State = iota
	P2StateFirstSent
	P2StateChallengeSent
	P2StateRevealSent
	P2StateDone
	P2StateAborted
)

// KeyGenP2 drives P2's side of S3.
type KeyGenP2 struct {
	state  P2State
	logger logging.Logger

	ecdh *ecdh.Responder

	p1First *ecdh.FirstMessage
	p1Msg2  *Message2

	challenge *zk.PDLChallenge
	result    *KeyGenResult
}

// NewKeyGenP2 samples P2's share x2 and starts its side of the round-1
// ecdh exchange. loggers takes an optional Logger; when omitted KeyGenP2
// logs nothing.
func NewKeyGenP2(loggers ...logging.Logger) (*KeyGenP2, error) {
	log := logging.First(loggers...)
	r, err := ecdh.NewResponder([]byte(keyGenLabel), log)
	if err != nil {
		return nil, err
	}
	return &KeyGenP2{state: P2StateInit, logger: log, ecdh: r}, nil
}

// FirstMessage is P2's round-2 ecdh reply.
func (p *KeyGenP2) FirstMessage() *ecdh.SecondMessage {
	p.state = P2StateFirstSent
	return p.ecdh.Message()
}

// SecondMessage verifies P1's ecdh decommitment, correct-key proof, and
// range proof, then issues a PDL challenge. first is P1's round-1 message,
// retained from before FirstMessage was sent.
func (p *KeyGenP2) SecondMessage(first *ecdh.FirstMessage, msg *Message2) (*paillier.Ciphertext, error) {
	if p.state != P2StateFirstSent {
		return nil, errOutOfOrder
	}
	if err := p.ecdh.Verify(first, msg.EcdhSecond, []byte(keyGenLabel)); err != nil {
		p.state = P2StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p2 keygen aborted", "reason", err)
		return nil, mkerr.New("ecdsa2p.KeyGenP2.SecondMessage", mkerr.KeyGen, err)
	}
	if !zk.VerifyValidPaillier(msg.PaillierPub, msg.CorrectKeyProof) {
		p.state = P2StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p2 keygen aborted", "reason", ErrInvalidCorrectKeyProof)
		return nil, mkerr.New("ecdsa2p.KeyGenP2.SecondMessage", mkerr.KeyGen, ErrInvalidCorrectKeyProof)
	}
	if !zk.VerifyRange(msg.PaillierPub, msg.CKey, msg.RangeProof, rangeBound()) {
		p.state = P2StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p2 keygen aborted", "reason", ErrInvalidRangeProof)
		return nil, mkerr.New("ecdsa2p.KeyGenP2.SecondMessage", mkerr.KeyGen, ErrInvalidRangeProof)
	}

	p.p1First = first
	p.p1Msg2 = msg

	challenge, err := zk.ChallengePDL(msg.PaillierPub, msg.CKey)
	if err != nil {
		p.state = P2StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p2 keygen aborted", "reason", err)
		return nil, err
	}
	p.challenge = challenge
	p.state = P2StateChallengeSent
	p.logger.Debug(context.Background(), "ecdsa2p: p2 keygen issued pdl challenge")
	return challenge.CTag, nil
}

// ThirdMessage reveals P2's PDL challenge once P1's commitment has
// arrived; com is accepted but not needed until Verify.
func (p *KeyGenP2) ThirdMessage(com *zk.PDLCommitment) *zk.PDLReveal {
	p.state = P2StateRevealSent
	return p.challenge.Reveal()
}

// Verify checks P1's PDL opening and, on success, finalizes the agreed
// public material.
func (p *KeyGenP2) Verify(opening *zk.PDLOpening) error {
	if p.state != P2StateRevealSent {
		return errOutOfOrder
	}
	if !zk.VerifyPDL(p.challenge.Reveal(), opening, p.p1Msg2.EcdhSecond.Public) {
		p.state = P2StateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p2 keygen aborted", "reason", ErrInvalidPDL)
		return mkerr.New("ecdsa2p.KeyGenP2.Verify", mkerr.KeyGen, ErrInvalidPDL)
	}

	q := p.ecdh.Combine(p.p1Msg2.EcdhSecond.Public, ecdh.ScalarMultCombine)
	p.result = &KeyGenResult{
		Q:           q,
		P1:          p.p1Msg2.EcdhSecond.Public,
		P2:          p.ecdh.Public(),
		PaillierPub: p.p1Msg2.PaillierPub,
		CKey:        p.p1Msg2.CKey,
	}
	p.state = P2StateDone
	p.logger.Debug(context.Background(), "ecdsa2p: p2 keygen done")
	return nil
}

// Result returns the agreed public material, valid once Verify has
// succeeded.
func (p *KeyGenP2) Result() *KeyGenResult { return p.result }

// Private returns P2's secret key-generation output.
func (p *KeyGenP2) Private() *Party2Private {
	return &Party2Private{X2: p.ecdh.Secret()}
}
