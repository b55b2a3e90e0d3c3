package rotation

import (
	"context"
	"errors"
	"math/big"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/logging"
	"github.com/mpc-kms/secp256k1/pkg/mkerr"
	"github.com/mpc-kms/secp256k1/pkg/paillier"
	"github.com/mpc-kms/secp256k1/pkg/zk"
	"github.com/mpc-kms/secp256k1/protocols/ecdsa2p"
)

var (
	// ErrInvalidCorrectKeyProof is returned when P1's new Paillier key
	// fails its correct-key proof.
	ErrInvalidCorrectKeyProof = errors.New("rotation: invalid paillier correct-key proof")
	// ErrInvalidRangeProof is returned when the new ciphertext's range
	// proof fails.
	ErrInvalidRangeProof = errors.New("rotation: invalid paillier range proof")
	// ErrInvalidPDL is returned when the new ciphertext's PDL proof fails
	// to bind it to the claimed rotated share point.
	ErrInvalidPDL = errors.New("rotation: invalid PDL proof")

	errRotateOutOfOrder = errors.New("rotation: ecdsa rotation message called out of order")
)

// rotationRangeBound bounds the rotated ciphertext's plaintext by the full
// curve order: unlike x1 at keygen time (kept under q/3 by share1Below so
// later signing stays sound), x1' = r*x1 mod q is a fresh reduction mod q
// for every draw of the coin-flip output r, so q itself is the only bound
// that always holds.
func rotationRangeBound() *big.Int {
	return curve.Order()
}

// ECDSAState tracks an ECDSA rotation party's position in its round
// sequence.
type ECDSAState int

const (
	ECDSAStateInit ECDSAState = iota
	ECDSAStateFirstSent
	ECDSAStatePDLCommitted
	ECDSAStateDone
	ECDSAStateAborted
)

// ECDSAMessage1 is P1's round-1 message: its freshly generated Paillier
// public key, the re-encrypted share c_key' = Enc(r*x1), and fresh
// correct-key and range proofs over it.
type ECDSAMessage1 struct {
	PaillierPub     *paillier.PublicKey
	CKeyNew         *paillier.Ciphertext
	CorrectKeyProof *zk.ValidPaillierProof
	RangeProof      *zk.RangeProof
}

// ECDSARotateParty1 drives P1's side of ECDSA rotation (spec §4.6). P1's
// share x1 and all its Paillier material are rebuilt from scratch, since
// x1 lives only in ciphertext form and the old ciphertext cannot be
// homomorphically rescaled by r without also proving the new plaintext
// still matches the rotated public share p1' = r*p1.
type ECDSARotateParty1 struct {
	state  ECDSAState
	logger logging.Logger
	r      *curve.Scalar
	old    *ecdsa2p.Party1Private
	oldQ   *curve.Point
	oldP2  *curve.Point

	x1New       *curve.Scalar
	paillierKey *paillier.PrivateKey
	cKeyNew     *paillier.Ciphertext
	rangeProof  *zk.RangeProof

	pdlCommitment *zk.PDLCommitment
	pdlState      *zk.PDLProverState

	result  *ecdsa2p.KeyGenResult
	private *ecdsa2p.Party1Private
}

// NewECDSARotateParty1 starts P1's side of rotation given its current key
// material and the coin-flip output r. loggers takes an optional Logger;
// when omitted the rotation logs nothing.
func NewECDSARotateParty1(old *ecdsa2p.Party1Private, oldPub *ecdsa2p.KeyGenResult, r *curve.Scalar, loggers ...logging.Logger) (*ECDSARotateParty1, error) {
	if r.IsZero() {
		return nil, curve.ErrZeroScalar
	}
	x1New := old.X1.Mul(r)

	sk, err := paillier.Generate()
	if err != nil {
		return nil, err
	}
	cKeyNew, nonce, err := sk.PublicKey.Encrypt(x1New.BigInt())
	if err != nil {
		return nil, err
	}
	rangeProof, err := zk.ProveRange(&sk.PublicKey, cKeyNew, x1New.BigInt(), nonce, rotationRangeBound())
	if err != nil {
		return nil, err
	}

	return &ECDSARotateParty1{
		state:       ECDSAStateInit,
		logger:      logging.First(loggers...),
		r:           r,
		old:         old,
		oldQ:        oldPub.Q,
		oldP2:       oldPub.P2,
		x1New:       x1New,
		paillierKey: sk,
		cKeyNew:     cKeyNew,
		rangeProof:  rangeProof,
	}, nil
}

// FirstMessage ships the new Paillier material and its proofs.
func (p *ECDSARotateParty1) FirstMessage() (*ECDSAMessage1, error) {
	if p.state != ECDSAStateInit {
		return nil, errRotateOutOfOrder
	}
	p.state = ECDSAStateFirstSent
	p.logger.Debug(context.Background(), "rotation: p1 ecdsa rotation sent new paillier material")
	return &ECDSAMessage1{
		PaillierPub:     &p.paillierKey.PublicKey,
		CKeyNew:         p.cKeyNew,
		CorrectKeyProof: zk.ProveValidPaillier(p.paillierKey),
		RangeProof:      p.rangeProof,
	}, nil
}

// ThirdMessage answers P2's PDL challenge, binding c_key' to p1' = r*p1.
func (p *ECDSARotateParty1) ThirdMessage(cTag *paillier.Ciphertext) (*zk.PDLCommitment, error) {
	if p.state != ECDSAStateFirstSent {
		p.state = ECDSAStateAborted
		p.logger.Warn(context.Background(), "rotation: p1 ecdsa rotation aborted", "reason", errRotateOutOfOrder)
		return nil, errRotateOutOfOrder
	}
	com, state, err := zk.FirstMessagePDL(p.paillierKey, &zk.PDLChallenge{CTag: cTag})
	if err != nil {
		p.state = ECDSAStateAborted
		p.logger.Warn(context.Background(), "rotation: p1 ecdsa rotation aborted", "reason", err)
		return nil, err
	}
	p.pdlCommitment, p.pdlState = com, state
	p.state = ECDSAStatePDLCommitted
	p.logger.Debug(context.Background(), "rotation: p1 ecdsa rotation committed pdl response")
	return com, nil
}

// FourthMessage opens the PDL commitment and finalizes P1's rotated key
// material. p1Old is the pre-rotation value of p1 (P1's own public share),
// used only to recompute p1' = r*p1Old for the result.
func (p *ECDSARotateParty1) FourthMessage(reveal *zk.PDLReveal, p1Old *curve.Point) *zk.PDLOpening {
	opening := zk.SecondMessagePDL(p.pdlCommitment, p.pdlState)

	rInv, err := p.r.Invert()
	p1New := p1Old.ScalarMult(p.r)
	var p2New *curve.Point
	if err == nil {
		p2New = p.oldP2.ScalarMult(rInv)
	}

	p.result = &ecdsa2p.KeyGenResult{
		Q:           p.oldQ,
		P1:          p1New,
		P2:          p2New,
		PaillierPub: &p.paillierKey.PublicKey,
		CKey:        p.cKeyNew,
	}
	p.private = &ecdsa2p.Party1Private{X1: p.x1New, PaillierKey: p.paillierKey}
	p.state = ECDSAStateDone
	p.logger.Debug(context.Background(), "rotation: p1 ecdsa rotation done")

	return opening
}

// Result returns P1's rotated public key material, valid after
// FourthMessage.
func (p *ECDSARotateParty1) Result() *ecdsa2p.KeyGenResult { return p.result }

// Private returns P1's rotated private key material, valid after
// FourthMessage.
func (p *ECDSARotateParty1) Private() *ecdsa2p.Party1Private { return p.private }

// ECDSARotateParty2 drives P2's side of ECDSA rotation.
type ECDSARotateParty2 struct {
	state  ECDSAState
	logger logging.Logger
	r      *curve.Scalar
	old    *ecdsa2p.Party2Private
	oldQ   *curve.Point
	oldP1  *curve.Point

	msg1      *ECDSAMessage1
	challenge *zk.PDLChallenge

	result  *ecdsa2p.KeyGenResult
	private *ecdsa2p.Party2Private
}

// NewECDSARotateParty2 starts P2's side of rotation. loggers takes an
// optional Logger; when omitted the rotation logs nothing.
func NewECDSARotateParty2(old *ecdsa2p.Party2Private, oldPub *ecdsa2p.KeyGenResult, r *curve.Scalar, loggers ...logging.Logger) (*ECDSARotateParty2, error) {
	if r.IsZero() {
		return nil, curve.ErrZeroScalar
	}
	return &ECDSARotateParty2{state: ECDSAStateInit, logger: logging.First(loggers...), r: r, old: old, oldQ: oldPub.Q, oldP1: oldPub.P1}, nil
}

// SecondMessage verifies P1's new Paillier material, then issues a PDL
// challenge bound to it.
func (p *ECDSARotateParty2) SecondMessage(msg1 *ECDSAMessage1) (*paillier.Ciphertext, error) {
	if p.state != ECDSAStateInit {
		p.state = ECDSAStateAborted
		p.logger.Warn(context.Background(), "rotation: p2 ecdsa rotation aborted", "reason", errRotateOutOfOrder)
		return nil, errRotateOutOfOrder
	}
	if !zk.VerifyValidPaillier(msg1.PaillierPub, msg1.CorrectKeyProof) {
		p.state = ECDSAStateAborted
		p.logger.Warn(context.Background(), "rotation: p2 ecdsa rotation aborted", "reason", ErrInvalidCorrectKeyProof)
		return nil, mkerr.New("rotation.ECDSARotateParty2.SecondMessage", mkerr.CorrectKey, ErrInvalidCorrectKeyProof)
	}
	if !zk.VerifyRange(msg1.PaillierPub, msg1.CKeyNew, msg1.RangeProof, rotationRangeBound()) {
		p.state = ECDSAStateAborted
		p.logger.Warn(context.Background(), "rotation: p2 ecdsa rotation aborted", "reason", ErrInvalidRangeProof)
		return nil, mkerr.New("rotation.ECDSARotateParty2.SecondMessage", mkerr.RangeProof, ErrInvalidRangeProof)
	}
	p.msg1 = msg1

	challenge, err := zk.ChallengePDL(msg1.PaillierPub, msg1.CKeyNew)
	if err != nil {
		p.state = ECDSAStateAborted
		p.logger.Warn(context.Background(), "rotation: p2 ecdsa rotation aborted", "reason", err)
		return nil, err
	}
	p.challenge = challenge
	p.state = ECDSAStatePDLCommitted
	p.logger.Debug(context.Background(), "rotation: p2 ecdsa rotation issued pdl challenge")
	return challenge.CTag, nil
}

// ThirdMessage reveals P2's PDL challenge, once P1's commitment has
// arrived.
func (p *ECDSARotateParty2) ThirdMessage(_ *zk.PDLCommitment) *zk.PDLReveal {
	return p.challenge.Reveal()
}

// Verify checks P1's PDL opening against the rotated share point
// p1' = r*p1, and on success finalizes P2's rotated key material.
func (p *ECDSARotateParty2) Verify(opening *zk.PDLOpening) error {
	p1New := p.oldP1.ScalarMult(p.r)
	if !zk.VerifyPDL(p.challenge.Reveal(), opening, p1New) {
		p.state = ECDSAStateAborted
		p.logger.Warn(context.Background(), "rotation: p2 ecdsa rotation aborted", "reason", ErrInvalidPDL)
		return mkerr.New("rotation.ECDSARotateParty2.Verify", mkerr.PDL, ErrInvalidPDL)
	}

	rInv, err := p.r.Invert()
	if err != nil {
		p.state = ECDSAStateAborted
		p.logger.Warn(context.Background(), "rotation: p2 ecdsa rotation aborted", "reason", err)
		return err
	}
	x2New := p.old.X2.Mul(rInv)

	p.result = &ecdsa2p.KeyGenResult{
		Q:           p.oldQ,
		P1:          p1New,
		P2:          curve.ScalarBaseMult(x2New),
		PaillierPub: p.msg1.PaillierPub,
		CKey:        p.msg1.CKeyNew,
	}
	p.private = &ecdsa2p.Party2Private{X2: x2New}
	p.state = ECDSAStateDone
	p.logger.Debug(context.Background(), "rotation: p2 ecdsa rotation done")
	return nil
}

// Result returns P2's rotated public key material, valid after Verify.
func (p *ECDSARotateParty2) Result() *ecdsa2p.KeyGenResult { return p.result }

// Private returns P2's rotated private key material, valid after Verify.
func (p *ECDSARotateParty2) Private() *ecdsa2p.Party2Private { return p.private }
