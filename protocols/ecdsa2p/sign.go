package ecdsa2p

import (
	"context"
	"errors"
	"math/big"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/logging"
	"github.com/mpc-kms/secp256k1/pkg/mkerr"
	"github.com/mpc-kms/secp256k1/pkg/paillier"
	"github.com/mpc-kms/secp256k1/protocols/ecdh"
)

const ephemeralLabel = "kms-secp256k1/ecdsa2p/sign/v1"

var (
	// ErrZeroSignature is returned when a computed signature has r = 0 or
	// s = 0 (spec §4.5 tie-break).
	ErrZeroSignature = errors.New("ecdsa2p: signature has zero r or s")
	// ErrSignVerification is returned when P1's own signature fails to
	// verify against Q before being returned to the caller.
	ErrSignVerification = errors.New("ecdsa2p: signature failed local verification")
)

// SignState implements spec §4.5's shared ECDSA/Schnorr signing state
// machine: IDLE -> EPH_FIRST_SENT -> EPH_FIRST_RECEIVED -> PARTIAL_SIG_SENT
// -> DONE, with ABORTED reachable from any step on a verification failure.
type SignState int

const (
	SignStateIdle SignState = iota
	SignStateEphFirstSent
	SignStateEphFirstReceived
	SignStatePartialSigSent
	SignStateDone
	SignStateAborted
)

// Signature is a two-party ECDSA signature in its canonical low-s form.
type Signature struct {
	R *big.Int
	S *big.Int
}

// PartialSigMessage is P2's signing reply: its ephemeral decommitment and
// the Paillier-encrypted partial signature c3.
type PartialSigMessage struct {
	Decommit *ecdh.Decommitment
	C3       *paillier.Ciphertext
}

// Party1Signer drives P1's side of S5's ECDSA path. P1 plays the ecdh
// Responder role for the ephemeral exchange: it reveals its ephemeral
// point R1 in the clear immediately (EphMessage), since the value it will
// ultimately compute (s, via Paillier decryption) cannot be biased by
// seeing P2's ephemeral point first.
type Party1Signer struct {
	state  SignState
	logger logging.Logger
	priv   *Party1Private
	q      *curve.Point
	eph    *ecdh.Responder
}

// NewParty1Signer starts a fresh signing session against the
// key-generation output priv/q. loggers takes an optional Logger; when
// omitted the signer logs nothing.
func NewParty1Signer(priv *Party1Private, q *curve.Point, loggers ...logging.Logger) (*Party1Signer, error) {
	log := logging.First(loggers...)
	eph, err := ecdh.NewResponder([]byte(ephemeralLabel), log)
	if err != nil {
		return nil, err
	}
	return &Party1Signer{state: SignStateIdle, logger: log, priv: priv, q: q, eph: eph}, nil
}

// EphMessage reveals P1's ephemeral point and proof.
func (p *Party1Signer) EphMessage() (*ecdh.SecondMessage, error) {
	if p.state != SignStateIdle {
		return nil, errOutOfOrder
	}
	p.state = SignStateEphFirstSent
	return p.eph.Message(), nil
}

// Sign verifies P2's ephemeral commitment and partial signature against
// p2First (P2's round-1 commitment, received before EphMessage was sent)
// and msg (P2's decommitment plus c3), then completes and normalizes the
// ECDSA signature. m is the message, already reduced to a scalar mod q.
func (p *Party1Signer) Sign(p2First *ecdh.FirstMessage, msg *PartialSigMessage, m *big.Int) (*Signature, error) {
	if p.state != SignStateEphFirstSent {
		p.state = SignStateAborted
		return nil, errOutOfOrder
	}
	if err := p.eph.Verify(p2First, msg.Decommit, []byte(ephemeralLabel)); err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 sign aborted", "reason", err)
		return nil, mkerr.New("ecdsa2p.Party1Signer.Sign", mkerr.Sign, err)
	}
	p.state = SignStateEphFirstReceived

	r2G := p.eph.Combine(msg.Decommit.Public, ecdh.ScalarMultCombine)
	r, err := rFromPoint(r2G)
	if err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 sign aborted", "reason", err)
		return nil, mkerr.New("ecdsa2p.Party1Signer.Sign", mkerr.Sign, err)
	}

	v, err := p.priv.PaillierKey.Decrypt(msg.C3)
	if err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 sign aborted", "reason", err)
		return nil, mkerr.New("ecdsa2p.Party1Signer.Sign", mkerr.Sign, err)
	}

	k1Inv, err := p.eph.Secret().Invert()
	if err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 sign aborted", "reason", err)
		return nil, mkerr.New("ecdsa2p.Party1Signer.Sign", mkerr.Sign, err)
	}
	s := curve.NewScalarFromBigInt(v).Mul(k1Inv).BigInt()
	s = normalizeLowS(s)

	if s.Sign() == 0 || r.Sign() == 0 {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 sign aborted", "reason", ErrZeroSignature)
		return nil, mkerr.New("ecdsa2p.Party1Signer.Sign", mkerr.Sign, ErrZeroSignature)
	}

	sig := &Signature{R: r, S: s}
	if !verifyECDSA(p.q, m, sig) {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p1 sign aborted", "reason", ErrSignVerification)
		return nil, mkerr.New("ecdsa2p.Party1Signer.Sign", mkerr.Sign, ErrSignVerification)
	}

	p.state = SignStateDone
	p.logger.Debug(context.Background(), "ecdsa2p: p1 sign done")
	return sig, nil
}

// Party2Signer drives P2's side of S5's ECDSA path. P2 plays the ecdh
// Initiator role: it commits to its ephemeral point before seeing P1's,
// and only decommits (bundled with its partial signature) once P1's
// ephemeral point has arrived.
type Party2Signer struct {
	state  SignState
	logger logging.Logger
	priv   *Party2Private
	pub    *KeyGenResult
	eph    *ecdh.Initiator
}

// NewParty2Signer starts a fresh signing session. loggers takes an
// optional Logger; when omitted the signer logs nothing.
func NewParty2Signer(priv *Party2Private, pub *KeyGenResult, loggers ...logging.Logger) (*Party2Signer, error) {
	log := logging.First(loggers...)
	eph, err := ecdh.NewInitiator([]byte(ephemeralLabel), log)
	if err != nil {
		return nil, err
	}
	return &Party2Signer{state: SignStateIdle, logger: log, priv: priv, pub: pub, eph: eph}, nil
}

// EphFirstMessage is P2's round-1 commitment to its ephemeral point.
func (p *Party2Signer) EphFirstMessage() (*ecdh.FirstMessage, error) {
	if p.state != SignStateIdle {
		return nil, errOutOfOrder
	}
	msg, err := p.eph.FirstMessage()
	if err != nil {
		return nil, err
	}
	p.state = SignStateEphFirstSent
	return msg, nil
}

// PartialSign verifies P1's ephemeral point (revealed in the clear as
// p1Msg), computes the joint ephemeral point R and r = x(R) mod q, and
// homomorphically combines c_key into the Paillier-encrypted partial
// signature c3 = Enc(k2^-1*m) + r*Enc(x1*x2*k2^-1). The message term is
// encrypted fresh rather than scaled from c_key, since scaling c_key by
// k2^-1*m would (incorrectly) carry an extra factor of x1 into the
// message term; only the x1*x2 term is obtained via c_key's homomorphism,
// since x1*x2 is the only part of the sum that depends on the secret P2
// never learns.
func (p *Party2Signer) PartialSign(p1Msg *ecdh.SecondMessage, m *big.Int) (*PartialSigMessage, error) {
	if p.state != SignStateEphFirstSent {
		p.state = SignStateAborted
		return nil, errOutOfOrder
	}
	if err := p.eph.VerifyPeer(p1Msg, []byte(ephemeralLabel)); err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p2 sign aborted", "reason", err)
		return nil, mkerr.New("ecdsa2p.Party2Signer.PartialSign", mkerr.Sign, err)
	}
	p.state = SignStateEphFirstReceived

	rG := p.eph.Combine(p1Msg.Public, ecdh.ScalarMultCombine)
	r, err := rFromPoint(rG)
	if err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p2 sign aborted", "reason", err)
		return nil, mkerr.New("ecdsa2p.Party2Signer.PartialSign", mkerr.Sign, err)
	}

	k2Inv, err := p.eph.Secret().Invert()
	if err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p2 sign aborted", "reason", err)
		return nil, mkerr.New("ecdsa2p.Party2Signer.PartialSign", mkerr.Sign, err)
	}
	mScalar := curve.NewScalarFromBigInt(m)
	rScalar := curve.NewScalarFromBigInt(r)

	msgTerm := k2Inv.Mul(mScalar).BigInt()
	keyTerm := rScalar.Mul(p.priv.X2).Mul(k2Inv).BigInt()

	c1, _, err := p.pub.PaillierPub.Encrypt(msgTerm)
	if err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p2 sign aborted", "reason", err)
		return nil, err
	}
	c2 := p.pub.PaillierPub.HomomorphicScale(p.pub.CKey, keyTerm)
	c3 := p.pub.PaillierPub.HomomorphicAdd(c1, c2)

	decom, err := p.eph.SecondMessage()
	if err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "ecdsa2p: p2 sign aborted", "reason", err)
		return nil, err
	}
	p.state = SignStatePartialSigSent
	p.logger.Debug(context.Background(), "ecdsa2p: p2 sign sent partial signature")

	return &PartialSigMessage{Decommit: decom, C3: c3}, nil
}

// rFromPoint reduces R's x-coordinate mod q, returning ErrZeroSignature if
// R is the identity or its reduced x-coordinate is zero.
func rFromPoint(r *curve.Point) (*big.Int, error) {
	if r.IsIdentity() {
		return nil, ErrZeroSignature
	}
	x := new(big.Int).SetBytes(r.XOnly())
	x.Mod(x, curve.Order())
	if x.Sign() == 0 {
		return nil, ErrZeroSignature
	}
	return x, nil
}

// normalizeLowS re-maps s to [1, q/2] if it falls in the high half, per
// spec §4.5's canonical-signature requirement.
func normalizeLowS(s *big.Int) *big.Int {
	halfOrder := new(big.Int).Rsh(curve.Order(), 1)
	if s.Cmp(halfOrder) > 0 {
		return new(big.Int).Sub(curve.Order(), s)
	}
	return s
}

// verifyECDSA checks sig against Q and message scalar m using the standard
// ECDSA verification equation.
func verifyECDSA(q *curve.Point, m *big.Int, sig *Signature) bool {
	order := curve.Order()
	if sig.R.Sign() <= 0 || sig.S.Sign() <= 0 || sig.R.Cmp(order) >= 0 || sig.S.Cmp(order) >= 0 {
		return false
	}
	sInv := new(big.Int).ModInverse(sig.S, order)
	if sInv == nil {
		return false
	}
	u1 := new(big.Int).Mod(new(big.Int).Mul(m, sInv), order)
	u2 := new(big.Int).Mod(new(big.Int).Mul(sig.R, sInv), order)

	sum := curve.ScalarBaseMult(curve.NewScalarFromBigInt(u1)).
		Add(q.ScalarMult(curve.NewScalarFromBigInt(u2)))
	if sum.IsIdentity() {
		return false
	}
	x := new(big.Int).Mod(new(big.Int).SetBytes(sum.XOnly()), order)
	return x.Cmp(sig.R) == 0
}
