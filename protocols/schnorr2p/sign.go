package schnorr2p

import (
	"context"
	"errors"
	"math/big"

	"github.com/zeebo/blake3"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/logging"
	"github.com/mpc-kms/secp256k1/pkg/mkerr"
	"github.com/mpc-kms/secp256k1/protocols/ecdh"
)

const (
	ephemeralLabel  = "kms-secp256k1/schnorr2p/sign/v1"
	challengeDomain = "kms-secp256k1/schnorr2p/challenge/v1"
)

var (
	// ErrZeroSignature is returned when a computed signature has a zero R
	// or S component.
	ErrZeroSignature = errors.New("schnorr2p: signature has zero R or s")
	// ErrInvalidPartialSig is returned when P1's partial signature share
	// fails P2's cross-verification against I1.
	ErrInvalidPartialSig = errors.New("schnorr2p: invalid partial signature share")
	// ErrSignVerification is returned when a completed signature fails
	// local verification against Q.
	ErrSignVerification = errors.New("schnorr2p: signature failed local verification")

	errOutOfOrder = errors.New("schnorr2p: sign message called out of order")
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

// Signature is a two-party Schnorr signature: s*G = R + e*Q where
// e = H(Q || R || m).
type Signature struct {
	R *curve.Point
	S *big.Int
}

// Bytes returns a 64-byte x-only encoding (R's x-coordinate followed by
// s, both 32 bytes), the same layout BIP340 uses. The challenge hash
// itself is BLAKE3, not BIP340's tagged SHA-256, so this encoding is for
// this module's own wire format rather than cross-implementation
// interoperability.
func (s *Signature) Bytes() []byte {
	out := make([]byte, 64)
	copy(out[:32], s.R.XOnly())
	s.S.FillBytes(out[32:])
	return out
}

// PartialSig is P1's signing reply: its ephemeral decommitment and partial
// signature share y1 = rho1 + e*x1.
type PartialSig struct {
	Decommit *ecdh.Decommitment
	Y        *big.Int
}

// PartialSigReply is P2's share y2 = rho2 + e*x2, sent back so P1 can
// finalize the signature too.
type PartialSigReply struct {
	Y *big.Int
}

// Party1Signer drives P1's side of S5's Schnorr path. P1 plays the ecdh
// Initiator role for the ephemeral exchange: it commits to its ephemeral
// point before seeing P2's, and decommits (bundled with its partial
// signature share) only once P2's ephemeral point has arrived.
type Party1Signer struct {
	state  SignState
	logger logging.Logger
	priv   *Party1Private
	q      *curve.Point
	eph    *ecdh.Initiator
	r      *curve.Point
	y1     *big.Int
}

// NewParty1Signer starts a fresh signing session against the key-
// generation output priv/q. loggers takes an optional Logger; when
// omitted the signer logs nothing.
func NewParty1Signer(priv *Party1Private, q *curve.Point, loggers ...logging.Logger) (*Party1Signer, error) {
	log := logging.First(loggers...)
	eph, err := ecdh.NewInitiator([]byte(ephemeralLabel), log)
	if err != nil {
		return nil, err
	}
	return &Party1Signer{state: SignStateIdle, logger: log, priv: priv, q: q, eph: eph}, nil
}

// EphFirstMessage is P1's round-1 commitment to its ephemeral point.
func (p *Party1Signer) EphFirstMessage() (*ecdh.FirstMessage, error) {
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

// PartialSign verifies P2's ephemeral point, computes the joint ephemeral
// point R = R1+R2 and the challenge e = H(Q||R||m), and decommits bundled
// with its own partial signature share y1 = rho1 + e*x1.
func (p *Party1Signer) PartialSign(p2Msg *ecdh.SecondMessage, m *big.Int) (*PartialSig, error) {
	if p.state != SignStateEphFirstSent {
		p.state = SignStateAborted
		return nil, errOutOfOrder
	}
	if err := p.eph.VerifyPeer(p2Msg, []byte(ephemeralLabel)); err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "schnorr2p: p1 sign aborted", "reason", err)
		return nil, mkerr.New("schnorr2p.Party1Signer.PartialSign", mkerr.Sign, err)
	}
	p.state = SignStateEphFirstReceived

	r := p.eph.Combine(p2Msg.Public, ecdh.AddCombine)
	if r.IsIdentity() {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "schnorr2p: p1 sign aborted", "reason", ErrZeroSignature)
		return nil, mkerr.New("schnorr2p.Party1Signer.PartialSign", mkerr.Sign, ErrZeroSignature)
	}
	e := challenge(p.q, r, m)
	y1 := p.eph.Secret().Add(e.Mul(p.priv.X1)).BigInt()

	decom, err := p.eph.SecondMessage()
	if err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "schnorr2p: p1 sign aborted", "reason", err)
		return nil, err
	}
	p.state = SignStatePartialSigSent
	p.r, p.y1 = r, y1
	p.logger.Debug(context.Background(), "schnorr2p: p1 sign sent partial signature")

	return &PartialSig{Decommit: decom, Y: y1}, nil
}

// Finalize combines P2's returned share y2 with P1's own y1 into the
// completed signature and verifies it locally before returning.
func (p *Party1Signer) Finalize(reply *PartialSigReply, m *big.Int) (*Signature, error) {
	if p.state != SignStatePartialSigSent {
		p.state = SignStateAborted
		return nil, errOutOfOrder
	}
	s := curve.NewScalarFromBigInt(p.y1).Add(curve.NewScalarFromBigInt(reply.Y)).BigInt()
	sig := &Signature{R: p.r, S: s}
	if s.Sign() == 0 {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "schnorr2p: p1 sign aborted", "reason", ErrZeroSignature)
		return nil, mkerr.New("schnorr2p.Party1Signer.Finalize", mkerr.Sign, ErrZeroSignature)
	}
	if !verifySchnorr(p.q, m, sig) {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "schnorr2p: p1 sign aborted", "reason", ErrSignVerification)
		return nil, mkerr.New("schnorr2p.Party1Signer.Finalize", mkerr.Sign, ErrSignVerification)
	}
	p.state = SignStateDone
	p.logger.Debug(context.Background(), "schnorr2p: p1 sign done")
	return sig, nil
}

// Party2Signer drives P2's side of S5's Schnorr path. P2 plays the ecdh
// Responder role: it reveals its ephemeral point in the clear immediately,
// since it replies after P1 has already committed.
type Party2Signer struct {
	state  SignState
	logger logging.Logger
	priv   *Party2Private
	pub    *KeyGenResult
	eph    *ecdh.Responder
}

// NewParty2Signer starts a fresh signing session. loggers takes an
// optional Logger; when omitted the signer logs nothing.
func NewParty2Signer(priv *Party2Private, pub *KeyGenResult, loggers ...logging.Logger) (*Party2Signer, error) {
	log := logging.First(loggers...)
	eph, err := ecdh.NewResponder([]byte(ephemeralLabel), log)
	if err != nil {
		return nil, err
	}
	return &Party2Signer{state: SignStateIdle, logger: log, priv: priv, pub: pub, eph: eph}, nil
}

// EphMessage reveals P2's ephemeral point and proof.
func (p *Party2Signer) EphMessage() *ecdh.SecondMessage {
	p.state = SignStateEphFirstSent
	return p.eph.Message()
}

// Sign verifies P1's ephemeral commitment and partial signature share
// against p1First (P1's round-1 commitment, received before EphMessage was
// sent) and partial (P1's decommitment plus y1), computes P2's own share
// y2 = rho2 + e*x2, and returns both the completed signature and the reply
// P1 needs to finalize its own copy.
func (p *Party2Signer) Sign(p1First *ecdh.FirstMessage, partial *PartialSig, m *big.Int) (*Signature, *PartialSigReply, error) {
	if p.state != SignStateEphFirstSent {
		p.state = SignStateAborted
		return nil, nil, errOutOfOrder
	}
	if err := p.eph.Verify(p1First, partial.Decommit, []byte(ephemeralLabel)); err != nil {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "schnorr2p: p2 sign aborted", "reason", err)
		return nil, nil, mkerr.New("schnorr2p.Party2Signer.Sign", mkerr.Sign, err)
	}
	p.state = SignStateEphFirstReceived

	r := p.eph.Combine(partial.Decommit.Public, ecdh.AddCombine)
	if r.IsIdentity() {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "schnorr2p: p2 sign aborted", "reason", ErrZeroSignature)
		return nil, nil, mkerr.New("schnorr2p.Party2Signer.Sign", mkerr.Sign, ErrZeroSignature)
	}
	e := challenge(p.pub.Q, r, m)

	lhs := curve.ScalarBaseMult(curve.NewScalarFromBigInt(partial.Y))
	rhs := partial.Decommit.Public.Add(p.pub.I1.ScalarMult(e))
	if !lhs.Equal(rhs) {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "schnorr2p: p2 sign aborted", "reason", ErrInvalidPartialSig)
		return nil, nil, mkerr.New("schnorr2p.Party2Signer.Sign", mkerr.Sign, ErrInvalidPartialSig)
	}

	y2 := p.eph.Secret().Add(e.Mul(p.priv.X2)).BigInt()
	s := curve.NewScalarFromBigInt(partial.Y).Add(curve.NewScalarFromBigInt(y2)).BigInt()

	sig := &Signature{R: r, S: s}
	if s.Sign() == 0 {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "schnorr2p: p2 sign aborted", "reason", ErrZeroSignature)
		return nil, nil, mkerr.New("schnorr2p.Party2Signer.Sign", mkerr.Sign, ErrZeroSignature)
	}
	if !verifySchnorr(p.pub.Q, m, sig) {
		p.state = SignStateAborted
		p.logger.Warn(context.Background(), "schnorr2p: p2 sign aborted", "reason", ErrSignVerification)
		return nil, nil, mkerr.New("schnorr2p.Party2Signer.Sign", mkerr.Sign, ErrSignVerification)
	}

	p.state = SignStateDone
	p.logger.Debug(context.Background(), "schnorr2p: p2 sign done")
	return sig, &PartialSigReply{Y: y2}, nil
}

// challenge computes e = H(Q || R || m) mod q via BLAKE3, mirroring
// pkg/zk's dlogChallenge construction.
func challenge(q, r *curve.Point, m *big.Int) *curve.Scalar {
	h := blake3.New()
	_, _ = h.Write([]byte(challengeDomain))
	_, _ = h.Write(q.Compressed())
	_, _ = h.Write(r.Compressed())
	mBuf := make([]byte, 32)
	m.FillBytes(mBuf)
	_, _ = h.Write(mBuf)
	sum := h.Sum(nil)
	return curve.NewScalarFromBigInt(new(big.Int).SetBytes(sum))
}

// verifySchnorr checks sig against Q and message scalar m: s*G =?= R+e*Q.
func verifySchnorr(q *curve.Point, m *big.Int, sig *Signature) bool {
	if sig.S.Sign() <= 0 || sig.S.Cmp(curve.Order()) >= 0 || sig.R.IsIdentity() {
		return false
	}
	e := challenge(q, sig.R, m)
	lhs := curve.ScalarBaseMult(curve.NewScalarFromBigInt(sig.S))
	rhs := sig.R.Add(q.ScalarMult(e))
	return lhs.Equal(rhs)
}
