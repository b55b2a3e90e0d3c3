package ecdh

import (
	"context"
	"errors"

	"github.com/mpc-kms/secp256k1/pkg/commitment"
	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/logging"
	"github.com/mpc-kms/secp256k1/pkg/mkerr"
	"github.com/mpc-kms/secp256k1/pkg/zk"
)

// ErrCommitmentMismatch is returned when a decommitment does not reproduce
// its earlier commitment (spec §4.1: CommitmentMismatch).
var ErrCommitmentMismatch = errors.New("ecdh: decommitment does not match commitment")

// ErrInvalidDLogProof is returned when a counterparty's discrete-log proof
// fails to verify (spec §4.1: InvalidDLogProof).
var ErrInvalidDLogProof = errors.New("ecdh: invalid discrete-log proof")

// Combine derives the joint point both parties agree on from this party's
// own secret and public contribution and the counterparty's verified
// public point. ScalarMultCombine implements the Diffie-Hellman ("product")
// case; AddCombine implements the additive ("sum") case.
type Combine func(mySecret *curve.Scalar, myPublic, peerPublic *curve.Point) *curve.Point

// ScalarMultCombine returns peerPublic * mySecret, the Diffie-Hellman joint
// point used by chain-code agreement (S2) and ephemeral key agreement (S5).
func ScalarMultCombine(mySecret *curve.Scalar, _ *curve.Point, peerPublic *curve.Point) *curve.Point {
	return peerPublic.ScalarMult(mySecret)
}

// AddCombine returns myPublic + peerPublic, the additive joint point used
// by an additive Schnorr-style joint key.
func AddCombine(_ *curve.Scalar, myPublic, peerPublic *curve.Point) *curve.Point {
	return myPublic.Add(peerPublic)
}

// FirstMessage is the initiator's round-1 message: commitments over its
// public point and discrete-log proof.
type FirstMessage struct {
	PKCommitment    *commitment.Commitment
	ZKPoKCommitment *commitment.Commitment
}

// SecondMessage is the responder's round-2 message: its point and proof,
// sent in the clear.
type SecondMessage struct {
	Public *curve.Point
	Proof  *zk.DLogProof
}

// Decommitment is the initiator's round-3 message, revealing what it
// committed to in round 1.
type Decommitment struct {
	Public        *curve.Point
	Proof         *zk.DLogProof
	PKDecommit    *commitment.Decommitment
	ZKPoKDecommit *commitment.Decommitment
}

// State tracks where an Initiator sits in its round-1/round-3 state
// machine (spec §9: "model each sub-protocol as an explicit state
// machine with typed transitions").
type State int

const (
	StateInit State = iota
	StateFirstSent
	StateDecommitted
)

// Initiator runs the commit-then-reveal side of the exchange.
type Initiator struct {
	state  State
	logger logging.Logger

	secret *curve.Scalar
	public *curve.Point
	proof  *zk.DLogProof

	pkDecommit    *commitment.Decommitment
	zkPoKDecommit *commitment.Decommitment
}

// NewInitiator samples a fresh secret scalar and its public point, and
// prepares (but does not yet reveal) a discrete-log proof of it. aux binds
// the proof to a caller-chosen session label. loggers takes an optional
// Logger; when omitted the Initiator logs nothing.
func NewInitiator(aux []byte, loggers ...logging.Logger) (*Initiator, error) {
	secret, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	return NewInitiatorWithSecret(secret, aux, loggers...)
}

// NewInitiatorWithSecret builds an Initiator around a caller-chosen secret
// scalar rather than a freshly sampled one. Used when the secret must
// satisfy a constraint the generic exchange knows nothing about (e.g.
// ecdsa2p's P1 share is rejection-sampled below q/3 for its Paillier range
// proof), or when recovering a previously-held share — the original
// source's party_one::KeyGenFirstMsg::create_commitments_with_fixed_secret_share
// is the same pattern, used by its recovery path.
func NewInitiatorWithSecret(secret *curve.Scalar, aux []byte, loggers ...logging.Logger) (*Initiator, error) {
	if secret.IsZero() {
		return nil, curve.ErrZeroScalar
	}
	public := curve.ScalarBaseMult(secret)
	proof, err := zk.ProveDLog(secret, public, aux)
	if err != nil {
		return nil, err
	}
	return &Initiator{state: StateInit, logger: logging.First(loggers...), secret: secret, public: public, proof: proof}, nil
}

// Secret returns the initiator's secret scalar. Exposed for protocols built
// atop ecdh (e.g. ecdsa2p keygen, which must also Paillier-encrypt the same
// scalar) that need to reuse it in a second cryptosystem.
func (i *Initiator) Secret() *curve.Scalar { return i.secret }

// Public returns the initiator's public point.
func (i *Initiator) Public() *curve.Point { return i.public }

// FirstMessage produces the round-1 commitments.
func (i *Initiator) FirstMessage() (*FirstMessage, error) {
	if i.state != StateInit {
		return nil, errors.New("ecdh: FirstMessage called out of order")
	}

	pkCommit, pkDecommit, err := commitment.Commit(i.public.Compressed())
	if err != nil {
		return nil, err
	}
	zkCommit, zkDecommit, err := commitment.Commit(i.proof.R.Compressed(), i.proof.S.Bytes())
	if err != nil {
		return nil, err
	}

	i.pkDecommit = pkDecommit
	i.zkPoKDecommit = zkDecommit
	i.state = StateFirstSent
	i.logger.Debug(context.Background(), "ecdh: initiator sent round 1 commitments")

	return &FirstMessage{PKCommitment: pkCommit, ZKPoKCommitment: zkCommit}, nil
}

// SecondMessage reveals the initiator's committed point and proof, once the
// responder's SecondMessage has been received (the responder's message
// itself plays no role in what the initiator reveals; it only gates when
// the initiator is permitted to do so).
func (i *Initiator) SecondMessage() (*Decommitment, error) {
	if i.state != StateFirstSent {
		return nil, errors.New("ecdh: SecondMessage called out of order")
	}
	i.state = StateDecommitted
	i.logger.Debug(context.Background(), "ecdh: initiator revealed decommitment")
	return &Decommitment{
		Public:        i.public,
		Proof:         i.proof,
		PKDecommit:    i.pkDecommit,
		ZKPoKDecommit: i.zkPoKDecommit,
	}, nil
}

// VerifyPeer checks the responder's round-2 discrete-log proof. The
// responder's point and proof are sent in the clear rather than
// committed, since it replies after the initiator has already committed;
// verifying it here still catches a responder who samples a point without
// knowing its own discrete log.
func (i *Initiator) VerifyPeer(msg *SecondMessage, aux []byte) error {
	if msg == nil || !zk.VerifyDLog(msg.Proof, msg.Public, aux) {
		i.logger.Warn(context.Background(), "ecdh: initiator rejected peer dlog proof")
		return mkerr.New("ecdh.VerifyPeer", mkerr.Proof, ErrInvalidDLogProof)
	}
	return nil
}

// Combine derives the joint point using combine, given the verified peer
// public point the responder sent back.
func (i *Initiator) Combine(peerPublic *curve.Point, combine Combine) *curve.Point {
	return combine(i.secret, i.public, peerPublic)
}

// Responder answers an Initiator's exchange without ever committing to its
// own contribution; its point is exposed directly since the initiator
// reveals last.
type Responder struct {
	logger logging.Logger

	secret *curve.Scalar
	public *curve.Point
	proof  *zk.DLogProof
}

// NewResponder samples a fresh secret and prepares its response. loggers
// takes an optional Logger; when omitted the Responder logs nothing.
func NewResponder(aux []byte, loggers ...logging.Logger) (*Responder, error) {
	secret, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	return NewResponderWithSecret(secret, aux, loggers...)
}

// NewResponderWithSecret is NewInitiatorWithSecret's responder-side
// counterpart.
func NewResponderWithSecret(secret *curve.Scalar, aux []byte, loggers ...logging.Logger) (*Responder, error) {
	if secret.IsZero() {
		return nil, curve.ErrZeroScalar
	}
	public := curve.ScalarBaseMult(secret)
	proof, err := zk.ProveDLog(secret, public, aux)
	if err != nil {
		return nil, err
	}
	return &Responder{logger: logging.First(loggers...), secret: secret, public: public, proof: proof}, nil
}

// Secret returns the responder's secret scalar.
func (r *Responder) Secret() *curve.Scalar { return r.secret }

// Public returns the responder's public point.
func (r *Responder) Public() *curve.Point { return r.public }

// Message returns the responder's round-2 message. It does not depend on
// the initiator's round-1 commitments, which exist only to bind the
// initiator ahead of time.
func (r *Responder) Message() *SecondMessage {
	r.logger.Debug(context.Background(), "ecdh: responder sent round 2 message")
	return &SecondMessage{Public: r.public, Proof: r.proof}
}

// Verify checks the initiator's round-3 decommitment against its round-1
// commitments and discrete-log proof.
func (r *Responder) Verify(first *FirstMessage, decom *Decommitment, aux []byte) error {
	if first == nil || decom == nil {
		return mkerr.New("ecdh.Verify", mkerr.Proof, errors.New("nil message"))
	}
	if !commitment.Verify(first.PKCommitment, decom.PKDecommit, decom.Public.Compressed()) {
		r.logger.Warn(context.Background(), "ecdh: responder rejected pk decommitment")
		return mkerr.New("ecdh.Verify", mkerr.Proof, ErrCommitmentMismatch)
	}
	if !commitment.Verify(first.ZKPoKCommitment, decom.ZKPoKDecommit, decom.Proof.R.Compressed(), decom.Proof.S.Bytes()) {
		r.logger.Warn(context.Background(), "ecdh: responder rejected zkpok decommitment")
		return mkerr.New("ecdh.Verify", mkerr.Proof, ErrCommitmentMismatch)
	}
	if !zk.VerifyDLog(decom.Proof, decom.Public, aux) {
		r.logger.Warn(context.Background(), "ecdh: responder rejected dlog proof")
		return mkerr.New("ecdh.Verify", mkerr.Proof, ErrInvalidDLogProof)
	}
	return nil
}

// Combine derives the joint point using combine, given the initiator's
// verified public point.
func (r *Responder) Combine(peerPublic *curve.Point, combine Combine) *curve.Point {
	return combine(r.secret, r.public, peerPublic)
}
