package zk

import (
	"errors"
	"math/big"

	"github.com/fxamacker/cbor/v2"

	"github.com/mpc-kms/secp256k1/pkg/commitment"
	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/paillier"
)

// PDL (Proof of Discrete-Log vs Ciphertext) is the interactive proof S3
// keygen runs so P2 can check that P1's Paillier ciphertext c_key really
// encrypts the discrete log of P1's public share Q1 = x1*G, without either
// party learning x1. The message and type names (PDLChallenge,
// PDLCommitment, PDLReveal, PDLOpening) mirror the PDLFirstMessage /
// PDLSecondMessage / PDLchallenge / PDLdecommit naming that
// original_source's ecdsa/two_party_lindell17/party1.rs and party2.rs
// exchange; the protocol body that crate calls into was not part of the
// retrieved source, so the sigma-protocol steps below are reconstructed
// from the well-known Lindell'17 PDL construction those files describe:
//
//  1. Verifier samples a curve scalar a and a Paillier-sized blind b, sends
//     c_tag = c_key^a * Enc(b) (PDLChallenge.CTag).
//  2. Prover decrypts ab = a*x1+b, computes Q_tag = ab*G, and commits to
//     Q_tag (PDLCommitment) without revealing it.
//  3. Verifier reveals (a, b) (PDLReveal).
//  4. Prover opens its commitment to Q_tag (PDLOpening).
//  5. Verifier checks the opening matches the earlier commitment and that
//     Q_tag == a*Q1 + b*G.
//
// Soundness relies on the prover fixing Q_tag before learning the real
// (a, b): a prover using a false x1' could not have predicted the
// verifier's challenge, so it cannot retroactively compute a consistent
// Q_tag except with negligible probability.
type PDLChallenge struct {
	a    *curve.Scalar
	b    *big.Int
	CTag *paillier.Ciphertext
}

// PDLCommitment is the prover's first message: a commitment to Q_tag.
type PDLCommitment struct {
	commitment *commitment.Commitment
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *PDLCommitment) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(p.commitment)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *PDLCommitment) UnmarshalBinary(b []byte) error {
	var c commitment.Commitment
	if err := cbor.Unmarshal(b, &c); err != nil {
		return err
	}
	p.commitment = &c
	return nil
}

// PDLReveal is the verifier's second message: the challenge opened.
type PDLReveal struct {
	A *curve.Scalar
	B *big.Int
}

// PDLOpening is the prover's final message: Q_tag and its commitment
// opening.
type PDLOpening struct {
	QTag       *curve.Point
	decommit   *commitment.Decommitment
	commitment *commitment.Commitment
}

type pdlOpeningWire struct {
	QTag       *curve.Point
	Decommit   *commitment.Decommitment
	Commitment *commitment.Commitment
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *PDLOpening) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(pdlOpeningWire{QTag: p.QTag, Decommit: p.decommit, Commitment: p.commitment})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *PDLOpening) UnmarshalBinary(b []byte) error {
	var w pdlOpeningWire
	if err := cbor.Unmarshal(b, &w); err != nil {
		return err
	}
	p.QTag, p.decommit, p.commitment = w.QTag, w.Decommit, w.Commitment
	return nil
}

// ChallengePDL is run by the verifier (P2), who knows pk and P1's
// ciphertext c_key but not x1.
func ChallengePDL(pk *paillier.PublicKey, cKey *paillier.Ciphertext) (*PDLChallenge, error) {
	a, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	b, err := randNonceBelow(pk.N())
	if err != nil {
		return nil, err
	}
	encB, _, err := pk.Encrypt(b)
	if err != nil {
		return nil, err
	}
	cTag := pk.HomomorphicAdd(pk.HomomorphicScale(cKey, a.BigInt()), encB)

	return &PDLChallenge{a: a, b: b, CTag: cTag}, nil
}

// Reveal discloses the challenge's (a, b), to be sent only after the
// prover's commitment has been received.
func (c *PDLChallenge) Reveal() *PDLReveal {
	return &PDLReveal{A: c.a, B: c.b}
}

// PDLProverState is kept by the prover (P1) between FirstMessagePDL and
// SecondMessagePDL.
type PDLProverState struct {
	qTag     *curve.Point
	decommit *commitment.Decommitment
}

// FirstMessagePDL is run by the prover (P1), who holds the Paillier private
// key and therefore x1's relationship to c_key.
func FirstMessagePDL(sk *paillier.PrivateKey, challenge *PDLChallenge) (*PDLCommitment, *PDLProverState, error) {
	if sk == nil || challenge == nil {
		return nil, nil, errors.New("zk: FirstMessagePDL inputs must not be nil")
	}

	ab, err := sk.Decrypt(challenge.CTag)
	if err != nil {
		return nil, nil, err
	}
	qTag := curve.ScalarBaseMult(curve.NewScalarFromBigInt(ab))

	com, decom, err := commitment.Commit(qTag.Compressed())
	if err != nil {
		return nil, nil, err
	}

	return &PDLCommitment{commitment: com}, &PDLProverState{qTag: qTag, decommit: decom}, nil
}

// SecondMessagePDL opens the prover's earlier commitment to Q_tag.
func SecondMessagePDL(com *PDLCommitment, state *PDLProverState) *PDLOpening {
	return &PDLOpening{QTag: state.qTag, decommit: state.decommit, commitment: com.commitment}
}

// VerifyPDL is run by the verifier (P2) against the prover's commitment,
// its own revealed challenge, the prover's opening, and P1's public share
// Q1.
func VerifyPDL(reveal *PDLReveal, opening *PDLOpening, Q1 *curve.Point) bool {
	if reveal == nil || opening == nil || Q1 == nil {
		return false
	}
	if !commitment.Verify(opening.commitment, opening.decommit, opening.QTag.Compressed()) {
		return false
	}

	expected := Q1.ScalarMult(reveal.A).Add(curve.ScalarBaseMult(curve.NewScalarFromBigInt(reveal.B)))
	return expected.Equal(opening.QTag)
}
