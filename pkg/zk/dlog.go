package zk

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/zeebo/blake3"

	"github.com/mpc-kms/secp256k1/pkg/curve"
)

const dlogDomain = "kms-secp256k1/zk/dlog/v1"

// DLogProof is a non-interactive Schnorr proof of knowledge of x such that
// X = x*G, bound to an auxiliary session label so a proof for one protocol
// run cannot be replayed into a different one. Grounded on
// smallyunet-go-cggmp-tss's internal/crypto/zk/schnorr package, adapted to
// this module's curve types and to a BLAKE3 Fiat-Shamir challenge.
type DLogProof struct {
	R *curve.Point
	S *curve.Scalar
}

// ProveDLog proves knowledge of x for X = x*G. aux binds the proof to a
// session (e.g. a commitment transcript) so it cannot be lifted into an
// unrelated exchange.
func ProveDLog(x *curve.Scalar, X *curve.Point, aux []byte) (*DLogProof, error) {
	if x == nil || X == nil {
		return nil, errors.New("zk: ProveDLog inputs must not be nil")
	}

	k, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	R := curve.ScalarBaseMult(k)

	e := dlogChallenge(X, R, aux)
	s := k.Add(e.Mul(x))

	return &DLogProof{R: R, S: s}, nil
}

// VerifyDLog checks a DLogProof against the claimed public point X and the
// same aux label used to produce it.
func VerifyDLog(proof *DLogProof, X *curve.Point, aux []byte) bool {
	if proof == nil || proof.R == nil || proof.S == nil || X == nil {
		return false
	}

	e := dlogChallenge(X, proof.R, aux)
	lhs := curve.ScalarBaseMult(proof.S)
	rhs := proof.R.Add(X.ScalarMult(e))
	return lhs.Equal(rhs)
}

func dlogChallenge(X, R *curve.Point, aux []byte) *curve.Scalar {
	h := blake3.New()
	_, _ = h.Write([]byte(dlogDomain))
	_, _ = h.Write(X.Compressed())
	_, _ = h.Write(R.Compressed())
	_, _ = h.Write(aux)
	sum := h.Sum(nil)
	return curve.NewScalarFromBigInt(new(big.Int).SetBytes(sum))
}

// randNonceBelow draws a uniform element of [0, max). Shared by the range
// prover and the PDL challenger, which both need Paillier-sized randomness
// rather than a curve scalar.
func randNonceBelow(max *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, max)
}
