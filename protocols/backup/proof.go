package backup

import (
	"errors"
	"math/big"

	"github.com/zeebo/blake3"

	"github.com/mpc-kms/secp256k1/pkg/curve"
)

const proofDomain = "kms-secp256k1/backup/proof/v1"

// ErrInvalidBackupProof is returned when Verify's sigma-protocol checks
// fail.
var ErrInvalidBackupProof = errors.New("backup: invalid verifiable-encryption proof")

// Proof is a non-interactive proof that a Ciphertext's segments encrypt a
// scalar whose weighted sum equals the discrete log of a public point Q,
// without revealing any segment.
type Proof struct {
	T1 []*curve.Point
	T2 []*curve.Point
	TQ *curve.Point
	ZR []*curve.Scalar
	ZS []*curve.Scalar
}

// Prove builds a Proof that ct encrypts a scalar whose discrete log
// against G equals q's discrete log, i.e. that decrypting ct with the
// matching backup private key recovers x such that x*G == q. segments
// must be the witnesses Encrypt produced for ct.
func Prove(segments []*Segment, ct *Ciphertext, y, q *curve.Point) (*Proof, error) {
	n := len(segments)
	if n != len(ct.Segments) {
		return nil, errors.New("backup: segment witness count does not match ciphertext")
	}

	us := make([]*curve.Scalar, n)
	vs := make([]*curve.Scalar, n)
	t1 := make([]*curve.Point, n)
	t2 := make([]*curve.Point, n)
	tqSum := curve.ScalarBaseMult(curve.NewScalarFromBigInt(big.NewInt(0)))

	for i := 0; i < n; i++ {
		u, err := curve.RandomScalar()
		if err != nil {
			return nil, err
		}
		v, err := curve.RandomScalar()
		if err != nil {
			return nil, err
		}
		us[i], vs[i] = u, v
		t1[i] = curve.ScalarBaseMult(u)
		t2[i] = curve.ScalarBaseMult(v).Add(y.ScalarMult(u))
		tqSum = tqSum.Add(curve.ScalarBaseMult(v.Mul(segmentWeight(i, ct.SegmentSize))))
	}

	e := proofChallenge(ct, y, q, t1, t2, tqSum)

	zr := make([]*curve.Scalar, n)
	zs := make([]*curve.Scalar, n)
	for i := 0; i < n; i++ {
		zr[i] = us[i].Add(e.Mul(segments[i].Nonce))
		zs[i] = vs[i].Add(e.Mul(segments[i].Value))
	}

	return &Proof{T1: t1, T2: t2, TQ: tqSum, ZR: zr, ZS: zs}, nil
}

// Verify checks a Proof against the public ciphertext, backup public key,
// and the claimed aggregate public point q.
func (p *Proof) Verify(ct *Ciphertext, y, q *curve.Point) error {
	n := len(ct.Segments)
	if len(p.T1) != n || len(p.T2) != n || len(p.ZR) != n || len(p.ZS) != n {
		return ErrInvalidBackupProof
	}

	e := proofChallenge(ct, y, q, p.T1, p.T2, p.TQ)

	weightedZS := curve.ScalarBaseMult(curve.NewScalarFromBigInt(big.NewInt(0)))
	for i, seg := range ct.Segments {
		lhs1 := curve.ScalarBaseMult(p.ZR[i])
		rhs1 := p.T1[i].Add(seg.C1.ScalarMult(e))
		if !lhs1.Equal(rhs1) {
			return ErrInvalidBackupProof
		}

		lhs2 := curve.ScalarBaseMult(p.ZS[i]).Add(y.ScalarMult(p.ZR[i]))
		rhs2 := p.T2[i].Add(seg.C2.ScalarMult(e))
		if !lhs2.Equal(rhs2) {
			return ErrInvalidBackupProof
		}

		weightedZS = weightedZS.Add(curve.ScalarBaseMult(p.ZS[i].Mul(segmentWeight(i, ct.SegmentSize))))
	}

	rhsQ := p.TQ.Add(q.ScalarMult(e))
	if !weightedZS.Equal(rhsQ) {
		return ErrInvalidBackupProof
	}
	return nil
}

func proofChallenge(ct *Ciphertext, y, q *curve.Point, t1, t2 []*curve.Point, tq *curve.Point) *curve.Scalar {
	h := blake3.New()
	_, _ = h.Write([]byte(proofDomain))
	_, _ = h.Write(y.Compressed())
	_, _ = h.Write(q.Compressed())
	for _, seg := range ct.Segments {
		_, _ = h.Write(seg.C1.Compressed())
		_, _ = h.Write(seg.C2.Compressed())
	}
	for _, p := range t1 {
		_, _ = h.Write(p.Compressed())
	}
	for _, p := range t2 {
		_, _ = h.Write(p.Compressed())
	}
	_, _ = h.Write(tq.Compressed())
	sum := h.Sum(nil)
	return curve.NewScalarFromBigInt(new(big.Int).SetBytes(sum))
}
