package backup

import (
	"math/big"

	"github.com/mpc-kms/secp256k1/pkg/curve"
)

// EncryptedSegment is one segment's ElGamal ciphertext under the backup
// public key Y: C1 = r*G, C2 = s*G + r*Y.
type EncryptedSegment struct {
	C1 *curve.Point
	C2 *curve.Point
}

// Ciphertext is a full verifiable backup of a scalar: one EncryptedSegment
// per segmentSize-bit chunk, least-significant segment first.
type Ciphertext struct {
	Segments    []*EncryptedSegment
	SegmentSize int
}

// Encrypt decomposes x into numSegments chunks of segmentSize bits each
// and ElGamal-encrypts every chunk under the backup public key y. It
// returns both the ciphertext (safe to publish) and the segment witnesses
// (value and nonce per segment) a caller needs to produce a Proof.
func Encrypt(x *curve.Scalar, segmentSize, numSegments int, y *curve.Point) (*Ciphertext, []*Segment, error) {
	if err := validateSegmentation(segmentSize, numSegments); err != nil {
		return nil, nil, err
	}

	values := decompose(x.BigInt(), segmentSize, numSegments)

	segments := make([]*Segment, numSegments)
	encSegments := make([]*EncryptedSegment, numSegments)
	for i, v := range values {
		r, err := curve.RandomScalar()
		if err != nil {
			return nil, nil, err
		}
		s := curve.NewScalarFromBigInt(v)

		c1 := curve.ScalarBaseMult(r)
		c2 := curve.ScalarBaseMult(s).Add(y.ScalarMult(r))

		segments[i] = &Segment{Value: s, Nonce: r}
		encSegments[i] = &EncryptedSegment{C1: c1, C2: c2}
	}

	return &Ciphertext{Segments: encSegments, SegmentSize: segmentSize}, segments, nil
}

// Decrypt recovers the original scalar from a Ciphertext given the backup
// private key. Each segment is recovered by brute-force discrete-log
// search over [0, 2^segmentSize), which is why segmentSize is capped at
// maxSegmentSize.
func Decrypt(ct *Ciphertext, backupPriv *curve.Scalar) (*curve.Scalar, error) {
	if err := validateSegmentation(ct.SegmentSize, len(ct.Segments)); err != nil {
		return nil, err
	}

	limit := 1 << uint(ct.SegmentSize)
	table := make(map[string]int64, limit)
	acc := curve.ScalarBaseMult(curve.NewScalarFromBigInt(big.NewInt(0)))
	g := curve.ScalarBaseMult(curve.NewScalarFromBigInt(big.NewInt(1)))
	for m := int64(0); m < int64(limit); m++ {
		table[string(acc.Compressed())] = m
		acc = acc.Add(g)
	}

	values := make([]*big.Int, len(ct.Segments))
	for i, seg := range ct.Segments {
		m := seg.C2.Add(seg.C1.ScalarMult(backupPriv.Negate()))
		plain, ok := table[string(m.Compressed())]
		if !ok {
			return nil, ErrSegmentDecodeFailed
		}
		values[i] = big.NewInt(plain)
	}

	return reassemble(values, ct.SegmentSize), nil
}
