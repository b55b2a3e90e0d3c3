package backup

import (
	"errors"
	"math/big"

	"github.com/mpc-kms/secp256k1/pkg/curve"
)

// ErrSegmentationTooNarrow is returned when segmentSize*numSegments is too
// small to cover every possible scalar value mod the curve order.
var ErrSegmentationTooNarrow = errors.New("backup: segmentSize*numSegments does not cover the scalar range")

// ErrSegmentTooWide is returned when segmentSize is too large for
// brute-force decryption to be practical.
var ErrSegmentTooWide = errors.New("backup: segmentSize is too large to brute-force on decrypt")

// ErrSegmentDecodeFailed is returned when a decrypted segment point isn't
// in the brute-forced table, meaning the wrong backup key was used or the
// ciphertext is corrupt.
var ErrSegmentDecodeFailed = errors.New("backup: segment did not decode to a small scalar")

// maxSegmentSize bounds the discrete-log lookup table that Decrypt builds
// to at most 2^20 points, shared by all segments of one call.
const maxSegmentSize = 20

// Segment is one witness piece of a decomposed scalar: a small value and
// the randomness used to encrypt it.
type Segment struct {
	Value *curve.Scalar
	Nonce *curve.Scalar
}

func decompose(x *big.Int, segmentSize, numSegments int) []*big.Int {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(segmentSize))
	mask.Sub(mask, big.NewInt(1))

	rem := new(big.Int).Set(x)
	out := make([]*big.Int, numSegments)
	for i := 0; i < numSegments; i++ {
		out[i] = new(big.Int).And(rem, mask)
		rem = new(big.Int).Rsh(rem, uint(segmentSize))
	}
	return out
}

func segmentWeight(i, segmentSize int) *curve.Scalar {
	w := new(big.Int).Lsh(big.NewInt(1), uint(i*segmentSize))
	w.Mod(w, curve.Order())
	return curve.NewScalarFromBigInt(w)
}

func reassemble(values []*big.Int, segmentSize int) *curve.Scalar {
	sum := curve.NewScalarFromBigInt(big.NewInt(0))
	for i, v := range values {
		term := curve.NewScalarFromBigInt(v).Mul(segmentWeight(i, segmentSize))
		sum = sum.Add(term)
	}
	return sum
}

func validateSegmentation(segmentSize, numSegments int) error {
	if segmentSize <= 0 || numSegments <= 0 {
		return ErrSegmentationTooNarrow
	}
	if segmentSize > maxSegmentSize {
		return ErrSegmentTooWide
	}
	if segmentSize*numSegments < curve.Order().BitLen() {
		return ErrSegmentationTooNarrow
	}
	return nil
}
