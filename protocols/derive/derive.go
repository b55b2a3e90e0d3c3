package derive

import (
	"crypto/hmac"
	"crypto/sha512"
	"errors"
	"math/big"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/protocols/chaincode"
)

// Variant selects how a derivation step folds f_L into the running public
// key and cumulative offset: ECDSA's aggregate key is multiplicative,
// Schnorr's is additive.
type Variant int

const (
	VariantECDSA Variant = iota
	VariantSchnorr
)

// ErrEmptyPath is returned when Derive is called with no path indices.
var ErrEmptyPath = errors.New("derive: path must have at least one index")

// Result is the output of walking a derivation path: the child aggregate
// public key, the child chain code, and the cumulative offset f_cum that
// one party's private share must be folded with to match Q.
type Result struct {
	Q         *curve.Point
	ChainCode *chaincode.ChainCode
	FCum      *curve.Scalar
}

// Derive walks path from (q, cc), following the per-step fold from
// original_source's hd_key: each step hashes the running chain code and
// public key through HMAC-SHA512 keyed on the chain code, splits the
// 64-byte digest into f_L (high 32 bytes) and f_R (low 32 bytes), folds f_L
// into the running public key and cumulative offset (multiplicatively for
// ECDSA, additively for Schnorr), and folds f_R into the running chain
// code via scalar point multiplication.
func Derive(variant Variant, path []*big.Int, q *curve.Point, cc *chaincode.ChainCode) (*Result, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}

	ccPoint, err := curve.PointFromCompressed(cc.Bytes())
	if err != nil {
		return nil, err
	}

	var fCum *curve.Scalar
	qCur := q
	ccCur := ccPoint

	for _, index := range path {
		fL, fR := stepDigest(ccCur, qCur, index)

		switch variant {
		case VariantSchnorr:
			qCur = qCur.Add(curve.ScalarBaseMult(fL))
			if fCum == nil {
				fCum = fL
			} else {
				fCum = fCum.Add(fL)
			}
		default:
			qCur = qCur.ScalarMult(fL)
			if fCum == nil {
				fCum = fL
			} else {
				fCum = fCum.Mul(fL)
			}
		}
		ccCur = ccCur.ScalarMult(fR)
	}

	return &Result{
		Q:         qCur,
		ChainCode: &chaincode.ChainCode{Value: new(big.Int).SetBytes(ccCur.Compressed())},
		FCum:      fCum,
	}, nil
}

// stepDigest computes one HD derivation step's f_L and f_R from the
// running chain-code point, public key, and path index.
func stepDigest(ccPoint, q *curve.Point, index *big.Int) (fL, fR *curve.Scalar) {
	mac := hmac.New(sha512.New, ccPoint.Compressed())
	_, _ = mac.Write(q.Compressed())
	idxBuf := make([]byte, 32)
	index.FillBytes(idxBuf)
	_, _ = mac.Write(idxBuf)
	sum := mac.Sum(nil)

	fL = curve.NewScalarFromBigInt(new(big.Int).SetBytes(sum[:32]))
	fR = curve.NewScalarFromBigInt(new(big.Int).SetBytes(sum[32:]))
	return fL, fR
}
