// Package zeroize overwrites sensitive buffers before they're dropped, per
// spec §9's "secret-handling discipline": every secret scalar and Paillier
// decryption key must be destroyed (overwritten) when its owning MasterKey
// or ephemeral signing state is dropped.
package zeroize

import (
	"math/big"

	"github.com/mpc-kms/secp256k1/pkg/curve"
)

// Bytes overwrites buf with zeros in place.
func Bytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// Scalar overwrites s's backing words with zero. s must not be shared with
// other live values.
func Scalar(s *curve.Scalar) {
	if s == nil {
		return
	}
	s.Zeroize()
}

// BigInt overwrites the words backing x with zeros and resets x to 0. x
// must not be shared with other live values.
func BigInt(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
	x.SetInt64(0)
}
