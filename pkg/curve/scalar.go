package curve

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrZeroScalar is returned whenever an operation would produce or accept
// the zero scalar where spec invariants require a nonzero value (§3: "0
// rejected" for any share or ephemeral value).
var ErrZeroScalar = errors.New("curve: scalar must be nonzero")

// Scalar is a residue modulo the secp256k1 group order q.
type Scalar struct {
	s secp256k1.ModNScalar
}

// Order returns the secp256k1 group order q.
func Order() *big.Int {
	return secp256k1.S256().N
}

// NewScalarFromBigInt reduces x modulo q and returns the resulting Scalar.
func NewScalarFromBigInt(x *big.Int) *Scalar {
	var out Scalar
	b := new(big.Int).Mod(x, secp256k1.S256().N)
	buf := make([]byte, 32)
	b.FillBytes(buf)
	out.s.SetByteSlice(buf)
	return &out
}

// RandomScalar draws a uniformly random nonzero scalar mod q.
func RandomScalar() (*Scalar, error) {
	for {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, err
		}
		var s secp256k1.ModNScalar
		overflow := s.SetBytes(&buf)
		if overflow != 0 || s.IsZero() {
			continue
		}
		return &Scalar{s: s}, nil
	}
}

// ScalarOne returns the multiplicative identity.
func ScalarOne() *Scalar {
	var s secp256k1.ModNScalar
	s.SetInt(1)
	return &Scalar{s: s}
}

// IsZero reports whether the scalar is the additive identity.
func (a *Scalar) IsZero() bool { return a.s.IsZero() }

// BigInt returns the scalar's canonical representative in [0, q).
func (a *Scalar) BigInt() *big.Int {
	buf := a.s.Bytes()
	return new(big.Int).SetBytes(buf[:])
}

// Bytes returns the big-endian, 32-byte encoding of the scalar, per the
// serialization requirement in spec §6.
func (a *Scalar) Bytes() []byte {
	buf := a.s.Bytes()
	out := make([]byte, 32)
	copy(out, buf[:])
	return out
}

// ScalarFromBytes decodes a big-endian 32-byte scalar encoding.
func ScalarFromBytes(b []byte) (*Scalar, error) {
	if len(b) != 32 {
		return nil, errors.New("curve: scalar encoding must be 32 bytes")
	}
	var arr [32]byte
	copy(arr[:], b)
	var s secp256k1.ModNScalar
	s.SetBytes(&arr)
	return &Scalar{s: s}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (a *Scalar) MarshalBinary() ([]byte, error) { return a.Bytes(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (a *Scalar) UnmarshalBinary(b []byte) error {
	s, err := ScalarFromBytes(b)
	if err != nil {
		return err
	}
	a.s = s.s
	return nil
}

// String renders the scalar as lowercase hex, for debug output only (never
// log the result of this for a secret scalar; see pkg/logging.Redacted).
func (a *Scalar) String() string { return hex.EncodeToString(a.Bytes()) }

// Add returns a+b mod q.
func (a *Scalar) Add(b *Scalar) *Scalar {
	var out secp256k1.ModNScalar
	out.Set(&a.s)
	out.Add(&b.s)
	return &Scalar{s: out}
}

// Sub returns a-b mod q.
func (a *Scalar) Sub(b *Scalar) *Scalar {
	var negB secp256k1.ModNScalar
	negB.Set(&b.s).Negate()
	var out secp256k1.ModNScalar
	out.Set(&a.s)
	out.Add(&negB)
	return &Scalar{s: out}
}

// Mul returns a*b mod q.
func (a *Scalar) Mul(b *Scalar) *Scalar {
	var out secp256k1.ModNScalar
	out.Set(&a.s)
	out.Mul(&b.s)
	return &Scalar{s: out}
}

// Negate returns -a mod q.
func (a *Scalar) Negate() *Scalar {
	var out secp256k1.ModNScalar
	out.Set(&a.s).Negate()
	return &Scalar{s: out}
}

// Invert returns a^-1 mod q. It returns ErrZeroScalar if a is zero.
func (a *Scalar) Invert() (*Scalar, error) {
	if a.s.IsZero() {
		return nil, ErrZeroScalar
	}
	var out secp256k1.ModNScalar
	out.Set(&a.s)
	out.InverseNonConst()
	return &Scalar{s: out}, nil
}

// Equal reports whether a and b represent the same residue mod q.
func (a *Scalar) Equal(b *Scalar) bool {
	return a.s.Equals(&b.s)
}

// Clone returns a deep copy of a.
func (a *Scalar) Clone() *Scalar {
	var out secp256k1.ModNScalar
	out.Set(&a.s)
	return &Scalar{s: out}
}

// Zeroize overwrites a's backing words with zero. Callers must not use a
// afterward.
func (a *Scalar) Zeroize() {
	a.s.Zero()
}

// ModNScalar exposes the underlying decred scalar type for sibling packages
// within this module that build proofs directly against the curve library
// (avoids a second conversion through big.Int on every sigma-protocol
// round).
func (a *Scalar) ModNScalar() *secp256k1.ModNScalar { return &a.s }

// ScalarFromModN wraps a decred ModNScalar as a Scalar.
func ScalarFromModN(s *secp256k1.ModNScalar) *Scalar {
	var out secp256k1.ModNScalar
	out.Set(s)
	return &Scalar{s: out}
}
